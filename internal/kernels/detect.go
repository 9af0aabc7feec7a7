package kernels

import (
	"os"
	"path/filepath"
)

// hasCUDA reports whether CUDA kernels can actually run here: either
// the binary was built against the CUDA runtime, or the NVIDIA driver
// exposes device nodes.
func hasCUDA() bool {
	return cudaLinked || hasNVIDIADevice()
}

// hasNVIDIADevice checks for driver device nodes under /dev/nvidia*.
// This distinguishes "driver installed, no card" from a usable GPU.
func hasNVIDIADevice() bool {
	matches, err := filepath.Glob("/dev/nvidia*")
	return err == nil && len(matches) > 0
}

// hasROCmDevice checks for the AMD KFD compute interface.
func hasROCmDevice() bool {
	_, err := os.Stat("/dev/kfd")
	return err == nil
}

// hasHPUDevice checks for vendor accelerator device nodes.
func hasHPUDevice() bool {
	matches, err := filepath.Glob("/dev/accel/accel*")
	return err == nil && len(matches) > 0
}
