// Package kernels probes which optional native kernel extensions are
// usable on this machine. Each extension is an independently shipped
// shared library; at startup we look for each one in the configured
// search path and record whether it can be loaded, keeping the failure
// reason around for user-facing error messages.
package kernels

import "maps"

// Extension identifies one optional native kernel library.
type Extension string

const (
	Triton     Extension = "triton"
	CUDALegacy Extension = "cuda-legacy"
	Exllama    Extension = "exllama"
	ExllamaV2  Extension = "exllamav2"
	Qigen      Extension = "qigen"
	Marlin     Extension = "marlin"
	IPEX       Extension = "ipex"
)

// Extensions lists every probed extension in a stable order.
func Extensions() []Extension {
	return []Extension{Triton, CUDALegacy, Exllama, ExllamaV2, Qigen, Marlin, IPEX}
}

// libFiles maps each extension to the shared library the probe looks for.
var libFiles = map[Extension]string{
	Triton:     "libqlin_triton.so",
	CUDALegacy: "libqlin_cuda.so",
	Exllama:    "libqlin_exllama.so",
	ExllamaV2:  "libqlin_exllamav2.so",
	Qigen:      "libqlin_qigen.so",
	Marlin:     "libqlin_marlin.so",
	IPEX:       "libqlin_ipex.so",
}

// minVersions is the oldest kernel ABI version each extension may
// report in its manifest. Older libraries predate the packed-weight
// layout this library emits and are treated as unavailable.
var minVersions = map[Extension]string{
	ExllamaV2: "0.0.2",
	Marlin:    "0.1.0",
}

// Capability records the probe result for a single extension.
type Capability struct {
	// Available is true when the library was found and is readable.
	Available bool
	// Path is the resolved library path when Available.
	Path string
	// Version is the library's reported version, if it ships one.
	Version string
	// Err holds the probe failure when not Available.
	Err error
}

// Snapshot is the immutable result of one capability probe. It is a
// plain value: construct it via Probe (or Default for the process-wide
// one) and pass it into the selector explicitly.
type Snapshot struct {
	Extensions map[Extension]Capability

	// HPU reports whether a vendor accelerator runtime is present.
	// When it is, the selector always picks the HPU backend.
	HPU bool
	// CUDA reports whether a usable NVIDIA GPU was detected.
	CUDA bool
	// ROCm reports whether an AMD HIP runtime was detected.
	ROCm bool
}

// Get returns the capability for ext; the zero Capability when the
// snapshot was not populated for it.
func (s Snapshot) Get(ext Extension) Capability {
	return s.Extensions[ext]
}

// Clone makes a deep copy of the Snapshot.
func (s Snapshot) Clone() Snapshot {
	s2 := s
	s2.Extensions = make(map[Extension]Capability, len(s.Extensions))
	maps.Copy(s2.Extensions, s.Extensions)
	return s2
}
