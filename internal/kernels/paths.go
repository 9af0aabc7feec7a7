package kernels

import (
	"os"
	"strings"
)

// KernelPathEnv overrides the kernel library search path. It takes a
// ":"-separated list of directories, like PATH.
const KernelPathEnv = "QLIN_KERNEL_PATH"

const defaultKernelDir = "/usr/local/lib/qlin/kernels"

// searchDirs resolves the directories to scan for kernel libraries.
// QLIN_KERNEL_PATH wins outright when set; otherwise the packaged
// default location is tried first, then LD_LIBRARY_PATH.
func searchDirs() []string {
	if v := os.Getenv(KernelPathEnv); v != "" {
		return splitPathList(v)
	}
	dirs := []string{defaultKernelDir}
	return append(dirs, splitPathList(os.Getenv("LD_LIBRARY_PATH"))...)
}

func splitPathList(v string) []string {
	parts := strings.Split(v, ":")
	dirs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
