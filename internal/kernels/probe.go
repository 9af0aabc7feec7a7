package kernels

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/quantfold/qlin/internal/depver"
)

// Options configures a probe run.
type Options struct {
	// SearchDirs overrides the library search path. Empty means use
	// QLIN_KERNEL_PATH / the packaged defaults.
	SearchDirs []string
}

var (
	defaultOnce sync.Once
	defaultSnap Snapshot
)

// Default returns the process-wide capability snapshot, probing on
// first use. The result never changes for the life of the process.
func Default() Snapshot {
	defaultOnce.Do(func() {
		defaultSnap = Probe(Options{})
	})
	return defaultSnap
}

// Probe runs every capability check and returns the results as an
// immutable snapshot. It only touches the local filesystem: no
// retries, no network.
func Probe(opts Options) Snapshot {
	dirs := opts.SearchDirs
	if len(dirs) == 0 {
		dirs = searchDirs()
	}
	snap := Snapshot{Extensions: make(map[Extension]Capability, len(libFiles))}
	for ext, lib := range libFiles {
		cap := locate(dirs, lib)
		if cap.Available {
			cap = checkMinVersion(ext, cap)
		}
		snap.Extensions[ext] = cap
	}
	snap.HPU = hasHPUDevice()
	snap.CUDA = hasCUDA()
	snap.ROCm = hasROCmDevice()
	return snap
}

// locate searches dirs for lib and validates it is readable. The first
// readable hit wins; directory order is the caller's preference order.
func locate(dirs []string, lib string) Capability {
	var firstErr error
	for _, dir := range dirs {
		p := filepath.Join(dir, lib)
		if _, err := os.Stat(p); err != nil {
			if firstErr == nil && !errors.Is(err, os.ErrNotExist) {
				firstErr = fmt.Errorf("%s: %w", p, err)
			}
			continue
		}
		if err := unix.Access(p, unix.R_OK); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: not readable: %w", p, err)
			}
			continue
		}
		return Capability{Available: true, Path: p, Version: sidecarVersion(p)}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("%s not found in %s", lib, strings.Join(dirs, ":"))
	}
	return Capability{Err: firstErr}
}

// checkMinVersion rejects libraries whose manifest reports an ABI
// version older than the minimum this library supports. Libraries
// without a manifest are accepted as-is.
func checkMinVersion(ext Extension, cap Capability) Capability {
	min, ok := minVersions[ext]
	if !ok || cap.Version == "" {
		return cap
	}
	if depver.AtLeast(cap.Version, min) {
		return cap
	}
	return Capability{
		Path:    cap.Path,
		Version: cap.Version,
		Err: fmt.Errorf("%s reports version %s, minimum supported is %s",
			cap.Path, cap.Version, min),
	}
}

// sidecarVersion reads the optional "<lib>.version" manifest the
// kernel packages ship next to the shared object.
func sidecarVersion(libPath string) string {
	data, err := os.ReadFile(libPath + ".version")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
