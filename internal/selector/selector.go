// Package selector picks the concrete quantized linear-layer backend
// for a given quantization config. Selection is a priority-ordered
// decision table over the capability snapshot and the caller's
// preference flags; it returns exactly one backend handle, or an error
// when an explicitly requested kernel is unavailable.
package selector

import (
	"sync/atomic"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/logger"
)

// Backend is an opaque handle for one concrete linear-layer
// implementation. The caller uses it to construct the layer; this
// package never touches the kernels themselves.
type Backend string

const (
	HPU        Backend = "hpu"
	Qigen      Backend = "qigen"
	Triton     Backend = "triton"
	TritonV2   Backend = "tritonv2"
	IPEX       Backend = "ipex"
	Marlin     Backend = "marlin"
	ExllamaV2  Backend = "exllamav2"
	Exllama    Backend = "exllama"
	CUDALegacy Backend = "cuda-legacy"
	CUDA       Backend = "cuda"
)

// Backends lists every selectable backend handle.
func Backends() []Backend {
	return []Backend{HPU, Qigen, Triton, TritonV2, IPEX, Marlin, ExllamaV2, Exllama, CUDALegacy, CUDA}
}

// QuantConfig is the quantization layout of the layer to build.
type QuantConfig struct {
	Bits int
	// GroupSize is the number of weight elements sharing one
	// quantization scale; -1 means no grouping.
	GroupSize int
	// DescAct is the GPTQ descending-activation-order reordering.
	DescAct bool
}

// Tristate is an optional boolean preference. Unset defers to the
// derivation rule in Select.
type Tristate int

const (
	Unset Tristate = iota
	Enabled
	Disabled
)

func (t Tristate) String() string {
	switch t {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unset"
	}
}

// Preference holds the caller's backend preference flags.
type Preference struct {
	UseTriton   bool
	UseTritonV2 bool
	UseQigen    bool
	UseMarlin   bool
	UseIPEX     bool

	// DisableExllama disables the exllama v1 kernel. When Unset it is
	// derived: v1 stays enabled only when DisableExllamaV2 is set, so
	// that turning off v2 falls back to v1 rather than the cuda
	// kernels.
	DisableExllama   Tristate
	DisableExllamaV2 bool
}

// Selector resolves backends against a capability snapshot. It is safe
// for concurrent use; the only mutable state is the one-time
// no-GPU warning latch.
type Selector struct {
	log         logger.Logger
	warnedNoGPU atomic.Bool
}

// New returns a Selector logging through log.
func New(log logger.Logger) *Selector {
	if log == nil {
		log = logger.Default()
	}
	return &Selector{log: log}
}

// Select picks the backend for cfg under pref, consulting snap for
// what is actually usable. First match in priority order wins:
// the HPU runtime overrides everything, then explicitly requested
// kernels (qigen, triton, ipex), then the best available default in
// the cuda family (marlin, exllamav2, exllama, cuda-legacy, cuda).
func (s *Selector) Select(snap kernels.Snapshot, cfg QuantConfig, pref Preference) (Backend, error) {
	if snap.HPU {
		return HPU, nil
	}

	if !snap.CUDA && !pref.UseIPEX {
		if s.warnedNoGPU.CompareAndSwap(false, true) {
			s.log.Warn("no cuda device found, assuming cpu inference via the intel extension",
				"hint", "request ipex explicitly to silence this warning")
		}
		pref.UseIPEX = true
	}

	switch {
	case pref.UseQigen:
		if cap := snap.Get(kernels.Qigen); !cap.Available {
			return "", newKernelUnavailable("qigen kernels are not available: %v", cap.Err)
		}
		return Qigen, nil

	case pref.UseTriton || pref.UseTritonV2:
		if snap.ROCm {
			s.log.Warn("triton kernels on a HIP runtime are untested and may produce wrong results")
		}
		if cap := snap.Get(kernels.Triton); !cap.Available {
			return "", newKernelUnavailable("triton kernels are not available: %v", cap.Err)
		}
		if pref.UseTritonV2 {
			return TritonV2, nil
		}
		return Triton, nil

	case pref.UseIPEX:
		if cfg.Bits != 4 {
			return "", newInvalidArgument("the intel cpu extension only supports 4-bit quantization, got %d-bit", cfg.Bits)
		}
		if cap := snap.Get(kernels.IPEX); !cap.Available {
			return "", newKernelUnavailable("intel cpu extension is not available: %v", cap.Err)
		}
		return IPEX, nil
	}

	disableExllama := pref.DisableExllama
	if disableExllama == Unset {
		if pref.DisableExllamaV2 {
			disableExllama = Disabled
		} else {
			disableExllama = Enabled
		}
	}

	switch {
	case cfg.Bits == 4 && pref.UseMarlin:
		return Marlin, nil
	case cfg.Bits == 4 && !pref.DisableExllamaV2 && snap.Get(kernels.ExllamaV2).Available:
		return ExllamaV2, nil
	case cfg.Bits == 4 && disableExllama != Enabled && snap.Get(kernels.Exllama).Available:
		return Exllama, nil
	case !cfg.DescAct || cfg.GroupSize == -1:
		// The legacy kernel is the simpler, faster fallback; it only
		// lacks support for desc_act combined with grouping.
		return CUDALegacy, nil
	default:
		return CUDA, nil
	}
}
