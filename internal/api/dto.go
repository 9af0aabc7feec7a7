package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/selector"
)

// KernelStatus is the wire form of one capability probe result.
type KernelStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Path      string `json:"path,omitempty"`
	Error     string `json:"error,omitempty"`
}

// KernelReport is the full capability snapshot as served by
// GET /v1/kernels.
type KernelReport struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	HPU         bool           `json:"hpu"`
	CUDA        bool           `json:"cuda"`
	ROCm        bool           `json:"rocm"`
	Kernels     []KernelStatus `json:"kernels"`
}

// NewKernelReport renders a capability snapshot for the wire.
func NewKernelReport(snap kernels.Snapshot) KernelReport {
	report := KernelReport{
		ID:          "report_" + uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		HPU:         snap.HPU,
		CUDA:        snap.CUDA,
		ROCm:        snap.ROCm,
	}
	for _, ext := range kernels.Extensions() {
		cap := snap.Get(ext)
		status := KernelStatus{
			Name:      string(ext),
			Available: cap.Available,
			Version:   cap.Version,
			Path:      cap.Path,
		}
		if cap.Err != nil {
			status.Error = cap.Err.Error()
		}
		report.Kernels = append(report.Kernels, status)
	}
	return report
}

// SelectRequest is the body of POST /v1/select. disable_exllama is a
// pointer so "absent" stays distinguishable from false.
type SelectRequest struct {
	Bits      int  `json:"bits"`
	GroupSize int  `json:"group_size"`
	DescAct   bool `json:"desc_act"`

	UseTriton        bool  `json:"use_triton"`
	UseTritonV2      bool  `json:"use_tritonv2"`
	UseQigen         bool  `json:"use_qigen"`
	UseMarlin        bool  `json:"use_marlin"`
	UseIPEX          bool  `json:"use_ipex"`
	DisableExllama   *bool `json:"disable_exllama"`
	DisableExllamaV2 bool  `json:"disable_exllamav2"`
}

// Config converts the request to the selector's input types.
func (r SelectRequest) Config() (selector.QuantConfig, selector.Preference) {
	cfg := selector.QuantConfig{
		Bits:      r.Bits,
		GroupSize: r.GroupSize,
		DescAct:   r.DescAct,
	}
	pref := selector.Preference{
		UseTriton:        r.UseTriton,
		UseTritonV2:      r.UseTritonV2,
		UseQigen:         r.UseQigen,
		UseMarlin:        r.UseMarlin,
		UseIPEX:          r.UseIPEX,
		DisableExllamaV2: r.DisableExllamaV2,
	}
	if r.DisableExllama != nil {
		if *r.DisableExllama {
			pref.DisableExllama = selector.Enabled
		} else {
			pref.DisableExllama = selector.Disabled
		}
	}
	return cfg, pref
}

// SelectResponse is the body returned by POST /v1/select.
type SelectResponse struct {
	Backend string `json:"backend"`
}
