package selector

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/logger"
)

// snapWith builds a snapshot with a CUDA device present and the given
// extensions available. Unlisted extensions carry a probe error.
func snapWith(avail ...kernels.Extension) kernels.Snapshot {
	snap := kernels.Snapshot{
		CUDA:       true,
		Extensions: make(map[kernels.Extension]kernels.Capability),
	}
	for _, ext := range kernels.Extensions() {
		snap.Extensions[ext] = kernels.Capability{
			Err: fmt.Errorf("lib%s.so not found", ext),
		}
	}
	for _, ext := range avail {
		snap.Extensions[ext] = kernels.Capability{Available: true}
	}
	return snap
}

func mustSelect(t *testing.T, snap kernels.Snapshot, cfg QuantConfig, pref Preference) Backend {
	t.Helper()
	got, err := New(nil).Select(snap, cfg, pref)
	if err != nil {
		t.Fatalf("unexpected selection error: %v", err)
	}
	return got
}

func TestHPUOverridesEverything(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.Marlin, kernels.ExllamaV2)
	snap.HPU = true

	// Every preference combination still lands on hpu.
	prefs := []Preference{
		{},
		{UseQigen: true},
		{UseTriton: true},
		{UseMarlin: true},
		{UseIPEX: true},
	}
	for _, pref := range prefs {
		if got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128}, pref); got != HPU {
			t.Fatalf("pref %+v: got %q, want hpu", pref, got)
		}
	}
}

func TestQigenUnavailableNamesDiagnostic(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Select(snapWith(), QuantConfig{Bits: 4}, Preference{UseQigen: true})
	if !errors.Is(err, ErrKernelUnavailable) {
		t.Fatalf("expected ErrKernelUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "libqigen.so not found") {
		t.Fatalf("error should carry the probe diagnostic: %v", err)
	}
}

func TestQigenSelected(t *testing.T) {
	t.Parallel()

	got := mustSelect(t, snapWith(kernels.Qigen), QuantConfig{Bits: 4}, Preference{UseQigen: true})
	if got != Qigen {
		t.Fatalf("got %q, want qigen", got)
	}
}

func TestTritonRequiresCapability(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Select(snapWith(), QuantConfig{Bits: 4}, Preference{UseTriton: true})
	if !errors.Is(err, ErrKernelUnavailable) {
		t.Fatalf("expected ErrKernelUnavailable, got %v", err)
	}

	if got := mustSelect(t, snapWith(kernels.Triton), QuantConfig{Bits: 4}, Preference{UseTriton: true}); got != Triton {
		t.Fatalf("got %q, want triton", got)
	}
	if got := mustSelect(t, snapWith(kernels.Triton), QuantConfig{Bits: 4}, Preference{UseTritonV2: true}); got != TritonV2 {
		t.Fatalf("got %q, want tritonv2", got)
	}
}

func TestTritonBeatsAvailableExllama(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.Triton, kernels.ExllamaV2)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true}, Preference{UseTriton: true})
	if got != Triton {
		t.Fatalf("got %q, want triton", got)
	}
}

func TestIPEXRequiresFourBit(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Select(snapWith(kernels.IPEX), QuantConfig{Bits: 8}, Preference{UseIPEX: true})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for 8-bit ipex, got %v", err)
	}
}

func TestIPEXUnavailableNamesDiagnostic(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Select(snapWith(), QuantConfig{Bits: 4}, Preference{UseIPEX: true})
	if !errors.Is(err, ErrKernelUnavailable) {
		t.Fatalf("expected ErrKernelUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "libipex.so not found") {
		t.Fatalf("error should carry the probe diagnostic: %v", err)
	}
}

func TestIPEXSelected(t *testing.T) {
	t.Parallel()

	got := mustSelect(t, snapWith(kernels.IPEX), QuantConfig{Bits: 4}, Preference{UseIPEX: true})
	if got != IPEX {
		t.Fatalf("got %q, want ipex", got)
	}
}

func TestDefaultPreferenceCudaLegacyFallback(t *testing.T) {
	t.Parallel()

	got := mustSelect(t, snapWith(), QuantConfig{Bits: 4, GroupSize: -1}, Preference{})
	if got != CUDALegacy {
		t.Fatalf("got %q, want cuda-legacy", got)
	}
}

func TestDefaultPreferencePrefersExllamaV2(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.ExllamaV2)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true}, Preference{})
	if got != ExllamaV2 {
		t.Fatalf("got %q, want exllamav2", got)
	}
}

func TestMarlinBeatsExllamaV2(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.ExllamaV2, kernels.Exllama)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128}, Preference{UseMarlin: true})
	if got != Marlin {
		t.Fatalf("got %q, want marlin", got)
	}
}

func TestMarlinIgnoredOutsideFourBit(t *testing.T) {
	t.Parallel()

	got := mustSelect(t, snapWith(), QuantConfig{Bits: 8, GroupSize: 128}, Preference{UseMarlin: true})
	if got != CUDALegacy {
		t.Fatalf("got %q, want cuda-legacy", got)
	}
}

func TestDisableExllamaV2FallsBackToV1(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.ExllamaV2, kernels.Exllama)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true},
		Preference{DisableExllamaV2: true})
	if got != Exllama {
		t.Fatalf("got %q, want exllama", got)
	}
}

func TestExllamaDisabledByDefault(t *testing.T) {
	t.Parallel()

	// Only the v1 kernel is available; with DisableExllama unset it is
	// derived as disabled, so selection falls through to the cuda pair.
	snap := snapWith(kernels.Exllama)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true}, Preference{})
	if got != CUDA {
		t.Fatalf("got %q, want cuda", got)
	}
}

func TestExplicitDisableExllamaOverridesDerivation(t *testing.T) {
	t.Parallel()

	snap := snapWith(kernels.ExllamaV2, kernels.Exllama)
	got := mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true},
		Preference{DisableExllama: Enabled, DisableExllamaV2: true})
	if got != CUDA {
		t.Fatalf("got %q, want cuda", got)
	}

	got = mustSelect(t, snap, QuantConfig{Bits: 4, GroupSize: 128, DescAct: true},
		Preference{DisableExllama: Disabled, DisableExllamaV2: true})
	if got != Exllama {
		t.Fatalf("got %q, want exllama", got)
	}
}

func TestCudaGenericForGroupedDescAct(t *testing.T) {
	t.Parallel()

	got := mustSelect(t, snapWith(), QuantConfig{Bits: 3, GroupSize: 128, DescAct: true}, Preference{})
	if got != CUDA {
		t.Fatalf("got %q, want cuda", got)
	}
}

func TestSelectionIsDeterministic(t *testing.T) {
	t.Parallel()

	s := New(nil)
	snap := snapWith(kernels.ExllamaV2)
	cfg := QuantConfig{Bits: 4, GroupSize: 128, DescAct: true}
	first, err := s.Select(snap, cfg, Preference{})
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	second, err := s.Select(snap, cfg, Preference{})
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if first != second {
		t.Fatalf("selection not deterministic: %q then %q", first, second)
	}
}

func TestNoGPUForcesIPEXAndWarnsOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(slog.NewTextHandler(&buf, nil))
	s := New(log)

	snap := snapWith(kernels.IPEX)
	snap.CUDA = false

	for range 3 {
		got, err := s.Select(snap, QuantConfig{Bits: 4}, Preference{})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if got != IPEX {
			t.Fatalf("got %q, want ipex on a machine without cuda", got)
		}
	}
	if n := strings.Count(buf.String(), "no cuda device found"); n != 1 {
		t.Fatalf("expected exactly one warning, got %d:\n%s", n, buf.String())
	}
}
