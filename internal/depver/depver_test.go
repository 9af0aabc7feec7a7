package depver

import (
	"errors"
	"testing"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current, target string
		op              Op
		want            bool
	}{
		{"2.0.0", "2.0.0", EQ, true},
		{"v2.0.0", "2.0.0", EQ, true},
		{"2.0.1", "2.0.0", EQ, false},
		{"1.9.0", "2.0.0", LT, true},
		{"2.0.0", "2.0.0", LT, false},
		{"2.0.0", "2.0.0", LE, true},
		{"2.1.0", "2.0.0", GT, true},
		{"2.0.0", "2.1.0", GT, false},
		{"2.1.0", "2.1.0", GE, true},
		{"2.1", "2.1.0", EQ, true},
		{"2.0.0-rc1", "2.0.0", LT, true},
	}
	for _, tc := range cases {
		got, err := Compare(tc.current, tc.target, tc.op)
		if err != nil {
			t.Fatalf("Compare(%q, %q, %q): %v", tc.current, tc.target, tc.op, err)
		}
		if got != tc.want {
			t.Fatalf("Compare(%q, %q, %q) = %v, want %v", tc.current, tc.target, tc.op, got, tc.want)
		}
	}
}

func TestCompareRejectsUnknownOperator(t *testing.T) {
	t.Parallel()

	_, err := Compare("2.0.0", "2.0.0", "neq")
	if !errors.Is(err, ErrInvalidOp) {
		t.Fatalf("expected ErrInvalidOp, got %v", err)
	}
}

func TestAtLeast(t *testing.T) {
	t.Parallel()

	if !AtLeast("2.1.0", "2.0.0") {
		t.Fatalf("2.1.0 should be at least 2.0.0")
	}
	if AtLeast("1.9.0", "2.0.0") {
		t.Fatalf("1.9.0 should not be at least 2.0.0")
	}
}
