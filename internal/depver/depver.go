// Package depver compares reported dependency versions, such as the
// version manifests shipped with kernel libraries, against a target.
package depver

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Op is a relational operator for version comparisons.
type Op string

const (
	EQ Op = "eq"
	LT Op = "lt"
	LE Op = "le"
	GT Op = "gt"
	GE Op = "ge"
)

// ErrInvalidOp is returned for operators outside the fixed set.
var ErrInvalidOp = errors.New("invalid comparison operator")

// Compare reports whether "current op target" holds. Versions are
// normalized to semver form first (a missing "v" prefix is tolerated).
func Compare(current, target string, op Op) (bool, error) {
	switch op {
	case EQ, LT, LE, GT, GE:
	default:
		return false, fmt.Errorf("%w: %q (want one of eq, lt, le, gt, ge)", ErrInvalidOp, op)
	}
	c := semver.Compare(canonical(current), canonical(target))
	switch op {
	case EQ:
		return c == 0, nil
	case LT:
		return c < 0, nil
	case LE:
		return c <= 0, nil
	case GT:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

// AtLeast reports whether current >= target.
func AtLeast(current, target string) bool {
	ok, _ := Compare(current, target, GE)
	return ok
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "v0.0.0"
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
