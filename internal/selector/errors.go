package selector

import (
	"errors"
	"fmt"
)

// ErrKernelUnavailable marks selection failures where the caller
// explicitly asked for a kernel whose capability probe failed.
var ErrKernelUnavailable = errors.New("kernel_unavailable")

// ErrInvalidArgument marks configuration errors, like requesting the
// Intel CPU extension with a non-4-bit quantization.
var ErrInvalidArgument = errors.New("invalid_argument")

type kernelUnavailableError struct {
	msg string
}

func (e kernelUnavailableError) Error() string {
	return e.msg
}

func (e kernelUnavailableError) Unwrap() error {
	return ErrKernelUnavailable
}

func newKernelUnavailable(format string, args ...any) error {
	return kernelUnavailableError{msg: fmt.Sprintf(format, args...)}
}

type invalidArgumentError struct {
	msg string
}

func (e invalidArgumentError) Error() string {
	return e.msg
}

func (e invalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func newInvalidArgument(format string, args ...any) error {
	return invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}
