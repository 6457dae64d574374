package cmderr

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes of egdqm binaries.
const (
	// CodeFailure is a generic failure.
	CodeFailure = 1
	// CodePartial means the command finished but some of its items failed.
	CodePartial = 2
)

// ExitErr specific error for ExitOnErr function that passes the exit code and error caused.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Partial wraps err into ExitErr with CodePartial.
func Partial(err error) error {
	return ExitErr{Code: CodePartial, Cause: err}
}

// Code returns the process exit code for err: 0 for nil, ExitErr.Code if
// err is ExitErr, CodeFailure otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var e ExitErr
	if errors.As(err, &e) {
		return e.Code
	}

	return CodeFailure
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with passed exit code or by default 1.
// Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(Code(err))
	}
}
