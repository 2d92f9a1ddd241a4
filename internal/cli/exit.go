package cli

import (
	"errors"
	"fmt"

	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/records"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitEmptyInput = 3
	ExitRender     = 4
)

// ExitError carries a specific process exit code out of a command.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the command already told the user what went wrong.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNoFileSelected):
		return ExitUsage
	case errors.Is(err, records.ErrEmptyInput):
		return ExitEmptyInput
	case errors.Is(err, pipeline.ErrRender), errors.Is(err, pipeline.ErrAllFailed):
		return ExitRender
	default:
		return ExitFailure
	}
}

// reported wraps err so that main does not print it a second time.
func reported(err error) error {
	return &ExitError{Code: exitCodeFor(err), Err: err, Reported: true}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}
