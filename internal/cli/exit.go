package cli

import (
	stderrors "errors"
	"fmt"
)

// ExitError signals a specific process exit code without calling os.Exit
// inside a command. A nil Err means the failure was already reported (for
// example by a child process) and nothing more should be printed.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code: the code carried
// by an ExitError, otherwise 1.
func ExitCode(err error) int {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
