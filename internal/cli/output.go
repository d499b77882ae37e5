package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/rksledger/internal/model"
)

// Exit codes.
const (
	ExitFailure      = 1 // a ledger rule refused the operation, or a scenario failed
	ExitCommandError = 2 // bad flags, unreadable files, database errors
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the envelope of every --format json result.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is a refused operation: the ledger error code, its message
// and the ids of the rows involved.
type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Formatter writes command results to stdout.
type Formatter struct {
	JSON bool
	W    io.Writer
}

// Report writes text, or data in an ok envelope.
func (f *Formatter) Report(text string, data any) error {
	if !f.JSON {
		_, err := fmt.Fprintln(f.W, text)
		return err
	}
	return writeJSON(f.W, Response{Status: "ok", Data: data})
}

// Refused writes le in an error envelope. In text mode nothing is written;
// the message reaches the user through the returned exit error.
func (f *Formatter) Refused(le *model.LedgerError) error {
	if !f.JSON {
		return nil
	}
	return writeJSON(f.W, Response{
		Status: "error",
		Error:  &ResponseError{Code: string(le.Code), Message: le.Message, Details: le.Details},
	})
}
