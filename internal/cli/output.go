package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/experiment"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // malformed input, failed scenarios, diverging replays
	ExitCommandError = 2 // bad flags, unreadable files, missing databases
)

// ExitError is a command failure carrying the exit code main should use.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, and
// ExitFailure for any other error.
func GetExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

// ErrorCode classifies a failure in a JSON response.
type ErrorCode string

const (
	CodeFormat     ErrorCode = "E_FORMAT"
	CodeInvariant  ErrorCode = "E_INVARIANT"
	CodeLookup     ErrorCode = "E_LOOKUP"
	CodeConfig     ErrorCode = "E_CONFIG"
	CodeReplay     ErrorCode = "E_REPLAY"
	CodeTestFailed ErrorCode = "E_TEST_FAILED"
	CodeCommand    ErrorCode = "E_COMMAND"
)

// CodeOf maps err onto the chemistry and experiment error taxonomies.
// Unclassified errors are command errors.
func CodeOf(err error) ErrorCode {
	switch {
	case chem.IsFormatError(err):
		return CodeFormat
	case chem.IsInvariantViolation(err):
		return CodeInvariant
	case chem.IsLookupError(err):
		return CodeLookup
	case experiment.IsConfigError(err):
		return CodeConfig
	default:
		return CodeCommand
	}
}

// Response is the envelope every command writes in JSON mode.
type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failure inside a Response.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as a Response.
type OutputFormatter struct {
	Format string
	Out    io.Writer
	Err    io.Writer
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

// Success writes data. Text mode prints it with fmt.
func (f *OutputFormatter) Success(data any) error {
	return f.Report(data, nil)
}

// Report writes data together with an optional failure. In JSON mode a
// non-nil failure turns the status into "error" while keeping data, so a
// partially failed batch still reports every item.
func (f *OutputFormatter) Report(data any, failure *ErrorBody) error {
	if !f.isJSON() {
		if data != nil {
			fmt.Fprintln(f.Out, data)
		}
		if failure != nil {
			f.textError(failure)
		}
		return nil
	}
	resp := Response{Status: "ok", Data: data}
	if failure != nil {
		resp.Status, resp.Error = "error", failure
	}
	return json.NewEncoder(f.Out).Encode(resp)
}

// Error writes a failure on its own.
func (f *OutputFormatter) Error(code ErrorCode, message string, details any) error {
	body := &ErrorBody{Code: code, Message: message, Details: details}
	if !f.isJSON() {
		f.textError(body)
		return nil
	}
	return json.NewEncoder(f.Out).Encode(Response{Status: "error", Error: body})
}

func (f *OutputFormatter) textError(b *ErrorBody) {
	w := f.Err
	if w == nil {
		w = f.Out
	}
	fmt.Fprintf(w, "error [%s]: %s\n", b.Code, b.Message)
}
