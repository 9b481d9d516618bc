// SPDX-License-Identifier: MIT
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // success
	ExitFailure      = 1 // the evaluation itself failed (numerical, integrator)
	ExitCommandError = 2 // bad flags, unreadable problem file, database errors
)

// ExitError carries an exit code through cobra's error return.
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

func (e *ExitError) Unwrap() error { return e.Err }

// WrapExitError wraps err with an exit code and a message.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err; errors without one map to
// ExitFailure and nil to ExitSuccess.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// response is the JSON envelope of every command in --format json.
type response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(response{Status: "ok", Data: data})
}

// WriteError reports err on w in the given format.
func WriteError(w io.Writer, format string, err error) {
	if format == "json" {
		_ = json.NewEncoder(w).Encode(response{Status: "error", Error: err.Error()})
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
