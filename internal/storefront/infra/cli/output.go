package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran but did not succeed (aborted checkout, rejected action)
	ExitCommandError = 2 // bad input, configuration or I/O
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
	// Reported is set when the command already rendered the outcome.
	Reported bool
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

// GetExitCode returns ExitFailure for errors that are not an *ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Reported reports whether err was already rendered to the command output.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter renders command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope of every command result.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text for human readable output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Error writes a failure. kind is an entity.ErrorKind when one applies.
func (f *OutputFormatter) Error(kind, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Kind: kind, Message: message},
		})
	}
	switch {
	case kind != "" && message == "":
		_, err := fmt.Fprintf(f.Writer, "Error [%s]\n", kind)
		return err
	case kind != "":
		_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", kind, message)
		return err
	}
	_, err := fmt.Fprintf(f.Writer, "Error: %s\n", message)
	return err
}
