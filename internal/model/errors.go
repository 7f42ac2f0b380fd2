package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds shared across components.
// Callers classify failures with errors.Is rather than string matching,
// and the CLI layer maps each kind onto an exit code.
var (
	// ErrMissingCredential indicates no API key was found in the
	// credential file or the process environment. This aborts the whole
	// run: no image can be processed without authorization.
	ErrMissingCredential = errors.New("no API key found")

	// ErrFileNotFound indicates an explicitly named image path does
	// not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates a file extension outside the
	// supported set (jpg, jpeg, png, gif, bmp).
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrMalformedJSON indicates the model's text completion contained
	// no decodable JSON object.
	ErrMalformedJSON = errors.New("no valid JSON found in model response")
)

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a run.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully and,
	// for a batch run, every image was processed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitMissingCredential indicates no API key is configured.
	ExitMissingCredential ExitCode = 2

	// ExitFileNotFound indicates the image path given on the command
	// line does not exist.
	ExitFileNotFound ExitCode = 3

	// ExitUnsupportedFormat indicates the image path given on the
	// command line has an unsupported extension.
	ExitUnsupportedFormat ExitCode = 4

	// ExitPartialFailure indicates a batch run completed but at least
	// one image failed to extract.
	ExitPartialFailure ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
