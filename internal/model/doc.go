// Package model defines the domain types for the receipted CLI.
//
// This package contains pure data structures with no external dependencies:
// image references and their formats, the schema-free extraction document,
// the error taxonomy shared by all components, and the exit codes (ExitCode)
// plus a custom error type (CLIError) that carries exit codes for proper
// OS process exit handling.
package model
