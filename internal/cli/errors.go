// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for the bazi CLI.
//
// STANDARDIZED PATTERN:
//   - Commands return errors; they never print and return nil
//   - Execute displays the error once and maps it to an exit code
//   - Structured error types carry the category

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/bazi-report-tui/internal/client"
	"github.com/jeranaias/bazi-report-tui/internal/controller"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or input
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates network or service error
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "export", "config")
	Action  string // Action being performed (e.g., "save", "init")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents a bad flag or argument.
type UsageError struct {
	Field   string // Flag or argument that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError wraps a failure to load or write the config file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// ErrUnsupportedFormat creates an error for unsupported output formats.
func ErrUnsupportedFormat(format string, supported []string) error {
	return &UsageError{
		Field:   "format",
		Value:   format,
		Reason:  "unsupported format",
		Example: "supported formats: " + strings.Join(supported, ", "),
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error:
//   - ExitUsageError (2): UsageError, request validation, missing TTY, local client input checks
//   - ExitConfigError (3): ConfigError
//   - ExitTimeoutError (8): deadlines and the analysis watchdog
//   - ExitNetworkError (5): transport, service and malformed-response errors
//   - ExitGeneralError (1): all other errors
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var validationErr *request.ValidationError
	var ttyErr *TTYRequiredError
	if errors.As(err, &usageErr) || errors.As(err, &validationErr) || errors.As(err, &ttyErr) || client.IsInvalidInput(err) {
		return ExitUsageError
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	if client.IsTimeout(err) || errors.Is(err, controller.ErrExpired) {
		return ExitTimeoutError
	}

	if client.IsNetwork(err) || client.IsService(err) || client.IsMalformed(err) {
		return ExitNetworkError
	}

	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w once, as JSON when jsonMode is set.
// Errors with a user-facing message show that message; the full chain
// follows in verbose mode.
func DisplayError(w io.Writer, err error, jsonMode, verbose bool) {
	if err == nil {
		return
	}

	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}

	msg := controller.UserMessage(err)
	var validationErr *request.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		msg += " (" + strings.Join(flagNames(validationErr.Fields), ", ") + ")"
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[错误]"), msg)
	if verbose && msg != err.Error() {
		fmt.Fprintf(w, "%s\n", DimStyle.Render(err.Error()))
	}
}

// DisplayErrorJSON outputs an error as JSON.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"message":   controller.UserMessage(err),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var cmdErr *CommandError
	var usageErr *UsageError
	var validationErr *request.ValidationError
	var clientErr *client.ClientError
	switch {
	case errors.As(err, &usageErr):
		output["error_type"] = "usage_error"
		output["field"] = usageErr.Field
		output["value"] = usageErr.Value
		if usageErr.Example != "" {
			output["example"] = usageErr.Example
		}
	case errors.As(err, &validationErr):
		output["error_type"] = "validation_error"
		output["fields"] = flagNames(validationErr.Fields)
	case errors.As(err, &clientErr):
		output["error_type"] = "client_error"
		output["category"] = clientErr.Type.String()
		if clientErr.Status != 0 {
			output["status_code"] = clientErr.Status
		}
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}
