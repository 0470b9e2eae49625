// Unified error handling for the cutter compensation host
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import "fmt"

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfigSection ErrorCode = "CONFIG_SECTION"
	ErrConfigOption  ErrorCode = "CONFIG_OPTION"
	ErrConfigType    ErrorCode = "CONFIG_TYPE"

	// G-code parsing errors
	ErrGCodeParse        ErrorCode = "GCODE_PARSE"
	ErrGCodeInvalidParam ErrorCode = "GCODE_INVALID_PARAM"

	// Compensation engine errors
	ErrCompBufferFull    ErrorCode = "COMP_BUFFER_FULL"
	ErrCompDegenerateArc ErrorCode = "COMP_DEGENERATE_ARC"
	ErrCompInvariant     ErrorCode = "COMP_INVARIANT"
)

// HostError is the unified error type for the host system
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section or context
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Option, e.Message)
	}
	if e.Section != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Section, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Config errors

// ConfigSectionError creates an error for missing config section
func ConfigSectionError(section string) *HostError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigOptionError creates an error for missing config option
func ConfigOptionError(section, option string) *HostError {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' not found in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}

// ConfigTypeError creates an error for config type conversion failure
func ConfigTypeError(section, option, value, targetType string) *HostError {
	return New(ErrConfigType, fmt.Sprintf("option '%s' in section '%s': failed to parse '%s' as %s", option, section, value, targetType)).
		SetSection(section).
		SetOption(option)
}

// G-code errors

// GCodeParseError creates an error for G-code parsing failure
func GCodeParseError(line string, reason string) *HostError {
	return New(ErrGCodeParse, fmt.Sprintf("failed to parse G-code: %s (reason: %s)", line, reason))
}

// GCodeInvalidParameterError creates an error for invalid G-code parameter
func GCodeInvalidParameterError(command, param, value string) *HostError {
	return New(ErrGCodeInvalidParam, fmt.Sprintf("G-code command '%s': invalid parameter '%s=%s'", command, param, value))
}

// Compensation engine errors

// BufferFullError creates an error for a rejected buffer insertion.
// The caller must stall ingestion until an emission frees a slot.
func BufferFullError() *HostError {
	return New(ErrCompBufferFull, "lookahead buffer full, apply backpressure")
}

// DegenerateArcError creates an error for an arc whose computed radius
// is below epsilon. This is a program error in the incoming G-code; the
// move is rejected and no motion is emitted for it.
func DegenerateArcError(raw string) *HostError {
	return New(ErrCompDegenerateArc, fmt.Sprintf("arc with degenerate radius rejected: %s", raw))
}

// InvariantError creates an error for an internal engine invariant
// violation. Silent corruption of tool-path geometry is a safety
// hazard, so these always fail loudly.
func InvariantError(message string) *HostError {
	return New(ErrCompInvariant, message)
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if hostErr, ok := err.(*HostError); ok {
		return hostErr.Code == code
	}
	return false
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigType)
}

// IsGCode checks if error is a G-code error
func IsGCode(err error) bool {
	return Is(err, ErrGCodeParse) ||
		Is(err, ErrGCodeInvalidParam)
}
