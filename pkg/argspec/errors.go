package argspec

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a specific parse failure condition
type ErrorCode string

const (
	// Command-line errors
	ErrCodeUnknownOption   ErrorCode = "UNKNOWN_OPTION"
	ErrCodeMissingValue    ErrorCode = "MISSING_VALUE"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"
	ErrCodeBadArity        ErrorCode = "BAD_ARITY"

	// Value errors
	ErrCodeBadValue        ErrorCode = "BAD_VALUE"
	ErrCodeBadChoice       ErrorCode = "BAD_CHOICE"
	ErrCodePatternMismatch ErrorCode = "PATTERN_MISMATCH"

	// Layered-defaults errors
	ErrCodeBadDefaults ErrorCode = "BAD_DEFAULTS"
	ErrCodeBadEnv      ErrorCode = "BAD_ENV"
)

// ErrHelp is returned by Parse when -h or --help was requested and the help
// text has already been written to the parser's output.
var ErrHelp = errors.New("help requested")

// ParseError describes a failure to parse an argument vector against a spec.
// It carries a code so callers can react to specific conditions without
// matching on message text.
type ParseError struct {
	Cause   error
	Code    ErrorCode
	Option  string
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Option != "" {
		msg = fmt.Sprintf("argument %s: %s", e.Option, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is a ParseError with the given code, unwrapping
// as needed.
func IsCode(err error, code ErrorCode) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func parseErr(code ErrorCode, option, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

func wrapParseErr(err error, code ErrorCode, option, message string) *ParseError {
	return &ParseError{
		Cause:   err,
		Code:    code,
		Option:  option,
		Message: message,
	}
}

// SpecError describes a defect in an argument spec struct itself: an
// unsupported field type, a malformed tag, or a colliding option name. Spec
// errors are reported when the parser is constructed, never during parsing.
type SpecError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *SpecError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid argument spec: %s", e.Message)
	}
	return fmt.Sprintf("invalid argument spec: field %s: %s", e.Field, e.Message)
}

func specErr(field, format string, args ...any) *SpecError {
	return &SpecError{Field: field, Message: fmt.Sprintf(format, args...)}
}
