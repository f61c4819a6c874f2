package domain

import (
	"errors"
	"fmt"
)

// ParseErrorKind distinguishes the ways a raw row can fail conformance.
type ParseErrorKind string

const (
	ParseMalformedDate       ParseErrorKind = "MalformedDate"
	ParseMissingField        ParseErrorKind = "MissingField"
	ParseTypeCoercionFailure ParseErrorKind = "TypeCoercionFailure"
)

// ParseError is a recoverable per-row failure. The offending row is excluded
// from downstream aggregation but the run continues.
type ParseError struct {
	Kind   ParseErrorKind
	Field  string
	Source string
	Line   int
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: %s on field %s (value %q)", e.Source, e.Line, e.Kind, e.Field, e.Value)
}

// ConfigError is a fatal run-level failure: corrupt rate tables, unreadable
// dimension files. It aborts the run before any output is written.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps a fatal configuration problem.
func NewConfigError(msg string, err error) error {
	return &ConfigError{Msg: msg, Err: err}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
