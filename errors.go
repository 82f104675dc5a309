package gotlres

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a resolution failure.
type ErrorKind string

const (
	// KindLocaleNotSupported: the requested locale is outside the supported set.
	KindLocaleNotSupported ErrorKind = "LOCALE_NOT_SUPPORTED"
	// KindMessageNotFound: the key is absent from a loaded bundle.
	KindMessageNotFound ErrorKind = "MESSAGE_NOT_FOUND"
	// KindModuleLoadFailed: the source failed or the module does not exist.
	KindModuleLoadFailed ErrorKind = "MODULE_LOAD_FAILED"
	// KindTranslationInvalid: the value at the key is not a string.
	KindTranslationInvalid ErrorKind = "TRANSLATION_INVALID"
	// KindFallbackUsed: a default-locale bundle replaced a failed load.
	KindFallbackUsed ErrorKind = "FALLBACK_USED"
)

// TranslationError is a classified resolution failure. It is emitted to an
// EventHandler rather than returned from Load or Resolve.
type TranslationError struct {
	Kind    ErrorKind
	Locale  string
	Module  string
	Key     string
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(" [")
	b.WriteString(e.Locale)
	if e.Module != "" {
		b.WriteString("/" + e.Module)
	}
	b.WriteString("]")
	if e.Key != "" {
		b.WriteString(" " + e.Key)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// KindOf returns the ErrorKind carried by err, or "" if err is not a
// TranslationError.
func KindOf(err error) ErrorKind {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// SourceError indicates a bundle source failure (I/O, API error, missing file).
type SourceError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the fetch can be retried
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("source error: %s", e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// CountMismatchError indicates a machine translation returned a different
// number of strings than were sent.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
