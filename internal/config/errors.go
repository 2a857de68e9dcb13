package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/treedrop/internal/config/loader"
)

// ErrValidationFailed indicates a configuration that failed validation.
var ErrValidationFailed = errors.New("validation failed")

// ParseError is a config file or environment value that could not be decoded.
type ParseError = loader.ParseError

// ValidationError describes one invalid setting.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "drag.insertMargin".
	Path string
	// Message describes the problem.
	Message string
	// Value is the rejected value.
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrors collects every invalid setting found by Validate.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (es ValidationErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}
