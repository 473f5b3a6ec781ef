// Package apperr defines the structured error kinds surfaced by the
// processing pipeline. Callers can branch on the kind with errors.As
// without depending on error message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error.
type Kind int

const (
	// KindConfig marks invalid configuration (bad weights, missing settings).
	// Reported before any I/O happens.
	KindConfig Kind = iota + 1
	// KindSchema marks a required column missing from the header row.
	KindSchema
	// KindData marks a malformed value in a single cell. Data errors are
	// recovered locally and reported as warnings, never as a fatal error.
	KindData
	// KindIO marks a filesystem failure (missing input, unwritable output).
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindSchema:
		return "schema"
	case KindData:
		return "data"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error with optional location detail.
type Error struct {
	Kind   Kind
	Path   string // file the error relates to, if any
	Column string // offending column name, for schema errors
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Msg
	if e.Column != "" {
		s += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Path != "" {
		s += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Configf builds a configuration error.
func Configf(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// Schemaf builds a schema error for a missing required column.
func Schemaf(column, format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Column: column, Msg: fmt.Sprintf(format, args...)}
}

// IO wraps a filesystem error with the path it relates to.
func IO(path string, err error, msg string) *Error {
	return &Error{Kind: KindIO, Path: path, Msg: msg, Err: err}
}

// Warning records a recovered per-cell data issue so data-quality problems
// stay visible to the caller without aborting the batch.
type Warning struct {
	Row    int    `yaml:"row"`
	Column string `yaml:"column"`
	Msg    string `yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d, column %q: %s", w.Row, w.Column, w.Msg)
}
