package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures so callers can tell diagnostic gaps from fatal faults
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfig
	KindInputRead
	KindOutputWrite
	KindMissingColumn
	KindEmptyColumn
	KindDivergentGroup
	KindStoreWrite
)

// Sentinel errors, one per kind, usable with errors.Is
var (
	ErrConfig         = errors.New("invalid configuration")
	ErrInputRead      = errors.New("failed to read input")
	ErrOutputWrite    = errors.New("failed to write output")
	ErrMissingColumn  = errors.New("missing column")
	ErrEmptyColumn    = errors.New("column has no values")
	ErrDivergentGroup = errors.New("group has divergent scalar fields")
	ErrStoreWrite     = errors.New("document store write failed")
)

// String returns a string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "Config"
	case KindInputRead:
		return "InputRead"
	case KindOutputWrite:
		return "OutputWrite"
	case KindMissingColumn:
		return "MissingColumn"
	case KindEmptyColumn:
		return "EmptyColumn"
	case KindDivergentGroup:
		return "DivergentGroup"
	case KindStoreWrite:
		return "StoreWrite"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// sentinel maps a kind to its errors.Is target
func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindInputRead:
		return ErrInputRead
	case KindOutputWrite:
		return ErrOutputWrite
	case KindMissingColumn:
		return ErrMissingColumn
	case KindEmptyColumn:
		return ErrEmptyColumn
	case KindDivergentGroup:
		return ErrDivergentGroup
	case KindStoreWrite:
		return ErrStoreWrite
	default:
		return nil
	}
}

// PipelineError is a typed failure raised by one of the batch jobs
type PipelineError struct {
	Kind   ErrorKind
	Stage  string
	Column string
	Key    string
	Err    error
}

// NewPipelineError creates an error of the given kind wrapping err (which may be nil)
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

// MissingColumn is a shorthand for the most common lookup failure
func MissingColumn(stage, column string) *PipelineError {
	return NewPipelineError(KindMissingColumn, nil).WithStage(stage).WithColumn(column)
}

// WithStage adds stage information to the error
func (e *PipelineError) WithStage(stage string) *PipelineError {
	e.Stage = stage
	return e
}

// WithColumn adds column information to the error
func (e *PipelineError) WithColumn(column string) *PipelineError {
	e.Column = column
	return e
}

// WithKey adds document key information to the error
func (e *PipelineError) WithKey(key string) *PipelineError {
	e.Key = key
	return e
}

// Error returns a formatted error message
func (e *PipelineError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s]", e.Kind))

	if e.Stage != "" {
		sb.WriteString(fmt.Sprintf(" stage=%s", e.Stage))
	}
	if e.Column != "" {
		sb.WriteString(fmt.Sprintf(" column=%s", e.Column))
	}
	if e.Key != "" {
		sb.WriteString(fmt.Sprintf(" key=%s", e.Key))
	}

	if s := e.Kind.sentinel(); s != nil {
		sb.WriteString(": " + s.Error())
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the wrapped cause
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches the kind's sentinel error
func (e *PipelineError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// Recoverable reports whether a diagnostic job may skip past the error
func (e *PipelineError) Recoverable() bool {
	return e.Kind == KindMissingColumn || e.Kind == KindEmptyColumn
}

// KindOf returns the kind of the first PipelineError in err's chain
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
