// Package maperr defines the single structured error type returned by the
// mapping engine.
package maperr

import (
	"errors"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild   Phase = "build"   // mapping plan construction
	PhaseConvert Phase = "convert" // field level conversion
	PhaseAccess  Phase = "access"  // field get/set
	PhaseFind    Phase = "find"    // target lookup
	PhaseConfig  Phase = "config"  // registration and configuration
	PhaseLoad    Phase = "load"    // mapping file loading
)

// Kind categorizes the error
type Kind string

const (
	KindMissingDomain     Kind = "missing_domain"
	KindUnresolvedType    Kind = "unresolved_type"
	KindFieldNotFound     Kind = "field_not_found"
	KindAccessorNotFound  Kind = "accessor_not_found"
	KindAccessFailed      Kind = "access_failed"
	KindConversion        Kind = "conversion"
	KindNoTarget          Kind = "no_target"
	KindNilIntermediate   Kind = "nil_intermediate"
	KindHookNotFound      Kind = "hook_not_found"
	KindReadOnly          Kind = "read_only"
	KindInvalidConfig     Kind = "invalid_config"
	KindValidation        Kind = "validation"
	KindUnsupportedSource Kind = "unsupported_source"
)

// Sentinels usable with errors.Is. They match any phase.
var (
	ErrMissingDomain    = &Error{Kind: KindMissingDomain}
	ErrUnresolvedType   = &Error{Kind: KindUnresolvedType}
	ErrFieldNotFound    = &Error{Kind: KindFieldNotFound}
	ErrAccessorNotFound = &Error{Kind: KindAccessorNotFound}
	ErrAccessFailed     = &Error{Kind: KindAccessFailed}
	ErrConversion       = &Error{Kind: KindConversion}
	ErrNoTarget         = &Error{Kind: KindNoTarget}
	ErrNilIntermediate  = &Error{Kind: KindNilIntermediate}
	ErrHookNotFound     = &Error{Kind: KindHookNotFound}
	ErrReadOnly         = &Error{Kind: KindReadOnly}
	ErrInvalidConfig    = &Error{Kind: KindInvalidConfig}
	ErrValidation       = &Error{Kind: KindValidation}
)

// Error is the structured error type used throughout the engine
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" in ")
		b.WriteString(e.Type)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the name of the type involved
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Detail sets the human readable detail
func (b *Builder) Detail(detail string) *Builder {
	b.err.Detail = detail
	return b
}

// Cause sets the wrapped error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	e := b.err
	if len(b.err.Path) > 0 {
		e.Path = append([]string(nil), b.err.Path...)
	}
	return &e
}

// Is reports whether err is a mapping error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
