// Package convert defines the extension points of the mapping engine: type
// converters, conversion hooks, interceptors, object finders and replacers.
// It also ships the built-in converters and the converter registry.
package convert

import (
	"errors"
	"reflect"

	"tomapper/internal/common"
)

// Direction tells which way a conversion runs.
type Direction int

const (
	DirectionToDomain Direction = iota
	DirectionToTransfer
)

func (d Direction) String() string {
	switch d {
	case DirectionToDomain:
		return "to_domain"
	case DirectionToTransfer:
		return "to_transfer"
	default:
		return common.UnknownStr
	}
}

// Engine is the view of the mapping engine given to converters that recurse
// into nested objects.
type Engine interface {
	// Convert copies src into dst and returns dst.
	Convert(src, dst any, tags ...string) (any, error)
	// ConvertTo finds or creates a target of type target and converts src into it.
	ConvertTo(src any, target reflect.Type, tags ...string) (any, error)
	// IsTransferType reports whether t (or *t) has a registered mapping.
	IsTransferType(t reflect.Type) bool
}

// EngineAware converters receive the engine when the registry is built.
type EngineAware interface {
	SetEngine(e Engine)
}

// Named extension points can be referenced by name from mappings.
type Named interface {
	Name() string
}

// Input describes one field value conversion.
type Input struct {
	// Value is the value read from the source field.
	Value reflect.Value
	// Current is the present value of the destination field. It is invalid
	// when the destination could not be read.
	Current reflect.Value
	// Type is the destination field type. The result must be assignable to it.
	Type reflect.Type
	// Tags are the tags of the enclosing conversion call.
	Tags []string
	// Field describes the field pair for messages, e.g. "PersonTO.Name -> Person.Name".
	Field string
}

// TypeConverter converts a field value from its transfer representation to
// its domain representation and back.
type TypeConverter interface {
	// CanConvert reports whether a transfer field of type toType can be mapped
	// onto a domain field of type domainType.
	CanConvert(toType, domainType reflect.Type) bool
	ToDomain(in Input) (reflect.Value, error)
	ToTransfer(in Input) (reflect.Value, error)
}

type passThroughError struct {
	err error
}

func (p *passThroughError) Error() string { return p.err.Error() }
func (p *passThroughError) Unwrap() error { return p.err }

// PassThrough marks err so the engine returns it to the caller without
// wrapping it. Converters use it for errors coming from nested conversions.
func PassThrough(err error) error {
	if err == nil {
		return nil
	}
	var p *passThroughError
	if errors.As(err, &p) {
		return err
	}
	return &passThroughError{err: err}
}

// PassedThrough returns the error marked by PassThrough, if any.
func PassedThrough(err error) (error, bool) {
	var p *passThroughError
	if errors.As(err, &p) {
		return p.err, true
	}
	return nil, false
}

// NameOf returns the registration name of an extension: its Name method when
// it is Named, else its type name.
func NameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
