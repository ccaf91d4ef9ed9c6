package convert

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"tomapper/primitive"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	uuidType            = reflect.TypeOf(uuid.UUID{})
)

// Identity copies values between fields of identical type. The registry
// always tries it last.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) CanConvert(toType, domainType reflect.Type) bool {
	return toType == domainType
}

func (Identity) ToDomain(in Input) (reflect.Value, error)   { return passValue(in) }
func (Identity) ToTransfer(in Input) (reflect.Value, error) { return passValue(in) }

func passValue(in Input) (reflect.Value, error) {
	if !in.Value.IsValid() {
		return reflect.Zero(in.Type), nil
	}
	return in.Value, nil
}

// Pointer maps *T onto T and back. A nil pointer becomes the zero value; the
// zero value becomes nil only when NilZero is set.
type Pointer struct {
	NilZero bool
}

func (Pointer) Name() string { return "pointer" }

func (Pointer) CanConvert(toType, domainType reflect.Type) bool {
	switch {
	case toType.Kind() == reflect.Pointer && toType.Elem() == domainType:
		return true
	case domainType.Kind() == reflect.Pointer && domainType.Elem() == toType:
		return true
	default:
		return false
	}
}

func (p Pointer) ToDomain(in Input) (reflect.Value, error)   { return p.convert(in) }
func (p Pointer) ToTransfer(in Input) (reflect.Value, error) { return p.convert(in) }

func (p Pointer) convert(in Input) (reflect.Value, error) {
	v := in.Value
	if !v.IsValid() {
		return reflect.Zero(in.Type), nil
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(in.Type), nil
		}
		return v.Elem(), nil
	}

	if p.NilZero && v.IsZero() {
		return reflect.Zero(in.Type), nil
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr, nil
}

// Primitive converts between scalar types using the enabled categories.
//
// A type pair is accepted only when the categories allow both directions,
// read-only fields included. With CategorySafeNumber alone, two different
// number kinds never match: an int32 transfer field over an int64 domain
// field also needs CategoryUnsafeNumber, or a converter named on the field.
type Primitive struct {
	Categories primitive.CategoryEnum
}

func (Primitive) Name() string { return "primitive" }

func (p Primitive) CanConvert(toType, domainType reflect.Type) bool {
	return toType != domainType &&
		primitive.CanConvert(toType, domainType, p.Categories) &&
		primitive.CanConvert(domainType, toType, p.Categories)
}

func (p Primitive) ToDomain(in Input) (reflect.Value, error) {
	return primitive.Convert(in.Value, in.Type, p.Categories)
}

func (p Primitive) ToTransfer(in Input) (reflect.Value, error) {
	return primitive.Convert(in.Value, in.Type, p.Categories)
}

// Text maps string transfer fields onto domain types implementing
// encoding.TextMarshaler and encoding.TextUnmarshaler. An empty string is
// the zero domain value.
type Text struct{}

func (Text) Name() string { return "text" }

func (Text) CanConvert(toType, domainType reflect.Type) bool {
	return toType.Kind() == reflect.String &&
		domainType.Kind() != reflect.String &&
		(domainType.Implements(textMarshalerType) || reflect.PointerTo(domainType).Implements(textMarshalerType)) &&
		reflect.PointerTo(domainType).Implements(textUnmarshalerType)
}

func (Text) ToDomain(in Input) (reflect.Value, error) {
	if !in.Value.IsValid() || in.Value.String() == "" {
		return reflect.Zero(in.Type), nil
	}
	ptr := reflect.New(in.Type)
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(in.Value.String())); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (Text) ToTransfer(in Input) (reflect.Value, error) {
	if !in.Value.IsValid() {
		return reflect.Zero(in.Type), nil
	}
	b, err := marshalText(in.Value)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(string(b)).Convert(in.Type), nil
}

func marshalText(v reflect.Value) ([]byte, error) {
	if m, ok := v.Interface().(encoding.TextMarshaler); ok {
		return m.MarshalText()
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	m, ok := ptr.Interface().(encoding.TextMarshaler)
	if !ok {
		return nil, fmt.Errorf("%s does not implement encoding.TextMarshaler", v.Type())
	}
	return m.MarshalText()
}

// UUID maps uuid.UUID onto strings and back, on either side. Empty strings
// map to uuid.Nil and uuid.Nil maps to an empty string.
type UUID struct{}

func (UUID) Name() string { return "uuid" }

func (UUID) CanConvert(toType, domainType reflect.Type) bool {
	return (toType.Kind() == reflect.String && domainType == uuidType) ||
		(toType == uuidType && domainType.Kind() == reflect.String)
}

func (u UUID) ToDomain(in Input) (reflect.Value, error)   { return u.convert(in) }
func (u UUID) ToTransfer(in Input) (reflect.Value, error) { return u.convert(in) }

func (UUID) convert(in Input) (reflect.Value, error) {
	if !in.Value.IsValid() {
		return reflect.Zero(in.Type), nil
	}

	if in.Type == uuidType {
		s := in.Value.String()
		if s == "" {
			return reflect.ValueOf(uuid.Nil), nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	}

	id := in.Value.Interface().(uuid.UUID)
	if id == uuid.Nil {
		return reflect.Zero(in.Type), nil
	}
	return reflect.ValueOf(id.String()).Convert(in.Type), nil
}
