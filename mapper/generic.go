package mapper

import (
	"fmt"
	"reflect"

	"tomapper/maperr"
)

// To converts src into a T. T is a struct type or a pointer to one, or an
// interface transfer type with delegates.
func To[T any](e *Engine, src any, tags ...string) (T, error) {
	var zero T

	res, err := e.ConvertTo(src, reflect.TypeFor[T](), tags...)
	if err != nil || res == nil {
		return zero, err
	}

	return as[T](res)
}

// ListTo converts every element of src into a T.
func ListTo[T any](e *Engine, src any, tags ...string) ([]T, error) {
	items, err := e.ConvertList(src, reflect.TypeFor[T](), tags...)
	if err != nil || items == nil {
		return nil, err
	}

	out := make([]T, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}

		if out[i], err = as[T](it); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// as adapts the pointer returned by ConvertTo to T.
func as[T any](res any) (T, error) {
	if v, ok := res.(T); ok {
		return v, nil
	}

	rv := reflect.ValueOf(res)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		if v, ok := rv.Elem().Interface().(T); ok {
			return v, nil
		}
	}

	var zero T

	return zero, maperr.New(maperr.PhaseConvert, maperr.KindUnsupportedSource).
		Type(reflect.TypeFor[T]().String()).
		Detail(fmt.Sprintf("converted %T is not a %s", res, reflect.TypeFor[T]())).
		Build()
}
