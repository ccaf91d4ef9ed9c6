package convert

import (
	"reflect"
)

// ObjectFinder locates the object a source should be converted into. It
// returns nil with a nil error when it has nothing to offer.
type ObjectFinder interface {
	Find(src any, target reflect.Type, tags []string) (any, error)
}

// FinderFunc adapts a function to ObjectFinder.
type FinderFunc func(src any, target reflect.Type, tags []string) (any, error)

func (f FinderFunc) Find(src any, target reflect.Type, tags []string) (any, error) {
	return f(src, target, tags)
}

// NewInstanceFinder creates a zero value of the target type. The engine
// always tries it last.
type NewInstanceFinder struct{}

func (NewInstanceFinder) Find(_ any, target reflect.Type, _ []string) (any, error) {
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		return nil, nil
	}
	return reflect.New(target).Interface(), nil
}

// ObjectReplacer may substitute an object before the engine inspects it.
type ObjectReplacer interface {
	ReplaceObject(obj any) any
}

// ClassReplacer may substitute a type before the engine inspects it.
type ClassReplacer interface {
	ReplaceType(t reflect.Type) reflect.Type
}

// Unwrapper is implemented by wrappers around a real object.
type Unwrapper interface {
	UnwrapObject() any
}

// UnwrapReplacer unwraps Unwrapper values until a plain object remains.
type UnwrapReplacer struct{}

func (UnwrapReplacer) ReplaceObject(obj any) any {
	for {
		u, ok := obj.(Unwrapper)
		if !ok {
			return obj
		}
		next := u.UnwrapObject()
		if next == nil {
			return obj
		}
		obj = next
	}
}

// ConcreteTypes maps abstract types, typically interfaces, to the concrete
// type to instantiate.
type ConcreteTypes map[reflect.Type]reflect.Type

func (c ConcreteTypes) ReplaceType(t reflect.Type) reflect.Type {
	if r, ok := c[t]; ok {
		return r
	}
	return t
}
