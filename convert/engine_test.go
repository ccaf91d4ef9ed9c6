package convert

import (
	"reflect"
)

type itemTO struct {
	Name string
}

type item struct {
	Name string
}

// fakeEngine converts itemTO <-> item by copying the name.
type fakeEngine struct {
	calls int
	tags  []string
}

func (f *fakeEngine) Convert(src, dst any, tags ...string) (any, error) {
	return f.ConvertTo(src, reflect.TypeOf(dst), tags...)
}

func (f *fakeEngine) ConvertTo(src any, target reflect.Type, tags ...string) (any, error) {
	f.calls++
	f.tags = tags
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	switch s := src.(type) {
	case *itemTO:
		if target != reflect.TypeFor[item]() {
			return nil, errUnexpected
		}
		return &item{Name: s.Name}, nil
	case *item:
		if target != reflect.TypeFor[itemTO]() {
			return nil, errUnexpected
		}
		return &itemTO{Name: s.Name}, nil
	default:
		return nil, errUnexpected
	}
}

func (f *fakeEngine) IsTransferType(t reflect.Type) bool {
	return t == reflect.TypeFor[itemTO]()
}
