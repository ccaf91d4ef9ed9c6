package convert

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"tomapper/internal/common"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrCasterMismatch       = errors.New("caster types do not mirror each other")
)

// Caster describes a plain conversion function.
type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
//
// A false bool result yields the zero value of dst.
func ParseCaster(fn any) (Caster, error) {
	if fn == nil {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Caster{}, ErrCasterIsNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.NumOut() == 0 {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Pointer && src.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	fnPC := runtime.FuncForPC(fnVal.Pointer())
	alias, name := common.Pair(strings.SplitN(common.Last(path.Split(fnPC.Name())), ".", 2))

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: alias,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}
		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true
		return caster, nil
	}
}

// Call applies the caster to v.
func (c Caster) Call(v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		v = reflect.Zero(c.Src)
	}
	out := c.fn.Call([]reflect.Value{v})

	if c.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return reflect.Value{}, errVal.Interface().(error)
		}
	}
	if c.HasBool && !out[1].Bool() {
		return reflect.Zero(c.Dst), nil
	}
	return out[0], nil
}

type funcConverter struct {
	name       string
	toDomain   *Caster
	toTransfer *Caster
	toType     reflect.Type
	domainType reflect.Type
}

// Func builds a named type converter from plain functions. toDomain takes the
// transfer value and returns the domain value, toTransfer does the reverse.
// One of them may be nil, in which case that direction fails at run time.
func Func(name string, toDomain, toTransfer any) (TypeConverter, error) {
	fc := &funcConverter{name: name}

	if toDomain != nil {
		c, err := ParseCaster(toDomain)
		if err != nil {
			return nil, fmt.Errorf("%s to domain: %w", name, err)
		}
		fc.toDomain = &c
		fc.toType, fc.domainType = c.Src, c.Dst
	}

	if toTransfer != nil {
		c, err := ParseCaster(toTransfer)
		if err != nil {
			return nil, fmt.Errorf("%s to transfer: %w", name, err)
		}
		if fc.toDomain != nil && (c.Src != fc.domainType || c.Dst != fc.toType) {
			return nil, fmt.Errorf("%s: %w", name, ErrCasterMismatch)
		}
		fc.toTransfer = &c
		fc.toType, fc.domainType = c.Dst, c.Src
	}

	if fc.toDomain == nil && fc.toTransfer == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrCasterIsNotAFunction)
	}
	return fc, nil
}

// MustFunc is like Func but panics on error.
func MustFunc(name string, toDomain, toTransfer any) TypeConverter {
	tc, err := Func(name, toDomain, toTransfer)
	if err != nil {
		panic(err)
	}
	return tc
}

func (f *funcConverter) Name() string { return f.name }

func (f *funcConverter) CanConvert(toType, domainType reflect.Type) bool {
	return toType == f.toType && domainType == f.domainType
}

func (f *funcConverter) ToDomain(in Input) (reflect.Value, error) {
	if f.toDomain == nil {
		return reflect.Value{}, fmt.Errorf("converter %s has no to-domain function", f.name)
	}
	return f.toDomain.Call(in.Value)
}

func (f *funcConverter) ToTransfer(in Input) (reflect.Value, error) {
	if f.toTransfer == nil {
		return reflect.Value{}, fmt.Errorf("converter %s has no to-transfer function", f.name)
	}
	return f.toTransfer.Call(in.Value)
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	terr := reflect.TypeOf((*error)(nil)).Elem()

	return t.Implements(terr)
}
