package convert

import (
	"fmt"
	"reflect"
)

// Object converts fields holding transfer objects by running the engine on
// the nested value. The target instance comes from the engine's finders.
type Object struct {
	engine Engine
}

func (o *Object) Name() string { return "object" }

func (o *Object) SetEngine(e Engine) { o.engine = e }

func (o *Object) CanConvert(toType, domainType reflect.Type) bool {
	if o.engine == nil {
		return false
	}
	_, toBase := ptrDepthAndBase(toType)
	_, domainBase := ptrDepthAndBase(domainType)
	if !o.engine.IsTransferType(toBase) {
		return false
	}
	return domainBase.Kind() == reflect.Struct || domainBase.Kind() == reflect.Interface
}

func (o *Object) ToDomain(in Input) (reflect.Value, error)   { return o.convert(in) }
func (o *Object) ToTransfer(in Input) (reflect.Value, error) { return o.convert(in) }

func (o *Object) convert(in Input) (reflect.Value, error) {
	return convertNested(o.engine, in.Value, in.Type, in.Tags)
}

// convertNested converts one nested object into a value assignable to target.
// Nil sources give the zero value of target.
func convertNested(e Engine, v reflect.Value, target reflect.Type, tags []string) (reflect.Value, error) {
	src, ok := objectOf(v)
	if !ok {
		return reflect.Zero(target), nil
	}

	res, err := e.ConvertTo(src, target, tags...)
	if err != nil {
		return reflect.Value{}, PassThrough(err)
	}
	return adapt(reflect.ValueOf(res), target)
}

// objectOf returns a pointer-shaped object for v, or false when v is nil.
func objectOf(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return ptr.Interface(), true
	default:
		return v.Interface(), true
	}
}

func adapt(res reflect.Value, target reflect.Type) (reflect.Value, error) {
	if !res.IsValid() {
		return reflect.Zero(target), nil
	}
	if res.Type().AssignableTo(target) {
		return res, nil
	}
	if res.Kind() == reflect.Pointer && !res.IsNil() && res.Elem().Type().AssignableTo(target) {
		return res.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("converted %s is not assignable to %s", res.Type(), target)
}
