package mapper

import (
	"fmt"
	"reflect"

	"tomapper/convert"
	"tomapper/internal/access"
	"tomapper/maperr"
)

// Convert copies src into dst and returns dst. One of the two must be a
// transfer object; the direction follows from which one. dst must be a
// non-nil pointer. A nil src leaves dst untouched.
func (e *Engine) Convert(src, dst any, tags ...string) (any, error) {
	s := e.state.Load()

	src = s.replaceObject(src)
	dst = s.replaceObject(dst)

	if isNil(src) {
		return dst, nil
	}

	if err := checkTarget(dst); err != nil {
		return nil, err
	}

	dir, err := e.direction(reflect.TypeOf(src), reflect.TypeOf(dst))
	if err != nil {
		return nil, err
	}

	return s.chain(src, dst, dir, tags)
}

// ConvertNew converts the transfer object src into a new or found instance
// of its domain type.
func (e *Engine) ConvertNew(src any, tags ...string) (any, error) {
	src = e.state.Load().replaceObject(src)
	if isNil(src) {
		return nil, nil
	}

	t := reflect.TypeOf(src)
	if !e.IsTransferType(t) {
		return nil, maperr.New(maperr.PhaseConvert, maperr.KindMissingDomain).
			Type(t.String()).
			Detail("source is not a transfer object").
			Build()
	}

	domain, err := e.DomainType(t)
	if err != nil {
		return nil, err
	}

	return e.ConvertTo(src, domain, tags...)
}

// ConvertTo converts src into an instance of target obtained from the object
// finders. target may be a transfer type, including an interface transfer
// type with delegates, or a domain type. The result is a pointer.
func (e *Engine) ConvertTo(src any, target reflect.Type, tags ...string) (any, error) {
	s := e.state.Load()

	src = s.replaceObject(src)
	if isNil(src) {
		return nil, nil
	}

	target, err := e.concreteTarget(s, reflect.TypeOf(src), target)
	if err != nil {
		return nil, err
	}

	dst, err := e.findTarget(s, src, target, tags)
	if err != nil {
		return nil, err
	}

	return e.Convert(src, dst, tags...)
}

// ConvertList converts every element of the slice or array src with
// ConvertTo. Nil elements stay nil.
func (e *Engine) ConvertList(src any, target reflect.Type, tags ...string) ([]any, error) {
	if isNil(src) {
		return nil, nil
	}

	v := reflect.ValueOf(src)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, maperr.New(maperr.PhaseConvert, maperr.KindUnsupportedSource).
			Type(v.Type().String()).
			Detail("source is not a list").
			Build()
	}

	out := make([]any, v.Len())
	for i := range v.Len() {
		res, err := e.ConvertTo(elementObject(v.Index(i)), target, tags...)
		if err != nil {
			return nil, err
		}

		out[i] = res
	}

	return out, nil
}

// FindTarget returns the object src should be converted into. Finders run
// from the last registered to the first; a plain new instance is the
// fallback.
func (e *Engine) FindTarget(src any, target reflect.Type, tags ...string) (any, error) {
	s := e.state.Load()
	return e.findTarget(s, s.replaceObject(src), target, tags)
}

func (e *Engine) findTarget(s *state, src any, target reflect.Type, tags []string) (any, error) {
	target = s.replaceType(access.Deref(target))

	for _, f := range s.finders.Backward() {
		found, err := f.Find(src, target, tags)
		if err != nil {
			return nil, err
		}

		if !isNil(found) {
			return asTarget(found, target)
		}
	}

	found, err := convert.NewInstanceFinder{}.Find(src, target, tags)
	if err != nil {
		return nil, err
	}

	if isNil(found) {
		return nil, maperr.New(maperr.PhaseFind, maperr.KindNoTarget).
			Type(target.String()).
			Detail("no object finder produced a target").
			Build()
	}

	return found, nil
}

// convertFields is the terminal link of the interceptor chain.
func (e *Engine) convertFields(src, dst any, dir convert.Direction, tags []string) (any, error) {
	transfer := reflect.TypeOf(dst)
	if dir == convert.DirectionToDomain {
		transfer = reflect.TypeOf(src)
	}

	p, err := e.Plan(transfer)
	if err != nil {
		return nil, err
	}

	domainSide := reflect.TypeOf(dst)
	if dir == convert.DirectionToTransfer {
		domainSide = reflect.TypeOf(src)
	}

	if access.Deref(domainSide) != p.Domain {
		return nil, maperr.New(maperr.PhaseConvert, maperr.KindUnsupportedSource).
			Type(p.Transfer.String()).
			Detail(fmt.Sprintf("%s is not the domain type %s", domainSide, p.Domain)).
			Build()
	}

	var res convert.Result
	if dir == convert.DirectionToDomain {
		res, err = p.Pre.PreToDomain(src, dst, tags)
	} else {
		res, err = p.Pre.PreToTransfer(src, dst, tags)
	}

	if err != nil {
		return nil, err
	}

	if res == convert.Skip {
		return dst, nil
	}

	if err := p.Run(dir, reflect.ValueOf(src), reflect.ValueOf(dst), tags); err != nil {
		return nil, err
	}

	if dir == convert.DirectionToDomain {
		err = p.Post.PostToDomain(src, dst, tags)
	} else {
		err = p.Post.PostToTransfer(src, dst, tags)
	}

	if err != nil {
		return nil, err
	}

	return dst, nil
}

// direction decides the conversion direction from the source and target
// types.
func (e *Engine) direction(src, dst reflect.Type) (convert.Direction, error) {
	switch {
	case e.IsTransferType(src):
		return convert.DirectionToDomain, nil
	case e.IsTransferType(dst):
		return convert.DirectionToTransfer, nil
	default:
		return 0, maperr.New(maperr.PhaseConvert, maperr.KindMissingDomain).
			Type(src.String()).
			Detail(fmt.Sprintf("neither %s nor %s is a transfer type", src, dst)).
			Build()
	}
}

// concreteTarget resolves interface and abstract targets to the struct type
// to instantiate.
func (e *Engine) concreteTarget(s *state, src, target reflect.Type) (reflect.Type, error) {
	target = s.replaceType(access.Deref(target))
	if target.Kind() != reflect.Interface {
		return target, nil
	}

	if e.IsTransferType(src) {
		domain, err := e.DomainType(src)
		if err != nil {
			return nil, err
		}

		if reflect.PointerTo(domain).Implements(target) || domain.Implements(target) {
			return domain, nil
		}

		return nil, unsupportedTarget(src, target)
	}

	tm, ok := e.catalog.Lookup(target)
	if !ok {
		return nil, unsupportedTarget(src, target)
	}

	srcBase := access.Deref(src)
	for _, d := range tm.Delegates {
		domain, err := e.DomainType(d)
		if err != nil {
			return nil, err
		}

		if domain == srcBase {
			return d, nil
		}
	}

	return nil, maperr.New(maperr.PhaseConvert, maperr.KindMissingDomain).
		Type(target.String()).
		Detail("no delegate maps domain type " + srcBase.String()).
		Build()
}

func unsupportedTarget(src, target reflect.Type) error {
	return maperr.New(maperr.PhaseConvert, maperr.KindUnsupportedSource).
		Type(src.String()).
		Detail("cannot resolve a concrete type for " + target.String()).
		Build()
}

func (s *state) replaceObject(obj any) any {
	for _, r := range s.objectReplacers.All() {
		obj = r.ReplaceObject(obj)
	}

	return obj
}

func (s *state) replaceType(t reflect.Type) reflect.Type {
	for _, r := range s.classReplacers.All() {
		t = r.ReplaceType(t)
	}

	return t
}

func checkTarget(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return maperr.New(maperr.PhaseConvert, maperr.KindNoTarget).
			Type(fmt.Sprintf("%T", dst)).
			Detail("target must be a non-nil pointer to a struct").
			Build()
	}

	return nil
}

// asTarget returns found as a pointer to target.
func asTarget(found any, target reflect.Type) (any, error) {
	v := reflect.ValueOf(found)

	switch {
	case v.Type() == reflect.PointerTo(target):
		return found, nil
	case v.Type() == target:
		ptr := reflect.New(target)
		ptr.Elem().Set(v)

		return ptr.Interface(), nil
	default:
		return nil, maperr.New(maperr.PhaseFind, maperr.KindNoTarget).
			Type(target.String()).
			Detail(fmt.Sprintf("finder returned %T", found)).
			Build()
	}
}

func elementObject(v reflect.Value) any {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}

	return v.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
