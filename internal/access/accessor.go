// Package access gives a uniform get/set view over struct fields, preferring
// accessor methods and falling back to direct field access.
package access

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"

	"tomapper/maperr"
)

// Accessor reads and writes a single field of a struct. The object passed to
// Get and Set is either the struct value or a pointer to it; Set needs an
// addressable struct.
type Accessor interface {
	Name() string
	Type() reflect.Type
	CanGet() bool
	CanSet() bool
	Get(obj reflect.Value) (reflect.Value, error)
	Set(obj, value reflect.Value) error
}

// Options controls accessor resolution.
type Options struct {
	// AllowUnexported permits direct access to unexported fields.
	AllowUnexported bool
}

// Pair is an explicitly registered accessor pair. Get and Set receive a
// pointer to the owning struct. Either may be nil.
type Pair struct {
	Get  func(obj any) (any, error)
	Set  func(obj, value any) error
	Type reflect.Type
}

type getFunc func(obj reflect.Value) (reflect.Value, error)

type setFunc func(obj, value reflect.Value) error

type accessor struct {
	owner reflect.Type
	name  string
	typ   reflect.Type
	get   getFunc
	set   setFunc
}

func (a *accessor) Name() string       { return a.name }
func (a *accessor) Type() reflect.Type { return a.typ }
func (a *accessor) CanGet() bool       { return a.get != nil }
func (a *accessor) CanSet() bool       { return a.set != nil }

func (a *accessor) Get(obj reflect.Value) (reflect.Value, error) {
	if a.get == nil {
		return reflect.Value{}, a.fail("no getter")
	}
	obj, err := a.target(obj)
	if err != nil {
		return reflect.Value{}, err
	}
	return a.get(obj)
}

func (a *accessor) Set(obj, value reflect.Value) error {
	if a.set == nil {
		return a.fail("field is read-only")
	}
	obj, err := a.target(obj)
	if err != nil {
		return err
	}
	if !obj.CanAddr() {
		return a.fail("target object is not addressable")
	}
	value, err = a.assignable(value)
	if err != nil {
		return err
	}
	return a.set(obj, value)
}

func (a *accessor) target(obj reflect.Value) (reflect.Value, error) {
	for obj.Kind() == reflect.Pointer || obj.Kind() == reflect.Interface {
		if obj.IsNil() {
			return reflect.Value{}, maperr.New(maperr.PhaseAccess, maperr.KindNilIntermediate).
				Type(a.owner.String()).
				Path(a.name).
				Detail("object is nil").
				Build()
		}
		obj = obj.Elem()
	}
	if obj.Type() != a.owner {
		return reflect.Value{}, a.fail("object is " + obj.Type().String())
	}
	return obj, nil
}

func (a *accessor) assignable(value reflect.Value) (reflect.Value, error) {
	if !value.IsValid() {
		return reflect.Zero(a.typ), nil
	}
	if value.Type().AssignableTo(a.typ) {
		return value, nil
	}
	return reflect.Value{}, a.fail("value of type " + value.Type().String() + " is not assignable to " + a.typ.String())
}

func (a *accessor) fail(detail string) error {
	return maperr.New(maperr.PhaseAccess, maperr.KindAccessFailed).
		Type(a.owner.String()).
		Path(a.name).
		Detail(detail).
		Build()
}

// Resolve builds an accessor for field name on the struct type owner.
//
// Resolution order: the explicit pair when given, then accessor methods on
// *owner (getters GetX, X, IsX, HasX and setter SetX), then direct access to
// the raw field. Direct access to unexported fields requires
// Options.AllowUnexported.
func Resolve(owner reflect.Type, name string, explicit *Pair, opts Options) (Accessor, error) {
	if owner.Kind() != reflect.Struct {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindAccessorNotFound).
			Type(owner.String()).
			Path(name).
			Detail("owner is not a struct").
			Build()
	}

	a := &accessor{owner: owner, name: name}
	field, hasField := lookupField(owner, name, opts)
	if hasField {
		a.typ = field.Type
	}

	if explicit != nil && (explicit.Get != nil || explicit.Set != nil) {
		return resolveExplicit(a, explicit)
	}

	capName := upperFirst(name)
	getters := getterNames(capName)
	ptr := reflect.PointerTo(owner)

	for _, g := range getters {
		if m, ok := ptr.MethodByName(g); ok && isGetter(m) {
			if hasField && m.Type.Out(0) != field.Type {
				continue
			}
			a.typ = m.Type.Out(0)
			a.get = methodGetter(m)
			break
		}
	}

	if m, ok := ptr.MethodByName("Set" + capName); ok && isSetter(m) && (a.typ == nil || m.Type.In(1) == a.typ) {
		a.typ = m.Type.In(1)
		a.set = methodSetter(m)
	}

	var direct []string
	if a.get == nil {
		if !hasField {
			return nil, maperr.New(maperr.PhaseBuild, maperr.KindAccessorNotFound).
				Type(owner.String()).
				Path(name).
				Detail("no field and no getter, tried " + strings.Join(getters, ", ")).
				Build()
		}
		a.get = fieldGetter(owner, field)
		direct = append(direct, "get")
	}
	if a.set == nil && hasField {
		a.set = fieldSetter(owner, field)
		direct = append(direct, "set")
	}

	if len(direct) > 0 {
		logFallback(owner, field.Name, direct)
	}

	return a, nil
}

func resolveExplicit(a *accessor, p *Pair) (Accessor, error) {
	if p.Type != nil {
		a.typ = p.Type
	}
	if a.typ == nil {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindAccessorNotFound).
			Type(a.owner.String()).
			Path(a.name).
			Detail("explicit accessor without a type for a field that does not exist").
			Build()
	}

	if get := p.Get; get != nil {
		typ := a.typ
		a.get = func(obj reflect.Value) (reflect.Value, error) {
			res, err := get(pointerTo(obj).Interface())
			if err != nil {
				return reflect.Value{}, err
			}
			if res == nil {
				return reflect.Zero(typ), nil
			}
			return reflect.ValueOf(res), nil
		}
	}
	if set := p.Set; set != nil {
		a.set = func(obj, value reflect.Value) error {
			return set(obj.Addr().Interface(), value.Interface())
		}
	}
	return a, nil
}

// lookupField finds a visible field by name. A lower-cased first letter is
// tried as well so accessor methods like Name/SetName can front a field name.
func lookupField(owner reflect.Type, name string, opts Options) (reflect.StructField, bool) {
	for _, candidate := range []string{name, lowerFirst(name)} {
		f, ok := visibleField(owner, candidate)
		if !ok {
			continue
		}
		if !f.IsExported() && !opts.AllowUnexported {
			continue
		}
		return f, true
	}
	return reflect.StructField{}, false
}

func visibleField(owner reflect.Type, name string) (reflect.StructField, bool) {
	for _, f := range reflect.VisibleFields(owner) {
		if f.Name == name && !f.Anonymous {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func getterNames(capName string) []string {
	if hasWordPrefix(capName, "Is") || hasWordPrefix(capName, "Has") {
		return []string{capName, "Get" + capName}
	}
	return []string{"Get" + capName, capName, "Is" + capName, "Has" + capName}
}

func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[len(prefix):])
	return unicode.IsUpper(r)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isGetter(m reflect.Method) bool {
	t := m.Type
	if t.NumIn() != 1 {
		return false
	}
	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1) == errorType
	default:
		return false
	}
}

func isSetter(m reflect.Method) bool {
	t := m.Type
	if t.NumIn() != 2 {
		return false
	}
	switch t.NumOut() {
	case 0:
		return true
	case 1:
		return t.Out(0) == errorType
	default:
		return false
	}
}

// errors returned by accessor methods belong to the application and are
// passed through untouched.
func methodGetter(m reflect.Method) getFunc {
	return func(obj reflect.Value) (reflect.Value, error) {
		out := m.Func.Call([]reflect.Value{pointerTo(obj)})
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}
		return out[0], nil
	}
}

func methodSetter(m reflect.Method) setFunc {
	return func(obj, value reflect.Value) error {
		out := m.Func.Call([]reflect.Value{obj.Addr(), value})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
}

func fieldGetter(owner reflect.Type, f reflect.StructField) getFunc {
	return func(obj reflect.Value) (reflect.Value, error) {
		fv, err := obj.FieldByIndexErr(f.Index)
		if err != nil {
			return reflect.Value{}, fieldError(owner, f, err)
		}
		if !f.IsExported() {
			if !fv.CanAddr() {
				tmp := reflect.New(obj.Type()).Elem()
				tmp.Set(obj)
				fv = tmp.FieldByIndex(f.Index)
			}
			fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
		}
		return fv, nil
	}
}

func fieldSetter(owner reflect.Type, f reflect.StructField) setFunc {
	return func(obj, value reflect.Value) error {
		fv, err := obj.FieldByIndexErr(f.Index)
		if err != nil {
			return fieldError(owner, f, err)
		}
		if !f.IsExported() {
			fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
		}
		fv.Set(value)
		return nil
	}
}

func fieldError(owner reflect.Type, f reflect.StructField, cause error) error {
	return maperr.New(maperr.PhaseAccess, maperr.KindAccessFailed).
		Type(owner.String()).
		Path(f.Name).
		Detail("field is unreachable").
		Cause(cause).
		Build()
}

// pointerTo returns a pointer to obj, copying it when it is not addressable.
func pointerTo(obj reflect.Value) reflect.Value {
	if obj.CanAddr() {
		return obj.Addr()
	}
	ptr := reflect.New(obj.Type())
	ptr.Elem().Set(obj)
	return ptr
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
