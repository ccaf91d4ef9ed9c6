package convert

import (
	"cmp"
	"reflect"
	"sort"
)

// CollectionOptions are the policies shared by the List and Set converters.
type CollectionOptions struct {
	// KeepNil keeps a nil source as nil instead of producing an empty container.
	KeepNil bool
	// AlwaysNew allocates a new container even when the destination already
	// holds one. Otherwise the existing container is cleared and reused.
	AlwaysNew bool
	// Sort orders list results when the elements have a natural order.
	// Sets are unordered and ignore it.
	Sort bool
	// Factory creates empty containers of the given type with room for size
	// elements. Nil uses reflect.MakeSlice or reflect.MakeMapWithSize.
	Factory func(t reflect.Type, size int) reflect.Value
}

type collection struct {
	name   string
	opts   CollectionOptions
	engine Engine
}

func (c *collection) Name() string       { return c.name }
func (c *collection) SetEngine(e Engine) { c.engine = e }

// elementsMatch reports whether elements need the engine to cross over.
func (c *collection) elementsMatch(toElem, domainElem reflect.Type) bool {
	if c.engine == nil {
		return false
	}
	_, toBase := ptrDepthAndBase(toElem)
	return c.engine.IsTransferType(toBase)
}

func (c *collection) element(v reflect.Value, target reflect.Type, tags []string) (reflect.Value, error) {
	if v.Type() == target {
		return v, nil
	}
	return convertNested(c.engine, v, target, tags)
}

func (c *collection) empty(t reflect.Type, size int) reflect.Value {
	if c.opts.Factory != nil {
		return c.opts.Factory(t, size)
	}
	if t.Kind() == reflect.Map {
		return reflect.MakeMapWithSize(t, size)
	}
	return reflect.MakeSlice(t, 0, size)
}

// container returns the empty container to fill, reusing the current
// destination value when allowed.
func (c *collection) container(in Input, size int) reflect.Value {
	cur := in.Current
	if !c.opts.AlwaysNew && cur.IsValid() && cur.Type() == in.Type && !cur.IsNil() {
		if cur.Kind() == reflect.Map {
			cur.Clear()
			return cur
		}
		return cur.Slice(0, 0)
	}
	return c.empty(in.Type, size)
}

// List converts slices element by element through the engine.
type List struct {
	collection
}

// NewList creates a list converter registered under name.
func NewList(name string, opts CollectionOptions) *List {
	return &List{collection{name: name, opts: opts}}
}

func (l *List) CanConvert(toType, domainType reflect.Type) bool {
	if toType.Kind() != reflect.Slice || domainType.Kind() != reflect.Slice {
		return false
	}
	return l.elementsMatch(toType.Elem(), domainType.Elem())
}

func (l *List) ToDomain(in Input) (reflect.Value, error)   { return l.convert(in) }
func (l *List) ToTransfer(in Input) (reflect.Value, error) { return l.convert(in) }

func (l *List) convert(in Input) (reflect.Value, error) {
	src := in.Value
	if !src.IsValid() || src.IsNil() {
		if l.opts.KeepNil {
			return reflect.Zero(in.Type), nil
		}
		return l.container(in, 0), nil
	}

	dst := l.container(in, src.Len())
	elemType := in.Type.Elem()
	for i := range src.Len() {
		e, err := l.element(src.Index(i), elemType, in.Tags)
		if err != nil {
			return reflect.Value{}, err
		}
		dst = reflect.Append(dst, e)
	}

	if l.opts.Sort {
		sortNatural(dst)
	}
	return dst, nil
}

// Set converts maps used as sets, map[K]struct{} or map[K]bool. A false bool
// entry is not a member.
type Set struct {
	collection
}

// NewSet creates a set converter registered under name.
func NewSet(name string, opts CollectionOptions) *Set {
	return &Set{collection{name: name, opts: opts}}
}

func (s *Set) CanConvert(toType, domainType reflect.Type) bool {
	if !isSetType(toType) || !isSetType(domainType) {
		return false
	}
	return s.elementsMatch(toType.Key(), domainType.Key())
}

func (s *Set) ToDomain(in Input) (reflect.Value, error)   { return s.convert(in) }
func (s *Set) ToTransfer(in Input) (reflect.Value, error) { return s.convert(in) }

func (s *Set) convert(in Input) (reflect.Value, error) {
	src := in.Value
	if !src.IsValid() || src.IsNil() {
		if s.opts.KeepNil {
			return reflect.Zero(in.Type), nil
		}
		return s.container(in, 0), nil
	}

	dst := s.container(in, src.Len())
	keyType := in.Type.Key()
	member := memberValue(in.Type.Elem())

	iter := src.MapRange()
	for iter.Next() {
		if v := iter.Value(); v.Kind() == reflect.Bool && !v.Bool() {
			continue
		}
		k, err := s.element(iter.Key(), keyType, in.Tags)
		if err != nil {
			return reflect.Value{}, err
		}
		dst.SetMapIndex(k, member)
	}
	return dst, nil
}

func isSetType(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}
	e := t.Elem()
	return e.Kind() == reflect.Bool || (e.Kind() == reflect.Struct && e.NumField() == 0)
}

func memberValue(elem reflect.Type) reflect.Value {
	if elem.Kind() == reflect.Bool {
		return reflect.ValueOf(true).Convert(elem)
	}
	return reflect.Zero(elem)
}

// sortNatural sorts s ascending when its first element has a natural order
// and every element shares that element's type. Otherwise s is left as is.
func sortNatural(s reflect.Value) {
	if s.Len() < 2 {
		return
	}
	first := unwrapInterface(s.Index(0))
	compare, ok := naturalOrder(first.Type())
	if !ok {
		return
	}
	for i := range s.Len() {
		e := unwrapInterface(s.Index(i))
		if !e.IsValid() || e.Type() != first.Type() {
			return
		}
		if e.Kind() == reflect.Pointer && e.IsNil() {
			return
		}
	}

	sort.SliceStable(s.Interface(), func(i, j int) bool {
		return compare(unwrapInterface(s.Index(i)), unwrapInterface(s.Index(j))) < 0
	})
}

func unwrapInterface(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func naturalOrder(t reflect.Type) (func(a, b reflect.Value) int, bool) {
	if m, ok := t.MethodByName("Compare"); ok {
		mt := m.Type
		if mt.NumIn() == 2 && mt.In(1) == t && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Int {
			return func(a, b reflect.Value) int {
				return int(m.Func.Call([]reflect.Value{a, b})[0].Int())
			}, true
		}
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) }, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) }, true
	case reflect.Float32, reflect.Float64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) }, true
	case reflect.String:
		return func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) }, true
	default:
		return nil, false
	}
}
