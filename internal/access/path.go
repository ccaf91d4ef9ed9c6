package access

import (
	"reflect"
	"strings"

	"tomapper/maperr"
)

// Path is a chain of accessors from a root struct to a nested field. Every
// intermediate value must be non-nil when the path is read or written.
type Path struct {
	owner reflect.Type
	steps []Accessor
}

// NewPath chains steps. It panics when steps is empty.
func NewPath(owner reflect.Type, steps ...Accessor) *Path {
	if len(steps) == 0 {
		panic("access: empty path")
	}
	return &Path{owner: owner, steps: steps}
}

// ResolvePath resolves the dotted segments against owner. Every intermediate
// segment must be a struct or a pointer to a struct.
func ResolvePath(owner reflect.Type, segments []string, last *Pair, opts Options) (*Path, error) {
	if len(segments) == 0 {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindFieldNotFound).
			Type(owner.String()).
			Detail("empty field path").
			Build()
	}

	steps := make([]Accessor, 0, len(segments))
	cur := owner
	for i, seg := range segments {
		var explicit *Pair
		if i == len(segments)-1 {
			explicit = last
		}

		a, err := Resolve(cur, seg, explicit, opts)
		if err != nil {
			return nil, err
		}
		steps = append(steps, a)

		if i < len(segments)-1 {
			next := Deref(a.Type())
			if next.Kind() != reflect.Struct {
				return nil, maperr.New(maperr.PhaseBuild, maperr.KindFieldNotFound).
					Type(owner.String()).
					Path(segments[:i+1]...).
					Detail("intermediate " + a.Type().String() + " is not a struct").
					Build()
			}
			cur = next
		}
	}

	return NewPath(owner, steps...), nil
}

func (p *Path) Name() string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return strings.Join(names, ".")
}

func (p *Path) Type() reflect.Type { return p.last().Type() }
func (p *Path) CanGet() bool       { return p.last().CanGet() }

// CanSet reports whether the final field is writable. Intermediate values
// held by value also need a writer so the change can be stored back.
func (p *Path) CanSet() bool {
	if !p.last().CanSet() {
		return false
	}
	for _, s := range p.steps[:len(p.steps)-1] {
		if s.Type().Kind() != reflect.Pointer && !s.CanSet() {
			return false
		}
	}
	return true
}

// Len returns the number of hops.
func (p *Path) Len() int { return len(p.steps) }

func (p *Path) Get(obj reflect.Value) (reflect.Value, error) {
	cur := obj
	for i, s := range p.steps[:len(p.steps)-1] {
		v, err := s.Get(cur)
		if err != nil {
			return reflect.Value{}, err
		}
		cur, err = p.descend(v, i)
		if err != nil {
			return reflect.Value{}, err
		}
	}
	return p.last().Get(cur)
}

// Set writes value at the end of the path. Intermediates held by value are
// copied, updated and stored back into their parents.
func (p *Path) Set(obj, value reflect.Value) error {
	type hop struct {
		parent reflect.Value
		value  reflect.Value
	}

	var writeBack []hop
	cur := obj
	for i, s := range p.steps[:len(p.steps)-1] {
		v, err := s.Get(cur)
		if err != nil {
			return err
		}
		next, err := p.descend(v, i)
		if err != nil {
			return err
		}
		if !next.CanAddr() {
			tmp := reflect.New(next.Type()).Elem()
			tmp.Set(next)
			next = tmp
			writeBack = append(writeBack, hop{parent: cur, value: tmp})
		} else {
			writeBack = append(writeBack, hop{})
		}
		cur = next
	}

	if err := p.last().Set(cur, value); err != nil {
		return err
	}

	for i := len(writeBack) - 1; i >= 0; i-- {
		if !writeBack[i].value.IsValid() {
			continue
		}
		if err := p.steps[i].Set(writeBack[i].parent, writeBack[i].value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Path) descend(v reflect.Value, i int) (reflect.Value, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			names := make([]string, i+1)
			for j := range names {
				names[j] = p.steps[j].Name()
			}
			return reflect.Value{}, maperr.New(maperr.PhaseAccess, maperr.KindNilIntermediate).
				Type(p.owner.String()).
				Path(names...).
				Detail("intermediate value is nil").
				Build()
		}
		v = v.Elem()
	}
	return v, nil
}

func (p *Path) last() Accessor { return p.steps[len(p.steps)-1] }

// Deref strips pointer indirections from t.
func Deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
