package mapping

import (
	"cmp"
	"maps"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"tomapper/maperr"
)

// Catalog holds the type mappings known to an engine, keyed by transfer
// type, and the type names used by mapping files.
//
// Reads go to an immutable snapshot and never block. Writers serialize on a
// mutex and publish a modified copy. Registering after conversions have
// started requires the engine's plan cache to be cleared.
type Catalog struct {
	mu   sync.Mutex
	snap atomic.Pointer[catalogSnapshot]
}

type catalogSnapshot struct {
	names    map[string]reflect.Type
	mappings map[reflect.Type]*TypeMapping
}

func (s *catalogSnapshot) clone() *catalogSnapshot {
	return &catalogSnapshot{
		names:    maps.Clone(s.names),
		mappings: maps.Clone(s.mappings),
	}
}

func (s *catalogSnapshot) bind(t reflect.Type) {
	if t.Name() == "" {
		return
	}

	if _, ok := s.names[t.Name()]; !ok {
		s.names[t.Name()] = t
	}

	s.names[t.String()] = t
	s.names[t.PkgPath()+"."+t.Name()] = t
}

func NewCatalog() *Catalog {
	c := &Catalog{}
	c.snap.Store(&catalogSnapshot{
		names:    make(map[string]reflect.Type),
		mappings: make(map[reflect.Type]*TypeMapping),
	})

	return c
}

// update applies fn to a copy of the current snapshot and publishes it
// unless fn fails.
func (c *Catalog) update(fn func(s *catalogSnapshot) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snap.Load().clone()
	if err := fn(next); err != nil {
		return err
	}

	c.snap.Store(next)

	return nil
}

// Bind makes t resolvable by name from mapping files and DomainName.
func (c *Catalog) Bind(name string, t reflect.Type) {
	_ = c.update(func(s *catalogSnapshot) error {
		s.names[name] = t
		return nil
	})
}

// BindType binds T under both its bare and package qualified names.
func BindType[T any](c *Catalog) {
	t := reflect.TypeFor[T]()

	_ = c.update(func(s *catalogSnapshot) error {
		s.bind(t)
		return nil
	})
}

// Resolve returns the type bound to name.
func (c *Catalog) Resolve(name string) (reflect.Type, bool) {
	t, ok := c.snap.Load().names[name]
	return t, ok
}

// Register adds tm to the catalog. Struct tags on the transfer type are read
// first and explicit data in tm overrides them. Registering the same
// transfer type again merges into the existing mapping.
func (c *Catalog) Register(tm *TypeMapping) error {
	if tm == nil || tm.Transfer == nil {
		return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
			Detail("type mapping without transfer type").
			Build()
	}

	in := tm.Clone()
	in.Transfer = deref(in.Transfer)

	if in.Domain != nil {
		in.Domain = deref(in.Domain)
	}

	for i, d := range in.Delegates {
		in.Delegates[i] = deref(d)
	}

	switch in.Transfer.Kind() {
	case reflect.Struct:
	case reflect.Interface:
		if len(in.Delegates) == 0 && in.Domain == nil && in.DomainName == "" {
			return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
				Type(in.Transfer.String()).
				Detail("interface transfer type needs delegates or a domain type").
				Build()
		}
	default:
		return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
			Type(in.Transfer.String()).
			Detail("transfer type must be a struct or an interface").
			Build()
	}

	return c.update(func(s *catalogSnapshot) error {
		cur, ok := s.mappings[in.Transfer]
		if !ok {
			base, err := FromStructTags(in.Transfer)
			if err != nil {
				return err
			}

			cur = base
		} else {
			cur = cur.Clone()
		}

		cur.merge(in)
		s.mappings[in.Transfer] = cur
		s.bind(in.Transfer)

		return nil
	})
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(tms ...*TypeMapping) *Catalog {
	for _, tm := range tms {
		if err := c.Register(tm); err != nil {
			panic(err)
		}
	}

	return c
}

// Lookup returns the mapping registered for the transfer type t (pointers
// are dereferenced). The result must not be modified.
func (c *Catalog) Lookup(t reflect.Type) (*TypeMapping, bool) {
	if t == nil {
		return nil, false
	}

	tm, ok := c.snap.Load().mappings[deref(t)]

	return tm, ok
}

// IsTransfer reports whether t (or the type it points to) is a registered
// transfer type.
func (c *Catalog) IsTransfer(t reflect.Type) bool {
	_, ok := c.Lookup(t)
	return ok
}

// Domain resolves the domain type of the transfer type t.
func (c *Catalog) Domain(t reflect.Type) (reflect.Type, error) {
	tm, ok := c.Lookup(t)
	if !ok {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindMissingDomain).
			Type(typeName(t)).
			Detail("no domain association registered").
			Build()
	}

	if tm.Domain != nil {
		return tm.Domain, nil
	}

	if tm.DomainName == "" {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindMissingDomain).
			Type(tm.Transfer.String()).
			Detail("mapping names no domain type").
			Build()
	}

	d, ok := c.Resolve(tm.DomainName)
	if !ok {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindUnresolvedType).
			Type(tm.Transfer.String()).
			Detail("domain type " + tm.DomainName + " is not bound").
			Build()
	}

	return deref(d), nil
}

// Types returns the registered transfer types ordered by name.
func (c *Catalog) Types() []reflect.Type {
	out := slices.Collect(maps.Keys(c.snap.Load().mappings))
	slices.SortFunc(out, func(a, b reflect.Type) int {
		return cmp.Compare(a.String(), b.String())
	})

	return out
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
