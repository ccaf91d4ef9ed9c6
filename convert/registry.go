package convert

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"tomapper/maperr"
)

// Factory creates a named converter on first use.
type Factory func() TypeConverter

// Factories instantiates named converters once and keeps them for reuse
// across fields and registry rebuilds. It is safe for concurrent use.
type Factories struct {
	mu     sync.Mutex
	makers map[string]Factory
	made   map[string]TypeConverter
}

// NewFactories returns an empty factory set.
func NewFactories() *Factories {
	return &Factories{
		makers: make(map[string]Factory),
		made:   make(map[string]TypeConverter),
	}
}

// Register adds or replaces the factory for name. A replaced factory drops
// its cached instance.
func (f *Factories) Register(name string, fn Factory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.makers[name] = fn
	delete(f.made, name)
}

// Get returns the cached instance for name, creating it when needed.
func (f *Factories) Get(name string, engine Engine) (TypeConverter, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tc, ok := f.made[name]; ok {
		return tc, true
	}
	fn, ok := f.makers[name]
	if !ok {
		return nil, false
	}
	tc := fn()
	if aware, ok := tc.(EngineAware); ok && engine != nil {
		aware.SetEngine(engine)
	}
	f.made[name] = tc
	return tc, true
}

// Registry is an immutable, ordered snapshot of type converters with the
// identity converter appended last. Build a new one whenever the converter
// list changes.
type Registry struct {
	converters []TypeConverter
	byName     map[string]TypeConverter
	factories  *Factories
	engine     Engine
}

// NewRegistry snapshots converters and injects engine into every converter
// that asks for it.
func NewRegistry(engine Engine, converters []TypeConverter, factories *Factories) *Registry {
	r := &Registry{
		converters: make([]TypeConverter, 0, len(converters)+1),
		byName:     make(map[string]TypeConverter, len(converters)+1),
		factories:  factories,
		engine:     engine,
	}
	if r.factories == nil {
		r.factories = NewFactories()
	}

	for _, tc := range append(slices.Clone(converters), Identity{}) {
		if aware, ok := tc.(EngineAware); ok && engine != nil {
			aware.SetEngine(engine)
		}
		r.converters = append(r.converters, tc)

		for _, name := range []string{NameOf(tc), reflect.TypeOf(tc).String()} {
			if _, dup := r.byName[name]; !dup && name != "" {
				r.byName[name] = tc
			}
		}
	}
	return r
}

// Converters returns the ordered converters, identity included.
func (r *Registry) Converters() []TypeConverter {
	return append([]TypeConverter(nil), r.converters...)
}

// Lookup finds the first converter accepting the pair, or nil.
func (r *Registry) Lookup(toType, domainType reflect.Type) TypeConverter {
	for _, tc := range r.converters {
		if tc.CanConvert(toType, domainType) {
			return tc
		}
	}
	return nil
}

// ByName returns a converter registered in the list or through a factory.
func (r *Registry) ByName(name string) (TypeConverter, bool) {
	if tc, ok := r.byName[name]; ok {
		return tc, true
	}
	return r.factories.Get(name, r.engine)
}

// Resolve picks the converter for a field. An explicit reference wins, then
// an explicit name, both without checking applicability. Otherwise the first
// converter in registry order that accepts the pair is used.
func (r *Registry) Resolve(name string, ref TypeConverter, toType, domainType reflect.Type) (TypeConverter, error) {
	if ref != nil {
		if aware, ok := ref.(EngineAware); ok && r.engine != nil {
			aware.SetEngine(r.engine)
		}
		return ref, nil
	}

	if name != "" {
		tc, ok := r.ByName(name)
		if !ok {
			return nil, maperr.New(maperr.PhaseBuild, maperr.KindUnresolvedType).
				Detail(fmt.Sprintf("no type converter named %q", name)).
				Build()
		}
		return tc, nil
	}

	if tc := r.Lookup(toType, domainType); tc != nil {
		return tc, nil
	}

	return nil, maperr.New(maperr.PhaseBuild, maperr.KindConversion).
		Detail(fmt.Sprintf("no type converter for %s field %s -> %s",
			Dispatch(toType, domainType), toType, domainType)).
		Build()
}
