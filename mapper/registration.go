package mapper

import (
	"go.uber.org/zap"

	"tomapper/convert"
	"tomapper/lockable"
)

// TypeConverters returns the mutable type converter list. Publish changes
// with UpdateTypeConverters.
func (e *Engine) TypeConverters() *lockable.List[convert.TypeConverter] { return e.typeConverters }

// ObjectFinders returns the mutable finder list. Finders registered last
// are tried first. Publish changes with UpdateObjectFinders.
func (e *Engine) ObjectFinders() *lockable.List[convert.ObjectFinder] { return e.objectFinders }

// ObjectReplacers returns the mutable object replacer list. It starts with
// convert.UnwrapReplacer.
func (e *Engine) ObjectReplacers() *lockable.List[convert.ObjectReplacer] { return e.objectReplacers }

func (e *Engine) ClassReplacers() *lockable.List[convert.ClassReplacer] { return e.classReplacers }

func (e *Engine) Interceptors() *lockable.List[convert.Interceptor] { return e.interceptors }

func (e *Engine) PreConverters() *lockable.List[convert.PreConverter] { return e.preConverters }

func (e *Engine) PostConverters() *lockable.List[convert.PostConverter] { return e.postConverters }

// RegisterConverterFactory registers a named converter created on first
// use and shared by every field naming it.
func (e *Engine) RegisterConverterFactory(name string, f convert.Factory) {
	e.factories.Register(name, f)
	e.plans.Clear()
}

// UpdateTypeConverters rebuilds the converter registry from the list and
// clears the plan cache.
func (e *Engine) UpdateTypeConverters() {
	e.publish("type converters", e.typeConverters.Len(), func(s *state) {
		s.registry = convert.NewRegistry(e, e.typeConverters.Items(), e.factories)
	})
	e.plans.Clear()
}

func (e *Engine) UpdateObjectFinders() {
	e.publish("object finders", e.objectFinders.Len(), func(s *state) {
		s.finders = e.objectFinders.Snapshot()
	})
}

func (e *Engine) UpdateObjectReplacers() {
	e.publish("object replacers", e.objectReplacers.Len(), func(s *state) {
		s.objectReplacers = e.objectReplacers.Snapshot()
	})
}

func (e *Engine) UpdateClassReplacers() {
	e.publish("class replacers", e.classReplacers.Len(), func(s *state) {
		s.classReplacers = e.classReplacers.Snapshot()
	})
}

// UpdateInterceptors rebuilds the interceptor chain around the core
// conversion.
func (e *Engine) UpdateInterceptors() {
	e.publish("interceptors", e.interceptors.Len(), func(s *state) {
		s.chain = convert.BuildChain(e.convertFields, e.interceptors.Items())
	})
}

// UpdatePreConverters publishes the named pre-converters and clears the
// plan cache.
func (e *Engine) UpdatePreConverters() {
	e.publish("pre converters", e.preConverters.Len(), func(s *state) {
		s.pre = make(map[string]convert.PreConverter, e.preConverters.Len())
		for _, p := range e.preConverters.All() {
			s.pre[convert.NameOf(p)] = p
		}
	})
	e.plans.Clear()
}

func (e *Engine) UpdatePostConverters() {
	e.publish("post converters", e.postConverters.Len(), func(s *state) {
		s.post = make(map[string]convert.PostConverter, e.postConverters.Len())
		for _, p := range e.postConverters.All() {
			s.post[convert.NameOf(p)] = p
		}
	})
	e.plans.Clear()
}

// publish copies the current state, applies change and stores the copy.
func (e *Engine) publish(what string, n int, change func(*state)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := *e.state.Load()
	change(&next)
	e.state.Store(&next)

	e.logger.Debug("configuration published", zap.String("list", what), zap.Int("size", n))
}
