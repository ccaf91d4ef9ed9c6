// Package mapper is the conversion engine. It converts transfer objects to
// domain objects and back, following the mappings registered in a
// mapping.Catalog.
//
// An Engine is safe for concurrent conversions. Its registration lists are
// not: mutate them from one goroutine, then call the matching Update method
// to publish the change to running conversions.
package mapper

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"tomapper/convert"
	"tomapper/internal/access"
	"tomapper/internal/plan"
	"tomapper/lockable"
	"tomapper/mapping"
	"tomapper/options"
)

// Engine converts between transfer and domain objects.
type Engine struct {
	catalog *mapping.Catalog
	config  options.Config
	logger  *zap.Logger

	// guards the lists below and publication of state
	mu              sync.Mutex
	typeConverters  *lockable.List[convert.TypeConverter]
	objectFinders   *lockable.List[convert.ObjectFinder]
	objectReplacers *lockable.List[convert.ObjectReplacer]
	classReplacers  *lockable.List[convert.ClassReplacer]
	interceptors    *lockable.List[convert.Interceptor]
	preConverters   *lockable.List[convert.PreConverter]
	postConverters  *lockable.List[convert.PostConverter]
	factories       *convert.Factories

	state atomic.Pointer[state]
	plans *plan.Cache
}

// state is the published, immutable view used by conversions.
type state struct {
	registry        *convert.Registry
	finders         *lockable.List[convert.ObjectFinder]
	objectReplacers *lockable.List[convert.ObjectReplacer]
	classReplacers  *lockable.List[convert.ClassReplacer]
	chain           convert.Chain
	pre             map[string]convert.PreConverter
	post            map[string]convert.PostConverter
}

func (s *state) Pre(name string) (convert.PreConverter, bool) {
	h, ok := s.pre[name]
	return h, ok
}

func (s *state) Post(name string) (convert.PostConverter, bool) {
	h, ok := s.post[name]
	return h, ok
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig applies cfg. Without it options.Default is used.
func WithConfig(cfg options.Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// WithLogger sets the engine logger. It also becomes the logger reporting
// direct field access fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = zap.NewNop()
		}

		e.logger = l
		access.SetLogger(l)
	}
}

// WithTypeConverters registers converters tried before the built-in ones.
func WithTypeConverters(tcs ...convert.TypeConverter) Option {
	return func(e *Engine) { _ = e.typeConverters.Add(tcs...) }
}

// WithConverterFactory registers a named converter created on first use.
func WithConverterFactory(name string, f convert.Factory) Option {
	return func(e *Engine) { e.factories.Register(name, f) }
}

func WithObjectFinders(fs ...convert.ObjectFinder) Option {
	return func(e *Engine) { _ = e.objectFinders.Add(fs...) }
}

func WithObjectReplacers(rs ...convert.ObjectReplacer) Option {
	return func(e *Engine) { _ = e.objectReplacers.Add(rs...) }
}

func WithClassReplacers(rs ...convert.ClassReplacer) Option {
	return func(e *Engine) { _ = e.classReplacers.Add(rs...) }
}

// WithInterceptors registers interceptors; the first one is outermost.
func WithInterceptors(is ...convert.Interceptor) Option {
	return func(e *Engine) { _ = e.interceptors.Add(is...) }
}

func WithPreConverters(ps ...convert.PreConverter) Option {
	return func(e *Engine) { _ = e.preConverters.Add(ps...) }
}

func WithPostConverters(ps ...convert.PostConverter) Option {
	return func(e *Engine) { _ = e.postConverters.Add(ps...) }
}

// New creates an engine over catalog. A nil catalog starts empty. Mapping
// files named by the configuration are loaded into the catalog.
func New(catalog *mapping.Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		catalog = mapping.NewCatalog()
	}

	e := &Engine{
		catalog:         catalog,
		config:          options.Default(),
		logger:          zap.NewNop(),
		typeConverters:  lockable.New[convert.TypeConverter](),
		objectFinders:   lockable.New[convert.ObjectFinder](),
		objectReplacers: lockable.New[convert.ObjectReplacer](convert.UnwrapReplacer{}),
		classReplacers:  lockable.New[convert.ClassReplacer](),
		interceptors:    lockable.New[convert.Interceptor](),
		preConverters:   lockable.New[convert.PreConverter](),
		postConverters:  lockable.New[convert.PostConverter](),
		factories:       convert.NewFactories(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	_ = e.typeConverters.Add(convert.Defaults(e.config.CategorySet(), e.config.CollectionOptions())...)

	for _, path := range e.config.MappingFiles {
		if err := catalog.LoadFile(path); err != nil {
			return nil, err
		}
	}

	e.plans = plan.NewCache(e.buildPlan)
	e.state.Store(&state{})
	e.UpdateTypeConverters()
	e.UpdateObjectFinders()
	e.UpdateObjectReplacers()
	e.UpdateClassReplacers()
	e.UpdateInterceptors()
	e.UpdatePreConverters()
	e.UpdatePostConverters()

	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(catalog *mapping.Catalog, opts ...Option) *Engine {
	e, err := New(catalog, opts...)
	if err != nil {
		panic(err)
	}

	return e
}

func (e *Engine) Catalog() *mapping.Catalog { return e.catalog }

func (e *Engine) Logger() *zap.Logger { return e.logger }

// Plan returns the cached plan of the transfer type t, building it first
// when needed.
func (e *Engine) Plan(t reflect.Type) (*plan.Plan, error) {
	return e.plans.Get(access.Deref(t))
}

// ClearCaches drops every cached plan. Call it after changing the catalog.
func (e *Engine) ClearCaches() {
	e.plans.Clear()
	e.logger.Debug("plan cache cleared")
}

// IsTransferType reports whether t, or the type it points to, is a
// registered transfer type.
func (e *Engine) IsTransferType(t reflect.Type) bool {
	return e.catalog.IsTransfer(t)
}

// DomainType returns the domain type of the transfer type t.
func (e *Engine) DomainType(t reflect.Type) (reflect.Type, error) {
	return e.catalog.Domain(t)
}

func (e *Engine) buildPlan(t reflect.Type) (*plan.Plan, error) {
	s := e.state.Load()
	b := plan.Builder{
		Catalog:    e.catalog,
		Converters: s.registry,
		Hooks:      s,
		Access:     access.Options{AllowUnexported: e.config.AllowUnexported},
		Logger:     e.logger,
	}

	return b.Build(t)
}
