// Package sqlfinder provides an object finder loading conversion targets
// from a SQL database, so converting a transfer object updates the stored
// row instead of a fresh instance.
package sqlfinder

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"tomapper/convert"
	"tomapper/maperr"
)

// IDFunc extracts the lookup key from a conversion source. It returns false
// when the source carries no key, for example a new object.
type IDFunc func(src any) (any, bool)

// Query loads one domain type. The statement takes the key as its only
// argument and returns at most one row.
type Query struct {
	SQL string
	ID  IDFunc
}

// Finder looks up targets by running the query registered for the target
// type. A missing row or an unregistered type yields no result and lets the
// next finder try.
type Finder struct {
	db      *sqlx.DB
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	queries map[reflect.Type]Query
}

type Option func(*Finder)

// WithTimeout bounds every lookup. The default is five seconds.
func WithTimeout(d time.Duration) Option {
	return func(f *Finder) { f.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

func New(db *sqlx.DB, opts ...Option) *Finder {
	f := &Finder{
		db:      db,
		timeout: 5 * time.Second,
		logger:  zap.NewNop(),
		queries: make(map[reflect.Type]Query),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

var _ convert.ObjectFinder = (*Finder)(nil)

// Register sets the query loading domain type t.
func (f *Finder) Register(t reflect.Type, q Query) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries[t] = q
}

// RegisterType is Register for the domain type D with a typed key extractor.
func RegisterType[D, TO any](f *Finder, query string, id func(*TO) (any, bool)) {
	f.Register(reflect.TypeFor[D](), Query{
		SQL: query,
		ID: func(src any) (any, bool) {
			to, ok := src.(*TO)
			if !ok || to == nil {
				return nil, false
			}

			return id(to)
		},
	})
}

func (f *Finder) Find(src any, target reflect.Type, _ []string) (any, error) {
	f.mu.RLock()
	q, ok := f.queries[target]
	f.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	id, ok := q.ID(src)
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	dst := reflect.New(target)
	if err := f.db.GetContext(ctx, dst.Interface(), q.SQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			f.logger.Debug("no stored target", zap.Stringer("type", target), zap.Any("id", id))
			return nil, nil
		}

		return nil, maperr.New(maperr.PhaseFind, maperr.KindNoTarget).
			Type(target.String()).
			Detail("loading stored target").
			Cause(err).
			Build()
	}

	return dst.Interface(), nil
}
