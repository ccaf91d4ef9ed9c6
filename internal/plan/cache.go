package plan

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Cache holds plans keyed by transfer type. Reads are lock-free; concurrent
// misses for one type may build twice, the first stored plan wins. A plan
// whose build overlapped a Clear is handed to its caller but not kept.
type Cache struct {
	plans sync.Map
	epoch atomic.Uint64
	build func(reflect.Type) (*Plan, error)
}

// NewCache creates a cache that fills misses with build.
func NewCache(build func(reflect.Type) (*Plan, error)) *Cache {
	return &Cache{build: build}
}

// Get returns the plan for t, building it on a miss. Failed builds are not
// cached.
func (c *Cache) Get(t reflect.Type) (*Plan, error) {
	if p, ok := c.plans.Load(t); ok {
		return p.(*Plan), nil
	}

	epoch := c.epoch.Load()

	p, err := c.build(t)
	if err != nil {
		return nil, err
	}

	actual, _ := c.plans.LoadOrStore(t, p)

	// Clear bumps the epoch before emptying the map, so a Clear that raced
	// the build is seen here or removes the entry itself.
	if c.epoch.Load() != epoch {
		c.plans.CompareAndDelete(t, p)
		return p, nil
	}

	return actual.(*Plan), nil
}

// Clear drops every cached plan, including plans still being built.
func (c *Cache) Clear() {
	c.epoch.Add(1)
	c.plans.Clear()
}

// Len returns the number of cached plans.
func (c *Cache) Len() int {
	n := 0

	c.plans.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
