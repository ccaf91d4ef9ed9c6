package plan

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/mapping"
)

func TestCache_ReusesPlan(t *testing.T) {
	b := newBuilder(mapping.New[personTO, person]().Build())

	builds := 0
	c := NewCache(func(t reflect.Type) (*Plan, error) {
		builds++
		return b.Build(t)
	})

	first, err := c.Get(reflect.TypeFor[personTO]())
	require.NoError(t, err)

	second, err := c.Get(reflect.TypeFor[personTO]())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())

	third, err := c.Get(reflect.TypeFor[personTO]())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, builds)
}

func TestCache_DoesNotStoreFailures(t *testing.T) {
	fail := errors.New("boom")
	calls := 0

	c := NewCache(func(reflect.Type) (*Plan, error) {
		calls++
		return nil, fail
	})

	_, err := c.Get(reflect.TypeFor[personTO]())
	assert.ErrorIs(t, err, fail)

	_, err = c.Get(reflect.TypeFor[personTO]())
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentMissesAgree(t *testing.T) {
	b := newBuilder(mapping.New[personTO, person]().Build())
	c := NewCache(b.Build)

	const n = 16

	plans := make([]*Plan, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			p, err := c.Get(reflect.TypeFor[personTO]())
			assert.NoError(t, err)

			plans[i] = p
		}()
	}

	wg.Wait()

	for _, p := range plans {
		assert.Same(t, plans[0], p)
	}
}

func TestCache_ClearDuringBuildDropsPlan(t *testing.T) {
	b := newBuilder(mapping.New[personTO, person]().Build())

	started := make(chan struct{})
	release := make(chan struct{})
	builds := 0

	c := NewCache(func(t reflect.Type) (*Plan, error) {
		builds++
		if builds == 1 {
			close(started)
			<-release
		}

		return b.Build(t)
	})

	done := make(chan *Plan)
	go func() {
		p, err := c.Get(reflect.TypeFor[personTO]())
		assert.NoError(t, err)
		done <- p
	}()

	<-started
	c.Clear()
	close(release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, 0, c.Len())

	fresh, err := c.Get(reflect.TypeFor[personTO]())
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 1, c.Len())
}
