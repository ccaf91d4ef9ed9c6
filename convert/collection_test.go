package convert

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	toListT     = reflect.TypeFor[[]*itemTO]()
	domainListT = reflect.TypeFor[[]*item]()
)

func newTestList(opts CollectionOptions) (*List, *fakeEngine) {
	engine := &fakeEngine{}
	l := NewList("list", opts)
	l.SetEngine(engine)
	return l, engine
}

func TestList_CanConvert(t *testing.T) {
	l, _ := newTestList(CollectionOptions{})
	assert.True(t, l.CanConvert(toListT, domainListT))
	assert.True(t, l.CanConvert(reflect.TypeFor[[]itemTO](), reflect.TypeFor[[]item]()))
	assert.False(t, l.CanConvert(reflect.TypeFor[[]string](), reflect.TypeFor[[]string]()))
	assert.False(t, l.CanConvert(toListT, reflect.TypeFor[map[*item]bool]()))
	assert.False(t, NewList("bare", CollectionOptions{}).CanConvert(toListT, domainListT))
}

func TestList_ConvertsElementsWithTags(t *testing.T) {
	l, engine := newTestList(CollectionOptions{})

	src := []*itemTO{{Name: "b"}, nil, {Name: "a"}}
	v, err := l.ToDomain(Input{Value: reflect.ValueOf(src), Type: domainListT, Tags: []string{"admin"}})
	require.NoError(t, err)

	got := v.Interface().([]*item)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Name)
	assert.Nil(t, got[1])
	assert.Equal(t, "a", got[2].Name)
	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, []string{"admin"}, engine.tags)
}

func TestList_ValueElements(t *testing.T) {
	l, _ := newTestList(CollectionOptions{})

	v, err := l.ToTransfer(Input{Value: reflect.ValueOf([]item{{Name: "x"}}), Type: reflect.TypeFor[[]itemTO]()})
	require.NoError(t, err)
	assert.Equal(t, []itemTO{{Name: "x"}}, v.Interface())
}

func TestList_NilPolicy(t *testing.T) {
	nilSrc := reflect.ValueOf([]*itemTO(nil))

	keep, _ := newTestList(CollectionOptions{KeepNil: true})
	v, err := keep.ToDomain(Input{Value: nilSrc, Type: domainListT})
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	replace, _ := newTestList(CollectionOptions{})
	v, err = replace.ToDomain(Input{Value: nilSrc, Type: domainListT})
	require.NoError(t, err)
	assert.False(t, v.IsNil())
	assert.Equal(t, 0, v.Len())
}

func TestList_ReusesCurrentContainer(t *testing.T) {
	current := make([]*item, 1, 8)
	current[0] = &item{Name: "old"}
	src := reflect.ValueOf([]*itemTO{{Name: "new"}})

	reuse, _ := newTestList(CollectionOptions{})
	v, err := reuse.ToDomain(Input{Value: src, Current: reflect.ValueOf(current), Type: domainListT})
	require.NoError(t, err)
	got := v.Interface().([]*item)
	assert.Equal(t, "new", got[0].Name)
	assert.Equal(t, 8, cap(got), "backing array is reused")
	assert.Equal(t, "new", current[0].Name)

	current[0] = &item{Name: "old"}
	fresh, _ := newTestList(CollectionOptions{AlwaysNew: true})
	v, err = fresh.ToDomain(Input{Value: src, Current: reflect.ValueOf(current), Type: domainListT})
	require.NoError(t, err)
	assert.Equal(t, "new", v.Interface().([]*item)[0].Name)
	assert.Equal(t, "old", current[0].Name)
}

func TestList_Factory(t *testing.T) {
	made := 0
	l, _ := newTestList(CollectionOptions{Factory: func(t reflect.Type, size int) reflect.Value {
		made++
		return reflect.MakeSlice(t, 0, size+10)
	}})

	v, err := l.ToDomain(Input{Value: reflect.ValueOf([]*itemTO{{Name: "a"}}), Type: domainListT})
	require.NoError(t, err)
	assert.Equal(t, 1, made)
	assert.Equal(t, 11, v.Cap())
}

type rank struct{ n int }

func (r *rank) Compare(o *rank) int { return r.n - o.n }

func TestSortNatural(t *testing.T) {
	ints := reflect.ValueOf([]int{3, 1, 2})
	sortNatural(ints)
	assert.Equal(t, []int{1, 2, 3}, ints.Interface())

	strs := reflect.ValueOf([]string{"b", "c", "a"})
	sortNatural(strs)
	assert.Equal(t, []string{"a", "b", "c"}, strs.Interface())

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	times := reflect.ValueOf([]time.Time{day.Add(time.Hour), day})
	sortNatural(times)
	assert.Equal(t, []time.Time{day, day.Add(time.Hour)}, times.Interface())

	ranks := reflect.ValueOf([]*rank{{3}, {1}, {2}})
	sortNatural(ranks)
	got := ranks.Interface().([]*rank)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].n, got[1].n, got[2].n})

	mixed := reflect.ValueOf([]any{2, "a", 1})
	assert.NotPanics(t, func() { sortNatural(mixed) })
	assert.Equal(t, []any{2, "a", 1}, mixed.Interface())

	unordered := reflect.ValueOf([]*item{{Name: "b"}, {Name: "a"}})
	assert.NotPanics(t, func() { sortNatural(unordered) })
}

func TestList_Sort(t *testing.T) {
	l := NewList("sorted", CollectionOptions{Sort: true})
	v, err := l.ToDomain(Input{Value: reflect.ValueOf([]string{"b", "a"}), Type: reflect.TypeFor[[]string]()})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Interface())
}

func TestSet(t *testing.T) {
	engine := &fakeEngine{}
	s := NewSet("set", CollectionOptions{})
	s.SetEngine(engine)

	toSetT := reflect.TypeFor[map[*itemTO]struct{}]()
	domainSetT := reflect.TypeFor[map[*item]bool]()
	assert.True(t, s.CanConvert(toSetT, domainSetT))
	assert.False(t, s.CanConvert(reflect.TypeFor[map[*itemTO]int](), domainSetT))

	src := map[*itemTO]struct{}{{Name: "a"}: {}, {Name: "b"}: {}}
	v, err := s.ToDomain(Input{Value: reflect.ValueOf(src), Type: domainSetT})
	require.NoError(t, err)

	got := v.Interface().(map[*item]bool)
	names := map[string]bool{}
	for k, present := range got {
		names[k.Name] = present
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, names)

	back, err := s.ToTransfer(Input{
		Value: reflect.ValueOf(map[*item]bool{{Name: "in"}: true, {Name: "out"}: false}),
		Type:  toSetT,
	})
	require.NoError(t, err)
	require.Equal(t, 1, back.Len())
	for _, k := range back.MapKeys() {
		assert.Equal(t, "in", k.Interface().(*itemTO).Name)
	}
}

func TestSet_ReuseAndNil(t *testing.T) {
	s := NewSet("strings", CollectionOptions{})
	setT := reflect.TypeFor[map[string]struct{}]()

	current := map[string]struct{}{"stale": {}}
	v, err := s.ToDomain(Input{
		Value:   reflect.ValueOf(map[string]struct{}{"x": {}}),
		Current: reflect.ValueOf(current),
		Type:    setT,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"x": {}}, v.Interface())
	assert.Equal(t, map[string]struct{}{"x": {}}, current, "existing set is cleared and refilled")

	v, err = NewSet("keep", CollectionOptions{KeepNil: true}).ToDomain(Input{
		Value: reflect.ValueOf(map[string]struct{}(nil)),
		Type:  setT,
	})
	require.NoError(t, err)
	assert.True(t, v.IsNil())
}
