package convert

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/maperr"
	"tomapper/primitive"
)

var errUnexpected = errors.New("unexpected conversion")

type upperConverter struct{ engine Engine }

func (u *upperConverter) Name() string       { return "upper" }
func (u *upperConverter) SetEngine(e Engine) { u.engine = e }
func (u *upperConverter) CanConvert(a, b reflect.Type) bool {
	return a.Kind() == reflect.String && b.Kind() == reflect.String
}
func (u *upperConverter) ToDomain(in Input) (reflect.Value, error)   { return in.Value, nil }
func (u *upperConverter) ToTransfer(in Input) (reflect.Value, error) { return in.Value, nil }

var (
	stringT = reflect.TypeFor[string]()
	intT    = reflect.TypeFor[int]()
)

func TestRegistry_Resolve(t *testing.T) {
	engine := &fakeEngine{}
	upper := &upperConverter{}
	r := NewRegistry(engine, []TypeConverter{upper, Primitive{Categories: primitive.CategoryAll}}, nil)

	t.Run("first applicable in order", func(t *testing.T) {
		tc, err := r.Resolve("", nil, stringT, stringT)
		require.NoError(t, err)
		assert.Same(t, upper, tc)
		assert.Same(t, engine, upper.engine, "engine is injected on build")
	})

	t.Run("identity is the fallback", func(t *testing.T) {
		tc, err := r.Resolve("", nil, reflect.TypeFor[[]byte](), reflect.TypeFor[[]byte]())
		require.NoError(t, err)
		assert.Equal(t, Identity{}, tc)
	})

	t.Run("explicit reference bypasses applicability", func(t *testing.T) {
		ref := UUID{}
		tc, err := r.Resolve("upper", ref, intT, intT)
		require.NoError(t, err)
		assert.Equal(t, ref, tc)
	})

	t.Run("explicit name bypasses applicability", func(t *testing.T) {
		tc, err := r.Resolve("upper", nil, intT, reflect.TypeFor[bool]())
		require.NoError(t, err)
		assert.Same(t, upper, tc)

		tc, err = r.Resolve("*convert.upperConverter", nil, intT, intT)
		require.NoError(t, err)
		assert.Same(t, upper, tc)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.Resolve("nope", nil, intT, intT)
		assert.ErrorIs(t, err, maperr.ErrUnresolvedType)
	})

	t.Run("mismatch is a build error", func(t *testing.T) {
		_, err := r.Resolve("", nil, reflect.TypeFor[[]int](), reflect.TypeFor[map[int]int]())
		require.Error(t, err)
		assert.ErrorIs(t, err, maperr.ErrConversion)
		assert.Contains(t, err.Error(), "[]int -> map[int]int")
	})

	all := r.Converters()
	require.Len(t, all, 3)
	assert.Equal(t, Identity{}, all[2])
}

func TestRegistry_FactoriesInstantiateOnce(t *testing.T) {
	created := 0
	factories := NewFactories()
	factories.Register("upper", func() TypeConverter {
		created++
		return &upperConverter{}
	})

	engine := &fakeEngine{}
	r := NewRegistry(engine, nil, factories)

	first, err := r.Resolve("upper", nil, intT, intT)
	require.NoError(t, err)
	second, err := r.Resolve("upper", nil, stringT, stringT)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Same(t, engine, first.(*upperConverter).engine)

	rebuilt := NewRegistry(engine, nil, factories)
	third, ok := rebuilt.ByName("upper")
	require.True(t, ok)
	assert.Same(t, first, third, "instances survive registry rebuilds")
	assert.Equal(t, 1, created)
}

func TestRegistry_DoesNotAliasInput(t *testing.T) {
	list := make([]TypeConverter, 1, 4)
	list[0] = UUID{}
	NewRegistry(nil, list, nil)
	assert.Equal(t, []TypeConverter{UUID{}}, list[:1])
	assert.Nil(t, list[:2][1])
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "upper", NameOf(&upperConverter{}))
	assert.Equal(t, "fakeEngine", NameOf(&fakeEngine{}))
	assert.Equal(t, "", NameOf(nil))
}

func TestPassThrough(t *testing.T) {
	assert.NoError(t, PassThrough(nil))

	err := PassThrough(errUnexpected)
	again := PassThrough(err)
	assert.Same(t, err, again)
	assert.ErrorIs(t, err, errUnexpected)

	orig, ok := PassedThrough(again)
	require.True(t, ok)
	assert.Same(t, errUnexpected, orig)

	_, ok = PassedThrough(errUnexpected)
	assert.False(t, ok)
}
