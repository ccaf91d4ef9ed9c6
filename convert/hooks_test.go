package convert

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct{ Name string }

func appendAfter(marker string) Interceptor {
	return InterceptorFunc(func(src, dst any, dir Direction, tags []string, next Chain) (any, error) {
		res, err := next(src, dst, dir, tags)
		if err != nil {
			return nil, err
		}
		res.(*named).Name += marker
		return res, nil
	})
}

func TestBuildChain_FirstRegisteredIsOutermost(t *testing.T) {
	var trace []string
	core := func(src, dst any, dir Direction, tags []string) (any, error) {
		trace = append(trace, "core")
		dst.(*named).Name = src.(*named).Name
		return dst, nil
	}
	tracing := func(name string) Interceptor {
		return InterceptorFunc(func(src, dst any, dir Direction, tags []string, next Chain) (any, error) {
			trace = append(trace, name+">")
			res, err := next(src, dst, dir, tags)
			trace = append(trace, "<"+name)
			return res, err
		})
	}

	chain := BuildChain(core, []Interceptor{appendAfter("X"), appendAfter("z"), tracing("t")})
	res, err := chain(&named{Name: "aaa"}, &named{}, DirectionToDomain, nil)
	require.NoError(t, err)

	assert.Equal(t, "aaazX", res.(*named).Name)
	assert.Equal(t, []string{"t>", "core", "<t"}, trace)
}

func TestBuildChain_NoInterceptors(t *testing.T) {
	called := false
	core := func(src, dst any, dir Direction, tags []string) (any, error) {
		called = true
		return dst, nil
	}
	_, err := BuildChain(core, nil)(nil, nil, DirectionToTransfer, nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestPreChain(t *testing.T) {
	var ran []string
	mk := func(name string, res Result) PreConverter {
		return NewPre(name, func(src, dst any, tags []string) (Result, error) {
			ran = append(ran, name)
			return res, nil
		}, nil)
	}

	chain := PreChain{mk("a", Continue), mk("b", Skip), mk("c", Continue)}
	res, err := chain.PreToDomain(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Skip, res)
	assert.Equal(t, []string{"a", "b"}, ran)

	res, err = chain.PreToTransfer(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Continue, res, "nil hook functions continue")
	assert.Equal(t, "b", NameOf(chain[1]))
}

func TestPostChain(t *testing.T) {
	var ran []string
	chain := PostChain{
		NewPost("one", func(src, dst any, tags []string) error {
			ran = append(ran, "one")
			return nil
		}, nil),
		NewPost("two", func(src, dst any, tags []string) error {
			ran = append(ran, "two")
			return errUnexpected
		}, nil),
	}

	assert.ErrorIs(t, chain.PostToDomain(nil, nil, nil), errUnexpected)
	assert.Equal(t, []string{"one", "two"}, ran)
	assert.NoError(t, chain.PostToTransfer(nil, nil, nil))
}

type proxy struct{ target any }

func (p proxy) UnwrapObject() any { return p.target }

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s *square) Area() float64 { return s.Side * s.Side }

func TestFindersAndReplacers(t *testing.T) {
	obj, err := NewInstanceFinder{}.Find(nil, reflect.TypeFor[*item](), nil)
	require.NoError(t, err)
	assert.IsType(t, &item{}, obj)

	obj, err = NewInstanceFinder{}.Find(nil, reflect.TypeFor[shape](), nil)
	require.NoError(t, err)
	assert.Nil(t, obj)

	target := &item{Name: "target"}
	assert.Same(t, target, UnwrapReplacer{}.ReplaceObject(proxy{target: proxy{target: target}}))
	assert.Equal(t, proxy{}, UnwrapReplacer{}.ReplaceObject(proxy{}))
	assert.Equal(t, 3, UnwrapReplacer{}.ReplaceObject(3))

	concrete := ConcreteTypes{reflect.TypeFor[shape](): reflect.TypeFor[square]()}
	assert.Equal(t, reflect.TypeFor[square](), concrete.ReplaceType(reflect.TypeFor[shape]()))
	assert.Equal(t, intT, concrete.ReplaceType(intT))

	finder := FinderFunc(func(src any, target reflect.Type, tags []string) (any, error) {
		return src, nil
	})
	obj, err = finder.Find(target, nil, nil)
	require.NoError(t, err)
	assert.Same(t, target, obj)

	assert.Equal(t, "to_domain", DirectionToDomain.String())
	assert.Equal(t, "to_transfer", DirectionToTransfer.String())
}
