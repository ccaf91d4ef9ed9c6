package primitive

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromReflectType(t *testing.T) {
	t.Parallel()

	type IntEnum int
	type StringEnum string
	type Flag bool

	tests := []struct {
		typ  reflect.Type
		want KindEnum
	}{
		{reflect.TypeFor[int](), KindInt},
		{reflect.TypeFor[uint16](), KindUint16},
		{reflect.TypeFor[float32](), KindFloat32},
		{reflect.TypeFor[string](), KindString},
		{reflect.TypeFor[IntEnum](), KindPrimitiveEnum},
		{reflect.TypeFor[StringEnum](), KindPrimitiveEnum},
		{reflect.TypeFor[time.Duration](), KindDuration},
		{reflect.TypeFor[time.Time](), KindTime},
		{reflect.TypeFor[Flag](), 0},
		{reflect.TypeFor[struct{}](), 0},
		{reflect.TypeFor[*int](), 0},
		{nil, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromReflectType(tt.typ), "%v", tt.typ)
	}
}

func TestKindClasses(t *testing.T) {
	t.Parallel()

	assert.True(t, KindInt8.IsSigned())
	assert.True(t, KindUint.IsUnsigned())
	assert.True(t, KindFloat64.IsFloat())
	assert.True(t, KindUint64.IsInteger())
	assert.False(t, KindString.IsNumber())
	assert.False(t, KindEnum(0).IsNumber())

	assert.Equal(t, strconv.IntSize, KindInt.Bits())
	assert.Equal(t, 16, KindUint16.Bits())
	assert.Equal(t, 32, KindFloat32.Bits())
	assert.Panics(t, func() { KindBool.Bits() })
}

func TestWidening(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to KindEnum
		want     bool
	}{
		{KindInt, KindInt, true},
		{KindInt, KindInt64, true},
		{KindInt64, KindInt, false},
		{KindInt8, KindInt16, true},
		{KindInt32, KindInt, true},
		{KindInt16, KindInt8, false},
		{KindUint8, KindInt16, true},
		{KindUint8, KindInt8, false},
		{KindUint32, KindInt64, true},
		{KindUint32, KindInt, false},
		{KindInt8, KindUint8, false},
		{KindInt16, KindFloat32, true},
		{KindInt32, KindFloat32, false},
		{KindInt32, KindFloat64, true},
		{KindInt64, KindFloat64, false},
		{KindFloat32, KindFloat64, true},
		{KindFloat64, KindFloat32, false},
		{KindFloat32, KindInt64, false},
		{KindString, KindInt, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.widensTo(tt.to), "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.want, CategorySafeNumber.Allows(ConversionPair{tt.from, tt.to}), "%s -> %s", tt.from, tt.to)
	}
}

func TestNumberCategoriesPartition(t *testing.T) {
	t.Parallel()

	for _, from := range kinds(KindEnum.IsNumber) {
		for _, to := range kinds(KindEnum.IsNumber) {
			pair := ConversionPair{from, to}
			assert.NotEqual(t,
				CategorySafeNumber.Allows(pair), CategoryUnsafeNumber.Allows(pair), "%s -> %s", from, to)
		}
	}
}
