// Package primitive classifies scalar Go types and converts values between
// them according to a set of enabled conversion categories.
package primitive

import (
	"reflect"
	"strconv"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum identifies the scalar shape of a type as far as value conversion
// is concerned. The zero value means "not a scalar".
type KindEnum int

const (
	_ KindEnum = iota

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named integer or string type

	// KindTotal is the number of kinds, including the zero one
	KindTotal = int(iota)
)

type numberClass uint8

const (
	notNumber numberClass = iota
	signed
	unsigned
	float
)

// kindTraits describes the value range of a number kind. minBits and
// maxBits differ only for int and uint whose width depends on the platform.
// For floats they hold the mantissa width, the largest integer width stored
// without loss.
type kindTraits struct {
	class            numberClass
	minBits, maxBits int
	size             int
}

var traits = [KindTotal]kindTraits{
	KindInt:     {signed, 32, 64, strconv.IntSize},
	KindInt8:    {signed, 8, 8, 8},
	KindInt16:   {signed, 16, 16, 16},
	KindInt32:   {signed, 32, 32, 32},
	KindInt64:   {signed, 64, 64, 64},
	KindUint:    {unsigned, 32, 64, strconv.IntSize},
	KindUint8:   {unsigned, 8, 8, 8},
	KindUint16:  {unsigned, 16, 16, 16},
	KindUint32:  {unsigned, 32, 32, 32},
	KindUint64:  {unsigned, 64, 64, 64},
	KindFloat32: {float, 24, 24, 32},
	KindFloat64: {float, 53, 53, 64},
}

func (k KindEnum) traits() kindTraits {
	if k <= 0 || int(k) >= KindTotal {
		return kindTraits{}
	}

	return traits[k]
}

func (k KindEnum) IsNumber() bool   { return k.traits().class != notNumber }
func (k KindEnum) IsInteger() bool  { return k.IsSigned() || k.IsUnsigned() }
func (k KindEnum) IsFloat() bool    { return k.traits().class == float }
func (k KindEnum) IsSigned() bool   { return k.traits().class == signed }
func (k KindEnum) IsUnsigned() bool { return k.traits().class == unsigned }

// Bits is the storage size of a number kind, as strconv expects it.
func (k KindEnum) Bits() int {
	t := k.traits()
	if t.class == notNumber {
		panic("bits requested for a non-number kind: " + k.String())
	}

	return t.size
}

// widensTo reports whether every value of k is exactly representable in to.
func (k KindEnum) widensTo(to KindEnum) bool {
	from, dst := k.traits(), to.traits()
	if from.class == notNumber || dst.class == notNumber {
		return false
	}

	if k == to {
		return true
	}

	switch {
	case from.class == float:
		return dst.class == float && from.maxBits <= dst.minBits
	case dst.class == float:
		return from.maxBits <= dst.minBits
	case from.class == dst.class:
		return from.maxBits <= dst.minBits
	case from.class == unsigned:
		// one bit of a signed type goes to the sign
		return from.maxBits < dst.minBits
	default:
		return false
	}
}

var scalarKinds = map[reflect.Type]KindEnum{
	reflect.TypeFor[int]():           KindInt,
	reflect.TypeFor[int8]():          KindInt8,
	reflect.TypeFor[int16]():         KindInt16,
	reflect.TypeFor[int32]():         KindInt32,
	reflect.TypeFor[int64]():         KindInt64,
	reflect.TypeFor[uint]():          KindUint,
	reflect.TypeFor[uint8]():         KindUint8,
	reflect.TypeFor[uint16]():        KindUint16,
	reflect.TypeFor[uint32]():        KindUint32,
	reflect.TypeFor[uint64]():        KindUint64,
	reflect.TypeFor[float32]():       KindFloat32,
	reflect.TypeFor[float64]():       KindFloat64,
	reflect.TypeFor[bool]():          KindBool,
	reflect.TypeFor[string]():        KindString,
	reflect.TypeFor[time.Time]():     KindTime,
	reflect.TypeFor[time.Duration](): KindDuration,
}

// FromReflectType classifies rtype. Named integer and string types that are
// not one of the predeclared ones are reported as KindPrimitiveEnum; anything
// else that is not scalar yields the zero KindEnum.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	if k, ok := scalarKinds[rtype]; ok {
		return k
	}

	switch rtype.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return KindPrimitiveEnum
	default:
		return 0
	}
}

// IsScalar reports whether rtype is classified as any known kind.
func IsScalar(rtype reflect.Type) bool {
	return FromReflectType(rtype) != 0
}
