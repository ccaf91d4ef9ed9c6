package convert

import (
	"reflect"

	"tomapper/internal/common"
	"tomapper/primitive"
)

// ShapeEnum is the coarse shape of a field pair, used to pick a converter
// family and to explain resolution failures.
type ShapeEnum int

const (
	ShapeUnknown ShapeEnum = iota
	ShapePrimitive
	ShapeInterface
	ShapeSlice
	ShapeMap
	ShapeStruct
	ShapePointer

	// ShapeTotal is a constant that represents the total number of shapes defined
	ShapeTotal = int(iota)
)

func (s ShapeEnum) String() string {
	switch s {
	case ShapePrimitive:
		return "primitive"
	case ShapeInterface:
		return "interface"
	case ShapeSlice:
		return "slice"
	case ShapeMap:
		return "map"
	case ShapeStruct:
		return "struct"
	case ShapePointer:
		return "pointer"
	default:
		return common.UnknownStr
	}
}

// Dispatch classifies the pair (src, dst) after stripping pointers from both
// sides. Pairs differing only by one pointer level are ShapePointer.
func Dispatch(src, dst reflect.Type) ShapeEnum {
	srcDepth, srcBase := ptrDepthAndBase(src)
	dstDepth, dstBase := ptrDepthAndBase(dst)

	if srcBase == dstBase && srcDepth != dstDepth {
		return ShapePointer
	}

	if dstBase.Kind() == reflect.Interface {
		return ShapeInterface
	}

	if dstBase.Kind() == reflect.Slice || dstBase.Kind() == reflect.Array {
		if srcBase.Kind() == reflect.Slice || srcBase.Kind() == reflect.Array {
			return ShapeSlice
		}

		return ShapeUnknown
	}

	if dstBase.Kind() == reflect.Map {
		if srcBase.Kind() == reflect.Map {
			return ShapeMap
		}

		return ShapeUnknown
	}

	if primitive.IsScalar(dstBase) {
		if primitive.IsScalar(srcBase) {
			return ShapePrimitive
		}

		return ShapeUnknown
	}

	if dstBase.Kind() == reflect.Struct {
		if srcBase.Kind() == reflect.Struct {
			return ShapeStruct
		}

		return ShapeUnknown
	}

	return ShapeUnknown
}

// ptrDepthAndBase returns the pointer depth and the final base type.
func ptrDepthAndBase(t reflect.Type) (depth int, base reflect.Type) {
	depth, base = 0, t
	for base != nil && base.Kind() == reflect.Pointer {
		depth++
		base = base.Elem()
	}

	return
}
