package convert

import (
	"tomapper/primitive"
)

// Defaults returns the built-in converters in resolution order: nested
// objects, lists, sets, uuids, text enums, pointers and scalars.
func Defaults(categories primitive.CategoryEnum, collections CollectionOptions) []TypeConverter {
	return []TypeConverter{
		&Object{},
		NewList("list", collections),
		NewSet("set", collections),
		UUID{},
		Text{},
		Pointer{},
		Primitive{Categories: categories},
	}
}
