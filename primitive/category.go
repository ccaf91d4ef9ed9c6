package primitive

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryEnum is a bit set of conversion families that may be applied
// implicitly between two scalar fields.
//
// Categories are directed: CategorySafeNumber allows int32 -> int64 but not
// the reverse. Field converters check both directions of a pair.
type CategoryEnum int

// ConversionPair is a directed (from, to) kind pair.
type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // widening number conversions
	CategoryUnsafeNumber                          // narrowing number conversions
	CategoryTextNumber                            // number <-> decimal string
	CategoryNumericBool                           // integer 0/1 <-> bool
	CategoryTextualBool                           // yes/no, on/off, true/false <-> bool
	CategoryDatetime                              // RFC 3339 string <-> time.Time
	CategoryTimestamp                             // Unix seconds <-> time.Time
	CategoryDuration                              // "2h45m" <-> time.Duration
	CategoryNanoseconds                           // integer nanoseconds <-> time.Duration
	CategorySeconds                               // float seconds <-> time.Duration
	CategoryEnumString                            // named integer or string type <-> string

	CategoryAll  = (1 << iota) - 1
	CategoryNone = 0
)

type pairSet map[ConversionPair]struct{}

func (s pairSet) add(from, to KindEnum) { s[ConversionPair{from, to}] = struct{}{} }

func (s pairSet) both(a, b KindEnum) {
	s.add(a, b)
	s.add(b, a)
}

// kinds yields every kind matching keep.
func kinds(keep func(KindEnum) bool) []KindEnum {
	var res []KindEnum
	for k := KindEnum(1); int(k) < KindTotal; k++ {
		if keep(k) {
			res = append(res, k)
		}
	}

	return res
}

var conversionPairs = map[CategoryEnum]pairSet{
	CategorySafeNumber:   numberPairs(true),
	CategoryUnsafeNumber: numberPairs(false),
	CategoryTextNumber:   pairsWith(KindString, KindEnum.IsNumber),
	CategoryNumericBool:  pairsWith(KindBool, KindEnum.IsInteger),
	CategoryTextualBool:  pairsWith(KindBool, is(KindString)),
	CategoryDatetime:     pairsWith(KindTime, is(KindString)),
	CategoryTimestamp:    pairsWith(KindTime, KindEnum.IsInteger),
	CategoryDuration:     pairsWith(KindDuration, is(KindString)),
	// uint64 nanoseconds overflow time.Duration
	CategoryNanoseconds: pairsWith(KindDuration, func(k KindEnum) bool { return k.IsInteger() && k != KindUint64 }),
	CategorySeconds:     pairsWith(KindDuration, KindEnum.IsFloat),
	CategoryEnumString:  enumPairs(),
}

func is(kind KindEnum) func(KindEnum) bool {
	return func(k KindEnum) bool { return k == kind }
}

// pairsWith links kind both ways with every kind matching other.
func pairsWith(kind KindEnum, other func(KindEnum) bool) pairSet {
	s := pairSet{}
	for _, k := range kinds(other) {
		s.both(kind, k)
	}

	return s
}

// numberPairs returns the widening number pairs when safe is set, all other
// number pairs otherwise.
func numberPairs(safe bool) pairSet {
	s := pairSet{}
	numbers := kinds(KindEnum.IsNumber)

	for _, from := range numbers {
		for _, to := range numbers {
			if from.widensTo(to) == safe {
				s.add(from, to)
			}
		}
	}

	return s
}

func enumPairs() pairSet {
	s := pairSet{}
	s.both(KindString, KindPrimitiveEnum)
	s.add(KindPrimitiveEnum, KindPrimitiveEnum)

	return s
}

var categoryNames = map[string]CategoryEnum{
	"safe_number":   CategorySafeNumber,
	"unsafe_number": CategoryUnsafeNumber,
	"text_number":   CategoryTextNumber,
	"numeric_bool":  CategoryNumericBool,
	"textual_bool":  CategoryTextualBool,
	"datetime":      CategoryDatetime,
	"timestamp":     CategoryTimestamp,
	"duration":      CategoryDuration,
	"nanoseconds":   CategoryNanoseconds,
	"seconds":       CategorySeconds,
	"enum_string":   CategoryEnumString,
	"all":           CategoryAll,
	"none":          CategoryNone,
}

// ParseCategories combines named categories such as "safe_number" or "all".
func ParseCategories(names []string) (CategoryEnum, error) {
	var res CategoryEnum
	for _, name := range names {
		c, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return CategoryNone, fmt.Errorf("unknown conversion category %q", name)
		}
		res |= c
	}
	return res, nil
}

// Names lists the single categories contained in c, sorted.
func (c CategoryEnum) Names() []string {
	var res []string
	for name, v := range categoryNames {
		if v == CategoryAll || v == CategoryNone {
			continue
		}
		if c&v != 0 {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// Allows reports whether any category in c admits the pair.
func (c CategoryEnum) Allows(pair ConversionPair) bool {
	for cat, pairs := range conversionPairs {
		if c&cat == 0 {
			continue
		}
		if _, ok := pairs[pair]; ok {
			return true
		}
	}
	return false
}
