package primitive

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrNotAllowed is returned by Convert when no enabled category admits the
// requested pair of types.
var ErrNotAllowed = errors.New("conversion not allowed")

type convertFunc func(v reflect.Value, to reflect.Type) (reflect.Value, error)

var converters map[ConversionPair]convertFunc

var stringType = reflect.TypeOf("")

func init() {
	converters = map[ConversionPair]convertFunc{}

	// CategorySafeNumber
	// CategoryUnsafeNumber
	for fromKind := KindEnum(0); int(fromKind) < KindTotal; fromKind++ {
		if !fromKind.IsNumber() {
			continue
		}

		for toKind := KindEnum(0); int(toKind) < KindTotal; toKind++ {
			if toKind.IsNumber() {
				converters[ConversionPair{fromKind, toKind}] = numberToNumber
			}
		}
	}

	// CategoryTextNumber
	for numberKind := KindEnum(0); int(numberKind) < KindTotal; numberKind++ {
		if !numberKind.IsNumber() {
			continue
		}

		converters[ConversionPair{numberKind, KindString}] = numberToText
		converters[ConversionPair{KindString, numberKind}] = textToNumber
	}

	// CategoryNumericBool, CategoryTimestamp, CategoryNanoseconds
	for intKind := KindEnum(0); int(intKind) < KindTotal; intKind++ {
		if !intKind.IsInteger() {
			continue
		}

		converters[ConversionPair{intKind, KindBool}] = numberToBool
		converters[ConversionPair{KindBool, intKind}] = boolToNumber
		converters[ConversionPair{intKind, KindTime}] = unixToTime
		converters[ConversionPair{KindTime, intKind}] = timeToUnix
		converters[ConversionPair{intKind, KindDuration}] = nanosToDuration
		converters[ConversionPair{KindDuration, intKind}] = durationToNanos
	}

	// CategoryTextualBool
	converters[ConversionPair{KindString, KindBool}] = textToBool
	converters[ConversionPair{KindBool, KindString}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
		return reflect.ValueOf(strconv.FormatBool(v.Bool())).Convert(to), nil
	}

	// CategoryDatetime
	converters[ConversionPair{KindString, KindTime}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(t), nil
	}
	converters[ConversionPair{KindTime, KindString}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
		return reflect.ValueOf(v.Interface().(time.Time).Format(time.RFC3339Nano)), nil
	}

	// CategoryDuration
	converters[ConversionPair{KindString, KindDuration}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
		d, err := time.ParseDuration(v.String())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}
	converters[ConversionPair{KindDuration, KindString}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
		return reflect.ValueOf(time.Duration(v.Int()).String()), nil
	}

	// CategorySeconds
	for _, floatKind := range []KindEnum{KindFloat32, KindFloat64} {
		converters[ConversionPair{floatKind, KindDuration}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Float() * float64(time.Second))), nil
		}
		converters[ConversionPair{KindDuration, floatKind}] = func(v reflect.Value, to reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).Seconds()).Convert(to), nil
		}
	}

	// CategoryEnumString
	converters[ConversionPair{KindString, KindPrimitiveEnum}] = textToEnum
	converters[ConversionPair{KindPrimitiveEnum, KindString}] = enumToText
	converters[ConversionPair{KindPrimitiveEnum, KindPrimitiveEnum}] = enumToEnum
}

// CanConvert reports whether a value of type from can be converted to type
// to using the given categories.
func CanConvert(from, to reflect.Type, categories CategoryEnum) bool {
	fromKind, toKind := FromReflectType(from), FromReflectType(to)
	if fromKind == 0 || toKind == 0 {
		return false
	}
	pair := ConversionPair{fromKind, toKind}
	if _, ok := converters[pair]; !ok {
		return false
	}
	return categories.Allows(pair)
}

// Convert converts v to type to.
func Convert(v reflect.Value, to reflect.Type, categories CategoryEnum) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(to), nil
	}
	if v.Type() == to {
		return v, nil
	}
	if !CanConvert(v.Type(), to, categories) {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAllowed, v.Type(), to)
	}

	pair := ConversionPair{FromReflectType(v.Type()), FromReflectType(to)}
	res, err := converters[pair](v, to)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("convert %s to %s: %w", v.Type(), to, err)
	}
	if res.Type() != to {
		res = res.Convert(to)
	}
	return res, nil
}

func numberToNumber(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	return v.Convert(to), nil
}

func numberToText(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	kind := FromReflectType(v.Type())

	var s string
	switch {
	case kind.IsSigned():
		s = strconv.FormatInt(v.Int(), 10)
	case kind.IsUnsigned():
		s = strconv.FormatUint(v.Uint(), 10)
	default:
		s = strconv.FormatFloat(v.Float(), 'f', -1, kind.Bits())
	}

	return reflect.ValueOf(s), nil
}

func textToNumber(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	kind := FromReflectType(to)
	text := strings.TrimSpace(v.String())

	switch {
	case kind.IsSigned():
		n, err := strconv.ParseInt(text, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(to), nil
	case kind.IsUnsigned():
		n, err := strconv.ParseUint(text, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(to), nil
	default:
		f, err := strconv.ParseFloat(text, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(to), nil
	}
}

// 0, 1 - valid, other numbers is error
func numberToBool(v reflect.Value, _ reflect.Type) (reflect.Value, error) {
	n, err := asInt64(v)
	if err != nil {
		return reflect.Value{}, err
	}

	switch n {
	case 0:
		return reflect.ValueOf(false), nil
	case 1:
		return reflect.ValueOf(true), nil
	default:
		return reflect.Value{}, fmt.Errorf("only numbers 0 and 1 are allowed for bool, got: %d", n)
	}
}

func boolToNumber(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if v.Bool() {
		return reflect.ValueOf(1).Convert(to), nil
	}
	return reflect.ValueOf(0).Convert(to), nil
}

func textToBool(v reflect.Value, _ reflect.Type) (reflect.Value, error) {
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "true", "yes", "on":
		return reflect.ValueOf(true), nil
	case "false", "no", "off":
		return reflect.ValueOf(false), nil
	default:
		return reflect.Value{}, fmt.Errorf("only strings true/false, yes/no, on/off are allowed for bool, got: %s", v.String())
	}
}

func unixToTime(v reflect.Value, _ reflect.Type) (reflect.Value, error) {
	n, err := asInt64(v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(time.Unix(n, 0).UTC()), nil
}

func timeToUnix(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	return fromInt64(v.Interface().(time.Time).Unix(), to)
}

func nanosToDuration(v reflect.Value, _ reflect.Type) (reflect.Value, error) {
	n, err := asInt64(v)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(time.Duration(n)), nil
}

func durationToNanos(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	return fromInt64(v.Int(), to)
}

// enum values are matched through their textual form: fmt.Stringer or
// encoding.TextMarshaler on the way out, TextUnmarshaler on the way in,
// falling back to the underlying string kind.
func enumToText(v reflect.Value, _ reflect.Type) (reflect.Value, error) {
	if m, ok := v.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(string(b)), nil
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return reflect.ValueOf(s.String()), nil
	}
	if v.Kind() == reflect.String {
		return reflect.ValueOf(v.String()), nil
	}
	return reflect.Value{}, fmt.Errorf("enum %s has no textual form", v.Type())
}

func textToEnum(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(to)
	if u, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(v.String())); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}
	if to.Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("enum %s cannot be parsed from text", to)
	}

	res := v.Convert(to)
	if valid, ok := res.Interface().(interface{ IsValid() bool }); ok && !valid.IsValid() {
		return reflect.Value{}, fmt.Errorf("%q is not a valid %s", v.String(), to)
	}
	return res, nil
}

func enumToEnum(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if v.Kind() == to.Kind() {
		return v.Convert(to), nil
	}
	text, err := enumToText(v, stringType)
	if err != nil {
		return reflect.Value{}, err
	}
	return textToEnum(text, to)
}

func asInt64(v reflect.Value) (int64, error) {
	if FromReflectType(v.Type()).IsUnsigned() {
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	}
	return v.Int(), nil
}

func fromInt64(n int64, to reflect.Type) (reflect.Value, error) {
	res := reflect.New(to).Elem()
	if FromReflectType(to).IsUnsigned() {
		if n < 0 || res.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, to)
		}
		res.SetUint(uint64(n))
		return res, nil
	}
	if res.OverflowInt(n) {
		return reflect.Value{}, fmt.Errorf("value %d overflows %s", n, to)
	}
	res.SetInt(n)
	return res, nil
}
