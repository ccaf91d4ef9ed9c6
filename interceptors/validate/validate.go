// Package validate checks converted domain objects with struct validation
// rules.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tomapper/convert"
	"tomapper/maperr"
)

// Interceptor validates the result of every to-domain conversion. With
// Sources set it also validates the transfer object before conversion.
type Interceptor struct {
	v *validator.Validate

	// Sources enables validation of the transfer object.
	Sources bool
	// ToTransfer also validates transfer objects produced from domain objects.
	ToTransfer bool
}

// New returns an interceptor using a fresh validator. Pass a configured
// validator to share custom rules.
func New(v *validator.Validate) *Interceptor {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}

	return &Interceptor{v: v}
}

var _ convert.Interceptor = (*Interceptor)(nil)

func (i *Interceptor) Intercept(src, dst any, dir convert.Direction, tags []string, next convert.Chain) (any, error) {
	if i.Sources && dir == convert.DirectionToDomain {
		if err := i.check(src); err != nil {
			return nil, err
		}
	}

	res, err := next(src, dst, dir, tags)
	if err != nil {
		return nil, err
	}

	if dir == convert.DirectionToDomain || i.ToTransfer {
		if err := i.check(res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (i *Interceptor) check(obj any) error {
	if obj == nil {
		return nil
	}

	err := i.v.Struct(obj)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// not a struct, nothing to validate
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	return maperr.New(maperr.PhaseConvert, maperr.KindValidation).
		Type(typeName(obj)).
		Detail("invalid fields " + strings.Join(failedFields(fields), ", ")).
		Cause(fields).
		Build()
}

func failedFields(fields validator.ValidationErrors) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.StructNamespace())
	}

	return out
}

func typeName(obj any) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.String()
}
