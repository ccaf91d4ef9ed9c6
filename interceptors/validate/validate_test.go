package validate_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/examples/person"
	"tomapper/interceptors/validate"
	"tomapper/mapper"
	"tomapper/maperr"
	"tomapper/mapping"
)

type accountTO struct {
	Login string
	Mail  string `validate:"omitempty,email"`
}

type account struct {
	Login string `validate:"required,min=3"`
	Mail  string
}

func newEngine(t *testing.T, ic *validate.Interceptor) *mapper.Engine {
	t.Helper()

	catalog := mapping.NewCatalog().MustRegister(mapping.New[accountTO, account]().Build())

	e, err := mapper.New(catalog, mapper.WithInterceptors(ic))
	require.NoError(t, err)

	return e
}

func TestValidatesDomainResult(t *testing.T) {
	e := newEngine(t, validate.New(nil))

	a, err := mapper.To[*account](e, &accountTO{Login: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", a.Login)

	_, err = e.ConvertNew(&accountTO{Login: "x"})
	require.Error(t, err)
	assert.True(t, maperr.Is(err, maperr.KindValidation))
	assert.Contains(t, err.Error(), "account.Login")

	var fields validator.ValidationErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "min", fields[0].Tag())
}

func TestSourcesAreOptional(t *testing.T) {
	src := &accountTO{Login: "admin", Mail: "not-a-mail"}

	_, err := newEngine(t, validate.New(nil)).ConvertNew(src)
	require.NoError(t, err)

	ic := validate.New(nil)
	ic.Sources = true

	_, err = newEngine(t, ic).ConvertNew(src)
	assert.True(t, maperr.Is(err, maperr.KindValidation))
}

func TestToTransferSkippedByDefault(t *testing.T) {
	e := newEngine(t, validate.New(nil))

	to, err := mapper.To[*accountTO](e, &account{Mail: "bad"})
	require.NoError(t, err)
	assert.Equal(t, "bad", to.Mail)

	ic := validate.New(nil)
	ic.ToTransfer = true

	_, err = mapper.To[*accountTO](newEngine(t, ic), &account{Mail: "bad"})
	assert.True(t, maperr.Is(err, maperr.KindValidation))
}

func TestNestedObjects(t *testing.T) {
	ic := validate.New(nil)
	ic.Sources = true

	e, err := mapper.New(person.Catalog(), mapper.WithInterceptors(ic))
	require.NoError(t, err)

	_, err = e.ConvertNew(&person.PersonTO{Email: "nope", Address: &person.AddressTO{ID: 1}})
	assert.True(t, maperr.Is(err, maperr.KindValidation))

	p, err := mapper.To[*person.Person](e, &person.PersonTO{Email: "me@example.com", Address: &person.AddressTO{ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Address.ID)
}
