package sqlfinder_test

import (
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/examples/person"
	"tomapper/finders/sqlfinder"
	"tomapper/mapper"
	"tomapper/maperr"
)

const addressQuery = "SELECT id, address FROM addresses WHERE id = ?"

func setup(t *testing.T) (*sqlfinder.Finder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := sqlfinder.New(sqlx.NewDb(db, "sqlmock"))
	sqlfinder.RegisterType[person.Address](f, addressQuery, func(to *person.AddressTO) (any, bool) {
		return to.ID, to.ID != 0
	})

	return f, mock
}

func TestFindLoadsRow(t *testing.T) {
	f, mock := setup(t)

	mock.ExpectQuery(regexp.QuoteMeta(addressQuery)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address"}).AddRow(3, "Dorpsstraat 1"))

	e, err := mapper.New(person.Catalog(), mapper.WithObjectFinders(f))
	require.NoError(t, err)

	p, err := mapper.To[*person.Person](e, &person.PersonTO{Name: "ikke", Address: &person.AddressTO{ID: 3}})
	require.NoError(t, err)
	require.NotNil(t, p.Address)
	assert.Equal(t, "Dorpsstraat 1", p.Address.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindMisses(t *testing.T) {
	f, mock := setup(t)

	mock.ExpectQuery(regexp.QuoteMeta(addressQuery)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address"}))

	found, err := f.Find(&person.AddressTO{ID: 8}, reflect.TypeFor[person.Address](), nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	// no key, no query
	found, err = f.Find(&person.AddressTO{}, reflect.TypeFor[person.Address](), nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	// unregistered type
	found, err = f.Find(&person.PersonTO{}, reflect.TypeFor[person.Person](), nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindError(t *testing.T) {
	f, mock := setup(t)

	errDown := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta(addressQuery)).WithArgs(1).WillReturnError(errDown)

	_, err := f.Find(&person.AddressTO{ID: 1}, reflect.TypeFor[person.Address](), nil)
	require.Error(t, err)
	assert.True(t, maperr.Is(err, maperr.KindNoTarget))
	assert.ErrorIs(t, err, errDown)
}
