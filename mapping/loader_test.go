package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/maperr"
)

const personYAML = `
mappings:
  - transfer: personTO
    domain: person
    pre: checkName
    post: [audit, stamp]
    ignore: Internal
    fields:
      Name:
        readonly: true
      City:
        target: Street
        path: Address
        converter: upper
      Comment:
        tags:
          - admin
          - zzz:readonly
          - tag: ops
            target: Name
            path: Details.Extra
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(personYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Mappings, 1)

	spec := f.Mappings[0]
	assert.Equal(t, "personTO", spec.Transfer)
	assert.Equal(t, StringOrArray{"checkName"}, spec.Pre)
	assert.Equal(t, StringOrArray{"audit", "stamp"}, spec.Post)
	assert.True(t, spec.Ignore.Contains("Internal"))

	tags := spec.Fields["Comment"].Tags
	require.Len(t, tags, 3)
	assert.Equal(t, TagSpec{Tag: "admin"}, tags[0])
	assert.Equal(t, TagSpec{Tag: "zzz", ReadOnly: true}, tags[1])
	assert.Equal(t, TagSpec{Tag: "ops", Target: "Name", Path: "Details.Extra"}, tags[2])
	assert.Equal(t, []string{"Details", "Extra"}, tags[2].Rule().Path)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "mappings: [\n"},
		{"bad tag flag", "mappings:\n  - transfer: X\n    fields:\n      A:\n        tags:\n          - a:sometimes\n"},
		{"tag without name", "mappings:\n  - transfer: X\n    fields:\n      A:\n        tags: [{readonly: true}]\n"},
		{"pre is a map", "mappings:\n  - transfer: X\n    pre: {a: b}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, maperr.Is(err, maperr.KindInvalidConfig))
		})
	}
}

func TestCatalog_Apply(t *testing.T) {
	f, err := Parse([]byte(personYAML))
	require.NoError(t, err)

	c := NewCatalog()
	BindType[personTO](c)
	BindType[person](c)

	require.NoError(t, c.Apply(f))

	tm, ok := c.Lookup(reflect.TypeFor[personTO]())
	require.True(t, ok)

	assert.Equal(t, "person", tm.DomainName)
	assert.Equal(t, []PreRef{{Name: "checkName"}}, tm.Pre)
	assert.Equal(t, []PostRef{{Name: "audit"}, {Name: "stamp"}}, tm.Post)
	assert.Equal(t, "upper", tm.Field("City").Converter)
	assert.Equal(t, []string{"Address"}, tm.Field("City").Path)

	d, err := c.Domain(reflect.TypeFor[personTO]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[person](), d)
}

func TestCatalog_ApplyUnbound(t *testing.T) {
	f, err := Parse([]byte(personYAML))
	require.NoError(t, err)

	err = NewCatalog().Apply(f)
	assert.ErrorIs(t, err, maperr.ErrUnresolvedType)

	me, ok := maperr.As(err)
	require.True(t, ok)
	assert.Equal(t, maperr.PhaseLoad, me.Phase)
}

func TestWriteAndLoadFile(t *testing.T) {
	f := &File{Version: "1", Mappings: []TypeSpec{{
		Transfer: "personTO",
		Domain:   "person",
		Fields: map[string]FieldSpec{
			"Comment": {Tags: []TagSpec{{Tag: "zzz", ReadOnly: true}}},
		},
	}}}

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, WriteFile(f, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "zzz:readonly")

	c := NewCatalog()
	BindType[personTO](c)
	require.NoError(t, c.LoadFile(path))
	assert.True(t, c.IsTransfer(reflect.TypeFor[personTO]()))

	err = c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, maperr.ErrInvalidConfig)
}
