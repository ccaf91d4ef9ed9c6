package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/mapping"
)

const modelPkg = "tomapper/internal/check/testdata/model"

func TestScaffoldRenamesAndReadOnly(t *testing.T) {
	graph := loadGraph(t, "./testdata/model")

	f, skipped := Scaffold(graph, []string{modelPkg}, "TO")

	assert.Equal(t, []string{"model.OrderTO"}, skipped)
	require.Len(t, f.Mappings, 1)

	spec := f.Mappings[0]
	assert.Equal(t, "model.CustomerTO", spec.Transfer)
	assert.Equal(t, "model.Customer", spec.Domain)
	assert.Equal(t, []string{"Secret"}, spec.Ignore)
	assert.Equal(t, map[string]mapping.FieldSpec{
		"EMail":   {Target: "Email"},
		"Loyalty": {ReadOnly: true},
	}, spec.Fields)
}

func TestScaffoldSameNames(t *testing.T) {
	graph := loadGraph(t, "tomapper/examples/person")

	f, skipped := Scaffold(graph, []string{"tomapper/examples/person"}, "TO")

	assert.Empty(t, skipped)
	require.Len(t, f.Mappings, 2)
	assert.Equal(t, "person.AddressTO", f.Mappings[0].Transfer)
	assert.Equal(t, "person.PersonTO", f.Mappings[1].Transfer)

	for _, spec := range f.Mappings {
		assert.Empty(t, spec.Fields, spec.Transfer)
		assert.Empty(t, spec.Ignore, spec.Transfer)
	}
}

func TestScaffoldOutputChecksClean(t *testing.T) {
	graph := loadGraph(t, "./testdata/model")

	f, _ := Scaffold(graph, nil, "TO")

	ds := New(graph).Check(f)
	assert.False(t, ds.HasErrors(), "%v", ds.Err())
}
