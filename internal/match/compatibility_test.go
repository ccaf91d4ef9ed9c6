package match

import (
	"context"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomapper/internal/analyze"
)

func TestJudge(t *testing.T) {
	graph, err := analyze.NewAnalyzer().LoadPackages(context.Background(), "tomapper/examples/person")
	require.NoError(t, err)

	to, ok := graph.Lookup("person.PersonTO")
	require.True(t, ok)
	domain, ok := graph.Lookup("person.Person")
	require.True(t, ok)

	isTransfer := func(t types.Type) bool {
		n, ok := t.(*types.Named)
		return ok && (n.Obj().Name() == "PersonTO" || n.Obj().Name() == "AddressTO")
	}

	fieldType := func(ti *analyze.TypeInfo, name string) types.Type {
		f, ok := ti.Field(name)
		require.True(t, ok, name)
		return f.Type.GoType
	}

	tests := []struct {
		field string
		want  Verdict
	}{
		{"ID", VerdictUUID},
		{"Name", VerdictIdentity},
		{"Gender", VerdictText},
		{"Address", VerdictObject},
		{"Previous", VerdictList},
		{"LastChanged", VerdictIdentity},
	}

	for _, tt := range tests {
		got := Judge(fieldType(to, tt.field), fieldType(domain, tt.field), isTransfer)
		assert.Equal(t, tt.want, got, "%s: %s", tt.field, got)
	}

	str := types.Typ[types.String]
	i64 := types.Typ[types.Int64]
	assert.Equal(t, VerdictPrimitive, Judge(str, i64, isTransfer))
	assert.Equal(t, VerdictPointer, Judge(types.NewPointer(i64), i64, isTransfer))
	assert.Equal(t, VerdictNone, Judge(types.NewSlice(str), i64, isTransfer))
	assert.Equal(t, "none", VerdictNone.String())
}
