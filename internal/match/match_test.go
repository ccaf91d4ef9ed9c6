package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"OrderID", []string{"order", "id"}},
		{"customerName", []string{"customer", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"last_changed", []string{"last", "changed"}},
		{"a.b-c", []string{"a", "b", "c"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TokenizeIdent(tt.in), tt.in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "orderid", NormalizeIdent("order_id"))
	assert.Equal(t, NormalizeIdent("OrderID"), NormalizeIdent("orderId"))

	assert.Equal(t, "address", NormalizeField("AddressID"))
	assert.Equal(t, "tag", NormalizeField("tag_ids"))
	assert.Equal(t, "id", NormalizeField("ID"))
}

func TestTrimTypeSuffix(t *testing.T) {
	name, ok := TrimTypeSuffix("PersonTO", "TO")
	assert.True(t, ok)
	assert.Equal(t, "Person", name)

	_, ok = TrimTypeSuffix("TO", "TO")
	assert.False(t, ok)

	_, ok = TrimTypeSuffix("Person", "TO")
	assert.False(t, ok)

	_, ok = TrimTypeSuffix("PersonTO", "")
	assert.False(t, ok)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "symmetric %s/%s", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, NameSimilarity("customer_id", "CustomerID"), 1e-9)
	assert.InDelta(t, 1.0, NameSimilarity("AddressID", "Address"), 1e-9)
}

func TestSuggest(t *testing.T) {
	names := []string{"Name", "Gender", "Address", "LastChanged", "Comment"}

	assert.Equal(t, []string{"Address"}, Suggest("Adress", names))
	assert.Equal(t, "LastChanged", Suggest("last_changed", names)[0])
	assert.Empty(t, Suggest("Zebra", names))
}

func TestCandidateBest(t *testing.T) {
	c := Rank("Nam", []string{"Name", "Names", "Gender"})
	assert.Equal(t, "Name", c[0].Name)

	_, ok := c.Best(0.5, 0.2)
	assert.False(t, ok, "Name and Names are too close")

	best, ok := Rank("Gender", []string{"Name", "Gender"}).Best(0.9, 0.1)
	assert.True(t, ok)
	assert.Equal(t, "Gender", best.Name)

	_, ok = CandidateList(nil).Best(0, 0)
	assert.False(t, ok)
}
