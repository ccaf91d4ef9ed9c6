package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier to lower case without separators, so
// "OrderID", "order_id" and "orderId" compare equal.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeField is NormalizeIdent with a trailing "id" or "ids" token
// dropped, so "AddressID" pairs with "Address".
func NormalizeField(s string) string {
	tokens := TokenizeIdent(s)
	if n := len(tokens); n > 1 && (tokens[n-1] == "id" || tokens[n-1] == "ids") {
		tokens = tokens[:n-1]
	}

	return strings.Join(tokens, "")
}

// TrimTypeSuffix removes a transfer suffix such as "TO" or "DTO" from a type
// name. It returns false when name does not carry the suffix or is nothing
// but the suffix.
func TrimTypeSuffix(name, suffix string) (string, bool) {
	if suffix == "" || len(name) <= len(suffix) || !strings.HasSuffix(name, suffix) {
		return name, false
	}

	return strings.TrimSuffix(name, suffix), true
}

// TokenizeIdent splits an identifier into lower case words at separators,
// case changes and acronym ends: "getHTTPResponse" gives get, http,
// response.
func TokenizeIdent(s string) []string {
	var (
		tokens []string
		cur    []rune
	)

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			flush()
			continue
		}

		if i > 0 && startsWord(runes, i) {
			flush()
		}

		cur = append(cur, r)
	}

	flush()

	return tokens
}

func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	// last capital of an acronym followed by a word: "XMLParser"
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
