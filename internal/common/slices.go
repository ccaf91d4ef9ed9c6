package common

// IsSingle reports whether s holds exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// First returns the first element of s, if any.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Pair splits s into its first two elements, zero-filled when s is short.
// "person.PersonTO" split at the dot gives ("person", "PersonTO").
func Pair[S ~[]E, E any](s S) (E, E) {
	var a, b E

	if len(s) > 0 {
		a = s[0]
	}

	if len(s) > 1 {
		b = s[1]
	}

	return a, b
}

// Last drops every value but the final one, e.g. the file part of
// path.Split.
func Last[T any](_ any, t T) T { return t }
