package match

import (
	"go/types"
)

// Verdict names the built-in converter expected to handle a field pair.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictIdentity
	VerdictObject
	VerdictList
	VerdictSet
	VerdictUUID
	VerdictText
	VerdictPointer
	VerdictPrimitive
)

func (v Verdict) String() string {
	switch v {
	case VerdictIdentity:
		return "identity"
	case VerdictObject:
		return "object"
	case VerdictList:
		return "list"
	case VerdictSet:
		return "set"
	case VerdictUUID:
		return "uuid"
	case VerdictText:
		return "text"
	case VerdictPointer:
		return "pointer"
	case VerdictPrimitive:
		return "primitive"
	default:
		return "none"
	}
}

// Judge reports which built-in converter would map a transfer field of type
// to onto a domain field of type domain, following the registry order. A
// primitive verdict still depends on the enabled categories. isTransfer
// reports whether a type is a mapped transfer type.
func Judge(to, domain types.Type, isTransfer func(types.Type) bool) Verdict {
	toBase, domainBase := deref(to), deref(domain)

	if isTransfer(toBase) {
		switch domainBase.Underlying().(type) {
		case *types.Struct, *types.Interface:
			return VerdictObject
		}
	}

	if ts, ok := to.Underlying().(*types.Slice); ok {
		if _, ok := domain.Underlying().(*types.Slice); ok && isTransfer(deref(ts.Elem())) {
			return VerdictList
		}
	}

	if tk, ok := setKey(to); ok {
		if _, ok := setKey(domain); ok && isTransfer(deref(tk)) {
			return VerdictSet
		}
	}

	switch {
	case isString(to) && isUUID(domain), isUUID(to) && isString(domain):
		return VerdictUUID
	case isString(to) && !isString(domain) && isTextual(domain):
		return VerdictText
	}

	if p, ok := to.(*types.Pointer); ok && types.Identical(p.Elem(), domain) {
		return VerdictPointer
	}

	if p, ok := domain.(*types.Pointer); ok && types.Identical(p.Elem(), to) {
		return VerdictPointer
	}

	if types.Identical(to, domain) {
		return VerdictIdentity
	}

	if isScalar(to) && isScalar(domain) {
		return VerdictPrimitive
	}

	return VerdictNone
}

func deref(t types.Type) types.Type {
	for {
		p, ok := t.(*types.Pointer)
		if !ok {
			return t
		}

		t = p.Elem()
	}
}

func setKey(t types.Type) (types.Type, bool) {
	m, ok := t.Underlying().(*types.Map)
	if !ok {
		return nil, false
	}

	switch e := m.Elem().Underlying().(type) {
	case *types.Basic:
		return m.Key(), e.Kind() == types.Bool
	case *types.Struct:
		return m.Key(), e.NumFields() == 0
	default:
		return nil, false
	}
}

func isString(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

func isUUID(t types.Type) bool {
	return isNamed(t, "github.com/google/uuid", "UUID")
}

func isNamed(t types.Type, pkg, name string) bool {
	n, ok := t.(*types.Named)
	if !ok || n.Obj().Pkg() == nil {
		return false
	}

	return n.Obj().Pkg().Path() == pkg && n.Obj().Name() == name
}

// isTextual reports whether *t has MarshalText and UnmarshalText.
func isTextual(t types.Type) bool {
	ms := types.NewMethodSet(types.NewPointer(t))

	return ms.Lookup(nil, "MarshalText") != nil && ms.Lookup(nil, "UnmarshalText") != nil
}

func isScalar(t types.Type) bool {
	if isNamed(t, "time", "Time") || isNamed(t, "time", "Duration") {
		return true
	}

	b, ok := t.Underlying().(*types.Basic)

	return ok && b.Info()&(types.IsNumeric|types.IsString|types.IsBoolean) != 0
}
