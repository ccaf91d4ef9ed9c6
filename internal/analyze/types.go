package analyze

import (
	"go/types"
	"reflect"
	"slices"
	"sort"
	"strings"

	"tomapper/internal/common"
)

// TypeID identifies a named type by package path and name.
type TypeID struct {
	PkgPath string // e.g. "tomapper/examples/person"
	Name    string // e.g. "PersonTO"
}

func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short is the package-qualified name, e.g. "person.PersonTO". Mapping files
// and catalog bindings use this form.
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind classifies a type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindBasic
	TypeKindStruct
	TypeKindInterface
	TypeKindPointer
	TypeKindSlice
	TypeKindMap
	TypeKindNamed    // named non-struct type, e.g. type Gender int
	TypeKindExternal // named type from a package outside the analyzed set
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindInterface:
		return "interface"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindMap:
		return "map"
	case TypeKindNamed:
		return "named"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a type of the analyzed packages.
type TypeInfo struct {
	ID      TypeID
	Kind    TypeKind
	Elem    *TypeInfo // pointer, slice and map element
	Key     *TypeInfo // map key
	Fields  []FieldInfo
	Methods map[string]*types.Signature // method set of *T for named types
	GoType  types.Type
}

func (t *TypeInfo) IsNamed() bool { return t.ID.Name != "" }

// Deref follows pointers to the pointed-to type.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer {
		t = t.Elem
	}

	return t
}

// Field returns the visible field called name, promoted fields included.
func (t *TypeInfo) Field(name string) (*FieldInfo, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		if !f.Embedded {
			continue
		}

		if inner := f.Type.Deref(); inner != nil && inner.Kind == TypeKindStruct {
			if pf, ok := inner.Field(name); ok {
				return pf, true
			}
		}
	}

	return nil, false
}

// FieldNames lists the exported field names, promoted ones included.
func (t *TypeInfo) FieldNames() []string {
	var out []string
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Embedded {
			if inner := f.Type.Deref(); inner != nil && inner.Kind == TypeKindStruct {
				out = append(out, inner.FieldNames()...)
				continue
			}
		}

		if f.Exported {
			out = append(out, f.Name)
		}
	}

	return out
}

// Getter returns the getter method serving property name: GetX, X, IsX or
// HasX taking no arguments and returning a value, optionally with an error.
func (t *TypeInfo) Getter(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	capName := strings.ToUpper(name[:1]) + name[1:]

	for _, m := range []string{"Get" + capName, capName, "Is" + capName, "Has" + capName} {
		sig, ok := t.Methods[m]
		if !ok || sig.Params().Len() != 0 {
			continue
		}

		if r := sig.Results(); r.Len() == 1 || (r.Len() == 2 && isError(r.At(1).Type())) {
			return m, true
		}
	}

	return "", false
}

// Setter returns the SetX method taking one argument.
func (t *TypeInfo) Setter(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	m := "Set" + strings.ToUpper(name[:1]) + name[1:]

	sig, ok := t.Methods[m]
	if !ok || sig.Params().Len() != 1 {
		return "", false
	}

	if r := sig.Results(); r.Len() == 0 || (r.Len() == 1 && isError(r.At(0).Type())) {
		return m, true
	}

	return "", false
}

// Property reports whether name can be read on t through a field or a
// getter.
func (t *TypeInfo) Property(name string) bool {
	if f, ok := t.Field(name); ok && f.Exported {
		return true
	}

	_, ok := t.Getter(name)

	return ok
}

// Properties lists the readable property names of t, sorted.
func (t *TypeInfo) Properties() []string {
	names := t.FieldNames()

	for m, sig := range t.Methods {
		if sig.Params().Len() != 0 || sig.Results().Len() == 0 {
			continue
		}

		names = append(names, strings.TrimPrefix(m, "Get"))
	}

	sort.Strings(names)

	return slices.Compact(names)
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string
	Exported bool
	Type     *TypeInfo
	Tag      reflect.StructTag
	Embedded bool
}

// TypeGraph holds the named types of the loaded packages.
type TypeGraph struct {
	Types    map[TypeID]*TypeInfo
	Packages map[string]*PackageInfo
}

func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Lookup resolves a type reference written as "Name", "pkg.Name" or
// "import/path.Name".
func (g *TypeGraph) Lookup(ref string) (*TypeInfo, bool) {
	if g == nil || ref == "" {
		return nil, false
	}

	dot := strings.LastIndex(ref, ".")
	if dot < 0 {
		for _, id := range g.IDs() {
			if id.Name == ref {
				return g.Types[id], true
			}
		}

		return nil, false
	}

	pkg, name := ref[:dot], ref[dot+1:]
	if t := g.GetType(TypeID{PkgPath: pkg, Name: name}); t != nil {
		return t, true
	}

	for _, id := range g.IDs() {
		if id.Name == name && (id.PkgPath == pkg || strings.HasSuffix(id.PkgPath, "/"+pkg)) {
			return g.Types[id], true
		}
	}

	return nil, false
}

// IDs lists every type id in a stable order.
func (g *TypeGraph) IDs() []TypeID {
	ids := make([]TypeID, 0, len(g.Types))
	for id := range g.Types {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	return ids
}

// ShortNames lists every type in "pkg.Name" form.
func (g *TypeGraph) ShortNames() []string {
	ids := g.IDs()

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Short()
	}

	return out
}

// PackageInfo describes a loaded package.
type PackageInfo struct {
	Path  string
	Name  string
	Types []TypeID
}
