package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and records their named types.
type Analyzer struct {
	// Dir is the directory packages are resolved from. Empty means the
	// current directory.
	Dir string

	graph *TypeGraph
	cache map[types.Type]*TypeInfo
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
		cache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the packages matching patterns, e.g. "./model/..." or
// "tomapper/examples/person", and adds their exported types to the graph.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{Context: ctx, Mode: loadMode, Dir: a.Dir}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	// register package paths first so types of sibling packages are not
	// taken for external ones
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	}

	for _, pkg := range pkgs {
		a.addPackage(pkg)
	}

	return a.graph, nil
}

func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

func (a *Analyzer) addPackage(pkg *packages.Package) {
	info := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}

		ti := a.typeOf(tn.Type())
		a.graph.Types[ti.ID] = ti
		info.Types = append(info.Types, ti.ID)
	}
}

func (a *Analyzer) typeOf(t types.Type) *TypeInfo {
	if cached, ok := a.cache[t]; ok {
		return cached
	}

	ti := &TypeInfo{GoType: t}
	a.cache[t] = ti

	switch tt := t.(type) {
	case *types.Named:
		a.named(tt, ti)
	case *types.Basic:
		ti.Kind = TypeKindBasic
	case *types.Pointer:
		ti.Kind = TypeKindPointer
		ti.Elem = a.typeOf(tt.Elem())
	case *types.Slice:
		ti.Kind = TypeKindSlice
		ti.Elem = a.typeOf(tt.Elem())
	case *types.Array:
		ti.Kind = TypeKindSlice
		ti.Elem = a.typeOf(tt.Elem())
	case *types.Map:
		ti.Kind = TypeKindMap
		ti.Key = a.typeOf(tt.Key())
		ti.Elem = a.typeOf(tt.Elem())
	case *types.Struct:
		ti.Kind = TypeKindStruct
		a.fields(tt, ti)
	case *types.Interface:
		ti.Kind = TypeKindInterface
	}

	return ti
}

func (a *Analyzer) named(named *types.Named, ti *TypeInfo) {
	obj := named.Obj()
	if obj.Pkg() != nil {
		ti.ID = TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
	} else {
		ti.ID = TypeID{Name: obj.Name()}
	}

	ms := types.NewMethodSet(types.NewPointer(named))
	ti.Methods = make(map[string]*types.Signature, ms.Len())
	for i := range ms.Len() {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if ok && fn.Exported() {
			ti.Methods[fn.Name()] = fn.Type().(*types.Signature)
		}
	}

	if _, local := a.graph.Packages[ti.ID.PkgPath]; !local {
		ti.Kind = TypeKindExternal
		return
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		ti.Kind = TypeKindStruct
		a.fields(ut, ti)
	case *types.Interface:
		ti.Kind = TypeKindInterface
	default:
		ti.Kind = TypeKindNamed
		ti.Elem = a.typeOf(ut)
	}
}

func (a *Analyzer) fields(st *types.Struct, ti *TypeInfo) {
	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Exported() && !f.Embedded() {
			continue
		}

		ti.Fields = append(ti.Fields, FieldInfo{
			Name:     f.Name(),
			Exported: f.Exported(),
			Type:     a.typeOf(f.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: f.Embedded(),
		})
	}
}
