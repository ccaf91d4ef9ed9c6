// Package check validates mapping files against Go packages without
// compiling them into the program, and scaffolds mapping files from naming
// conventions.
package check

import (
	"fmt"
	"go/types"
	"slices"

	"tomapper/internal/analyze"
	"tomapper/internal/diagnostic"
	"tomapper/internal/match"
	"tomapper/mapping"
)

// BuiltinConverters are the converter names every engine registers.
var BuiltinConverters = []string{"object", "list", "set", "uuid", "text", "pointer", "primitive", "identity"}

// Checker validates mapping files against a type graph.
type Checker struct {
	graph      *analyze.TypeGraph
	converters []string
	transfers  []types.Type
}

// New returns a checker over graph. converters names the converters the
// application registers besides the built-in ones.
func New(graph *analyze.TypeGraph, converters ...string) *Checker {
	return &Checker{
		graph:      graph,
		converters: append(slices.Clone(BuiltinConverters), converters...),
	}
}

// Check reports every problem found in f.
func (c *Checker) Check(f *mapping.File) *diagnostic.Diagnostics {
	ds := &diagnostic.Diagnostics{}

	c.transfers = c.transfers[:0]
	for i := range f.Mappings {
		if ti, ok := c.graph.Lookup(f.Mappings[i].Transfer); ok {
			c.transfers = append(c.transfers, ti.GoType)
		}
	}

	seen := map[string]bool{}
	for i := range f.Mappings {
		spec := &f.Mappings[i]
		if seen[spec.Transfer] {
			ds.AddError(diagnostic.CodeDuplicateMapping, "transfer type mapped more than once", spec.Transfer, "")
			continue
		}

		seen[spec.Transfer] = true
		c.checkType(ds, spec)
	}

	return ds
}

func (c *Checker) checkType(ds *diagnostic.Diagnostics, spec *mapping.TypeSpec) {
	to, ok := c.lookup(ds, spec.Transfer, spec.Transfer, diagnostic.CodeTransferNotFound, "transfer")
	if !ok {
		return
	}

	for _, d := range spec.Delegates {
		c.lookup(ds, d, spec.Transfer, diagnostic.CodeDelegateNotFound, "delegate")
	}

	if to.Kind == analyze.TypeKindInterface {
		if len(spec.Delegates) == 0 && spec.Domain == "" {
			ds.AddError(diagnostic.CodeNotStruct, "interface transfer type without delegates or domain", spec.Transfer, "")
		}

		return
	}

	if to.Kind != analyze.TypeKindStruct {
		ds.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("transfer type is a %s", to.Kind), spec.Transfer, "")
		return
	}

	for name := range spec.Fields {
		if _, ok := to.Field(name); !ok {
			ds.AddError(diagnostic.CodeFieldNotFound, fmt.Sprintf("transfer type has no field %q", name),
				spec.Transfer, name, match.Suggest(name, to.FieldNames())...)
		}
	}

	for _, name := range spec.Ignore {
		if _, ok := to.Field(name); !ok {
			ds.AddWarning(diagnostic.CodeFieldNotFound, fmt.Sprintf("ignored field %q does not exist", name),
				spec.Transfer, name, match.Suggest(name, to.FieldNames())...)
		}
	}

	if spec.Domain == "" {
		ds.AddInfo(diagnostic.CodeDomainNotFound, "no domain type named, fields are checked when registered in code", spec.Transfer, "")
		return
	}

	domain, ok := c.lookup(ds, spec.Domain, spec.Transfer, diagnostic.CodeDomainNotFound, "domain")
	if !ok {
		return
	}

	if domain.Kind != analyze.TypeKindStruct {
		ds.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("domain type is a %s", domain.Kind), spec.Transfer, "")
		return
	}

	c.checkFields(ds, spec, to, domain)
}

func (c *Checker) lookup(ds *diagnostic.Diagnostics, ref, mappingName, code, what string) (*analyze.TypeInfo, bool) {
	ti, ok := c.graph.Lookup(ref)
	if !ok {
		ds.AddError(code, fmt.Sprintf("%s type %q not found", what, ref), mappingName, "",
			match.Suggest(ref, c.graph.ShortNames())...)
	}

	return ti, ok
}

// checkFields checks every transfer field the engine would map.
func (c *Checker) checkFields(ds *diagnostic.Diagnostics, spec *mapping.TypeSpec, to, domain *analyze.TypeInfo) {
	for i := range to.Fields {
		f := &to.Fields[i]
		if f.Embedded || !f.Exported || slices.Contains(spec.Ignore, f.Name) {
			continue
		}

		fm, skip, err := effectiveField(f, spec)
		if err != nil {
			ds.AddError(diagnostic.CodeFieldNotFound, err.Error(), spec.Transfer, f.Name)
			continue
		}

		if skip {
			continue
		}

		c.checkTarget(ds, spec.Transfer, f, fm, domain)

		seen := map[string]bool{}
		for _, rule := range fm.Tags {
			if seen[rule.Tag] {
				ds.AddWarning(diagnostic.CodeDuplicateTag, fmt.Sprintf("tag %q has more than one rule", rule.Tag), spec.Transfer, f.Name)
			}

			seen[rule.Tag] = true

			if !rule.Exclude && (rule.Target != "" || len(rule.Path) > 0 || rule.Converter != "") {
				c.checkTarget(ds, spec.Transfer, f, rule.Apply(fm), domain)
			}
		}
	}
}

// effectiveField merges the struct tags of f with the file entry for it.
// The file entry wins.
func effectiveField(f *analyze.FieldInfo, spec *mapping.TypeSpec) (mapping.FieldMapping, bool, error) {
	if fs, ok := spec.Fields[f.Name]; ok {
		fm := fs.Mapping()
		return fm, fm.Exclude, nil
	}

	var fm mapping.FieldMapping

	if raw, ok := f.Tag.Lookup(mapping.StructTag); ok {
		if raw == "-" {
			return fm, true, nil
		}

		var err error
		if fm, err = mapping.ParseFieldTag(raw); err != nil {
			return fm, false, fmt.Errorf("bad %s tag: %w", mapping.StructTag, err)
		}
	}

	if raw, ok := f.Tag.Lookup(mapping.StructTagTags); ok {
		rules, err := mapping.ParseTagRules(raw)
		if err != nil {
			return fm, false, fmt.Errorf("bad %s tag: %w", mapping.StructTagTags, err)
		}

		fm.Tags = rules
	}

	return fm, fm.Exclude, nil
}

func (c *Checker) checkTarget(ds *diagnostic.Diagnostics, mappingName string, f *analyze.FieldInfo, fm mapping.FieldMapping, domain *analyze.TypeInfo) {
	owner := domain
	for _, seg := range fm.Path {
		next, ok := owner.Deref().Field(seg)
		if ok && next.Exported {
			owner = next.Type
			continue
		}

		if _, ok := owner.Deref().Getter(seg); ok {
			// types behind getters are not resolved further
			return
		}

		ds.AddError(diagnostic.CodeTargetNotFound, fmt.Sprintf("path segment %q not found on %s", seg, owner.Deref().ID.Short()),
			mappingName, f.Name, match.Suggest(seg, owner.Deref().Properties())...)

		return
	}

	owner = owner.Deref()
	if owner == nil || owner.Kind != analyze.TypeKindStruct {
		ds.AddError(diagnostic.CodeTargetNotFound, "path does not end on a struct", mappingName, f.Name)
		return
	}

	target := fm.DomainField(f.Name)

	domainType, ok := propertyType(owner, target)
	if !ok {
		ds.AddError(diagnostic.CodeTargetNotFound, fmt.Sprintf("%s has no property %q", owner.ID.Short(), target),
			mappingName, f.Name, match.Suggest(target, owner.Properties())...)

		return
	}

	if !fm.ReadOnly && !writable(owner, target) {
		ds.AddError(diagnostic.CodeNotWritable,
			fmt.Sprintf("%s.%s cannot be written, mark the field readonly", owner.ID.Short(), target), mappingName, f.Name)
	}

	if fm.Converter != "" {
		if !slices.Contains(c.converters, fm.Converter) {
			ds.AddWarning(diagnostic.CodeUnknownConverter,
				fmt.Sprintf("converter %q is not known, it must be registered before use", fm.Converter), mappingName, f.Name)
		}

		return
	}

	if v := match.Judge(f.Type.GoType, domainType, c.isTransfer); v == match.VerdictNone {
		ds.AddWarning(diagnostic.CodeNoConverter,
			fmt.Sprintf("no built-in converter maps %s to %s", f.Type.GoType, domainType), mappingName, f.Name)
	}
}

func (c *Checker) isTransfer(t types.Type) bool {
	return slices.ContainsFunc(c.transfers, func(x types.Type) bool { return types.Identical(x, t) })
}

func propertyType(owner *analyze.TypeInfo, name string) (types.Type, bool) {
	if f, ok := owner.Field(name); ok && f.Exported {
		return f.Type.GoType, true
	}

	if m, ok := owner.Getter(name); ok {
		return owner.Methods[m].Results().At(0).Type(), true
	}

	return nil, false
}

func writable(owner *analyze.TypeInfo, name string) bool {
	if f, ok := owner.Field(name); ok && f.Exported {
		return true
	}

	_, ok := owner.Setter(name)

	return ok
}
