package check

import (
	"slices"
	"sort"

	"tomapper/internal/analyze"
	"tomapper/internal/match"
	"tomapper/mapping"
)

// Minimum name similarity and lead over the runner-up for a scaffolded field
// rename.
const (
	renameScore = 0.8
	renameGap   = 0.05
)

// Scaffold pairs every struct named X+suffix in the packages pkgs with a
// struct X, looked up in the same package first. Transfer fields without a
// same-named domain property get the closest property as target or are
// ignored; fields backed by a getter without setter are read-only. Transfer
// types without a domain counterpart are returned as skipped.
func Scaffold(graph *analyze.TypeGraph, pkgs []string, suffix string) (*mapping.File, []string) {
	f := &mapping.File{Version: "1"}

	var skipped []string

	for _, id := range graph.IDs() {
		if len(pkgs) > 0 && !slices.Contains(pkgs, id.PkgPath) {
			continue
		}

		to := graph.GetType(id)
		if to.Kind != analyze.TypeKindStruct {
			continue
		}

		name, ok := match.TrimTypeSuffix(id.Name, suffix)
		if !ok {
			continue
		}

		domain := graph.GetType(analyze.TypeID{PkgPath: id.PkgPath, Name: name})
		if domain == nil {
			domain, _ = graph.Lookup(name)
		}

		if domain == nil || domain.Kind != analyze.TypeKindStruct {
			skipped = append(skipped, id.Short())
			continue
		}

		f.Mappings = append(f.Mappings, scaffoldType(to, domain))
	}

	sort.Slice(f.Mappings, func(i, j int) bool { return f.Mappings[i].Transfer < f.Mappings[j].Transfer })

	return f, skipped
}

func scaffoldType(to, domain *analyze.TypeInfo) mapping.TypeSpec {
	spec := mapping.TypeSpec{
		Transfer: to.ID.Short(),
		Domain:   domain.ID.Short(),
		Fields:   map[string]mapping.FieldSpec{},
	}

	props := domain.Properties()

	for _, name := range to.FieldNames() {
		target := name
		if !domain.Property(name) {
			best, ok := match.Rank(name, props).Best(renameScore, renameGap)
			if !ok {
				spec.Ignore = append(spec.Ignore, name)
				continue
			}

			target = best.Name
		}

		var fs mapping.FieldSpec
		if target != name {
			fs.Target = target
		}

		fs.ReadOnly = !writable(domain, target)

		if fs.Target != "" || fs.ReadOnly {
			spec.Fields[name] = fs
		}
	}

	if len(spec.Fields) == 0 {
		spec.Fields = nil
	}

	return spec
}
