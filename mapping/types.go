package mapping

import (
	"reflect"
	"slices"

	"tomapper/convert"
)

// Reserved tag values.
const (
	// TagAlways marks a rule that applies whatever tags the caller passes.
	TagAlways = "*"
	// TagDefault is substituted when a conversion is called without tags.
	TagDefault = "#default"
)

// TypeMapping associates a transfer type with its domain type and carries
// every per-field override for it.
type TypeMapping struct {
	// Transfer is the transfer type (struct or interface, never a pointer).
	Transfer reflect.Type
	// Domain is the domain type. When nil, DomainName is resolved through
	// the catalog bindings.
	Domain     reflect.Type
	DomainName string
	// Delegates lists concrete transfer types for an interface transfer type.
	Delegates []reflect.Type
	Pre       []PreRef
	Post      []PostRef
	// Fields holds overrides keyed by transfer field name.
	Fields map[string]FieldMapping
	// Ignore lists transfer fields skipped by the plan builder.
	Ignore []string
}

// FieldMapping overrides how one transfer field maps onto the domain.
type FieldMapping struct {
	// Target is the domain field name, defaulting to the transfer field name.
	Target string
	// Path lists intermediate domain fields leading to Target.
	Path         []string
	Converter    string
	ConverterRef convert.TypeConverter
	ReadOnly     bool
	Exclude      bool
	Tags         []TagRule
	// Get and Set replace the domain side accessor for this field.
	Get func(obj any) (any, error)
	Set func(obj, value any) error
	// Type is the value type exchanged by Get and Set. Required with Get.
	Type reflect.Type
}

// TagRule scopes a field to one tag. Empty overrides inherit from the field.
type TagRule struct {
	Tag       string
	ReadOnly  bool
	Exclude   bool
	Target    string
	Path      []string
	Converter string
}

// PreRef references a pre-conversion hook by name or directly.
type PreRef struct {
	Name string
	Hook convert.PreConverter
}

// PostRef references a post-conversion hook by name or directly.
type PostRef struct {
	Name string
	Hook convert.PostConverter
}

// HasAccessors reports whether the field carries an explicit accessor pair.
func (fm FieldMapping) HasAccessors() bool {
	return fm.Get != nil || fm.Set != nil
}

// DomainField returns the final domain field name for a transfer field.
func (fm FieldMapping) DomainField(transferField string) string {
	if fm.Target != "" {
		return fm.Target
	}

	return transferField
}

// Rule returns the tag rule for tag, if declared.
func (fm FieldMapping) Rule(tag string) (TagRule, bool) {
	i := slices.IndexFunc(fm.Tags, func(r TagRule) bool { return r.Tag == tag })
	if i < 0 {
		return TagRule{}, false
	}

	return fm.Tags[i], true
}

// Apply returns the field mapping with the rule's overrides applied.
func (r TagRule) Apply(fm FieldMapping) FieldMapping {
	out := fm
	out.Tags = nil

	if r.Target != "" {
		out.Target = r.Target
	}

	if len(r.Path) > 0 {
		out.Path = r.Path
	}

	if r.Converter != "" {
		out.Converter = r.Converter
		out.ConverterRef = nil
	}

	out.ReadOnly = fm.ReadOnly || r.ReadOnly
	out.Exclude = r.Exclude

	return out
}

// Field returns the override for a transfer field, or a zero mapping.
func (tm *TypeMapping) Field(name string) FieldMapping {
	if tm == nil || tm.Fields == nil {
		return FieldMapping{}
	}

	return tm.Fields[name]
}

// Ignored reports whether the transfer field is skipped.
func (tm *TypeMapping) Ignored(name string) bool {
	if tm == nil {
		return false
	}

	if slices.Contains(tm.Ignore, name) {
		return true
	}

	fm, ok := tm.Fields[name]

	return ok && fm.Exclude
}

// Clone returns a deep copy of the slices and maps in tm.
func (tm *TypeMapping) Clone() *TypeMapping {
	out := *tm
	out.Delegates = slices.Clone(tm.Delegates)
	out.Pre = slices.Clone(tm.Pre)
	out.Post = slices.Clone(tm.Post)
	out.Ignore = slices.Clone(tm.Ignore)

	out.Fields = make(map[string]FieldMapping, len(tm.Fields))
	for k, v := range tm.Fields {
		v.Path = slices.Clone(v.Path)
		v.Tags = slices.Clone(v.Tags)
		out.Fields[k] = v
	}

	return &out
}

// merge overlays other onto tm. Fields in other replace fields in tm.
func (tm *TypeMapping) merge(other *TypeMapping) {
	if other.Domain != nil {
		tm.Domain = other.Domain
		tm.DomainName = ""
	} else if other.DomainName != "" {
		tm.Domain = nil
		tm.DomainName = other.DomainName
	}

	tm.Delegates = appendNew(tm.Delegates, other.Delegates...)
	tm.Pre = append(tm.Pre, other.Pre...)
	tm.Post = append(tm.Post, other.Post...)
	tm.Ignore = appendNew(tm.Ignore, other.Ignore...)

	if tm.Fields == nil {
		tm.Fields = make(map[string]FieldMapping, len(other.Fields))
	}

	for k, v := range other.Fields {
		tm.Fields[k] = v
	}
}

func appendNew[T comparable](dst []T, items ...T) []T {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}

	return dst
}
