package mapping

import (
	"reflect"
	"strings"

	"tomapper/convert"
)

// Builder assembles a TypeMapping in code.
type Builder struct {
	tm TypeMapping
}

// FieldOption customizes one FieldMapping.
type FieldOption func(*FieldMapping)

// TagOption customizes one TagRule.
type TagOption func(*TagRule)

// New starts a mapping from transfer type TO to domain type D.
func New[TO, D any]() *Builder {
	return &Builder{tm: TypeMapping{
		Transfer: reflect.TypeFor[TO](),
		Domain:   reflect.TypeFor[D](),
	}}
}

// Named starts a mapping whose domain type is resolved by name through
// Catalog.Bind.
func Named[TO any](domainName string) *Builder {
	return &Builder{tm: TypeMapping{
		Transfer:   reflect.TypeFor[TO](),
		DomainName: domainName,
	}}
}

// Field adds or replaces the mapping of a transfer field.
func (b *Builder) Field(name string, opts ...FieldOption) *Builder {
	if b.tm.Fields == nil {
		b.tm.Fields = make(map[string]FieldMapping)
	}

	fm := b.tm.Fields[name]
	for _, opt := range opts {
		opt(&fm)
	}

	b.tm.Fields[name] = fm

	return b
}

func (b *Builder) Ignore(names ...string) *Builder {
	b.tm.Ignore = appendNew(b.tm.Ignore, names...)
	return b
}

// Delegates lists concrete transfer types for an interface transfer type.
func (b *Builder) Delegates(types ...reflect.Type) *Builder {
	b.tm.Delegates = appendNew(b.tm.Delegates, types...)
	return b
}

// Pre references a registered pre-conversion hook by name.
func (b *Builder) Pre(name string) *Builder {
	b.tm.Pre = append(b.tm.Pre, PreRef{Name: name})
	return b
}

func (b *Builder) PreHook(h convert.PreConverter) *Builder {
	b.tm.Pre = append(b.tm.Pre, PreRef{Hook: h})
	return b
}

// Post references a registered post-conversion hook by name.
func (b *Builder) Post(name string) *Builder {
	b.tm.Post = append(b.tm.Post, PostRef{Name: name})
	return b
}

func (b *Builder) PostHook(h convert.PostConverter) *Builder {
	b.tm.Post = append(b.tm.Post, PostRef{Hook: h})
	return b
}

// Build returns the assembled mapping. The builder may be reused.
func (b *Builder) Build() *TypeMapping {
	return b.tm.Clone()
}

// Target renames the domain field.
func Target(name string) FieldOption {
	return func(fm *FieldMapping) { fm.Target = name }
}

// Path sets the dotted chain of intermediate domain fields.
func Path(path string) FieldOption {
	return func(fm *FieldMapping) { fm.Path = splitPath(path) }
}

// Converter selects a registered type converter by name.
func Converter(name string) FieldOption {
	return func(fm *FieldMapping) {
		fm.Converter = name
		fm.ConverterRef = nil
	}
}

// ConverterRef uses tc for the field, bypassing resolution.
func ConverterRef(tc convert.TypeConverter) FieldOption {
	return func(fm *FieldMapping) {
		fm.ConverterRef = tc
		fm.Converter = ""
	}
}

// ReadOnly keeps the field out of transfer to domain conversions.
func ReadOnly() FieldOption {
	return func(fm *FieldMapping) { fm.ReadOnly = true }
}

func Exclude() FieldOption {
	return func(fm *FieldMapping) { fm.Exclude = true }
}

// Tag scopes the field to tag. Repeating a tag replaces its rule.
func Tag(tag string, opts ...TagOption) FieldOption {
	return func(fm *FieldMapping) {
		rule := TagRule{Tag: tag}
		for _, opt := range opts {
			opt(&rule)
		}

		for i := range fm.Tags {
			if fm.Tags[i].Tag == tag {
				fm.Tags[i] = rule
				return
			}
		}

		fm.Tags = append(fm.Tags, rule)
	}
}

// Accessors replaces the domain side accessor of the field. typ is the type
// exchanged by get and set; set may be nil for read-only fields.
func Accessors(typ reflect.Type, get func(obj any) (any, error), set func(obj, value any) error) FieldOption {
	return func(fm *FieldMapping) {
		fm.Type = typ
		fm.Get = get
		fm.Set = set
	}
}

// TagReadOnly makes the tagged rule read-only.
func TagReadOnly() TagOption {
	return func(r *TagRule) { r.ReadOnly = true }
}

// TagExclude suppresses the field under the tag.
func TagExclude() TagOption {
	return func(r *TagRule) { r.Exclude = true }
}

func TagTarget(name string) TagOption {
	return func(r *TagRule) { r.Target = name }
}

func TagPath(path string) TagOption {
	return func(r *TagRule) { r.Path = splitPath(path) }
}

func TagConverter(name string) TagOption {
	return func(r *TagRule) { r.Converter = name }
}

func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	return strings.Split(path, ".")
}
