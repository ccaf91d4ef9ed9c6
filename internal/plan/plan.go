package plan

import (
	"reflect"

	"tomapper/convert"
	"tomapper/internal/access"
	"tomapper/lockable"
	"tomapper/mapping"
	"tomapper/maperr"
)

// FieldConverter copies one field from src to dst. Both values are struct
// values or pointers to them; dst must be addressable.
type FieldConverter interface {
	// Field is the transfer field name.
	Field() string
	Convert(src, dst reflect.Value, tags []string) error
}

// Plan is the compiled mapping of one transfer type.
type Plan struct {
	Transfer reflect.Type
	Domain   reflect.Type

	toDomain   *lockable.List[FieldConverter]
	toTransfer *lockable.List[FieldConverter]

	Pre  convert.PreChain
	Post convert.PostChain
}

func newPlan(transfer, domain reflect.Type) *Plan {
	return &Plan{
		Transfer:   transfer,
		Domain:     domain,
		toDomain:   lockable.New[FieldConverter](),
		toTransfer: lockable.New[FieldConverter](),
	}
}

// ToDomain returns the transfer to domain field converters.
func (p *Plan) ToDomain() *lockable.List[FieldConverter] { return p.toDomain }

// ToTransfer returns the domain to transfer field converters.
func (p *Plan) ToTransfer() *lockable.List[FieldConverter] { return p.toTransfer }

// Converters returns the list for dir.
func (p *Plan) Converters(dir convert.Direction) *lockable.List[FieldConverter] {
	if dir == convert.DirectionToDomain {
		return p.toDomain
	}

	return p.toTransfer
}

// Lock makes both converter lists read-only.
func (p *Plan) Lock() {
	p.toDomain.Lock()
	p.toTransfer.Lock()
}

// Run executes the field converters of dir in order. An empty tag list is
// replaced by mapping.TagDefault.
func (p *Plan) Run(dir convert.Direction, src, dst reflect.Value, tags []string) error {
	if len(tags) == 0 {
		tags = defaultTags
	}

	for _, fc := range p.Converters(dir).All() {
		if err := fc.Convert(src, dst, tags); err != nil {
			return err
		}
	}

	return nil
}

var defaultTags = []string{mapping.TagDefault}

// fieldConverter runs one field in one direction.
type fieldConverter struct {
	field string
	desc  string
	dir   convert.Direction
	from  access.Accessor
	to    access.Accessor
	tc    convert.TypeConverter
}

func (c *fieldConverter) Field() string { return c.field }

func (c *fieldConverter) Convert(src, dst reflect.Value, tags []string) error {
	v, err := c.from.Get(src)
	if err != nil {
		return err
	}

	var cur reflect.Value
	if c.to.CanGet() {
		if got, err := c.to.Get(dst); err == nil {
			cur = got
		}
	}

	in := convert.Input{Value: v, Current: cur, Type: c.to.Type(), Tags: tags, Field: c.desc}

	var out reflect.Value
	if c.dir == convert.DirectionToDomain {
		out, err = c.tc.ToDomain(in)
	} else {
		out, err = c.tc.ToTransfer(in)
	}

	if err != nil {
		if inner, ok := convert.PassedThrough(err); ok {
			return inner
		}

		return maperr.New(maperr.PhaseConvert, maperr.KindConversion).
			Path(c.field).
			Detail(c.desc + " using " + convert.NameOf(c.tc)).
			Cause(err).
			Build()
	}

	return c.to.Set(dst, out)
}

// tagged selects a converter by tag. A nil rule means the tag matches but
// the field is not converted in this direction. A caller tag naming an
// excluded rule suppresses the field, even under the always tag. A field
// whose rules are all exclusions converts whenever none of them is named.
type tagged struct {
	field    string
	rules    map[string]FieldConverter
	excluded map[string]bool
	fallback FieldConverter
}

func newTagged(field string, n int) *tagged {
	return &tagged{
		field:    field,
		rules:    make(map[string]FieldConverter, n),
		excluded: make(map[string]bool, n),
	}
}

func (t *tagged) Field() string { return t.field }

func (t *tagged) Convert(src, dst reflect.Value, tags []string) error {
	fc := t.match(tags)
	if fc == nil {
		return nil
	}

	return fc.Convert(src, dst, tags)
}

func (t *tagged) match(tags []string) FieldConverter {
	for _, tag := range tags {
		if t.excluded[tag] {
			return nil
		}
	}

	if fc, ok := t.rules[mapping.TagAlways]; ok {
		return fc
	}

	for _, tag := range tags {
		if fc, ok := t.rules[tag]; ok {
			return fc
		}
	}

	if len(t.rules) == 0 {
		return t.fallback
	}

	return nil
}
