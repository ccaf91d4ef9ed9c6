package plan

import (
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"tomapper/convert"
	"tomapper/internal/access"
	"tomapper/mapping"
	"tomapper/maperr"
)

// Hooks resolves pre and post hooks referenced by name.
type Hooks interface {
	Pre(name string) (convert.PreConverter, bool)
	Post(name string) (convert.PostConverter, bool)
}

// Builder compiles plans from a catalog and a converter registry.
type Builder struct {
	Catalog    *mapping.Catalog
	Converters *convert.Registry
	Hooks      Hooks
	Access     access.Options
	Logger     *zap.Logger
}

// Build compiles the plan for the transfer type t.
func (b *Builder) Build(t reflect.Type) (*Plan, error) {
	t = access.Deref(t)

	tm, ok := b.Catalog.Lookup(t)
	if !ok {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindMissingDomain).
			Type(t.String()).
			Detail("no domain association registered").
			Build()
	}

	if t.Kind() != reflect.Struct {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindInvalidConfig).
			Type(t.String()).
			Detail("only struct transfer types have a plan, convert through a delegate").
			Build()
	}

	domain, err := b.Catalog.Domain(t)
	if err != nil {
		return nil, err
	}

	if domain.Kind() != reflect.Struct {
		return nil, maperr.New(maperr.PhaseBuild, maperr.KindInvalidConfig).
			Type(t.String()).
			Detail("domain type " + domain.String() + " is not a struct").
			Build()
	}

	p := newPlan(t, domain)
	fb := fieldBuilder{Builder: b, transfer: t, domain: domain}

	for _, f := range reflect.VisibleFields(t) {
		if !b.eligible(tm, f) {
			continue
		}

		toDomain, toTransfer, err := fb.field(f, tm.Field(f.Name))
		if err != nil {
			return nil, err
		}

		if toDomain != nil {
			_ = p.toDomain.Add(toDomain)
		}

		if toTransfer != nil {
			_ = p.toTransfer.Add(toTransfer)
		}
	}

	if p.Pre, err = b.preChain(tm); err != nil {
		return nil, err
	}

	if p.Post, err = b.postChain(tm); err != nil {
		return nil, err
	}

	p.Lock()

	b.logger().Debug("plan built",
		zap.Stringer("transfer", t),
		zap.Stringer("domain", domain),
		zap.Int("to_domain", p.toDomain.Len()),
		zap.Int("to_transfer", p.toTransfer.Len()),
	)

	return p, nil
}

func (b *Builder) eligible(tm *mapping.TypeMapping, f reflect.StructField) bool {
	if f.Anonymous || tm.Ignored(f.Name) {
		return false
	}

	if f.IsExported() {
		return true
	}

	_, explicit := tm.Fields[f.Name]

	return explicit && b.Access.AllowUnexported
}

func (b *Builder) preChain(tm *mapping.TypeMapping) (convert.PreChain, error) {
	var chain convert.PreChain

	for _, ref := range tm.Pre {
		if ref.Hook != nil {
			chain = append(chain, ref.Hook)
			continue
		}

		h, ok := b.lookupPre(ref.Name)
		if !ok {
			return nil, hookNotFound(tm.Transfer, "pre", ref.Name)
		}

		chain = append(chain, h)
	}

	return chain, nil
}

func (b *Builder) postChain(tm *mapping.TypeMapping) (convert.PostChain, error) {
	var chain convert.PostChain

	for _, ref := range tm.Post {
		if ref.Hook != nil {
			chain = append(chain, ref.Hook)
			continue
		}

		h, ok := b.lookupPost(ref.Name)
		if !ok {
			return nil, hookNotFound(tm.Transfer, "post", ref.Name)
		}

		chain = append(chain, h)
	}

	return chain, nil
}

func (b *Builder) lookupPre(name string) (convert.PreConverter, bool) {
	if b.Hooks == nil {
		return nil, false
	}

	return b.Hooks.Pre(name)
}

func (b *Builder) lookupPost(name string) (convert.PostConverter, bool) {
	if b.Hooks == nil {
		return nil, false
	}

	return b.Hooks.Post(name)
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}

	return b.Logger
}

func hookNotFound(t reflect.Type, kind, name string) error {
	return maperr.New(maperr.PhaseBuild, maperr.KindHookNotFound).
		Type(t.String()).
		Detail(fmt.Sprintf("%s converter %q is not registered", kind, name)).
		Build()
}

// fieldBuilder builds the converters of one transfer field.
type fieldBuilder struct {
	*Builder
	transfer reflect.Type
	domain   reflect.Type
}

// field returns the converters of f for both directions. Either may be nil.
func (fb fieldBuilder) field(f reflect.StructField, fm mapping.FieldMapping) (FieldConverter, FieldConverter, error) {
	if len(fm.Tags) == 0 {
		return fb.pair(f, fm)
	}

	toDomain := newTagged(f.Name, len(fm.Tags))
	toTransfer := newTagged(f.Name, len(fm.Tags))

	for _, rule := range fm.Tags {
		eff := rule.Apply(fm)
		if eff.Exclude {
			toDomain.excluded[rule.Tag] = true
			toTransfer.excluded[rule.Tag] = true

			continue
		}

		d, tr, err := fb.pair(f, eff)
		if err != nil {
			return nil, nil, err
		}

		toDomain.rules[rule.Tag] = d
		toTransfer.rules[rule.Tag] = tr
	}

	if len(toDomain.rules) == 0 {
		// only exclusions: the untagged mapping applies otherwise
		base := fm
		base.Tags = nil

		d, tr, err := fb.pair(f, base)
		if err != nil {
			return nil, nil, err
		}

		toDomain.fallback, toTransfer.fallback = d, tr
	}

	return toDomain, toTransfer, nil
}

// pair builds the converters for one effective field mapping. The to-domain
// converter is nil for read-only fields.
func (fb fieldBuilder) pair(f reflect.StructField, fm mapping.FieldMapping) (FieldConverter, FieldConverter, error) {
	toAcc, err := access.Resolve(fb.transfer, f.Name, nil, fb.Access)
	if err != nil {
		return nil, nil, err
	}

	var explicit *access.Pair
	if fm.HasAccessors() {
		explicit = &access.Pair{Get: fm.Get, Set: fm.Set, Type: fm.Type}
	}

	segments := append(slices.Clone(fm.Path), fm.DomainField(f.Name))

	domainAcc, err := access.ResolvePath(fb.domain, segments, explicit, fb.Access)
	if err != nil {
		return nil, nil, maperr.New(maperr.PhaseBuild, maperr.KindFieldNotFound).
			Type(fb.transfer.String()).
			Path(f.Name).
			Detail("cannot determine mapping to " + fb.domain.String()).
			Cause(err).
			Build()
	}

	tc, err := fb.Converters.Resolve(fm.Converter, fm.ConverterRef, toAcc.Type(), domainAcc.Type())
	if err != nil {
		if me, ok := maperr.As(err); ok && me.Type == "" {
			me.Type = fb.transfer.String()
			me.Path = []string{f.Name}
		}

		return nil, nil, err
	}

	toName := fb.transfer.Name() + "." + f.Name
	domainName := fb.domain.Name() + "." + domainAcc.Name()

	if !toAcc.CanSet() || !domainAcc.CanGet() {
		return nil, nil, fb.unwritable(f.Name, toName)
	}

	toTransfer := &fieldConverter{
		field: f.Name,
		desc:  domainName + " -> " + toName,
		dir:   convert.DirectionToTransfer,
		from:  domainAcc,
		to:    toAcc,
		tc:    tc,
	}

	if fm.ReadOnly {
		return nil, toTransfer, nil
	}

	if !domainAcc.CanSet() || !toAcc.CanGet() {
		return nil, nil, fb.unwritable(f.Name, domainName)
	}

	toDomain := &fieldConverter{
		field: f.Name,
		desc:  toName + " -> " + domainName,
		dir:   convert.DirectionToDomain,
		from:  toAcc,
		to:    domainAcc,
		tc:    tc,
	}

	return toDomain, toTransfer, nil
}

func (fb fieldBuilder) unwritable(field, target string) error {
	return maperr.New(maperr.PhaseBuild, maperr.KindAccessorNotFound).
		Type(fb.transfer.String()).
		Path(field).
		Detail(target + " cannot be written, mark the field read-only").
		Build()
}
