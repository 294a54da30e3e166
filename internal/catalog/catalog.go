package catalog

import (
	"sort"
	"strings"

	"github.com/koustreak/autostruct/internal/database"
	"github.com/koustreak/autostruct/internal/errs"
)

// Catalog is the immutable result of one resolution pass over a snapshot.
// Lookups are read-only; nothing is added or changed during mapping.
type Catalog struct {
	tables     []Table
	enums      map[string]*Enum
	composites map[string]*Composite
	domains    map[string]*Domain
	warnings   []Warning
}

// Tables returns every resolved table in snapshot order.
func (c *Catalog) Tables() []Table {
	return c.tables
}

// Warnings returns one entry per unrecognized type occurrence, in
// resolution order.
func (c *Catalog) Warnings() []Warning {
	return c.warnings
}

// Enums returns the registered enum definitions sorted by name.
func (c *Catalog) Enums() []*Enum {
	out := make([]*Enum, 0, len(c.enums))
	for _, e := range c.enums {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Name < out[j].Name.Name })
	return out
}

// Composites returns the registered composite definitions sorted by name.
func (c *Catalog) Composites() []*Composite {
	out := make([]*Composite, 0, len(c.composites))
	for _, ct := range c.composites {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Name < out[j].Name.Name })
	return out
}

// Build resolves the raw snapshot into the typed model. User-defined types
// are resolved first (with cycle detection over domain and composite
// references), then every column. A self-referential user type is fatal —
// it indicates corrupted catalog state, not recoverable input. A column or
// field naming a type the registry does not know degrades to Opaque and
// records a warning instead of failing the run.
func Build(snap *database.Snapshot) (*Catalog, error) {
	b := newBuilder(snap)

	// Resolve every registered user type up front so cycles are caught
	// even when no column references the offending type.
	for _, name := range b.userTypeNames() {
		if _, err := b.resolveUserType(name); err != nil {
			return nil, err
		}
	}

	pk := map[string]bool{}
	for _, k := range snap.PrimaryKeys {
		pk[k.Table+"."+k.Column] = true
	}

	fks := map[string][]ForeignKey{}
	for _, raw := range snap.ForeignKeys {
		list := fks[raw.Table]
		if n := len(list); n > 0 && list[n-1].Name == raw.Name {
			list[n-1].Columns = append(list[n-1].Columns, raw.Column)
			list[n-1].RefColumns = append(list[n-1].RefColumns, raw.RefColumn)
		} else {
			list = append(list, ForeignKey{
				Name:       raw.Name,
				Columns:    []string{raw.Column},
				RefTable:   QualifiedName{Schema: raw.Schema, Name: raw.RefTable},
				RefColumns: []string{raw.RefColumn},
			})
		}
		fks[raw.Table] = list
	}

	tables := make([]Table, 0, len(snap.Tables))
	for _, rt := range snap.Tables {
		table := Table{
			Name:        QualifiedName{Schema: rt.Schema, Name: rt.Name},
			ForeignKeys: fks[rt.Name],
		}
		for _, rc := range rt.Columns {
			ref, err := b.resolveColumn(rt.Name, rc)
			if err != nil {
				return nil, err
			}
			table.Columns = append(table.Columns, Column{
				Name:       rc.Name,
				Type:       ref,
				Nullable:   rc.Nullable,
				HasDefault: rc.HasDefault,
				IsPrimary:  pk[rt.Name+"."+rc.Name],
				IsIdentity: rc.IsIdentity,
				Ordinal:    rc.Ordinal,
			})
		}
		tables = append(tables, table)
	}

	return &Catalog{
		tables:     tables,
		enums:      b.enums,
		composites: b.composites,
		domains:    b.domains,
		warnings:   b.warnings,
	}, nil
}

// resolution states for cycle detection
const (
	stateUnvisited = iota
	stateVisiting
	stateDone
)

type builder struct {
	rawEnums      map[string][]database.RawEnumLabel
	rawComposites map[string][]database.RawCompositeField
	rawDomains    map[string]database.RawDomain
	rawRanges     map[string]database.RawRange

	enums      map[string]*Enum
	composites map[string]*Composite
	domains    map[string]*Domain
	ranges     map[string]*Range

	state    map[string]int
	stack    []string
	warnings []Warning
}

func newBuilder(snap *database.Snapshot) *builder {
	b := &builder{
		rawEnums:      map[string][]database.RawEnumLabel{},
		rawComposites: map[string][]database.RawCompositeField{},
		rawDomains:    map[string]database.RawDomain{},
		rawRanges:     map[string]database.RawRange{},
		enums:         map[string]*Enum{},
		composites:    map[string]*Composite{},
		domains:       map[string]*Domain{},
		ranges:        map[string]*Range{},
		state:         map[string]int{},
	}
	// Composite field rows arrive pre-ordered by the drivers; enum
	// labels are re-sorted by SortOrder at resolution time.
	for _, l := range snap.Enums {
		b.rawEnums[l.Name] = append(b.rawEnums[l.Name], l)
	}
	for _, f := range snap.Composites {
		b.rawComposites[f.Name] = append(b.rawComposites[f.Name], f)
	}
	for _, d := range snap.Domains {
		b.rawDomains[d.Name] = d
	}
	for _, r := range snap.Ranges {
		b.rawRanges[r.Name] = r
	}
	return b
}

// userTypeNames returns all registered type names in deterministic order.
func (b *builder) userTypeNames() []string {
	var names []string
	for name := range b.rawEnums {
		names = append(names, name)
	}
	for name := range b.rawComposites {
		names = append(names, name)
	}
	for name := range b.rawDomains {
		names = append(names, name)
	}
	for name := range b.rawRanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isUserType reports whether name is registered as a user-defined type.
func (b *builder) isUserType(name string) bool {
	if _, ok := b.rawEnums[name]; ok {
		return true
	}
	if _, ok := b.rawComposites[name]; ok {
		return true
	}
	if _, ok := b.rawDomains[name]; ok {
		return true
	}
	_, ok := b.rawRanges[name]
	return ok
}

// resolveColumn resolves one raw column into a TypeRef, attaching the
// column's declared modifiers when the result is a plain scalar.
func (b *builder) resolveColumn(table string, rc database.RawColumn) (TypeRef, error) {
	object := "table " + table

	// Columns declared through a domain resolve via the domain so the
	// unwrap chain stays visible to the mapper.
	name := rc.UDTName
	if rc.DomainName != "" && b.isUserType(rc.DomainName) {
		name = rc.DomainName
	}

	ref, err := b.resolveName(name, object, rc.Name)
	if err != nil {
		return nil, err
	}

	if s, ok := ref.(*Scalar); ok {
		s.Precision = rc.Precision
		s.Scale = rc.Scale
		s.Length = rc.MaxLength
	}
	return ref, nil
}

// resolveName resolves a raw catalog type name. object and field identify
// the referencing declaration for warning messages.
func (b *builder) resolveName(name, object, field string) (TypeRef, error) {
	// Postgres spells array types with a leading underscore on the
	// element name.
	if strings.HasPrefix(name, "_") {
		elem, err := b.resolveName(strings.TrimPrefix(name, "_"), object, field)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Dims: 1}, nil
	}

	if kind, ok := scalarKinds[strings.ToLower(name)]; ok {
		return &Scalar{Kind: kind}, nil
	}

	if b.isUserType(name) {
		return b.resolveUserType(name)
	}

	b.warnings = append(b.warnings, Warning{Object: object, Field: field, RawType: name})
	return &Opaque{Raw: name}, nil
}

// resolveUserType resolves a registered enum, composite, domain, or range
// definition, memoizing the result. Domains and composites may reference
// other user types; a reference back into the path currently being
// resolved is a catalog cycle and aborts the run.
func (b *builder) resolveUserType(name string) (TypeRef, error) {
	if e, ok := b.enums[name]; ok {
		return e, nil
	}
	if c, ok := b.composites[name]; ok {
		return c, nil
	}
	if d, ok := b.domains[name]; ok {
		return d, nil
	}
	if r, ok := b.ranges[name]; ok {
		return r, nil
	}

	if b.state[name] == stateVisiting {
		cycle := append(b.stack, name)
		return nil, errs.Newf(errs.KindCatalogCycle,
			"user type %q transitively references itself: %s", name, strings.Join(cycle, " -> "))
	}
	b.state[name] = stateVisiting
	b.stack = append(b.stack, name)
	defer func() {
		b.state[name] = stateDone
		b.stack = b.stack[:len(b.stack)-1]
	}()

	if labels, ok := b.rawEnums[name]; ok {
		// Label order is declaration order, carried by SortOrder. Row
		// arrival order is not trusted.
		sort.SliceStable(labels, func(i, j int) bool { return labels[i].SortOrder < labels[j].SortOrder })
		e := &Enum{Name: QualifiedName{Schema: labels[0].Schema, Name: name}}
		for _, l := range labels {
			e.Labels = append(e.Labels, l.Label)
		}
		b.enums[name] = e
		return e, nil
	}

	if fields, ok := b.rawComposites[name]; ok {
		c := &Composite{Name: QualifiedName{Schema: fields[0].Schema, Name: name}}
		object := "type " + name
		for _, f := range fields {
			ref, err := b.resolveName(f.UDTName, object, f.Field)
			if err != nil {
				return nil, err
			}
			if s, ok := ref.(*Scalar); ok {
				s.Precision = f.Precision
				s.Scale = f.Scale
				s.Length = f.MaxLength
			}
			c.Fields = append(c.Fields, CompositeField{Name: f.Field, Type: ref})
		}
		b.composites[name] = c
		return c, nil
	}

	if raw, ok := b.rawDomains[name]; ok {
		under, err := b.resolveName(raw.UDTName, "domain "+name, "")
		if err != nil {
			return nil, err
		}
		if s, ok := under.(*Scalar); ok {
			s.Precision = raw.Precision
			s.Scale = raw.Scale
			s.Length = raw.MaxLength
		}
		d := &Domain{Name: QualifiedName{Schema: raw.Schema, Name: name}, Underlying: under}
		b.domains[name] = d
		return d, nil
	}

	raw := b.rawRanges[name]
	sub, err := b.resolveName(raw.SubtypeUDT, "range "+name, "")
	if err != nil {
		return nil, err
	}
	r := &Range{Name: QualifiedName{Schema: raw.Schema, Name: name}, Subtype: sub}
	b.ranges[name] = r
	return r, nil
}
