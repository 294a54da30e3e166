// Package catalog turns the raw catalog snapshot into the resolved type
// model the mapper and emitter work from.
//
// The open-ended SQL type taxonomy is modeled as a closed union: TypeRef
// has exactly one variant per supported shape plus an Opaque fallback for
// anything unrecognized. Build performs a single resolution pass over the
// snapshot; after it returns, every TypeRef reachable from a Table is fully
// resolved and the catalog is never mutated again.
package catalog

import "fmt"

// QualifiedName identifies a table or user-defined type within a schema.
type QualifiedName struct {
	Schema string
	Name   string
}

func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}

// TypeRef is the closed representation of a column or field type. The only
// implementations are the variants in this file; the unexported marker
// method keeps the union sealed.
type TypeRef interface {
	typeRef()
	// String returns a canonical form used in logs and error messages.
	String() string
}

// Scalar is a well-known built-in type, with optional modifiers.
type Scalar struct {
	Kind      ScalarKind
	Precision *int
	Scale     *int
	Length    *int
}

// Array is dim applications of the element type.
type Array struct {
	Elem TypeRef
	Dims int
}

// Enum is a user-defined enumeration with labels in catalog order.
type Enum struct {
	Name   QualifiedName
	Labels []string
}

// CompositeField is one named field of a composite type.
type CompositeField struct {
	Name string
	Type TypeRef
}

// Composite is a user-defined record type with fields in catalog order.
type Composite struct {
	Name   QualifiedName
	Fields []CompositeField
}

// Range is a bounded interval over an ordered subtype.
type Range struct {
	Name    QualifiedName
	Subtype TypeRef
}

// Domain is a constrained alias for an existing type. Mapping treats it as
// transparent; the name is kept for diagnostics.
type Domain struct {
	Name       QualifiedName
	Underlying TypeRef
}

// Opaque is the fallback for any catalog type the resolver does not
// recognize. It is non-fatal: mapping degrades to a string-like type and a
// warning is recorded per occurrence.
type Opaque struct {
	Raw string
}

func (*Scalar) typeRef()    {}
func (*Array) typeRef()     {}
func (*Enum) typeRef()      {}
func (*Composite) typeRef() {}
func (*Range) typeRef()     {}
func (*Domain) typeRef()    {}
func (*Opaque) typeRef()    {}

func (s *Scalar) String() string {
	switch {
	case s.Precision != nil && s.Scale != nil:
		return fmt.Sprintf("%s(%d,%d)", s.Kind, *s.Precision, *s.Scale)
	case s.Length != nil:
		return fmt.Sprintf("%s(%d)", s.Kind, *s.Length)
	default:
		return s.Kind.String()
	}
}

func (a *Array) String() string {
	out := a.Elem.String()
	for i := 0; i < a.Dims; i++ {
		out += "[]"
	}
	return out
}

func (e *Enum) String() string      { return "enum " + e.Name.String() }
func (c *Composite) String() string { return "composite " + c.Name.String() }
func (r *Range) String() string     { return "range of " + r.Subtype.String() }
func (d *Domain) String() string    { return "domain " + d.Name.String() }
func (o *Opaque) String() string    { return "opaque " + o.Raw }

// Column is a fully resolved table column.
type Column struct {
	Name       string
	Type       TypeRef
	Nullable   bool
	HasDefault bool
	IsPrimary  bool
	IsIdentity bool
	Ordinal    int
}

// ForeignKey is resolved constraint metadata. It never causes structural
// inlining of the referenced row — columns keep their own scalar types.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   QualifiedName
	RefColumns []string
}

// Table is a fully resolved table descriptor with columns in catalog
// ordinal order.
type Table struct {
	Name        QualifiedName
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Warning records one occurrence of an unrecognized catalog type that was
// degraded to Opaque.
type Warning struct {
	// Object names the owner, e.g. "table orders" or "type address".
	Object  string
	Field   string
	RawType string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: field %q has unsupported type %q", w.Object, w.Field, w.RawType)
}
