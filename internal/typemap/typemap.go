// Package typemap maps resolved catalog types onto Go types. The mapping is
// a pure function of its input: the same catalog type always produces the
// same Go type and the same supporting declarations, which keeps repeated
// runs byte-identical.
package typemap

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/koustreak/autostruct/internal/catalog"
	"github.com/koustreak/autostruct/internal/naming"
)

const (
	pgtypePkg = "github.com/jackc/pgx/v5/pgtype"
	uuidPkg   = "github.com/google/uuid"
)

// Kind discriminates the nodes of a rendered Go type tree.
type Kind int

const (
	// Named is a bare identifier in the generated package: a builtin such
	// as int64 or a generated declaration such as an enum type.
	Named Kind = iota
	// Qual is an identifier qualified by an imported package.
	Qual
	// Slice wraps an element type.
	Slice
	// Pointer wraps an element type. Used for nullable columns.
	Pointer
	// Generic is an instantiated generic type such as pgtype.Range[T].
	Generic
)

// Type is a small renderable Go type tree. String gives a canonical form
// used in tests and reports; Code renders the jennifer statement for the
// emitter.
type Type struct {
	Kind Kind
	Pkg  string // import path, set for Qual and Generic
	Name string // identifier, set for Named, Qual and Generic
	Elem *Type  // set for Slice and Pointer
	Args []Type // set for Generic
}

// String returns the canonical textual form of the type, qualifying
// imported identifiers with the package base name.
func (t Type) String() string {
	switch t.Kind {
	case Named:
		return t.Name
	case Qual:
		return pkgBase(t.Pkg) + "." + t.Name
	case Slice:
		return "[]" + t.Elem.String()
	case Pointer:
		return "*" + t.Elem.String()
	case Generic:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return pkgBase(t.Pkg) + "." + t.Name + "[" + strings.Join(args, ", ") + "]"
	default:
		return ""
	}
}

// Code renders the type as a jennifer statement.
func (t Type) Code() *jen.Statement {
	switch t.Kind {
	case Named:
		return jen.Id(t.Name)
	case Qual:
		return jen.Qual(t.Pkg, t.Name)
	case Slice:
		return jen.Index().Add(t.Elem.Code())
	case Pointer:
		return jen.Op("*").Add(t.Elem.Code())
	case Generic:
		args := make([]jen.Code, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Code()
		}
		return jen.Qual(t.Pkg, t.Name).Index(args...)
	default:
		return jen.Empty()
	}
}

func pkgBase(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Ptr wraps a type in a pointer. The orchestrator applies it to nullable
// columns after mapping.
func Ptr(t Type) Type {
	return Type{Kind: Pointer, Elem: &t}
}

func named(name string) Type     { return Type{Kind: Named, Name: name} }
func qual(pkg, name string) Type { return Type{Kind: Qual, Pkg: pkg, Name: name} }
func slice(elem Type) Type       { return Type{Kind: Slice, Elem: &elem} }

func generic(pkg, name string, args ...Type) Type {
	return Type{Kind: Generic, Pkg: pkg, Name: name, Args: args}
}

// AuxKind discriminates supporting declarations.
type AuxKind int

const (
	// AuxEnum is a string-backed type plus one constant per label.
	AuxEnum AuxKind = iota
	// AuxStruct is a nested struct generated for a composite type.
	AuxStruct
)

// Field is one resolved field of an AuxStruct declaration.
type Field struct {
	Ident  string // exported Go field name
	Column string // raw catalog field name
	Type   Type
}

// Aux is a supporting declaration that a mapped column type requires: the
// enum or struct definition the column's Go type refers to. The emitter
// deduplicates aux declarations across tables by Name.
type Aux struct {
	Kind   AuxKind
	Name   catalog.QualifiedName
	Ident  string
	Labels []string // AuxEnum
	Fields []Field  // AuxStruct
}

// Mapper maps catalog types to Go types, naming generated declarations
// through the shared resolver so columns and aux declarations agree.
type Mapper struct {
	names *naming.Resolver
}

func New(names *naming.Resolver) *Mapper {
	return &Mapper{names: names}
}

// Map resolves a catalog type to its Go type and the supporting
// declarations it needs, dependencies before dependents. Aux declarations
// are deduplicated by qualified name within one call.
func (m *Mapper) Map(t catalog.TypeRef) (Type, []Aux) {
	var aux []Aux
	seen := map[catalog.QualifiedName]bool{}
	typ := m.resolve(t, &aux, seen)
	return typ, aux
}

func (m *Mapper) resolve(t catalog.TypeRef, aux *[]Aux, seen map[catalog.QualifiedName]bool) Type {
	switch v := t.(type) {
	case *catalog.Scalar:
		return scalarType(v.Kind)
	case *catalog.Array:
		elem := m.resolve(v.Elem, aux, seen)
		for i := 0; i < v.Dims; i++ {
			elem = slice(elem)
		}
		return elem
	case *catalog.Enum:
		ident := m.typeIdent(v.Name.Name)
		if !seen[v.Name] {
			seen[v.Name] = true
			*aux = append(*aux, Aux{
				Kind:   AuxEnum,
				Name:   v.Name,
				Ident:  ident,
				Labels: v.Labels,
			})
		}
		return named(ident)
	case *catalog.Composite:
		ident := m.typeIdent(v.Name.Name)
		if !seen[v.Name] {
			// Mark before descending so self references cannot recurse;
			// the catalog rejects cycles before mapping ever runs.
			seen[v.Name] = true
			fields := make([]Field, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = Field{
					Ident:  m.names.ColumnIdent(f.Name),
					Column: f.Name,
					Type:   m.resolve(f.Type, aux, seen),
				}
			}
			*aux = append(*aux, Aux{
				Kind:   AuxStruct,
				Name:   v.Name,
				Ident:  ident,
				Fields: fields,
			})
		}
		return named(ident)
	case *catalog.Range:
		sub := m.resolve(v.Subtype, aux, seen)
		return generic(pgtypePkg, "Range", sub)
	case *catalog.Domain:
		// Domains are transparent: columns use the underlying Go type.
		return m.resolve(v.Underlying, aux, seen)
	case *catalog.Opaque:
		return named("string")
	default:
		return named("string")
	}
}

func (m *Mapper) typeIdent(raw string) string {
	return naming.Escape(m.names.TypeIdent(raw))
}

func scalarType(k catalog.ScalarKind) Type {
	switch k {
	case catalog.ScalarBool:
		return named("bool")
	case catalog.ScalarInt16:
		return named("int16")
	case catalog.ScalarInt32:
		return named("int32")
	case catalog.ScalarInt64:
		return named("int64")
	case catalog.ScalarFloat32:
		return named("float32")
	case catalog.ScalarFloat64:
		return named("float64")
	case catalog.ScalarDecimal:
		return qual(pgtypePkg, "Numeric")
	case catalog.ScalarBytes:
		return slice(named("byte"))
	case catalog.ScalarDate, catalog.ScalarTimestamp, catalog.ScalarTimestampTZ:
		return qual("time", "Time")
	case catalog.ScalarTime:
		return qual(pgtypePkg, "Time")
	case catalog.ScalarInterval:
		return qual(pgtypePkg, "Interval")
	case catalog.ScalarUUID:
		return qual(uuidPkg, "UUID")
	case catalog.ScalarJSON:
		return qual("encoding/json", "RawMessage")
	case catalog.ScalarInet, catalog.ScalarCIDR:
		return qual("net/netip", "Prefix")
	case catalog.ScalarMacAddr:
		return qual("net", "HardwareAddr")
	case catalog.ScalarBit:
		return qual(pgtypePkg, "Bits")
	case catalog.ScalarPoint:
		return qual(pgtypePkg, "Point")
	case catalog.ScalarLine:
		return qual(pgtypePkg, "Line")
	case catalog.ScalarLineSegment:
		return qual(pgtypePkg, "Lseg")
	case catalog.ScalarBox:
		return qual(pgtypePkg, "Box")
	case catalog.ScalarPath:
		return qual(pgtypePkg, "Path")
	case catalog.ScalarPolygon:
		return qual(pgtypePkg, "Polygon")
	case catalog.ScalarCircle:
		return qual(pgtypePkg, "Circle")
	case catalog.ScalarOID:
		return named("uint32")
	case catalog.ScalarText, catalog.ScalarMoney, catalog.ScalarXML,
		catalog.ScalarTimeTZ, catalog.ScalarTSVector, catalog.ScalarTSQuery:
		return named("string")
	default:
		return named("string")
	}
}
