package database

// The Raw* types model the rows returned by the catalog queries as directly
// as possible. They carry raw catalog names and modifiers only — resolving
// them into the typed model is the catalog package's job, not the drivers'.

// RawColumn is one column row from the catalog, in ordinal position order.
type RawColumn struct {
	Name string

	// DataType is the catalog's type classification, e.g. "numeric",
	// "ARRAY", or "USER-DEFINED" on Postgres; the declared type on
	// engines without a type registry.
	DataType string

	// UDTName is the underlying type name used for resolution, e.g.
	// "int4", "_int4" (array element prefix), "mood".
	UDTName string

	// DomainName is set when the column was declared through a domain.
	DomainName string

	Nullable   bool
	HasDefault bool
	IsIdentity bool
	Ordinal    int

	// Type modifiers; nil when the catalog does not declare one.
	Precision *int
	Scale     *int
	MaxLength *int
}

// RawTable is one table with its columns in catalog-declared ordinal order.
type RawTable struct {
	Schema  string
	Name    string
	Columns []RawColumn
}

// RawEnumLabel is one label of a user-defined enum type. Labels arrive
// already ordered by the catalog's sort order.
type RawEnumLabel struct {
	Schema    string
	Name      string
	Label     string
	SortOrder float64
}

// RawCompositeField is one field of a user-defined composite type, in
// catalog-declared field order.
type RawCompositeField struct {
	Schema  string
	Name    string
	Field   string
	UDTName string
	Ordinal int

	Precision *int
	Scale     *int
	MaxLength *int
}

// RawDomain is a user-defined constrained alias for an existing type.
type RawDomain struct {
	Schema  string
	Name    string
	UDTName string

	Precision *int
	Scale     *int
	MaxLength *int
}

// RawRange is a user-defined or built-in range type and its subtype.
type RawRange struct {
	Schema     string
	Name       string
	SubtypeUDT string
}

// RawForeignKey is one referencing column of a foreign-key constraint.
type RawForeignKey struct {
	Name      string
	Schema    string
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// RawKeyColumn is one column of a primary-key constraint.
type RawKeyColumn struct {
	Schema string
	Table  string
	Column string
}

// Snapshot is the complete raw catalog state captured in one consistent
// read. Engines without user-defined types leave the type slices empty.
type Snapshot struct {
	Tables      []RawTable
	Enums       []RawEnumLabel
	Composites  []RawCompositeField
	Domains     []RawDomain
	Ranges      []RawRange
	ForeignKeys []RawForeignKey
	PrimaryKeys []RawKeyColumn
}
