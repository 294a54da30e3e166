package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/autostruct/internal/database"
	"github.com/koustreak/autostruct/internal/errs"
)

func intp(v int) *int { return &v }

func column(name, udt string, ordinal int) database.RawColumn {
	return database.RawColumn{Name: name, UDTName: udt, DataType: udt, Nullable: true, Ordinal: ordinal}
}

func TestBuild_ScalarModifiers(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "table_basic_types",
			Columns: []database.RawColumn{
				{Name: "numeric_column", UDTName: "numeric", DataType: "numeric",
					Nullable: true, Ordinal: 1, Precision: intp(10), Scale: intp(2)},
				{Name: "bigint_column", UDTName: "int8", DataType: "bigint",
					Nullable: false, Ordinal: 2},
				{Name: "varchar_column", UDTName: "varchar", DataType: "character varying",
					Nullable: true, Ordinal: 3, MaxLength: intp(40)},
			},
		}},
	}

	cat, err := Build(snap)
	require.NoError(t, err)
	require.Len(t, cat.Tables(), 1)

	cols := cat.Tables()[0].Columns
	require.Len(t, cols, 3)

	num, ok := cols[0].Type.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarDecimal, num.Kind)
	require.NotNil(t, num.Precision)
	require.NotNil(t, num.Scale)
	assert.Equal(t, 10, *num.Precision)
	assert.Equal(t, 2, *num.Scale)
	assert.True(t, cols[0].Nullable)

	big, ok := cols[1].Type.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarInt64, big.Kind)
	assert.False(t, cols[1].Nullable)

	vc, ok := cols[2].Type.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarText, vc.Kind)
	require.NotNil(t, vc.Length)
	assert.Equal(t, 40, *vc.Length)
}

func TestBuild_ArrayResolution(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "tags",
			Columns: []database.RawColumn{
				{Name: "labels", UDTName: "_text", DataType: "ARRAY", Nullable: true, Ordinal: 1},
			},
		}},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	arr, ok := cat.Tables()[0].Columns[0].Type.(*Array)
	require.True(t, ok)
	assert.Equal(t, 1, arr.Dims)

	elem, ok := arr.Elem.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarText, elem.Kind)
}

func TestBuild_EnumLabelOrder(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "table_enum_type",
			Columns: []database.RawColumn{
				{Name: "mood_column", UDTName: "mood", DataType: "USER-DEFINED", Nullable: false, Ordinal: 1},
			},
		}},
		Enums: []database.RawEnumLabel{
			{Schema: "public", Name: "mood", Label: "sad", SortOrder: 1},
			{Schema: "public", Name: "mood", Label: "ok", SortOrder: 2},
			{Schema: "public", Name: "mood", Label: "happy", SortOrder: 3},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	enum, ok := cat.Tables()[0].Columns[0].Type.(*Enum)
	require.True(t, ok)
	assert.Equal(t, "mood", enum.Name.Name)
	assert.Equal(t, []string{"sad", "ok", "happy"}, enum.Labels)
	assert.Empty(t, cat.Warnings())
}

func TestBuild_EnumLabelsSortedBySortOrder(t *testing.T) {
	// Rows arrive out of declaration order; SortOrder decides.
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "table_enum_type",
			Columns: []database.RawColumn{
				{Name: "mood_column", UDTName: "mood", DataType: "USER-DEFINED", Nullable: false, Ordinal: 1},
			},
		}},
		Enums: []database.RawEnumLabel{
			{Schema: "public", Name: "mood", Label: "happy", SortOrder: 3},
			{Schema: "public", Name: "mood", Label: "sad", SortOrder: 1},
			{Schema: "public", Name: "mood", Label: "ok", SortOrder: 2},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	enum, ok := cat.Tables()[0].Columns[0].Type.(*Enum)
	require.True(t, ok)
	assert.Equal(t, []string{"sad", "ok", "happy"}, enum.Labels)
}

func TestBuild_CompositeFieldOrder(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{
			{
				Schema: "public",
				Name:   "customers",
				Columns: []database.RawColumn{
					{Name: "home", UDTName: "address", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
				},
			},
			{
				Schema: "public",
				Name:   "warehouses",
				Columns: []database.RawColumn{
					{Name: "location", UDTName: "address", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
				},
			},
		},
		Composites: []database.RawCompositeField{
			{Schema: "public", Name: "address", Field: "street", UDTName: "text", Ordinal: 1},
			{Schema: "public", Name: "address", Field: "city", UDTName: "text", Ordinal: 2},
			{Schema: "public", Name: "address", Field: "zip", UDTName: "int4", Ordinal: 3},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	home, ok := cat.Tables()[0].Columns[0].Type.(*Composite)
	require.True(t, ok)
	require.Len(t, home.Fields, 3)
	assert.Equal(t, "street", home.Fields[0].Name)
	assert.Equal(t, "city", home.Fields[1].Name)
	assert.Equal(t, "zip", home.Fields[2].Name)

	// Both referencing tables share one definition.
	loc, ok := cat.Tables()[1].Columns[0].Type.(*Composite)
	require.True(t, ok)
	assert.Same(t, home, loc)
}

func TestCatalogAccessors(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "profiles",
			Columns: []database.RawColumn{
				{Name: "home", UDTName: "address", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
				{Name: "mood_column", UDTName: "mood", DataType: "USER-DEFINED", Nullable: false, Ordinal: 2},
			},
		}},
		Enums: []database.RawEnumLabel{
			{Schema: "public", Name: "status", Label: "active", SortOrder: 1},
			{Schema: "public", Name: "mood", Label: "sad", SortOrder: 1},
		},
		Composites: []database.RawCompositeField{
			{Schema: "public", Name: "address", Field: "street", UDTName: "text", Ordinal: 1},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	enums := cat.Enums()
	require.Len(t, enums, 2)
	assert.Equal(t, "mood", enums[0].Name.Name)
	assert.Equal(t, "status", enums[1].Name.Name)

	composites := cat.Composites()
	require.Len(t, composites, 1)
	assert.Equal(t, "address", composites[0].Name.Name)
}

func TestBuild_DomainResolvesUnderlying(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "accounts",
			Columns: []database.RawColumn{
				{Name: "balance", UDTName: "numeric", DataType: "numeric",
					DomainName: "positive_amount", Nullable: false, Ordinal: 1},
			},
		}},
		Domains: []database.RawDomain{
			{Schema: "public", Name: "positive_amount", UDTName: "numeric",
				Precision: intp(12), Scale: intp(4)},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	dom, ok := cat.Tables()[0].Columns[0].Type.(*Domain)
	require.True(t, ok)
	assert.Equal(t, "positive_amount", dom.Name.Name)

	under, ok := dom.Underlying.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarDecimal, under.Kind)
	require.NotNil(t, under.Precision)
	assert.Equal(t, 12, *under.Precision)
}

func TestBuild_RangeSubtype(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "bookings",
			Columns: []database.RawColumn{
				{Name: "during", UDTName: "tstzrange", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
			},
		}},
		Ranges: []database.RawRange{
			{Schema: "pg_catalog", Name: "tstzrange", SubtypeUDT: "timestamptz"},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	rng, ok := cat.Tables()[0].Columns[0].Type.(*Range)
	require.True(t, ok)

	sub, ok := rng.Subtype.(*Scalar)
	require.True(t, ok)
	assert.Equal(t, ScalarTimestampTZ, sub.Kind)
}

func TestBuild_UnknownTypeDegradesToOpaque(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "assets",
			Columns: []database.RawColumn{
				{Name: "geom", UDTName: "geometry", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
				{Name: "id", UDTName: "int4", DataType: "integer", Nullable: false, Ordinal: 2},
			},
		}},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	op, ok := cat.Tables()[0].Columns[0].Type.(*Opaque)
	require.True(t, ok)
	assert.Equal(t, "geometry", op.Raw)

	require.Len(t, cat.Warnings(), 1)
	w := cat.Warnings()[0]
	assert.Equal(t, "table assets", w.Object)
	assert.Equal(t, "geom", w.Field)
	assert.Equal(t, "geometry", w.RawType)
}

func TestBuild_CompositeReferencingMissingTypeDegrades(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "sites",
			Columns: []database.RawColumn{
				{Name: "info", UDTName: "site_info", DataType: "USER-DEFINED", Nullable: true, Ordinal: 1},
			},
		}},
		Composites: []database.RawCompositeField{
			{Schema: "public", Name: "site_info", Field: "shape", UDTName: "geometry", Ordinal: 1},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	comp, ok := cat.Tables()[0].Columns[0].Type.(*Composite)
	require.True(t, ok)
	_, ok = comp.Fields[0].Type.(*Opaque)
	assert.True(t, ok)

	require.Len(t, cat.Warnings(), 1)
	assert.Equal(t, "type site_info", cat.Warnings()[0].Object)
}

func TestBuild_CycleIsFatal(t *testing.T) {
	tests := []struct {
		name string
		snap *database.Snapshot
	}{
		{
			name: "composite referencing itself",
			snap: &database.Snapshot{
				Composites: []database.RawCompositeField{
					{Schema: "public", Name: "node", Field: "next", UDTName: "node", Ordinal: 1},
				},
			},
		},
		{
			name: "domain cycle through composite",
			snap: &database.Snapshot{
				Composites: []database.RawCompositeField{
					{Schema: "public", Name: "pair", Field: "left", UDTName: "wrapped", Ordinal: 1},
				},
				Domains: []database.RawDomain{
					{Schema: "public", Name: "wrapped", UDTName: "pair"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.snap)
			require.Error(t, err)
			assert.True(t, errs.IsCatalogCycle(err))
		})
	}
}

func TestBuild_KeysAndForeignKeys(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{
			{
				Schema: "public",
				Name:   "orders",
				Columns: []database.RawColumn{
					{Name: "id", UDTName: "int8", DataType: "bigint", Nullable: false, IsIdentity: true, Ordinal: 1},
					{Name: "customer_id", UDTName: "int8", DataType: "bigint", Nullable: false, Ordinal: 2},
				},
			},
		},
		PrimaryKeys: []database.RawKeyColumn{
			{Schema: "public", Table: "orders", Column: "id"},
		},
		ForeignKeys: []database.RawForeignKey{
			{Name: "orders_customer_id_fkey", Schema: "public", Table: "orders",
				Column: "customer_id", RefTable: "customers", RefColumn: "id"},
		},
	}

	cat, err := Build(snap)
	require.NoError(t, err)

	table := cat.Tables()[0]
	assert.True(t, table.Columns[0].IsPrimary)
	assert.True(t, table.Columns[0].IsIdentity)
	assert.False(t, table.Columns[1].IsPrimary)

	require.Len(t, table.ForeignKeys, 1)
	fk := table.ForeignKeys[0]
	assert.Equal(t, []string{"customer_id"}, fk.Columns)
	assert.Equal(t, "customers", fk.RefTable.Name)

	// The FK column keeps its own scalar type, never the referenced row.
	_, ok := table.Columns[1].Type.(*Scalar)
	assert.True(t, ok)
}

func TestBuild_DeterministicAcrossRuns(t *testing.T) {
	snap := &database.Snapshot{
		Tables: []database.RawTable{{
			Schema: "public",
			Name:   "events",
			Columns: []database.RawColumn{
				column("id", "uuid", 1),
				column("payload", "jsonb", 2),
				column("at", "timestamptz", 3),
			},
		}},
	}

	first, err := Build(snap)
	require.NoError(t, err)
	second, err := Build(snap)
	require.NoError(t, err)

	require.Equal(t, len(first.Tables()), len(second.Tables()))
	for i := range first.Tables() {
		a, b := first.Tables()[i], second.Tables()[i]
		require.Equal(t, len(a.Columns), len(b.Columns))
		for j := range a.Columns {
			assert.Equal(t, a.Columns[j].Type.String(), b.Columns[j].Type.String())
		}
	}
}
