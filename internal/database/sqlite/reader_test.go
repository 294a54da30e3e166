package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/autostruct/internal/errs"
)

func TestPathFromURL(t *testing.T) {
	assert.Equal(t, "app.db", pathFromURL("sqlite:app.db"))
	assert.Equal(t, "/var/data/app.db", pathFromURL("sqlite:///var/data/app.db"))
	assert.Equal(t, "app.db", pathFromURL("app.db"))
}

func TestParseDeclaredType(t *testing.T) {
	tests := []struct {
		declared  string
		base      string
		precision *int
		scale     *int
		maxLength *int
	}{
		{declared: "INTEGER", base: "integer"},
		{declared: "NUMERIC(10,2)", base: "numeric", precision: intp(10), scale: intp(2)},
		{declared: "DECIMAL(8)", base: "decimal", precision: intp(8)},
		{declared: "VARCHAR(40)", base: "varchar", maxLength: intp(40)},
		{declared: "VARCHAR(broken", base: "varchar"},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			base, precision, scale, maxLength := parseDeclaredType(tt.declared)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.precision, precision)
			assert.Equal(t, tt.scale, scale)
			assert.Equal(t, tt.maxLength, maxLength)
		})
	}
}

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	const ddl = `
		CREATE TABLE users (
			id INTEGER NOT NULL PRIMARY KEY,
			name TEXT NOT NULL,
			balance NUMERIC(10,2),
			nickname VARCHAR(40)
		);
		CREATE TABLE orders (
			id INTEGER NOT NULL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users (id),
			note TEXT DEFAULT 'none'
		);`
	_, err = db.Exec(ddl)
	require.NoError(t, err)
	return path
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, Config{URL: "sqlite:" + newTestDB(t)})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Ping(ctx))

	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)

	// Tables arrive in name order.
	require.Len(t, snap.Tables, 2)
	assert.Equal(t, "orders", snap.Tables[0].Name)
	assert.Equal(t, "users", snap.Tables[1].Name)
	assert.Equal(t, "main", snap.Tables[1].Schema)

	users := snap.Tables[1]
	require.Len(t, users.Columns, 4)

	id := users.Columns[0]
	assert.Equal(t, "integer", id.UDTName)
	assert.False(t, id.Nullable)
	assert.Equal(t, 1, id.Ordinal)

	balance := users.Columns[2]
	assert.Equal(t, "numeric", balance.UDTName)
	assert.True(t, balance.Nullable)
	require.NotNil(t, balance.Precision)
	assert.Equal(t, 10, *balance.Precision)
	require.NotNil(t, balance.Scale)
	assert.Equal(t, 2, *balance.Scale)

	nickname := users.Columns[3]
	require.NotNil(t, nickname.MaxLength)
	assert.Equal(t, 40, *nickname.MaxLength)

	note := snap.Tables[0].Columns[2]
	assert.True(t, note.HasDefault)

	require.Len(t, snap.PrimaryKeys, 2)
	require.Len(t, snap.ForeignKeys, 1)
	fk := snap.ForeignKeys[0]
	assert.Equal(t, "orders", fk.Table)
	assert.Equal(t, "user_id", fk.Column)
	assert.Equal(t, "users", fk.RefTable)
	assert.Equal(t, "id", fk.RefColumn)
}

func TestNewMissingPath(t *testing.T) {
	_, err := New(context.Background(), Config{URL: "sqlite:"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidConfig(err))
}

func intp(v int) *int { return &v }
