// Package sqlite provides the SQLite implementation of database.Reader,
// backed by the cgo-free modernc driver.
//
// SQLite keeps no user-defined type registry; columns carry a free-form
// declared type. The reader parses declared modifiers (precision, scale,
// length) out of the declaration and leaves the enum/composite/domain/range
// sets empty.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/koustreak/autostruct/internal/database"
	"github.com/koustreak/autostruct/internal/errs"
)

// Config holds the settings for one SQLite catalog reader.
type Config struct {
	// URL is the connection string, e.g. "sqlite:app.db" or "file:app.db".
	URL string
}

// Reader is a SQLite implementation of database.Reader.
type Reader struct {
	db   *sql.DB
	conn *sql.Conn
}

// New opens the SQLite database file and returns a Reader.
func New(ctx context.Context, cfg Config) (*Reader, error) {
	path := pathFromURL(cfg.URL)
	if path == "" {
		return nil, errs.New(errs.KindInvalidConfig, "sqlite connection string must name a database file")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidConfig, "invalid sqlite connection string", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, errs.Wrap(errs.KindConnection, "failed to open sqlite database", err)
	}

	return &Reader{db: db, conn: conn}, nil
}

// pathFromURL strips the scheme prefix from the connection string.
func pathFromURL(raw string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimPrefix(raw, prefix)
		}
	}
	return raw
}

// Ping verifies the database file is readable.
func (r *Reader) Ping(ctx context.Context) error {
	if err := r.conn.PingContext(ctx); err != nil {
		return errs.Wrap(errs.KindConnection, "ping failed", err)
	}
	return nil
}

// Close releases the connection and the pool behind it.
func (r *Reader) Close() error {
	if err := r.conn.Close(); err != nil {
		r.db.Close()
		return err
	}
	return r.db.Close()
}

// Snapshot captures the raw catalog state. SQLite transactions are
// serializable, so one read transaction pins a consistent view for every
// PRAGMA and sqlite_master query in the capture.
func (r *Reader) Snapshot(ctx context.Context) (*database.Snapshot, error) {
	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to begin snapshot transaction", err)
	}
	defer tx.Rollback()

	names, err := r.fetchTableNames(ctx, tx)
	if err != nil {
		return nil, err
	}

	snap := &database.Snapshot{}
	for _, name := range names {
		table, keys, err := r.fetchTable(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		snap.Tables = append(snap.Tables, table)
		snap.PrimaryKeys = append(snap.PrimaryKeys, keys...)

		fks, err := r.fetchForeignKeys(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		snap.ForeignKeys = append(snap.ForeignKeys, fks...)
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Wrap(errs.KindIntrospection, "failed to commit snapshot transaction", err)
	}
	return snap, nil
}

func (r *Reader) fetchTableNames(ctx context.Context, tx *sql.Tx) ([]string, error) {
	const q = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, errs.Wrap(errs.KindIntrospection, "failed to list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.KindIntrospection, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindIntrospection, "error iterating tables", err)
	}
	return names, nil
}

// fetchTable reads one table's columns via PRAGMA table_info. PRAGMA
// arguments cannot be bound, so the identifier is quoted inline.
func (r *Reader) fetchTable(ctx context.Context, tx *sql.Tx, name string) (database.RawTable, []database.RawKeyColumn, error) {
	q := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(name))

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return database.RawTable{}, nil, errs.Wrap(errs.KindIntrospection, "failed to fetch columns of "+name, err)
	}
	defer rows.Close()

	table := database.RawTable{Schema: "main", Name: name}
	var keys []database.RawKeyColumn
	for rows.Next() {
		var (
			cid      int
			colName  string
			declared string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &colName, &declared, &notNull, &dflt, &pk); err != nil {
			return database.RawTable{}, nil, errs.Wrap(errs.KindIntrospection, "failed to scan column of "+name, err)
		}

		col := database.RawColumn{
			Name:       colName,
			Nullable:   notNull == 0,
			HasDefault: dflt.Valid,
			Ordinal:    cid + 1,
		}
		col.UDTName, col.Precision, col.Scale, col.MaxLength = parseDeclaredType(declared)
		col.DataType = col.UDTName

		table.Columns = append(table.Columns, col)
		if pk > 0 {
			keys = append(keys, database.RawKeyColumn{Schema: "main", Table: name, Column: colName})
		}
	}
	if err := rows.Err(); err != nil {
		return database.RawTable{}, nil, errs.Wrap(errs.KindIntrospection, "error iterating columns of "+name, err)
	}
	return table, keys, nil
}

func (r *Reader) fetchForeignKeys(ctx context.Context, tx *sql.Tx, name string) ([]database.RawForeignKey, error) {
	q := fmt.Sprintf(`PRAGMA foreign_key_list(%s)`, quoteIdent(name))

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, errs.Wrap(errs.KindIntrospection, "failed to fetch foreign keys of "+name, err)
	}
	defer rows.Close()

	var fks []database.RawForeignKey
	for rows.Next() {
		var (
			id, seq            int
			refTable, from     string
			to                 sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, errs.Wrap(errs.KindIntrospection, "failed to scan foreign key of "+name, err)
		}
		fks = append(fks, database.RawForeignKey{
			Name:      fmt.Sprintf("%s_fk_%d", name, id),
			Schema:    "main",
			Table:     name,
			Column:    from,
			RefTable:  refTable,
			RefColumn: to.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindIntrospection, "error iterating foreign keys of "+name, err)
	}
	return fks, nil
}

// parseDeclaredType splits a declared column type like "NUMERIC(10,2)" or
// "VARCHAR(40)" into its base name and modifiers.
func parseDeclaredType(declared string) (base string, precision, scale, maxLength *int) {
	declared = strings.TrimSpace(declared)
	open := strings.IndexByte(declared, '(')
	if open < 0 {
		return strings.ToLower(declared), nil, nil, nil
	}

	base = strings.ToLower(strings.TrimSpace(declared[:open]))
	close := strings.LastIndexByte(declared, ')')
	if close <= open {
		return base, nil, nil, nil
	}

	parts := strings.Split(declared[open+1:close], ",")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return base, nil, nil, nil
		}
		nums = append(nums, n)
	}

	switch {
	case len(nums) == 2:
		return base, &nums[0], &nums[1], nil
	case len(nums) == 1 && (base == "numeric" || base == "decimal"):
		return base, &nums[0], nil, nil
	case len(nums) == 1:
		return base, nil, nil, &nums[0]
	}
	return base, nil, nil, nil
}

// quoteIdent double-quotes an identifier for inline use in a PRAGMA.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
