// Package database defines the driver-neutral catalog capture contract.
//
// A Reader connects to one database and produces a Snapshot: the raw
// table/column/type descriptor rows for one consistent view of the catalog.
// All layers above this package talk only to these types — they never
// import the postgres, mysql, or sqlite packages directly.
package database

import (
	"context"
	"strings"

	"github.com/koustreak/autostruct/internal/errs"
)

// Kind identifies the database engine.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

// KindFromURL infers the database kind from the connection string scheme.
func KindFromURL(url string) (Kind, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return KindPostgres, nil
	case strings.HasPrefix(url, "mysql://"):
		return KindMySQL, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "sqlite:"), strings.HasPrefix(url, "file:"):
		return KindSQLite, nil
	default:
		return "", errs.New(errs.KindInvalidConfig,
			"failed to infer database kind from provided connection string")
	}
}

// Reader is the contract every database driver implements.
//
// Snapshot runs every catalog query sequentially inside one session and one
// transaction, so a concurrent schema change can never produce a table row
// referencing a user type that no longer matches. A failed core query aborts
// the snapshot — no partial descriptor set is ever returned.
type Reader interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Snapshot captures the full raw catalog state in one consistent read.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Close releases the underlying connection.
	Close() error
}
