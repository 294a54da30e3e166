package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/autostruct/internal/errs"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
// Connectivity failures (SQLSTATE class 08) and context deadlines are
// connection errors; everything else that happens mid-snapshot is a fatal
// introspection failure.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindConnection, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 — connection exceptions
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return errs.Wrap(errs.KindConnection, msg, err)
		}
		return errs.Wrap(errs.KindIntrospection, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	return errs.Wrap(errs.KindIntrospection, msg, err)
}
