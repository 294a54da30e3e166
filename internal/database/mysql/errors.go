package mysql

import (
	"context"
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/koustreak/autostruct/internal/errs"
)

// MySQL server error numbers that indicate the connection itself is the
// problem rather than the query.
const (
	errAccessDenied   = 1045
	errUnknownDB      = 1049
	errDBAccessDenied = 1044
)

// mapError translates driver errors into *errs.Error. kind is the
// classification for plain query failures; auth and reachability problems
// always map to a connection failure.
func mapError(err error, msg string, kind errs.Kind) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindConnection, msg, err)
	}

	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errAccessDenied, errUnknownDB, errDBAccessDenied:
			return errs.Wrap(errs.KindConnection, msg, err)
		}
		return errs.Wrap(errs.KindIntrospection, msg, err)
	}

	return errs.Wrap(kind, msg, err)
}
