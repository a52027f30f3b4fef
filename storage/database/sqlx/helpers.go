package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
)

const uniqueViolation = pq.ErrorCode("23505")

// getExec picks the per-call executor (a transaction joined by the service
// layer) over the repository's default one.
func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return def
}

// queryAll runs q and struct-scans every row into dest, which must be a
// pointer to a slice of row structs.
func queryAll(ctx context.Context, exec core.DBExecutor, dest interface{}, q string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

func queryExists(ctx context.Context, exec core.DBExecutor, q string, args ...interface{}) (bool, error) {
	var exists bool
	row := exec.QueryRowContext(ctx, q, args...)
	if err := row.Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

// trapUniqueErr maps a postgres unique violation to conflict; the unique
// indexes backstop the insert-if-absent checks against concurrent writers.
func trapUniqueErr(err, conflict error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return conflict
	}
	return errors.Wrap(err, msg)
}
