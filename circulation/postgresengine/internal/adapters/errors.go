package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the borrowing engine reacts to.
const (
	sqlstateUniqueViolation      = "23505"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether the error is a unique constraint violation,
// regardless of which driver produced it.
func IsUniqueViolation(err error) bool {
	return hasSQLState(err, sqlstateUniqueViolation)
}

// IsSerializationFailure reports whether the error is a serialization failure
// or a deadlock, the two conditions a caller may resolve by retrying the
// whole transaction.
func IsSerializationFailure(err error) bool {
	return hasSQLState(err, sqlstateSerializationFailure) || hasSQLState(err, sqlstateDeadlockDetected)
}

func hasSQLState(err error, code string) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}
