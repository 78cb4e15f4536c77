package circulation

import (
	"errors"
)

var (
	// ErrBookNotFound is returned when the catalog item referenced by an operation does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBorrowerNotFound is returned when the configured identity provider does not know the borrower.
	ErrBorrowerNotFound = errors.New("borrower not found")

	// ErrLoanNotFound is returned when the loan referenced by an operation does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrFineNotFound is returned when the fine referenced by an operation does not exist.
	ErrFineNotFound = errors.New("fine not found")

	// ErrNoCopiesAvailable is returned when a borrow attempt finds no available copy of the book.
	ErrNoCopiesAvailable = errors.New("no copies of the book are available")

	// ErrActiveLoanExists is returned when the borrower already holds an active loan for the same book.
	ErrActiveLoanExists = errors.New("an active loan already exists for this book and borrower")

	// ErrAlreadyReturned is returned when a return or renewal targets a loan that was already returned.
	ErrAlreadyReturned = errors.New("loan was already returned")

	// ErrAlreadyPaid is returned when a fine is marked paid a second time.
	ErrAlreadyPaid = errors.New("fine was already paid")

	// ErrRenewalLimitExceeded is returned when a renewal would exceed the policy's maximum renewals.
	ErrRenewalLimitExceeded = errors.New("maximum number of renewals reached")

	// ErrInvalidReturnDate is returned when a return date precedes the borrow date.
	ErrInvalidReturnDate = errors.New("return date cannot be before borrow date")

	// ErrInvalidDueDate is returned when a due date precedes the borrow date.
	ErrInvalidDueDate = errors.New("due date cannot be before borrow date")

	// ErrConcurrencyConflict is returned when a transaction loses a serialization or deadlock
	// race against a concurrent operation; callers may retry, see RetryWithExponentialBackoff.
	ErrConcurrencyConflict = errors.New("concurrency conflict, the operation lost a race and may be retried")

	// ErrNilDatabaseConnection is returned when an engine is constructed with a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an engine is configured with an empty table name.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrBuildingQueryFailed wraps SQL generation failures.
	ErrBuildingQueryFailed = errors.New("failed to build sql query")

	// ErrQueryingLedgerFailed wraps driver failures while reading ledger state.
	ErrQueryingLedgerFailed = errors.New("failed to query the ledger")

	// ErrExecutingLedgerFailed wraps driver failures while mutating ledger state.
	ErrExecutingLedgerFailed = errors.New("failed to execute a ledger statement")

	// ErrScanningDBRowFailed wraps row scanning failures.
	ErrScanningDBRowFailed = errors.New("failed to scan database row")
)
