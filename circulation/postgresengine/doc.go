// Package postgresengine provides the PostgreSQL implementation of the
// borrowing ledger.
//
// The Ledger implements circulation.BorrowingService on top of three
// interchangeable database access libraries (pgx, database/sql, sqlx),
// selected through the constructor used. All mutating operations run as
// single atomic transactions with row-level locks on the affected book
// and loan rows, and append their audit record to the circulation
// journal inside the same transaction.
package postgresengine
