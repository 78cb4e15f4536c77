// Package adapters provide database adapter implementations for the PostgreSQL borrowing engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the borrowing engine to work seamlessly with any
// supported database connection type.
//
// Besides plain query execution the adapters expose transactions, since every mutating
// operation of the borrowing engine runs as one atomic transaction with row-level locking,
// and driver-agnostic classification of the SQLSTATE errors the engine reacts to
// (unique violations, serialization failures, deadlocks).
package adapters
