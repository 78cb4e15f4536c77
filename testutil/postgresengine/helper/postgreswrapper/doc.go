// Package postgreswrapper provides database wrapper utilities for testing
// the borrowing ledger with each supported PostgreSQL adapter.
//
// The wrapper selected through the ADAPTER_TYPE environment variable
// (pgx.pool, sql.db, sqlx.db) lets the same test suite run against all
// adapters. It also bootstraps the schema and offers seed and assertion
// helpers operating directly on the database.
package postgreswrapper
