// Package config provides PostgreSQL database configuration for testing
// the borrowing ledger.
//
// It contains factory functions for creating database connections with
// each of the supported adapters (pgx.Pool, sql.DB, sqlx.DB), all wired
// to the test database DSN. The DSN can be overridden through a .env
// file or the CIRCULATION_TEST_DSN environment variable.
package config
