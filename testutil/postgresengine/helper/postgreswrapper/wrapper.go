package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine"
	"github.com/jobet1995/library-system/testutil/postgresengine/config"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetLedger() *postgresengine.Ledger
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool   *pgxpool.Pool
	ledger *postgresengine.Ledger
}

func (e *PGXPoolWrapper) GetLedger() *postgresengine.Ledger {
	return e.ledger
}

func (e *PGXPoolWrapper) Close() {
	e.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db     *sql.DB
	ledger *postgresengine.Ledger
}

func (e *SQLDBWrapper) GetLedger() *postgresengine.Ledger {
	return e.ledger
}

func (e *SQLDBWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db     *sqlx.DB
	ledger *postgresengine.Ledger
}

func (e *SQLXWrapper) GetLedger() *postgresengine.Ledger {
	return e.ledger
}

func (e *SQLXWrapper) Close() {
	_ = e.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable and ensures the schema exists.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		ledger, err := postgresengine.NewLedgerFromPGXPool(connPool, options...)
		assert.NoError(t, err, "error creating the ledger")

		wrapper = &PGXPoolWrapper{pool: connPool, ledger: ledger}

	case typeSQLDB:
		db := config.PostgresSQLDBSingleConfig()

		ledger, err := postgresengine.NewLedgerFromSQLDB(db, options...)
		assert.NoError(t, err, "error creating the ledger")

		wrapper = &SQLDBWrapper{db: db, ledger: ledger}

	case typeSQLXDB:
		db := config.PostgresSQLXSingleConfig()

		ledger, err := postgresengine.NewLedgerFromSQLX(db, options...)
		assert.NoError(t, err, "error creating the ledger")

		wrapper = &SQLXWrapper{db: db, ledger: ledger}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}

	CreateCirculationTables(t, wrapper)

	return wrapper
}

// TryCreateLedgerWithTableNames tries to create a ledger with the given table
// names and returns the error (for testing error cases).
func TryCreateLedgerWithTableNames(t testing.TB, tables postgresengine.TableNames) error {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	options := []postgresengine.Option{postgresengine.WithTableNames(tables)}

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = postgresengine.NewLedgerFromPGXPool(connPool, options...)

		return err

	case typeSQLDB:
		db := config.PostgresSQLDBSingleConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresengine.NewLedgerFromSQLDB(db, options...)

		return err

	case typeSQLXDB:
		db := config.PostgresSQLXSingleConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresengine.NewLedgerFromSQLX(db, options...)

		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// Exec runs a statement on the wrapped database connection.
func Exec(t testing.TB, wrapper Wrapper, query string) {
	var err error

	switch e := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = e.pool.Exec(context.Background(), query)

	case *SQLDBWrapper:
		_, err = e.db.Exec(query)

	case *SQLXWrapper:
		_, err = e.db.Exec(query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", e))
	}

	assert.NoError(t, err, "error executing statement in test setup")
}

// TryExec runs a statement on the wrapped database connection and returns the
// error (for testing statements that are expected to fail).
func TryExec(wrapper Wrapper, query string) error {
	var err error

	switch e := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = e.pool.Exec(context.Background(), query)

	case *SQLDBWrapper:
		_, err = e.db.Exec(query)

	case *SQLXWrapper:
		_, err = e.db.Exec(query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", e))
	}

	return err
}

// ScanSingleRow runs a query expected to return one row and scans it into dest.
func ScanSingleRow(t testing.TB, wrapper Wrapper, query string, dest ...any) {
	var err error

	switch e := wrapper.(type) {
	case *PGXPoolWrapper:
		err = e.pool.QueryRow(context.Background(), query).Scan(dest...)

	case *SQLDBWrapper:
		err = e.db.QueryRow(query).Scan(dest...)

	case *SQLXWrapper:
		err = e.db.QueryRow(query).Scan(dest...)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", e))
	}

	assert.NoError(t, err, "error scanning row in test setup")
}

// CreateCirculationTables creates the schema the ledger expects, if missing.
func CreateCirculationTables(t testing.TB, wrapper Wrapper) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id uuid PRIMARY KEY,
			copies_total integer NOT NULL,
			copies_available integer NOT NULL
				CHECK (copies_available >= 0 AND copies_available <= copies_total)
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id uuid PRIMARY KEY,
			book_id uuid NOT NULL,
			borrower_id uuid NOT NULL,
			branch text NOT NULL DEFAULT '',
			borrow_date date NOT NULL,
			due_date date NOT NULL,
			return_date date,
			is_returned boolean NOT NULL DEFAULT false,
			fine_amount numeric(6,2) NOT NULL DEFAULT 0,
			renew_count integer NOT NULL DEFAULT 0,
			notes text NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS loans_active_book_borrower_idx
			ON loans (book_id, borrower_id) WHERE return_date IS NULL`,
		`CREATE TABLE IF NOT EXISTS fines (
			id uuid PRIMARY KEY,
			loan_id uuid NOT NULL UNIQUE,
			borrower_id uuid NOT NULL,
			amount numeric(6,2) NOT NULL,
			paid boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL,
			paid_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS branch_policies (
			branch text PRIMARY KEY,
			loan_period_days integer NOT NULL,
			grace_period_days integer NOT NULL,
			daily_fine_rate numeric(6,2) NOT NULL,
			max_fine numeric(6,2) NOT NULL,
			max_renewals integer NOT NULL,
			renewal_period_days integer NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS circulation_journal (
			id bigserial PRIMARY KEY,
			entry_type text NOT NULL,
			occurred_at timestamptz NOT NULL,
			loan_id uuid NOT NULL,
			payload jsonb NOT NULL
		)`,
	}

	for _, statement := range statements {
		Exec(t, wrapper, statement)
	}
}

// CleanUp empties all circulation tables for the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	Exec(t, wrapper, "TRUNCATE TABLE loans, fines, books, branch_policies")
	Exec(t, wrapper, "TRUNCATE TABLE circulation_journal RESTART IDENTITY")
}

// GivenBookInCatalog inserts a catalog row with the given copy counters and
// returns its id.
func GivenBookInCatalog(t testing.TB, wrapper Wrapper, copiesTotal int, copiesAvailable int) uuid.UUID {
	bookID := uuid.New()

	Exec(t, wrapper, fmt.Sprintf(
		`INSERT INTO books (id, copies_total, copies_available) VALUES ('%s', %d, %d)`,
		bookID.String(), copiesTotal, copiesAvailable))

	return bookID
}

// GivenBranchPolicy inserts a per-branch policy row.
func GivenBranchPolicy(t testing.TB, wrapper Wrapper, branch string, policy circulation.Policy) {
	Exec(t, wrapper, fmt.Sprintf(
		`INSERT INTO branch_policies
			(branch, loan_period_days, grace_period_days, daily_fine_rate, max_fine, max_renewals, renewal_period_days)
			VALUES ('%s', %d, %d, %s, %s, %d, %d)`,
		branch,
		policy.LoanPeriodDays,
		policy.GracePeriodDays,
		policy.DailyFineRate.StringFixed(2),
		policy.MaxFine.StringFixed(2),
		policy.MaxRenewals,
		policy.RenewalPeriodDays))
}

// CopiesAvailable reads the available-copies counter of one book.
func CopiesAvailable(t testing.TB, wrapper Wrapper, bookID uuid.UUID) int {
	var copiesAvailable int

	ScanSingleRow(t, wrapper, fmt.Sprintf(
		`SELECT copies_available FROM books WHERE id = '%s'`, bookID.String()),
		&copiesAvailable)

	return copiesAvailable
}

// JournalEntryCount counts the journal entries of one loan, optionally
// restricted to one entry type.
func JournalEntryCount(t testing.TB, wrapper Wrapper, loanID uuid.UUID, entryType string) int {
	var count int

	query := fmt.Sprintf(
		`SELECT count(*) FROM circulation_journal WHERE loan_id = '%s'`, loanID.String())
	if entryType != "" {
		query += fmt.Sprintf(` AND entry_type = '%s'`, entryType)
	}

	ScanSingleRow(t, wrapper, query, &count)

	return count
}
