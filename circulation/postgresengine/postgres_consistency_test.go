package postgresengine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine"
	"github.com/jobet1995/library-system/testutil/postgresengine/config"
	. "github.com/jobet1995/library-system/testutil/postgresengine/helper"                 //nolint:revive
	. "github.com/jobet1995/library-system/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

// setupReplicaBackedLedger builds a ledger whose reads may route to the
// "replica" behind config.PostgresPGXPoolReplicaConfig. The default replica
// DSN targets the circulation_replica schema of the single test server, so
// primary and replica hold independent loans tables and routing is
// observable by where a row is visible.
func setupReplicaBackedLedger(t *testing.T) (*postgresengine.Ledger, Wrapper, *pgxpool.Pool) {
	t.Helper()

	wrapper := CreateWrapperWithTestConfig(t)
	t.Cleanup(wrapper.Close)
	CleanUp(t, wrapper)

	primaryPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
	require.NoError(t, err, "error connecting to DB pool in test setup")
	t.Cleanup(primaryPool.Close)

	replicaPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolReplicaConfig())
	require.NoError(t, err, "error connecting to replica pool in test setup")
	t.Cleanup(replicaPool.Close)

	createReplicaLoansTable(t, replicaPool)

	ledger, err := postgresengine.NewLedgerFromPGXPoolWithReplica(primaryPool, replicaPool)
	require.NoError(t, err, "error creating the replica-backed ledger")

	return ledger, wrapper, replicaPool
}

func createReplicaLoansTable(t *testing.T, replicaPool *pgxpool.Pool) {
	t.Helper()

	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS circulation_replica`,
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
		`TRUNCATE TABLE loans`,
	}

	for _, statement := range statements {
		_, err := replicaPool.Exec(context.Background(), statement)
		require.NoError(t, err, "error preparing the replica schema in test setup")
	}
}

func givenLoanOnReplicaOnly(t *testing.T, replicaPool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	loanID := GivenUniqueID(t)

	_, err := replicaPool.Exec(context.Background(), fmt.Sprintf(
		`INSERT INTO loans (id, book_id, borrower_id, borrow_date, due_date)
			VALUES ('%s', '%s', '%s', '2026-03-01', '2026-03-15')`,
		loanID.String(), GivenUniqueID(t).String(), GivenUniqueID(t).String()))
	require.NoError(t, err, "error seeding the replica in test setup")

	return loanID
}

func Test_ReplicaRouting_ReadsDefaultToThePrimary(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ledger, wrapper, replicaPool := setupReplicaBackedLedger(t)

	// arrange
	bookID := GivenBookInCatalog(t, wrapper, 1, 1)
	replicaOnlyLoanID := givenLoanOnReplicaOnly(t, replicaPool)

	loan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     bookID,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.March, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	// act + assert - without an explicit consistency level the primary serves reads
	found, err := ledger.GetLoan(ctx, loan.ID)
	assert.NoError(t, err, "the primary should serve reads by default")
	assert.Equal(t, loan.ID, found.ID)

	_, err = ledger.GetLoan(ctx, replicaOnlyLoanID)
	assert.ErrorIs(t, err, circulation.ErrLoanNotFound, "a replica-only row must be invisible to primary reads")

	// act + assert - explicit strong consistency behaves the same
	strongCtx := circulation.WithStrongConsistency(ctx)
	found, err = ledger.GetLoan(strongCtx, loan.ID)
	assert.NoError(t, err, "the primary should serve strongly consistent reads")
	assert.Equal(t, loan.ID, found.ID)
}

func Test_ReplicaRouting_EventualConsistencyReadsTheReplica(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ledger, wrapper, replicaPool := setupReplicaBackedLedger(t)

	// arrange
	bookID := GivenBookInCatalog(t, wrapper, 1, 1)
	replicaOnlyLoanID := givenLoanOnReplicaOnly(t, replicaPool)

	loan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     bookID,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.March, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	// act
	eventualCtx := circulation.WithEventualConsistency(ctx)
	replicaLoan, replicaErr := ledger.GetLoan(eventualCtx, replicaOnlyLoanID)
	_, primaryRowErr := ledger.GetLoan(eventualCtx, loan.ID)

	// assert - the replica serves eventually consistent reads
	assert.NoError(t, replicaErr, "the replica should serve eventually consistent reads")
	assert.Equal(t, replicaOnlyLoanID, replicaLoan.ID)
	assert.Equal(t, Day(2026, time.March, 15), replicaLoan.DueDate)
	assert.ErrorIs(t, primaryRowErr, circulation.ErrLoanNotFound,
		"a primary-only row must be invisible to eventually consistent reads")
}

func Test_ReplicaRouting_WritesAlwaysUseThePrimary(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ledger, wrapper, _ := setupReplicaBackedLedger(t)

	// arrange
	bookID := GivenBookInCatalog(t, wrapper, 1, 1)

	// act - an eventually consistent caller context must not affect writes
	eventualCtx := circulation.WithEventualConsistency(ctx)
	loan, err := ledger.BorrowBook(eventualCtx, circulation.BorrowRequest{
		BookID:     bookID,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.March, 1),
	})

	// assert
	assert.NoError(t, err, "error borrowing the book")
	assert.Equal(t, 0, CopiesAvailable(t, wrapper, bookID), "the write must land on the primary")

	found, err := ledger.GetLoan(circulation.WithStrongConsistency(ctx), loan.ID)
	assert.NoError(t, err, "the loan must be readable from the primary")
	assert.Equal(t, loan.ID, found.ID)

	_, err = ledger.GetLoan(eventualCtx, loan.ID)
	assert.ErrorIs(t, err, circulation.ErrLoanNotFound,
		"the write must not have gone to the replica")
}
