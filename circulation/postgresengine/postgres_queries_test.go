package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine"
	"github.com/jobet1995/library-system/testutil/postgresengine/config"
	. "github.com/jobet1995/library-system/testutil/postgresengine/helper"                 //nolint:revive
	. "github.com/jobet1995/library-system/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

func withFixedClock(at time.Time) postgresengine.Option {
	return postgresengine.WithClock(FixedClock(at))
}

func givenBranchPolicyProvider(t *testing.T) circulation.PolicyProvider {
	connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
	assert.NoError(t, err, "error connecting to DB pool in test setup")
	t.Cleanup(connPool.Close)

	provider, err := postgresengine.NewBranchPolicyProviderFromPGXPool(connPool, circulation.DefaultPolicy())
	assert.NoError(t, err, "error creating the policy provider")

	return provider
}

func Test_LoansByBorrower_ReturnsAllLoansMostRecentFirst(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	ledger := wrapper.GetLedger()

	// arrange
	CleanUp(t, wrapper)
	firstBook := GivenBookInCatalog(t, wrapper, 1, 1)
	secondBook := GivenBookInCatalog(t, wrapper, 1, 1)
	borrowerID := GivenUniqueID(t)

	firstLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     firstBook,
		BorrowerID: borrowerID,
		BorrowDate: DayPtr(2026, time.February, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	_, err = ledger.ReturnBook(ctx, circulation.ReturnRequest{
		LoanID:     firstLoan.ID,
		ReturnDate: DayPtr(2026, time.February, 10),
	})
	assert.NoError(t, err, "error in arranging test data")

	secondLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     secondBook,
		BorrowerID: borrowerID,
		BorrowDate: DayPtr(2026, time.March, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	// act
	loans, err := ledger.LoansByBorrower(ctx, borrowerID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, loans, 2)
	assert.Equal(t, secondLoan.ID, loans[0].ID, "most recent loan first")
	assert.Equal(t, firstLoan.ID, loans[1].ID)
}

func Test_ActiveLoansByBorrower_ExcludesReturnedLoans(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	ledger := wrapper.GetLedger()

	// arrange
	CleanUp(t, wrapper)
	firstBook := GivenBookInCatalog(t, wrapper, 1, 1)
	secondBook := GivenBookInCatalog(t, wrapper, 1, 1)
	borrowerID := GivenUniqueID(t)

	returnedLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     firstBook,
		BorrowerID: borrowerID,
		BorrowDate: DayPtr(2026, time.February, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	_, err = ledger.ReturnBook(ctx, circulation.ReturnRequest{
		LoanID:     returnedLoan.ID,
		ReturnDate: DayPtr(2026, time.February, 10),
	})
	assert.NoError(t, err, "error in arranging test data")

	activeLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     secondBook,
		BorrowerID: borrowerID,
		BorrowDate: DayPtr(2026, time.March, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	// act
	loans, err := ledger.ActiveLoansByBorrower(ctx, borrowerID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.Equal(t, activeLoan.ID, loans[0].ID)
}

func Test_OverdueLoans_ReturnsOnlyLoansPastTheirDueDate(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	ledger := wrapper.GetLedger()

	// arrange
	CleanUp(t, wrapper)
	overdueBook := GivenBookInCatalog(t, wrapper, 1, 1)
	currentBook := GivenBookInCatalog(t, wrapper, 1, 1)

	overdueLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     overdueBook,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.February, 1), // due on February 15
	})
	assert.NoError(t, err, "error in arranging test data")

	_, err = ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     currentBook,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.March, 1), // due on March 15
	})
	assert.NoError(t, err, "error in arranging test data")

	// act
	loans, err := ledger.OverdueLoans(ctx, Day(2026, time.March, 1))

	// assert
	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.Equal(t, overdueLoan.ID, loans[0].ID)
	assert.True(t, loans[0].IsOverdue(Day(2026, time.March, 1)))
}

func Test_UnpaidFinesByBorrower(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	ledger := wrapper.GetLedger()

	// arrange: two late returns, one fine paid afterwards
	CleanUp(t, wrapper)
	firstBook := GivenBookInCatalog(t, wrapper, 1, 1)
	secondBook := GivenBookInCatalog(t, wrapper, 1, 1)
	borrowerID := GivenUniqueID(t)

	for _, bookID := range []uuid.UUID{firstBook, secondBook} {
		loan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
			BookID:     bookID,
			BorrowerID: borrowerID,
			BorrowDate: DayPtr(2026, time.February, 1),
		})
		assert.NoError(t, err, "error in arranging test data")

		_, err = ledger.ReturnBook(ctx, circulation.ReturnRequest{
			LoanID:     loan.ID,
			ReturnDate: DayPtr(2026, time.February, 25),
		})
		assert.NoError(t, err, "error in arranging test data")
	}

	// act before paying
	unpaid, err := ledger.UnpaidFinesByBorrower(ctx, borrowerID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, unpaid, 2)

	// arrange: pay the first fine
	_, err = ledger.PayFine(ctx, unpaid[0].ID)
	assert.NoError(t, err, "error in arranging test data")

	// act again
	unpaid, err = ledger.UnpaidFinesByBorrower(ctx, borrowerID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, unpaid, 1)
	assert.False(t, unpaid[0].Paid)
}

func Test_JournalEntries_RecordTheFullLoanLifecycle(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	ledger := wrapper.GetLedger()

	// arrange
	CleanUp(t, wrapper)
	bookID := GivenBookInCatalog(t, wrapper, 1, 1)

	loan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     bookID,
		BorrowerID: GivenUniqueID(t),
		BorrowDate: DayPtr(2026, time.March, 1),
	})
	assert.NoError(t, err, "error in arranging test data")

	_, err = ledger.ReturnBook(ctx, circulation.ReturnRequest{
		LoanID:     loan.ID,
		ReturnDate: DayPtr(2026, time.March, 21),
	})
	assert.NoError(t, err, "error in arranging test data")

	fine, err := ledger.GetFineByLoan(ctx, loan.ID)
	assert.NoError(t, err, "error in arranging test data")

	_, err = ledger.PayFine(ctx, fine.ID)
	assert.NoError(t, err, "error in arranging test data")

	// act
	entries, err := ledger.JournalEntries(ctx, loan.ID)

	// assert
	assert.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, circulation.EntryBookBorrowed, entries[0].EntryType)
	assert.Equal(t, circulation.EntryFineImposed, entries[1].EntryType)
	assert.Equal(t, circulation.EntryBookReturned, entries[2].EntryType)
	assert.Equal(t, circulation.EntryFinePaid, entries[3].EntryType)
}

func Test_BorrowBook_UsesTheBranchPolicy(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	// arrange: a branch with a short loan period and a steep fine rate
	CleanUp(t, wrapper)

	branchPolicy := circulation.DefaultPolicy()
	branchPolicy.LoanPeriodDays = 7
	branchPolicy.DailyFineRate = decimal.NewFromInt(1)
	GivenBranchPolicy(t, wrapper, "downtown", branchPolicy)

	provider := givenBranchPolicyProvider(t)
	policyWrapper := CreateWrapperWithTestConfig(t, postgresengine.WithPolicyProvider(provider))
	defer policyWrapper.Close()
	ledger := policyWrapper.GetLedger()

	bookID := GivenBookInCatalog(t, wrapper, 1, 1)

	// act
	loan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     bookID,
		BorrowerID: GivenUniqueID(t),
		Branch:     "downtown",
		BorrowDate: DayPtr(2026, time.March, 1),
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, Day(2026, time.March, 8), loan.DueDate, "the branch policy's loan period should apply")

	// act: a branch without a policy row falls back to the defaults
	otherBook := GivenBookInCatalog(t, wrapper, 1, 1)
	fallbackLoan, err := ledger.BorrowBook(ctx, circulation.BorrowRequest{
		BookID:     otherBook,
		BorrowerID: GivenUniqueID(t),
		Branch:     "uptown",
		BorrowDate: DayPtr(2026, time.March, 1),
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, Day(2026, time.March, 15), fallbackLoan.DueDate)
}
