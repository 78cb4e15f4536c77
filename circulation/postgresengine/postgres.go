package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName   = "books"
	defaultLoansTableName   = "loans"
	defaultFinesTableName   = "fines"
	defaultJournalTableName = "circulation_journal"

	colID              = "id"
	colBookID          = "book_id"
	colBorrowerID      = "borrower_id"
	colBranch          = "branch"
	colBorrowDate      = "borrow_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"
	colIsReturned      = "is_returned"
	colFineAmount      = "fine_amount"
	colRenewCount      = "renew_count"
	colNotes           = "notes"
	colCopiesTotal     = "copies_total"
	colCopiesAvailable = "copies_available"
	colLoanID          = "loan_id"
	colAmount          = "amount"
	colPaid            = "paid"
	colCreatedAt       = "created_at"
	colPaidAt          = "paid_at"

	castUUID    = "?::uuid"
	castNumeric = "?::numeric"

	dialectPostgres = "postgres"

	opBorrowBook = "borrow_book"
	opReturnBook = "return_book"
	opRenewLoan  = "renew_loan"
	opDeleteLoan = "delete_loan"
	opPayFine    = "pay_fine"

	logMsgBookBorrowed        = "book borrowed"
	logMsgBookReturned        = "book returned"
	logMsgLoanRenewed         = "loan renewed"
	logMsgLoanDeleted         = "loan deleted"
	logMsgFinePaid            = "fine paid"
	logMsgConcurrencyConflict = "concurrency conflict detected"

	logAttrLoanID      = "loan_id"
	logAttrBookID      = "book_id"
	logAttrBorrowerID  = "borrower_id"
	logAttrFineID      = "fine_id"
	logAttrFineAmount  = "fine_amount"
	logAttrRenewCount  = "renew_count"
	logAttrDurationMS  = "duration_ms"
	logAttrOperation   = "operation"
	logAttrQuery       = "query"
	logAttrError       = "error"
)

type sqlQueryString = string

// Ledger is the PostgreSQL implementation of circulation.BorrowingService.
//
// Every mutating operation runs as one atomic transaction: the affected book
// or loan row is locked first, preconditions are checked against the locked
// state, and the loan/fine/journal writes follow. The catalog's copy counters
// are adjusted with conditional updates whose rows-affected count is
// validated, so the available-copies counter can never go negative.
type Ledger struct {
	db               adapters.DBAdapter
	tables           TableNames
	logger           circulation.Logger
	contextualLogger circulation.ContextualLogger
	metricsCollector circulation.MetricsCollector
	tracingCollector circulation.TracingCollector
	policies         circulation.PolicyProvider
	identity         circulation.IdentityProvider
	clock            func() time.Time
}

// Ensure Ledger implements circulation.BorrowingService.
var _ circulation.BorrowingService = (*Ledger)(nil)

// NewLedgerFromPGXPool creates a new Ledger using a pgx Pool with optional configuration.
func NewLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildLedger(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerFromPGXPoolWithReplica creates a new Ledger using a primary pgx Pool
// for all writes and a replica pool for reads that allow eventual consistency.
func NewLedgerFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Ledger, error) {
	if db == nil || replica == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildLedger(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewLedgerFromSQLDB creates a new Ledger using a sql.DB with optional configuration.
func NewLedgerFromSQLDB(db *sql.DB, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildLedger(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerFromSQLX creates a new Ledger using a sqlx.DB with optional configuration.
func NewLedgerFromSQLX(db *sqlx.DB, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildLedger(adapters.NewSQLXAdapter(db), options...)
}

func buildLedger(db adapters.DBAdapter, options ...Option) (*Ledger, error) {
	defaultPolicies, err := circulation.NewStaticPolicyProvider(circulation.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	ledger := &Ledger{
		db:       db,
		tables:   defaultTableNames(),
		policies: defaultPolicies,
		clock:    time.Now,
	}

	for _, option := range options {
		if optionErr := option(ledger); optionErr != nil {
			return nil, optionErr
		}
	}

	return ledger, nil
}

func (l *Ledger) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func uuidLiteral(id uuid.UUID) exp.LiteralExpression {
	return goqu.L(castUUID, id.String())
}

func numericLiteral(amount decimal.Decimal) exp.LiteralExpression {
	return goqu.L(castNumeric, amount.StringFixed(2))
}

// BorrowBook creates a new loan for the given book and borrower.
//
// Preconditions checked inside one transaction with the book row locked:
// the book exists, at least one copy is available, and the borrower holds
// no active loan for the same book. The due date is the supplied one or
// the borrow date plus the policy's loan period. Exactly one available
// copy is consumed per successful borrow.
func (l *Ledger) BorrowBook(ctx context.Context, request circulation.BorrowRequest) (circulation.Loan, error) {
	var empty circulation.Loan

	start := time.Now()
	ctx, span := l.startSpan(ctx, opBorrowBook)

	if l.identity != nil {
		exists, identityErr := l.identity.BorrowerExists(ctx, request.BorrowerID)
		if identityErr != nil {
			l.finishSpanWithError(span, identityErr)
			return empty, errors.Join(circulation.ErrQueryingLedgerFailed, identityErr)
		}

		if !exists {
			l.finishSpanWithError(span, circulation.ErrBorrowerNotFound)
			return empty, circulation.ErrBorrowerNotFound
		}
	}

	borrowDate := circulation.ToDate(l.clock())
	if request.BorrowDate != nil {
		borrowDate = circulation.ToDate(*request.BorrowDate)
	}

	policy, policyErr := l.policies.PolicyFor(ctx, request.Branch)
	if policyErr != nil {
		l.finishSpanWithError(span, policyErr)
		return empty, policyErr
	}

	dueDate := borrowDate.AddDate(0, 0, policy.LoanPeriodDays)
	if request.DueDate != nil {
		dueDate = circulation.ToDate(*request.DueDate)
	}

	if dueDate.Before(borrowDate) {
		l.finishSpanWithError(span, circulation.ErrInvalidDueDate)
		return empty, circulation.ErrInvalidDueDate
	}

	loan := circulation.Loan{
		ID:         uuid.New(),
		BookID:     request.BookID,
		BorrowerID: request.BorrowerID,
		Branch:     request.Branch,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		FineAmount: decimal.Zero,
		Notes:      request.Notes,
	}

	txErr := l.withinTransaction(ctx, opBorrowBook, func(txCtx context.Context, tx adapters.DBTx) error {
		if err := l.lockBookRow(txCtx, tx, request.BookID); err != nil {
			return err
		}

		active, err := l.activeLoanExists(txCtx, tx, request.BookID, request.BorrowerID)
		if err != nil {
			return err
		}

		if active {
			return circulation.ErrActiveLoanExists
		}

		if err = l.decrementAvailableCopies(txCtx, tx, request.BookID); err != nil {
			return err
		}

		if err = l.insertLoan(txCtx, tx, loan); err != nil {
			return err
		}

		return l.appendJournalEntry(txCtx, tx, circulation.EntryBookBorrowed, loan.ID, borrowedPayload{
			BookID:     loan.BookID.String(),
			BorrowerID: loan.BorrowerID.String(),
			DueDate:    loan.DueDate.Format(dateLayout),
		})
	})

	l.finishOperation(ctx, span, opBorrowBook, start, txErr)

	if txErr != nil {
		return empty, txErr
	}

	l.logOperation(ctx, logMsgBookBorrowed,
		logAttrLoanID, loan.ID.String(),
		logAttrBookID, loan.BookID.String(),
		logAttrBorrowerID, loan.BorrowerID.String())

	return loan, nil
}

// ReturnBook marks an active loan as returned.
//
// The fine is computed exactly once, from the due date in effect at return
// time, and one available copy is restored (capped at the total). A positive
// fine get-or-creates the Fine record for this loan.
func (l *Ledger) ReturnBook(ctx context.Context, request circulation.ReturnRequest) (circulation.Loan, error) {
	var empty circulation.Loan
	var returned circulation.Loan

	start := time.Now()
	ctx, span := l.startSpan(ctx, opReturnBook)

	txErr := l.withinTransaction(ctx, opReturnBook, func(txCtx context.Context, tx adapters.DBTx) error {
		loan, err := l.loanForUpdate(txCtx, tx, request.LoanID)
		if err != nil {
			return err
		}

		if loan.ReturnDate != nil {
			return circulation.ErrAlreadyReturned
		}

		returnDate := circulation.ToDate(l.clock())
		if request.ReturnDate != nil {
			returnDate = circulation.ToDate(*request.ReturnDate)
		}

		if returnDate.Before(circulation.ToDate(loan.BorrowDate)) {
			return circulation.ErrInvalidReturnDate
		}

		policy, policyErr := l.policies.PolicyFor(txCtx, loan.Branch)
		if policyErr != nil {
			return policyErr
		}

		fineAmount := circulation.CalculateFine(returnDate, loan.DueDate, policy)

		if err = l.markLoanReturned(txCtx, tx, loan.ID, returnDate, fineAmount); err != nil {
			return err
		}

		if err = l.incrementAvailableCopies(txCtx, tx, loan.BookID); err != nil {
			return err
		}

		if fineAmount.IsPositive() {
			created, fineErr := l.createFineIfAbsent(txCtx, tx, loan, fineAmount)
			if fineErr != nil {
				return fineErr
			}

			if created {
				if err = l.appendJournalEntry(txCtx, tx, circulation.EntryFineImposed, loan.ID, finePayload{
					BorrowerID: loan.BorrowerID.String(),
					Amount:     fineAmount.StringFixed(2),
				}); err != nil {
					return err
				}
			}
		}

		if err = l.appendJournalEntry(txCtx, tx, circulation.EntryBookReturned, loan.ID, returnedPayload{
			BookID:     loan.BookID.String(),
			BorrowerID: loan.BorrowerID.String(),
			ReturnDate: returnDate.Format(dateLayout),
			FineAmount: fineAmount.StringFixed(2),
		}); err != nil {
			return err
		}

		returned = loan
		returned.ReturnDate = &returnDate
		returned.IsReturned = true
		returned.FineAmount = fineAmount

		return nil
	})

	l.finishOperation(ctx, span, opReturnBook, start, txErr)

	if txErr != nil {
		return empty, txErr
	}

	l.logOperation(ctx, logMsgBookReturned,
		logAttrLoanID, returned.ID.String(),
		logAttrFineAmount, returned.FineAmount.StringFixed(2))

	return returned, nil
}

// RenewLoan extends an active loan's due date by the policy's renewal period.
//
// Renewal never clears a fine already accrued: fines are only computed at
// return time against the due date in effect then. A renewal beyond the
// policy's maximum fails without mutating the loan.
func (l *Ledger) RenewLoan(ctx context.Context, loanID uuid.UUID) (circulation.Loan, error) {
	var empty circulation.Loan
	var renewed circulation.Loan

	start := time.Now()
	ctx, span := l.startSpan(ctx, opRenewLoan)

	txErr := l.withinTransaction(ctx, opRenewLoan, func(txCtx context.Context, tx adapters.DBTx) error {
		loan, err := l.loanForUpdate(txCtx, tx, loanID)
		if err != nil {
			return err
		}

		if loan.ReturnDate != nil {
			return circulation.ErrAlreadyReturned
		}

		policy, policyErr := l.policies.PolicyFor(txCtx, loan.Branch)
		if policyErr != nil {
			return policyErr
		}

		if loan.RenewCount >= policy.MaxRenewals {
			return circulation.ErrRenewalLimitExceeded
		}

		newDueDate := circulation.ToDate(l.clock()).AddDate(0, 0, policy.RenewalPeriodDays)

		if err = l.updateLoanDueDate(txCtx, tx, loan.ID, newDueDate); err != nil {
			return err
		}

		if err = l.appendJournalEntry(txCtx, tx, circulation.EntryLoanRenewed, loan.ID, renewedPayload{
			DueDate:    newDueDate.Format(dateLayout),
			RenewCount: loan.RenewCount + 1,
		}); err != nil {
			return err
		}

		renewed = loan
		renewed.DueDate = newDueDate
		renewed.RenewCount = loan.RenewCount + 1

		return nil
	})

	l.finishOperation(ctx, span, opRenewLoan, start, txErr)

	if txErr != nil {
		return empty, txErr
	}

	l.logOperation(ctx, logMsgLoanRenewed,
		logAttrLoanID, renewed.ID.String(),
		logAttrRenewCount, renewed.RenewCount)

	return renewed, nil
}

// DeleteLoan removes a loan record as an administrative correction.
//
// Deleting a still-active loan restores the available copy consumed at
// borrow time; deleting an already-returned loan has no catalog effect.
func (l *Ledger) DeleteLoan(ctx context.Context, loanID uuid.UUID) error {
	start := time.Now()
	ctx, span := l.startSpan(ctx, opDeleteLoan)

	txErr := l.withinTransaction(ctx, opDeleteLoan, func(txCtx context.Context, tx adapters.DBTx) error {
		loan, err := l.loanForUpdate(txCtx, tx, loanID)
		if err != nil {
			return err
		}

		if loan.IsActive() {
			if err = l.incrementAvailableCopies(txCtx, tx, loan.BookID); err != nil {
				return err
			}
		}

		if err = l.deleteLoanRow(txCtx, tx, loan.ID); err != nil {
			return err
		}

		return l.appendJournalEntry(txCtx, tx, circulation.EntryLoanDeleted, loan.ID, deletedPayload{
			BookID:    loan.BookID.String(),
			WasActive: loan.IsActive(),
		})
	})

	l.finishOperation(ctx, span, opDeleteLoan, start, txErr)

	if txErr != nil {
		return txErr
	}

	l.logOperation(ctx, logMsgLoanDeleted, logAttrLoanID, loanID.String())

	return nil
}

// withinTransaction runs fn inside one database transaction, mapping
// serialization failures and deadlocks to circulation.ErrConcurrencyConflict.
func (l *Ledger) withinTransaction(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context, tx adapters.DBTx) error,
) error {

	ctx = circulation.WithStrongConsistency(ctx)

	tx, beginErr := l.db.BeginTx(ctx)
	if beginErr != nil {
		return errors.Join(circulation.ErrExecutingLedgerFailed, beginErr)
	}

	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			l.logWarn(ctx, "failed to roll back transaction", logAttrError, rollbackErr.Error())
		}
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		if adapters.IsSerializationFailure(fnErr) {
			l.logOperation(ctx, logMsgConcurrencyConflict, logAttrOperation, operation)
			return circulation.ErrConcurrencyConflict
		}

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		if adapters.IsSerializationFailure(commitErr) {
			l.logOperation(ctx, logMsgConcurrencyConflict, logAttrOperation, operation)
			return circulation.ErrConcurrencyConflict
		}

		return errors.Join(circulation.ErrExecutingLedgerFailed, commitErr)
	}

	return nil
}

// lockBookRow locks the book's catalog row for the rest of the transaction,
// serializing all concurrent borrow/return/delete operations on this book.
func (l *Ledger) lockBookRow(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID) error {
	sqlQuery, _, toSQLErr := l.builder().
		From(l.tables.Books).
		Select(colCopiesTotal, colCopiesAvailable).
		Where(goqu.C(colID).Eq(uuidLiteral(bookID))).
		ForUpdate(exp.Wait).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := l.queryRows(ctx, tx, sqlQuery)
	if queryErr != nil {
		return queryErr
	}
	defer l.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
		}

		return circulation.ErrBookNotFound
	}

	var copiesTotal, copiesAvailable int
	if scanErr := rows.Scan(&copiesTotal, &copiesAvailable); scanErr != nil {
		return errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	return nil
}

func (l *Ledger) activeLoanExists(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID, borrowerID uuid.UUID) (bool, error) {
	sqlQuery, _, toSQLErr := l.builder().
		From(l.tables.Loans).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colBookID).Eq(uuidLiteral(bookID)),
			goqu.C(colBorrowerID).Eq(uuidLiteral(borrowerID)),
			goqu.C(colReturnDate).IsNull(),
		).
		ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := l.queryRows(ctx, tx, sqlQuery)
	if queryErr != nil {
		return false, queryErr
	}
	defer l.closeRows(rows)

	var count int
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return false, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return false, errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
	}

	return count > 0, nil
}

// decrementAvailableCopies consumes one available copy. The conditional
// update together with the rows-affected check guarantees the counter
// never goes below zero, even under concurrent borrow attempts.
func (l *Ledger) decrementAvailableCopies(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID) error {
	sqlQuery, _, toSQLErr := l.builder().
		Update(l.tables.Books).
		Set(goqu.Record{colCopiesAvailable: goqu.L(colCopiesAvailable + " - 1")}).
		Where(
			goqu.C(colID).Eq(uuidLiteral(bookID)),
			goqu.C(colCopiesAvailable).Gt(0),
		).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := l.execStatement(ctx, tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return circulation.ErrNoCopiesAvailable
	}

	return nil
}

// incrementAvailableCopies restores one available copy, capped at the
// total number of copies. The cap is a deliberate clamping policy, not
// an error condition.
func (l *Ledger) incrementAvailableCopies(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID) error {
	sqlQuery, _, toSQLErr := l.builder().
		Update(l.tables.Books).
		Set(goqu.Record{colCopiesAvailable: goqu.L("LEAST(" + colCopiesAvailable + " + 1, " + colCopiesTotal + ")")}).
		Where(goqu.C(colID).Eq(uuidLiteral(bookID))).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}

func (l *Ledger) insertLoan(ctx context.Context, tx adapters.DBTx, loan circulation.Loan) error {
	sqlQuery, _, toSQLErr := l.builder().
		Insert(l.tables.Loans).
		Rows(goqu.Record{
			colID:         uuidLiteral(loan.ID),
			colBookID:     uuidLiteral(loan.BookID),
			colBorrowerID: uuidLiteral(loan.BorrowerID),
			colBranch:     loan.Branch,
			colBorrowDate: loan.BorrowDate,
			colDueDate:    loan.DueDate,
			colIsReturned: false,
			colFineAmount: numericLiteral(loan.FineAmount),
			colRenewCount: int64(loan.RenewCount),
			colNotes:      loan.Notes,
		}).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)
	if execErr != nil {
		// The partial unique index on (book_id, borrower_id) for active
		// loans is the second line of defense behind activeLoanExists.
		if adapters.IsUniqueViolation(execErr) {
			return circulation.ErrActiveLoanExists
		}

		return execErr
	}

	return nil
}

func (l *Ledger) markLoanReturned(
	ctx context.Context,
	tx adapters.DBTx,
	loanID uuid.UUID,
	returnDate time.Time,
	fineAmount decimal.Decimal,
) error {

	sqlQuery, _, toSQLErr := l.builder().
		Update(l.tables.Loans).
		Set(goqu.Record{
			colReturnDate: returnDate,
			colIsReturned: true,
			colFineAmount: numericLiteral(fineAmount),
		}).
		Where(goqu.C(colID).Eq(uuidLiteral(loanID))).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}

func (l *Ledger) updateLoanDueDate(ctx context.Context, tx adapters.DBTx, loanID uuid.UUID, dueDate time.Time) error {
	sqlQuery, _, toSQLErr := l.builder().
		Update(l.tables.Loans).
		Set(goqu.Record{
			colDueDate:    dueDate,
			colRenewCount: goqu.L(colRenewCount + " + 1"),
		}).
		Where(goqu.C(colID).Eq(uuidLiteral(loanID))).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}

func (l *Ledger) deleteLoanRow(ctx context.Context, tx adapters.DBTx, loanID uuid.UUID) error {
	sqlQuery, _, toSQLErr := l.builder().
		Delete(l.tables.Loans).
		Where(goqu.C(colID).Eq(uuidLiteral(loanID))).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}

// createFineIfAbsent get-or-creates the fine record for a loan, keyed by the
// loan id. Returns whether a new record was created; an existing record is
// left untouched so a re-run never duplicates or overwrites a fine.
func (l *Ledger) createFineIfAbsent(
	ctx context.Context,
	tx adapters.DBTx,
	loan circulation.Loan,
	amount decimal.Decimal,
) (bool, error) {

	sqlQuery, _, toSQLErr := l.builder().
		Insert(l.tables.Fines).
		Rows(goqu.Record{
			colID:         uuidLiteral(uuid.New()),
			colLoanID:     uuidLiteral(loan.ID),
			colBorrowerID: uuidLiteral(loan.BorrowerID),
			colAmount:     numericLiteral(amount),
			colPaid:       false,
			colCreatedAt:  l.clock().UTC(),
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := l.execStatement(ctx, tx, sqlQuery)
	if execErr != nil {
		return false, execErr
	}

	return rowsAffected > 0, nil
}
