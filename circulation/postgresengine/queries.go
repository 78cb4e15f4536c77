package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine/internal/adapters"
)

// rowQuerier abstracts over the pool and an open transaction so the scan
// helpers can serve both paths.
type rowQuerier interface {
	Query(ctx context.Context, sqlQuery string) (adapters.DBRows, error)
}

type statementExecer interface {
	Exec(ctx context.Context, sqlQuery string) (adapters.DBResult, error)
}

func (l *Ledger) queryRows(ctx context.Context, querier rowQuerier, sqlQuery sqlQueryString) (adapters.DBRows, error) {
	start := time.Now()

	rows, queryErr := querier.Query(ctx, sqlQuery)
	if queryErr != nil {
		l.logError(ctx, "querying the ledger tables failed", logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, errors.Join(circulation.ErrQueryingLedgerFailed, queryErr)
	}

	l.logQueryDuration(ctx, sqlQuery, start)

	return rows, nil
}

func (l *Ledger) execStatement(ctx context.Context, execer statementExecer, sqlQuery sqlQueryString) (int64, error) {
	start := time.Now()

	result, execErr := execer.Exec(ctx, sqlQuery)
	if execErr != nil {
		// Constraint and serialization failures are classified by the
		// callers, so log them at debug level only.
		l.logDebug(ctx, "executing a ledger statement failed", logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, execErr
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return 0, errors.Join(circulation.ErrExecutingLedgerFailed, rowsErr)
	}

	l.logQueryDuration(ctx, sqlQuery, start)

	return rowsAffected, nil
}

func (l *Ledger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarn(context.Background(), "failed to close database rows", logAttrError, closeErr.Error())
	}
}

var loanColumns = []any{ //nolint:gochecknoglobals
	colID, colBookID, colBorrowerID, colBranch, colBorrowDate, colDueDate,
	colReturnDate, colIsReturned, colFineAmount, colRenewCount, colNotes,
}

func (l *Ledger) selectLoans(conditions ...exp.Expression) *goqu.SelectDataset {
	return l.builder().
		From(l.tables.Loans).
		Select(loanColumns...).
		Where(conditions...)
}

func scanLoan(rows adapters.DBRows) (circulation.Loan, error) {
	var loan circulation.Loan

	scanErr := rows.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.BorrowerID,
		&loan.Branch,
		&loan.BorrowDate,
		&loan.DueDate,
		&loan.ReturnDate,
		&loan.IsReturned,
		&loan.FineAmount,
		&loan.RenewCount,
		&loan.Notes,
	)
	if scanErr != nil {
		return loan, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	return loan, nil
}

func (l *Ledger) collectLoans(ctx context.Context, querier rowQuerier, sqlQuery sqlQueryString) (circulation.Loans, error) {
	rows, queryErr := l.queryRows(ctx, querier, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer l.closeRows(rows)

	loans := make(circulation.Loans, 0)

	for rows.Next() {
		loan, scanErr := scanLoan(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		loans = append(loans, loan)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
	}

	return loans, nil
}

func (l *Ledger) querySingleLoan(ctx context.Context, querier rowQuerier, sqlQuery sqlQueryString) (circulation.Loan, error) {
	var empty circulation.Loan

	loans, err := l.collectLoans(ctx, querier, sqlQuery)
	if err != nil {
		return empty, err
	}

	if len(loans) == 0 {
		return empty, circulation.ErrLoanNotFound
	}

	return loans[0], nil
}

// loanForUpdate loads a loan with a row lock held for the rest of the
// transaction.
func (l *Ledger) loanForUpdate(ctx context.Context, tx adapters.DBTx, loanID uuid.UUID) (circulation.Loan, error) {
	var empty circulation.Loan

	sqlQuery, _, toSQLErr := l.
		selectLoans(goqu.C(colID).Eq(uuidLiteral(loanID))).
		ForUpdate(exp.Wait).
		ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.querySingleLoan(ctx, tx, sqlQuery)
}

// GetLoan retrieves a single loan by its id.
func (l *Ledger) GetLoan(ctx context.Context, loanID uuid.UUID) (circulation.Loan, error) {
	var empty circulation.Loan

	sqlQuery, _, toSQLErr := l.
		selectLoans(goqu.C(colID).Eq(uuidLiteral(loanID))).
		ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.querySingleLoan(ctx, l.db, sqlQuery)
}

// LoansByBorrower retrieves all loans of one borrower, most recent first.
func (l *Ledger) LoansByBorrower(ctx context.Context, borrowerID uuid.UUID) (circulation.Loans, error) {
	sqlQuery, _, toSQLErr := l.
		selectLoans(goqu.C(colBorrowerID).Eq(uuidLiteral(borrowerID))).
		Order(goqu.C(colBorrowDate).Desc(), goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.collectLoans(ctx, l.db, sqlQuery)
}

// ActiveLoansByBorrower retrieves the borrower's loans that are not yet returned.
func (l *Ledger) ActiveLoansByBorrower(ctx context.Context, borrowerID uuid.UUID) (circulation.Loans, error) {
	sqlQuery, _, toSQLErr := l.
		selectLoans(
			goqu.C(colBorrowerID).Eq(uuidLiteral(borrowerID)),
			goqu.C(colReturnDate).IsNull(),
		).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.collectLoans(ctx, l.db, sqlQuery)
}

// OverdueLoans retrieves all active loans whose due date lies strictly
// before the given day.
func (l *Ledger) OverdueLoans(ctx context.Context, asOf time.Time) (circulation.Loans, error) {
	sqlQuery, _, toSQLErr := l.
		selectLoans(
			goqu.C(colReturnDate).IsNull(),
			goqu.C(colDueDate).Lt(circulation.ToDate(asOf)),
		).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.collectLoans(ctx, l.db, sqlQuery)
}
