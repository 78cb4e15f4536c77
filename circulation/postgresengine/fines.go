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

var fineColumns = []any{ //nolint:gochecknoglobals
	colID, colLoanID, colBorrowerID, colAmount, colPaid, colCreatedAt, colPaidAt,
}

// PayFine settles an unpaid fine.
//
// The fine row is locked first so two concurrent payments cannot both
// succeed; the second one observes the paid flag and fails. Paying never
// changes the amount, only the paid flag and the payment timestamp.
func (l *Ledger) PayFine(ctx context.Context, fineID uuid.UUID) (circulation.Fine, error) {
	var empty circulation.Fine
	var paid circulation.Fine

	start := time.Now()
	ctx, span := l.startSpan(ctx, opPayFine)

	txErr := l.withinTransaction(ctx, opPayFine, func(txCtx context.Context, tx adapters.DBTx) error {
		fine, err := l.fineForUpdate(txCtx, tx, fineID)
		if err != nil {
			return err
		}

		if fine.Paid {
			return circulation.ErrAlreadyPaid
		}

		paidAt := l.clock().UTC()

		if err = l.markFinePaid(txCtx, tx, fine.ID, paidAt); err != nil {
			return err
		}

		if err = l.appendJournalEntry(txCtx, tx, circulation.EntryFinePaid, fine.LoanID, finePayload{
			BorrowerID: fine.BorrowerID.String(),
			Amount:     fine.Amount.StringFixed(2),
		}); err != nil {
			return err
		}

		paid = fine
		paid.Paid = true
		paid.PaidAt = &paidAt

		return nil
	})

	l.finishOperation(ctx, span, opPayFine, start, txErr)

	if txErr != nil {
		return empty, txErr
	}

	l.logOperation(ctx, logMsgFinePaid,
		logAttrFineID, paid.ID.String(),
		logAttrFineAmount, paid.Amount.StringFixed(2))

	return paid, nil
}

// GetFine retrieves a single fine by its id.
func (l *Ledger) GetFine(ctx context.Context, fineID uuid.UUID) (circulation.Fine, error) {
	return l.querySingleFine(ctx, l.db, goqu.C(colID).Eq(uuidLiteral(fineID)), false)
}

// GetFineByLoan retrieves the fine attached to a loan, if any.
func (l *Ledger) GetFineByLoan(ctx context.Context, loanID uuid.UUID) (circulation.Fine, error) {
	return l.querySingleFine(ctx, l.db, goqu.C(colLoanID).Eq(uuidLiteral(loanID)), false)
}

// UnpaidFinesByBorrower retrieves all outstanding fines of one borrower,
// oldest first.
func (l *Ledger) UnpaidFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) (circulation.Fines, error) {
	sqlQuery, _, toSQLErr := l.selectFines(
		goqu.C(colBorrowerID).Eq(uuidLiteral(borrowerID)),
		goqu.C(colPaid).IsFalse(),
	).
		Order(goqu.C(colCreatedAt).Asc(), goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return l.collectFines(ctx, l.db, sqlQuery)
}

func (l *Ledger) selectFines(conditions ...exp.Expression) *goqu.SelectDataset {
	return l.builder().
		From(l.tables.Fines).
		Select(fineColumns...).
		Where(conditions...)
}

func (l *Ledger) fineForUpdate(ctx context.Context, tx adapters.DBTx, fineID uuid.UUID) (circulation.Fine, error) {
	return l.querySingleFine(ctx, tx, goqu.C(colID).Eq(uuidLiteral(fineID)), true)
}

func (l *Ledger) querySingleFine(
	ctx context.Context,
	querier rowQuerier,
	condition exp.Expression,
	forUpdate bool,
) (circulation.Fine, error) {

	var empty circulation.Fine

	query := l.selectFines(condition)
	if forUpdate {
		query = query.ForUpdate(exp.Wait)
	}

	sqlQuery, _, toSQLErr := query.ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	fines, err := l.collectFines(ctx, querier, sqlQuery)
	if err != nil {
		return empty, err
	}

	if len(fines) == 0 {
		return empty, circulation.ErrFineNotFound
	}

	return fines[0], nil
}

func (l *Ledger) collectFines(ctx context.Context, querier rowQuerier, sqlQuery sqlQueryString) (circulation.Fines, error) {
	rows, queryErr := l.queryRows(ctx, querier, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer l.closeRows(rows)

	fines := make(circulation.Fines, 0)

	for rows.Next() {
		var fine circulation.Fine

		scanErr := rows.Scan(
			&fine.ID,
			&fine.LoanID,
			&fine.BorrowerID,
			&fine.Amount,
			&fine.Paid,
			&fine.CreatedAt,
			&fine.PaidAt,
		)
		if scanErr != nil {
			return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
		}

		fines = append(fines, fine)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
	}

	return fines, nil
}

func (l *Ledger) markFinePaid(ctx context.Context, tx adapters.DBTx, fineID uuid.UUID, paidAt time.Time) error {
	sqlQuery, _, toSQLErr := l.builder().
		Update(l.tables.Fines).
		Set(goqu.Record{
			colPaid:   true,
			colPaidAt: paidAt,
		}).
		Where(goqu.C(colID).Eq(uuidLiteral(fineID))).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}
