package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine/internal/adapters"
)

const (
	colEntryType  = "entry_type"
	colOccurredAt = "occurred_at"
	colPayload    = "payload"

	castJsonb = "?::jsonb"

	dateLayout = "2006-01-02"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// Journal entry payloads. Dates are serialized as plain calendar days and
// amounts as fixed two-decimal strings, so the payloads survive round-trips
// through jsonb without float precision loss.
type borrowedPayload struct {
	BookID     string `json:"book_id"`
	BorrowerID string `json:"borrower_id"`
	DueDate    string `json:"due_date"`
}

type returnedPayload struct {
	BookID     string `json:"book_id"`
	BorrowerID string `json:"borrower_id"`
	ReturnDate string `json:"return_date"`
	FineAmount string `json:"fine_amount"`
}

type renewedPayload struct {
	DueDate    string `json:"due_date"`
	RenewCount uint   `json:"renew_count"`
}

type deletedPayload struct {
	BookID    string `json:"book_id"`
	WasActive bool   `json:"was_active"`
}

type finePayload struct {
	BorrowerID string `json:"borrower_id"`
	Amount     string `json:"amount"`
}

// appendJournalEntry writes one audit record inside the operation's
// transaction, so the journal and the ledger commit or fail together.
func (l *Ledger) appendJournalEntry(
	ctx context.Context,
	tx adapters.DBTx,
	entryType string,
	loanID uuid.UUID,
	payload any,
) error {

	payloadJSON, marshalErr := jsonAPI.Marshal(payload)
	if marshalErr != nil {
		return errors.Join(circulation.ErrInvalidJournalPayload, marshalErr)
	}

	entry, buildErr := circulation.BuildJournalEntry(entryType, l.clock().UTC(), loanID, payloadJSON)
	if buildErr != nil {
		return buildErr
	}

	sqlQuery, _, toSQLErr := l.builder().
		Insert(l.tables.Journal).
		Rows(goqu.Record{
			colEntryType:  entry.EntryType,
			colOccurredAt: entry.OccurredAt,
			colLoanID:     uuidLiteral(entry.LoanID),
			colPayload:    goqu.L(castJsonb, string(entry.PayloadJSON)),
		}).
		ToSQL()
	if toSQLErr != nil {
		return errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	_, execErr := l.execStatement(ctx, tx, sqlQuery)

	return execErr
}

// JournalEntries retrieves the audit trail of one loan in the order the
// entries were appended.
func (l *Ledger) JournalEntries(ctx context.Context, loanID uuid.UUID) ([]circulation.JournalEntry, error) {
	sqlQuery, _, toSQLErr := l.builder().
		From(l.tables.Journal).
		Select(colEntryType, colOccurredAt, colLoanID, colPayload).
		Where(goqu.C(colLoanID).Eq(uuidLiteral(loanID))).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := l.queryRows(ctx, l.db, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer l.closeRows(rows)

	entries := make([]circulation.JournalEntry, 0)

	for rows.Next() {
		var (
			entryType  string
			occurredAt time.Time
			entryLoan  uuid.UUID
			payload    []byte
		)

		if scanErr := rows.Scan(&entryType, &occurredAt, &entryLoan, &payload); scanErr != nil {
			return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
		}

		entry, buildErr := circulation.BuildJournalEntry(entryType, occurredAt, entryLoan, payload)
		if buildErr != nil {
			return nil, buildErr
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
	}

	return entries, nil
}
