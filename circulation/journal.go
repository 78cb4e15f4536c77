package circulation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Journal entry types written by the borrowing service.
const (
	EntryBookBorrowed = "BookBorrowed"
	EntryBookReturned = "BookReturned"
	EntryLoanRenewed  = "LoanRenewed"
	EntryLoanDeleted  = "LoanDeleted"
	EntryFineImposed  = "FineImposed"
	EntryFinePaid     = "FinePaid"
)

var ErrInvalidJournalPayload = errors.New("journal payload is not valid json")

// JournalEntries is an alias type for a slice of JournalEntry.
type JournalEntries = []JournalEntry

// JournalEntry is one record of the append-only circulation journal.
// The journal is the immutable audit feed for reporting and notification
// collaborators; entries are written inside the same transaction as the
// operation they describe and are never updated or deleted.
//
// While its properties are exported, it should only be constructed with
// BuildJournalEntry so payload validity is guaranteed.
type JournalEntry struct {
	EntryType   string
	OccurredAt  time.Time
	LoanID      uuid.UUID
	PayloadJSON []byte
}

// BuildJournalEntry is a factory method for JournalEntry.
// Returns an error if payloadJSON is not valid JSON.
func BuildJournalEntry(entryType string, occurredAt time.Time, loanID uuid.UUID, payloadJSON []byte) (JournalEntry, error) {
	if !json.Valid(payloadJSON) {
		return JournalEntry{}, ErrInvalidJournalPayload
	}

	return JournalEntry{
		EntryType:   entryType,
		OccurredAt:  occurredAt,
		LoanID:      loanID,
		PayloadJSON: payloadJSON,
	}, nil
}
