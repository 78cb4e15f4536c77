package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loans is an alias type for a slice of Loan.
type Loans = []Loan

// Loan is one borrowing record linking a borrower to a catalog item for a
// bounded period. A loan is active while ReturnDate is nil; IsReturned is
// derived from ReturnDate and kept in sync by the borrowing service, it is
// never a second source of truth.
type Loan struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	BorrowerID uuid.UUID
	Branch     string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	IsReturned bool
	FineAmount decimal.Decimal
	RenewCount uint
	Notes      string
}

// IsActive reports whether the book has not been returned yet.
func (l Loan) IsActive() bool {
	return l.ReturnDate == nil
}

// IsOverdue reports whether an active loan has passed its due date at the given time.
// Returned loans are never overdue.
func (l Loan) IsOverdue(asOf time.Time) bool {
	if !l.IsActive() {
		return false
	}

	return ToDate(asOf).After(ToDate(l.DueDate))
}

// Validate checks the date ordering invariants of the loan.
func (l Loan) Validate() error {
	if ToDate(l.DueDate).Before(ToDate(l.BorrowDate)) {
		return ErrInvalidDueDate
	}

	if l.ReturnDate != nil && ToDate(*l.ReturnDate).Before(ToDate(l.BorrowDate)) {
		return ErrInvalidReturnDate
	}

	return nil
}
