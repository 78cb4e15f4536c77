package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BorrowRequest carries the input for the borrow operation.
// DueDate overrides the policy-computed due date when set; BorrowDate
// overrides the clock for backdating and tests. Branch selects the lending
// policy, DefaultBranch meaning the global one.
type BorrowRequest struct {
	BookID     uuid.UUID
	BorrowerID uuid.UUID
	Branch     string
	BorrowDate *time.Time
	DueDate    *time.Time
	Notes      string
}

// ReturnRequest carries the input for the return operation.
// ReturnDate overrides the clock for backdating and tests; it must not
// precede the loan's borrow date.
type ReturnRequest struct {
	LoanID     uuid.UUID
	ReturnDate *time.Time
}

// BorrowingService is the operations contract of the borrowing/fines core.
// Every operation completes or fails atomically; precondition violations
// surface as the typed errors of this package.
type BorrowingService interface {
	BorrowBook(ctx context.Context, request BorrowRequest) (Loan, error)
	ReturnBook(ctx context.Context, request ReturnRequest) (Loan, error)
	RenewLoan(ctx context.Context, loanID uuid.UUID) (Loan, error)
	DeleteLoan(ctx context.Context, loanID uuid.UUID) error
	PayFine(ctx context.Context, fineID uuid.UUID) (Fine, error)
}

// IdentityProvider is the narrow contract towards the accounts subsystem:
// borrower IDs are opaque, only existence is checked.
type IdentityProvider interface {
	BorrowerExists(ctx context.Context, borrowerID uuid.UUID) (bool, error)
}
