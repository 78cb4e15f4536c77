package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fines is an alias type for a slice of Fine.
type Fines = []Fine

// Fine is one fine record for a loan that was returned late.
// Exactly one fine exists per loan; after creation only Paid and PaidAt
// may change, and only from unpaid to paid.
type Fine struct {
	ID         uuid.UUID
	LoanID     uuid.UUID
	BorrowerID uuid.UUID
	Amount     decimal.Decimal
	Paid       bool
	CreatedAt  time.Time
	PaidAt     *time.Time
}
