package circulation

import (
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// CalculateFine computes the fine for a loan returned on returnDate against
// the due date in effect at return time. It is a pure function: identical
// inputs always yield the identical amount.
//
// Days late are counted after the policy's grace period; the result is
// clamped to the range [0, policy.MaxFine].
func CalculateFine(returnDate time.Time, dueDate time.Time, policy Policy) decimal.Decimal {
	daysLate := daysBetween(dueDate, returnDate) - policy.GracePeriodDays

	if daysLate <= 0 {
		return decimal.Zero
	}

	fine := policy.DailyFineRate.Mul(decimal.NewFromInt(int64(daysLate)))

	if fine.GreaterThan(policy.MaxFine) {
		fine = policy.MaxFine
	}

	if fine.IsNegative() {
		return decimal.Zero
	}

	return fine
}

// daysBetween returns the number of whole calendar days from one date to another.
func daysBetween(from time.Time, to time.Time) int {
	return int(ToDate(to).Sub(ToDate(from)).Hours() / hoursPerDay)
}

// ToDate normalizes a timestamp to its calendar date, midnight UTC.
// All loan dates are stored and compared in this form.
func ToDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
