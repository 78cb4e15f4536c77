package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// GivenUniqueID returns a fresh UUID for test data.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// Day builds a calendar day in UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayPtr builds a calendar day in UTC and returns a pointer to it, for the
// optional date overrides of borrow and return requests.
func DayPtr(year int, month time.Month, day int) *time.Time {
	d := Day(year, month, day)
	return &d
}

// FixedClock returns a clock function frozen at the given time.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
