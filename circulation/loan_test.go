package circulation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_Loan_IsActive(t *testing.T) {
	loan := Loan{ID: uuid.New()}
	assert.True(t, loan.IsActive())

	returnDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	loan.ReturnDate = &returnDate
	assert.False(t, loan.IsActive())
}

func Test_Loan_IsOverdue(t *testing.T) {
	dueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	loan := Loan{ID: uuid.New(), DueDate: dueDate}

	assert.False(t, loan.IsOverdue(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, loan.IsOverdue(dueDate), "not overdue on the due date itself")
	assert.False(t, loan.IsOverdue(time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)), "time of day does not matter")
	assert.True(t, loan.IsOverdue(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))
}

func Test_Loan_IsOverdue_ReturnedLoanNever(t *testing.T) {
	dueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	returnDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	loan := Loan{ID: uuid.New(), DueDate: dueDate, ReturnDate: &returnDate, IsReturned: true}

	assert.False(t, loan.IsOverdue(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func Test_Loan_Validate(t *testing.T) {
	borrowDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid loan", func(t *testing.T) {
		loan := Loan{
			BorrowDate: borrowDate,
			DueDate:    borrowDate.AddDate(0, 0, 14),
		}

		assert.NoError(t, loan.Validate())
	})

	t.Run("due date before borrow date", func(t *testing.T) {
		loan := Loan{
			BorrowDate: borrowDate,
			DueDate:    borrowDate.AddDate(0, 0, -1),
		}

		assert.ErrorIs(t, loan.Validate(), ErrInvalidDueDate)
	})

	t.Run("return date before borrow date", func(t *testing.T) {
		returnDate := borrowDate.AddDate(0, 0, -1)
		loan := Loan{
			BorrowDate: borrowDate,
			DueDate:    borrowDate.AddDate(0, 0, 14),
			ReturnDate: &returnDate,
		}

		assert.ErrorIs(t, loan.Validate(), ErrInvalidReturnDate)
	})
}
