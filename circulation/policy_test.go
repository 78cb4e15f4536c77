package circulation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func Test_DefaultPolicy_Values(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, 14, policy.LoanPeriodDays)
	assert.Equal(t, 2, policy.GracePeriodDays)
	assert.True(t, policy.DailyFineRate.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, policy.MaxFine.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, uint(2), policy.MaxRenewals)
	assert.Equal(t, 7, policy.RenewalPeriodDays)
	assert.NoError(t, policy.Validate())
}

func Test_Policy_Validate_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *Policy)
		expectedErr error
	}{
		{
			name:        "loan period below one day",
			mutate:      func(p *Policy) { p.LoanPeriodDays = 0 },
			expectedErr: ErrInvalidLoanPeriod,
		},
		{
			name:        "renewal period below one day",
			mutate:      func(p *Policy) { p.RenewalPeriodDays = 0 },
			expectedErr: ErrInvalidRenewalPeriod,
		},
		{
			name:        "negative daily fine rate",
			mutate:      func(p *Policy) { p.DailyFineRate = decimal.RequireFromString("-0.5") },
			expectedErr: ErrNegativeFineRate,
		},
		{
			name:        "negative maximum fine",
			mutate:      func(p *Policy) { p.MaxFine = decimal.NewFromInt(-1) },
			expectedErr: ErrNegativeMaxFine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			tt.mutate(&policy)

			err := policy.Validate()

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_StaticPolicyProvider_ServesSamePolicyForEveryBranch(t *testing.T) {
	policy := DefaultPolicy()
	policy.LoanPeriodDays = 21

	provider, err := NewStaticPolicyProvider(policy)
	assert.NoError(t, err)

	forDefault, err := provider.PolicyFor(context.Background(), DefaultBranch)
	assert.NoError(t, err)
	assert.Equal(t, 21, forDefault.LoanPeriodDays)

	forBranch, err := provider.PolicyFor(context.Background(), "downtown")
	assert.NoError(t, err)
	assert.Equal(t, 21, forBranch.LoanPeriodDays)
}

func Test_NewStaticPolicyProvider_RejectsInvalidPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.LoanPeriodDays = -1

	_, err := NewStaticPolicyProvider(policy)

	assert.ErrorIs(t, err, ErrInvalidLoanPeriod)
}
