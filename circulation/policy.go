package circulation

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultBranch selects the global policy when no branch-specific one is configured.
const DefaultBranch = ""

var (
	// ErrNegativeFineRate is returned when a policy carries a negative daily fine rate.
	ErrNegativeFineRate = errors.New("daily fine rate must not be negative")

	// ErrNegativeMaxFine is returned when a policy carries a negative maximum fine.
	ErrNegativeMaxFine = errors.New("maximum fine must not be negative")

	// ErrInvalidLoanPeriod is returned when a policy carries a loan period below one day.
	ErrInvalidLoanPeriod = errors.New("loan period must be at least one day")

	// ErrInvalidRenewalPeriod is returned when a policy carries a renewal period below one day.
	ErrInvalidRenewalPeriod = errors.New("renewal period must be at least one day")
)

// Policy holds the lending parameters the borrowing service applies to
// due dates, renewals and fine computation.
type Policy struct {
	LoanPeriodDays    int
	GracePeriodDays   int
	DailyFineRate     decimal.Decimal
	MaxFine           decimal.Decimal
	MaxRenewals       uint
	RenewalPeriodDays int
}

// DefaultPolicy returns the built-in global lending policy:
// 14-day loan period, 2-day grace period, 0.50 per day up to 25.00,
// at most 2 renewals of 7 days each.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriodDays:    14,
		GracePeriodDays:   2,
		DailyFineRate:     decimal.NewFromFloat(0.50),
		MaxFine:           decimal.NewFromInt(25),
		MaxRenewals:       2,
		RenewalPeriodDays: 7,
	}
}

// Validate checks the policy for values that would corrupt due dates or fines.
func (p Policy) Validate() error {
	if p.LoanPeriodDays < 1 {
		return ErrInvalidLoanPeriod
	}

	if p.RenewalPeriodDays < 1 {
		return ErrInvalidRenewalPeriod
	}

	if p.DailyFineRate.IsNegative() {
		return ErrNegativeFineRate
	}

	if p.MaxFine.IsNegative() {
		return ErrNegativeMaxFine
	}

	return nil
}

// PolicyProvider supplies the lending policy for a branch.
// Implementations must return a usable policy for DefaultBranch.
type PolicyProvider interface {
	PolicyFor(ctx context.Context, branch string) (Policy, error)
}

// StaticPolicyProvider serves one fixed policy for every branch.
// It is the deterministic provider for tests and single-branch deployments.
type StaticPolicyProvider struct {
	policy Policy
}

// NewStaticPolicyProvider creates a StaticPolicyProvider for the given policy.
func NewStaticPolicyProvider(policy Policy) (StaticPolicyProvider, error) {
	if err := policy.Validate(); err != nil {
		return StaticPolicyProvider{}, err
	}

	return StaticPolicyProvider{policy: policy}, nil
}

// PolicyFor returns the fixed policy regardless of the branch.
func (s StaticPolicyProvider) PolicyFor(_ context.Context, _ string) (Policy, error) {
	return s.policy, nil
}
