package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine/internal/adapters"
)

const (
	defaultBranchPoliciesTableName = "branch_policies"

	colLoanPeriodDays    = "loan_period_days"
	colGracePeriodDays   = "grace_period_days"
	colDailyFineRate     = "daily_fine_rate"
	colMaxFine           = "max_fine"
	colMaxRenewals       = "max_renewals"
	colRenewalPeriodDays = "renewal_period_days"
)

// BranchPolicyProvider is a circulation.PolicyProvider backed by a
// per-branch settings table. Branches without a row fall back to the
// configured default policy, so a fresh deployment works before any
// branch is configured.
type BranchPolicyProvider struct {
	db            adapters.DBAdapter
	tableName     string
	defaultPolicy circulation.Policy
}

// NewBranchPolicyProviderFromPGXPool creates a BranchPolicyProvider using a pgx Pool.
func NewBranchPolicyProviderFromPGXPool(db *pgxpool.Pool, defaultPolicy circulation.Policy) (*BranchPolicyProvider, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildBranchPolicyProvider(adapters.NewPGXAdapter(db), defaultPolicy)
}

// NewBranchPolicyProviderFromSQLDB creates a BranchPolicyProvider using a sql.DB.
func NewBranchPolicyProviderFromSQLDB(db *sql.DB, defaultPolicy circulation.Policy) (*BranchPolicyProvider, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildBranchPolicyProvider(adapters.NewSQLAdapter(db), defaultPolicy)
}

// NewBranchPolicyProviderFromSQLX creates a BranchPolicyProvider using a sqlx.DB.
func NewBranchPolicyProviderFromSQLX(db *sqlx.DB, defaultPolicy circulation.Policy) (*BranchPolicyProvider, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return buildBranchPolicyProvider(adapters.NewSQLXAdapter(db), defaultPolicy)
}

func buildBranchPolicyProvider(db adapters.DBAdapter, defaultPolicy circulation.Policy) (*BranchPolicyProvider, error) {
	if err := defaultPolicy.Validate(); err != nil {
		return nil, err
	}

	return &BranchPolicyProvider{
		db:            db,
		tableName:     defaultBranchPoliciesTableName,
		defaultPolicy: defaultPolicy,
	}, nil
}

// WithTableName overrides the settings table name.
func (p *BranchPolicyProvider) WithTableName(tableName string) (*BranchPolicyProvider, error) {
	if tableName == "" {
		return nil, circulation.ErrEmptyTableName
	}

	clone := *p
	clone.tableName = tableName

	return &clone, nil
}

// PolicyFor implements circulation.PolicyProvider.
func (p *BranchPolicyProvider) PolicyFor(ctx context.Context, branch string) (circulation.Policy, error) {
	var empty circulation.Policy

	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(p.tableName).
		Select(colLoanPeriodDays, colGracePeriodDays, colDailyFineRate, colMaxFine, colMaxRenewals, colRenewalPeriodDays).
		Where(goqu.C(colBranch).Eq(branch)).
		ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := p.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return empty, errors.Join(circulation.ErrQueryingLedgerFailed, queryErr)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return empty, errors.Join(circulation.ErrQueryingLedgerFailed, rowsErr)
		}

		return p.defaultPolicy, nil
	}

	var policy circulation.Policy

	scanErr := rows.Scan(
		&policy.LoanPeriodDays,
		&policy.GracePeriodDays,
		&policy.DailyFineRate,
		&policy.MaxFine,
		&policy.MaxRenewals,
		&policy.RenewalPeriodDays,
	)
	if scanErr != nil {
		return empty, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
	}

	if validateErr := policy.Validate(); validateErr != nil {
		return empty, validateErr
	}

	return policy, nil
}
