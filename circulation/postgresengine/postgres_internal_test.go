package postgresengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobet1995/library-system/circulation"
	"github.com/jobet1995/library-system/circulation/postgresengine/internal/adapters"
)

// brokenRows yields no rows and reports a driver error after iteration.
type brokenRows struct {
	err error
}

func (r *brokenRows) Next() bool          { return false }
func (r *brokenRows) Scan(_ ...any) error { return nil }
func (r *brokenRows) Close() error        { return nil }
func (r *brokenRows) Err() error          { return r.err }

// brokenRowsTx hands out brokenRows for every query.
type brokenRowsTx struct {
	rowsErr error
}

func (tx *brokenRowsTx) Query(_ context.Context, _ string) (adapters.DBRows, error) {
	return &brokenRows{err: tx.rowsErr}, nil
}

func (tx *brokenRowsTx) Exec(_ context.Context, _ string) (adapters.DBResult, error) {
	return nil, errors.New("unexpected exec")
}

func (tx *brokenRowsTx) Commit(_ context.Context) error   { return nil }
func (tx *brokenRowsTx) Rollback(_ context.Context) error { return nil }

func Test_LockBookRow_SurfacesRowIterationErrors(t *testing.T) {
	// setup
	ledger := &Ledger{tables: defaultTableNames(), clock: time.Now}
	driverErr := errors.New("connection reset by peer")
	tx := &brokenRowsTx{rowsErr: driverErr}

	// act
	err := ledger.lockBookRow(context.Background(), tx, uuid.New())

	// assert
	require.Error(t, err, "a failed row iteration must not pass silently")
	assert.ErrorIs(t, err, circulation.ErrQueryingLedgerFailed, "driver error should surface as a query failure")
	assert.ErrorIs(t, err, driverErr, "the driver error should stay inspectable")
	assert.NotErrorIs(t, err, circulation.ErrBookNotFound, "a driver error must not be reported as a missing book")
}

func Test_ActiveLoanExists_SurfacesRowIterationErrors(t *testing.T) {
	// setup
	ledger := &Ledger{tables: defaultTableNames(), clock: time.Now}
	driverErr := errors.New("connection reset by peer")
	tx := &brokenRowsTx{rowsErr: driverErr}

	// act
	exists, err := ledger.activeLoanExists(context.Background(), tx, uuid.New(), uuid.New())

	// assert
	require.Error(t, err, "a failed row iteration must not pass silently")
	assert.False(t, exists, "no result may be reported on a failed iteration")
	assert.ErrorIs(t, err, circulation.ErrQueryingLedgerFailed, "driver error should surface as a query failure")
	assert.ErrorIs(t, err, driverErr, "the driver error should stay inspectable")
}
