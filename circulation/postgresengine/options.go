package postgresengine

import (
	"time"

	"github.com/jobet1995/library-system/circulation"
)

// TableNames holds the names of the tables the borrowing engine touches.
// The books table is owned by the catalog subsystem; the engine only
// reads and adjusts its copy counters.
type TableNames struct {
	Books   string
	Loans   string
	Fines   string
	Journal string
}

func defaultTableNames() TableNames {
	return TableNames{
		Books:   defaultBooksTableName,
		Loans:   defaultLoansTableName,
		Fines:   defaultFinesTableName,
		Journal: defaultJournalTableName,
	}
}

// Option defines a functional option for configuring the Ledger.
type Option func(*Ledger) error

// WithTableNames overrides the default table names.
func WithTableNames(tables TableNames) Option {
	return func(l *Ledger) error {
		if tables.Books == "" || tables.Loans == "" || tables.Fines == "" || tables.Journal == "" {
			return circulation.ErrEmptyTableName
		}

		l.tables = tables

		return nil
	}
}

// WithLogger sets the logger for the Ledger.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: operation outcomes, durations, concurrency conflicts (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger circulation.Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Ledger.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(l *Ledger) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Ledger.
// The collector will receive operation durations, outcome counters,
// concurrency conflicts, and database errors.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(l *Ledger) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Ledger.
// The collector will receive span creation for every borrowing operation,
// context propagation, and error tracking.
func WithTracing(collector circulation.TracingCollector) Option {
	return func(l *Ledger) error {
		l.tracingCollector = collector
		return nil
	}
}

// WithPolicyProvider sets the lending policy provider.
// Defaults to a static provider serving circulation.DefaultPolicy.
func WithPolicyProvider(provider circulation.PolicyProvider) Option {
	return func(l *Ledger) error {
		l.policies = provider
		return nil
	}
}

// WithIdentityProvider sets the borrower existence check.
// Without one, borrower IDs are treated as opaque and not verified.
func WithIdentityProvider(provider circulation.IdentityProvider) Option {
	return func(l *Ledger) error {
		l.identity = provider
		return nil
	}
}

// WithClock overrides the time source used for default borrow, return and
// payment dates. Tests use this to supply deterministic dates.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) error {
		l.clock = clock
		return nil
	}
}
