package postgresengine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jobet1995/library-system/circulation"
)

const (
	metricOperationDuration = "circulation_operation_duration"
	metricDatabaseErrors    = "circulation_database_errors_total"
	metricConflictsTotal    = "circulation_concurrency_conflicts_total"

	spanNamePrefix    = "circulation.ledger."
	spanAttrOperation = "operation"
	spanAttrErrorType = "error_type"
	spanAttrStatus    = "status"

	statusSuccess = "success"
	statusError   = "error"

	logMsgSQLExecuted = "sql executed"
)

// logQueryDuration logs executed SQL with its duration at debug level.
func (l *Ledger) logQueryDuration(ctx context.Context, sqlQuery string, start time.Time) {
	duration := time.Since(start)

	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	case l.logger != nil:
		l.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (l *Ledger) logOperation(ctx context.Context, message string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.InfoContext(ctx, message, args...)
	case l.logger != nil:
		l.logger.Info(message, args...)
	}
}

func (l *Ledger) logDebug(ctx context.Context, message string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.DebugContext(ctx, message, args...)
	case l.logger != nil:
		l.logger.Debug(message, args...)
	}
}

func (l *Ledger) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.WarnContext(ctx, message, args...)
	case l.logger != nil:
		l.logger.Warn(message, args...)
	}
}

func (l *Ledger) logError(ctx context.Context, message string, args ...any) {
	switch {
	case l.contextualLogger != nil:
		l.contextualLogger.ErrorContext(ctx, message, args...)
	case l.logger != nil:
		l.logger.Error(message, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// startSpan starts a tracing span if the tracing collector is configured.
func (l *Ledger) startSpan(ctx context.Context, operation string) (context.Context, circulation.SpanContext) {
	if l.tracingCollector == nil {
		return ctx, nil
	}

	return l.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation: operation,
	})
}

func (l *Ledger) finishSpanWithError(span circulation.SpanContext, err error) {
	if l.tracingCollector == nil || span == nil {
		return
	}

	span.SetStatus(statusError)
	l.tracingCollector.FinishSpan(span, statusError, map[string]string{
		spanAttrErrorType: errorType(err),
	})
}

// finishOperation records the duration metric and closes the span for one
// ledger operation, success or failure alike.
func (l *Ledger) finishOperation(
	ctx context.Context,
	span circulation.SpanContext,
	operation string,
	start time.Time,
	err error,
) {
	duration := time.Since(start)

	status := statusSuccess
	if err != nil {
		status = statusError
	}

	l.recordDurationMetric(ctx, operation, status, duration)

	if err != nil {
		l.recordErrorMetric(ctx, operation, errorType(err))

		if errors.Is(err, circulation.ErrConcurrencyConflict) {
			l.incrementCounterMetric(ctx, metricConflictsTotal, map[string]string{spanAttrOperation: operation})
		}

		l.finishSpanWithError(span, err)

		return
	}

	if l.tracingCollector != nil && span != nil {
		span.SetStatus(statusSuccess)
		l.tracingCollector.FinishSpan(span, statusSuccess, map[string]string{spanAttrStatus: statusSuccess})
	}
}

func (l *Ledger) recordDurationMetric(ctx context.Context, operation, status string, duration time.Duration) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextual, ok := l.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	l.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func (l *Ledger) recordErrorMetric(ctx context.Context, operation, errType string) {
	l.incrementCounterMetric(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    statusError,
		spanAttrErrorType: errType,
	})
}

func (l *Ledger) incrementCounterMetric(ctx context.Context, metricName string, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextual, ok := l.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricName, labels)
		return
	}

	l.metricsCollector.IncrementCounter(metricName, labels)
}

// errorType maps well-known sentinel errors to stable metric label values.
func errorType(err error) string {
	switch {
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, circulation.ErrNoCopiesAvailable):
		return "no_copies_available"
	case errors.Is(err, circulation.ErrActiveLoanExists):
		return "active_loan_exists"
	case errors.Is(err, circulation.ErrBookNotFound),
		errors.Is(err, circulation.ErrLoanNotFound),
		errors.Is(err, circulation.ErrFineNotFound),
		errors.Is(err, circulation.ErrBorrowerNotFound):
		return "not_found"
	case errors.Is(err, circulation.ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, circulation.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, circulation.ErrRenewalLimitExceeded):
		return "renewal_limit_exceeded"
	default:
		return "database_error"
	}
}
