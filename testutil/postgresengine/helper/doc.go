// Package helper provides test utilities for the borrowing ledger:
// observability spies (log handler, metrics collector, tracing collector)
// and small fixture helpers for dates and ids.
package helper
