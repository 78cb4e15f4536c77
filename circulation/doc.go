// Package circulation contains the core domain of the borrowing/fines
// subsystem: the loan and fine ledger entities, the lending policy and the
// pure fine computation, the borrowing service contract, and the typed
// errors every engine implementation must surface.
//
// The package is storage-agnostic and dependency-free towards observability:
// logging, metrics and tracing are expressed as small interfaces that
// callers implement with their backend of choice.
package circulation
