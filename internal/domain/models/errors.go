package models

import "errors"

// Sentinel errors surfaced by analysis engines. Callers are expected to
// degrade gracefully on all of them rather than abort a scan.
var (
	// ErrDataUnavailable means the upstream source returned nothing usable.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientHistory means fewer samples are buffered than the
	// computation requires.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrMalformedSample means an ingested sample failed validation and
	// could not be repaired by default substitution.
	ErrMalformedSample = errors.New("malformed sample")

	// ErrPersistenceFailure means a snapshot load or save failed.
	ErrPersistenceFailure = errors.New("persistence failure")
)
