package model

import "errors"

var (
	// ErrEmptyInput is returned for blank claims, before any lookup
	ErrEmptyInput = errors.New("empty claim")

	// ErrSourceUnavailable marks a transport or auth failure of the primary source
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEnrichmentFailed marks an enrichment that exhausted its retry budget
	ErrEnrichmentFailed = errors.New("enrichment failed")

	// ErrMalformedEnrichmentPayload marks a classifier reply that is not the expected JSON object.
	// It is retried like any transient enrichment failure.
	ErrMalformedEnrichmentPayload = errors.New("malformed enrichment payload")
)
