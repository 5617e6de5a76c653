package envelope

import "errors"

var (
	// ErrMalformedEnvelope is returned when serialized input is not a
	// structurally valid envelope. It is detected before any cryptography
	// runs; in a batch only the offending record is skipped.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrUnsupportedVersion and ErrUnsupportedAlgorithm are always returned
	// wrapped together with ErrMalformedEnvelope.
	ErrUnsupportedVersion   = errors.New("unsupported envelope version")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrMalformedBundle is returned for export files that fail structural
	// checks (format tag, version, entry count, missing integrity value).
	ErrMalformedBundle = errors.New("malformed export bundle")

	// ErrMalformedRecord is returned for recovery records that fail
	// structural checks.
	ErrMalformedRecord = errors.New("malformed recovery record")
)
