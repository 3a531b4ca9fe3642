package pricing

import "errors"

// ErrTableMismatch marks a normalizer/table inconsistency: a request
// reached the engine carrying a key the table does not price. This is a
// programming error, not client input, and callers should treat it as
// fatal for the request.
var ErrTableMismatch = errors.New("pricing: requested key missing from price table")

// InvalidInputError reports malformed or unrecognized client data. Reason
// is machine-readable and safe to return on the wire.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}
