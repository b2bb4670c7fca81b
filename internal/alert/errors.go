package alert

import "errors"

// Error classes carried by Outcome.Err. Match with errors.Is.
var (
	// ErrValidation: the reading itself is unusable (client fault).
	ErrValidation = errors.New("invalid reading")
	// ErrLookup: reading the alert state failed. Never confused with absence.
	ErrLookup = errors.New("alert state lookup failed")
	// ErrChannel: the notification was not accepted; nothing was recorded.
	ErrChannel = errors.New("notification send failed")
	// ErrPersistence: the notification went out but recording it failed.
	ErrPersistence = errors.New("alert bookkeeping failed after send")
	// ErrMalformedRecord: a stored history row could not be parsed.
	ErrMalformedRecord = errors.New("malformed history record")
)
