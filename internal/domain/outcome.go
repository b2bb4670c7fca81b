package domain

import "time"

type Status string

const (
	StatusNormal    Status = "normal"
	StatusAlertSent Status = "alert-sent"
	StatusSkipped   Status = "skipped"
	StatusError     Status = "error"
)

// Outcome is the terminal result of evaluating one reading.
type Outcome struct {
	Status      Status        `json:"status"`
	Condition   ConditionType `json:"alertType,omitempty"`
	Temperature float64       `json:"temperature"`
	Message     string        `json:"message,omitempty"`
	EntryID     string        `json:"id,omitempty"`
	NotifiedAt  time.Time     `json:"notifiedAt,omitzero"`

	// Err is the classified cause for StatusError outcomes.
	Err error `json:"-"`
}
