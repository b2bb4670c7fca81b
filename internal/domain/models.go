package domain

import (
	"fmt"
	"strings"
	"time"
)

// ConditionType is the classification of a reading that is eligible for a
// notification. A reading inside the normal band has no condition.
type ConditionType string

const (
	Cold ConditionType = "cold"
	Heat ConditionType = "heat"
)

// Conditions lists every condition type, in a fixed order.
var Conditions = []ConditionType{Cold, Heat}

func (c ConditionType) Valid() bool {
	return c == Cold || c == Heat
}

// Title is the capitalized form used in notification subjects.
func (c ConditionType) Title() string {
	switch c {
	case Cold:
		return "Cold"
	case Heat:
		return "Heat"
	}
	return string(c)
}

func ParseConditionType(s string) (ConditionType, error) {
	c := ConditionType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown condition type %q", s)
	}
	return c, nil
}

// AlertState is the bookkeeping for the last notification of one condition.
type AlertState struct {
	Condition       ConditionType `json:"type"`
	LastNotifiedAt  time.Time     `json:"last_notified_at"`
	LastTemperature float64       `json:"last_temperature"`
}

// HistoryEntry is the immutable record of one sent notification.
type HistoryEntry struct {
	ID            string        `json:"id"`
	Condition     ConditionType `json:"type"`
	Temperature   float64       `json:"temperature"`
	NotifiedAt    time.Time     `json:"timestamp"`
	FormattedTime string        `json:"formattedTime"`
}
