package alert

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator hands out history ids derived from the notification instant:
// 19-digit zero-padded Unix nanoseconds, bumped when the clock repeats or
// steps back so ids strictly increase within a process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *IDGenerator) Next(t time.Time) string {
	n := t.UnixNano()
	g.mu.Lock()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	g.mu.Unlock()
	return fmt.Sprintf("%019d", n)
}

// compareIDs orders numeric ids of different widths numerically and falls
// back to byte order otherwise.
func compareIDs(a, b string) int {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
