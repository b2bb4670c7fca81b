package alert

import "time"

const DefaultCooldown = 3 * time.Hour

// ShouldNotify reports whether a new notification is allowed. No previous
// notification (last == nil) always allows one.
func ShouldNotify(now time.Time, last *time.Time, cooldown time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= cooldown
}
