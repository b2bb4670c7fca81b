package alert

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hamed0406/weatheralert/internal/domain"
)

// Message renders the notification subject and body for a condition.
func Message(c domain.ConditionType, temp float64, th Thresholds) (title, text string) {
	title = "Weather Alert: " + c.Title() + " Condition Detected"
	if c == domain.Cold {
		text = fmt.Sprintf("Cold alert: Temperature has dropped to %s°C, which is below the threshold of %s°C.",
			formatTemp(temp), formatTemp(th.Cold))
		return title, text
	}
	text = fmt.Sprintf("Heat alert: Temperature has risen to %s°C, which is above the threshold of %s°C.",
		formatTemp(temp), formatTemp(th.Heat))
	return title, text
}

// formatTemp keeps one decimal for whole numbers (5 -> "5.0").
func formatTemp(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
