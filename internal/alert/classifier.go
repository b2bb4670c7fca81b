package alert

import (
	"fmt"
	"math"

	"github.com/hamed0406/weatheralert/internal/domain"
)

const (
	DefaultColdThreshold = 10.0
	DefaultHeatThreshold = 20.0
)

// Thresholds bound the normal band. Readings strictly below Cold or strictly
// above Heat raise a condition; the boundaries themselves are normal.
type Thresholds struct {
	Cold float64 `yaml:"cold"`
	Heat float64 `yaml:"heat"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Cold: DefaultColdThreshold, Heat: DefaultHeatThreshold}
}

func (t Thresholds) Validate() error {
	if math.IsNaN(t.Cold) || math.IsInf(t.Cold, 0) || math.IsNaN(t.Heat) || math.IsInf(t.Heat, 0) {
		return fmt.Errorf("thresholds must be finite (cold=%v heat=%v)", t.Cold, t.Heat)
	}
	if t.Cold >= t.Heat {
		return fmt.Errorf("cold threshold %v must be below heat threshold %v", t.Cold, t.Heat)
	}
	return nil
}

// Classify returns the condition for temp, or ok=false when it is normal.
func (t Thresholds) Classify(temp float64) (c domain.ConditionType, ok bool) {
	switch {
	case temp < t.Cold:
		return domain.Cold, true
	case temp > t.Heat:
		return domain.Heat, true
	default:
		return "", false
	}
}

// For returns the threshold a condition was measured against.
func (t Thresholds) For(c domain.ConditionType) float64 {
	if c == domain.Cold {
		return t.Cold
	}
	return t.Heat
}
