package alert

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ReadingError is a client-facing rejection of a reading payload.
type ReadingError struct {
	Msg string
}

func (e *ReadingError) Error() string { return e.Msg }

func (e *ReadingError) Is(target error) bool { return target == ErrValidation }

var (
	errEmptyReading   = &ReadingError{Msg: "Please provide temperature data in the request body"}
	errMissingTemp    = &ReadingError{Msg: "Request must include 'temp' field"}
	errInvalidJSON    = &ReadingError{Msg: "Request body must be a JSON object"}
	errInvalidTempVal = &ReadingError{Msg: "'temp' must be a finite number"}
)

// ParseReading decodes a {"temp": ...} payload. The value may be a JSON
// number or a numeric string.
func ParseReading(body []byte) (float64, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return 0, errEmptyReading
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return 0, errInvalidJSON
	}
	raw, ok := payload["temp"]
	if !ok || string(raw) == "null" {
		return 0, errMissingTemp
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errInvalidTempVal
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, errInvalidTempVal
		}
		v = f
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errInvalidTempVal
	}
	return v, nil
}
