package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/alert"
	"github.com/hamed0406/weatheralert/internal/domain"
	apimw "github.com/hamed0406/weatheralert/internal/httpapi/middleware"
	"github.com/hamed0406/weatheralert/internal/weather"
)

const (
	maxBody       = 64 << 10
	maxDays       = 90
	skippedHeader = "X-Skipped-Records"
)

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Status: string(domain.StatusError), Message: msg})
}

// statusFor maps an outcome to its HTTP status.
func statusFor(o domain.Outcome) int {
	if o.Status != domain.StatusError {
		return http.StatusOK
	}
	if errors.Is(o.Err, alert.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	temp, err := alert.ParseReading(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := s.Alerts.Evaluate(r.Context(), temp)
	if out.Status == domain.StatusError {
		writeError(w, statusFor(out), out.Message)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var (
		res alert.HistoryResult
		err error
	)
	if v := r.URL.Query().Get("days"); v != "" {
		days, perr := strconv.Atoi(v)
		if perr != nil || days < 1 || days > maxDays {
			writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 90")
			return
		}
		res, err = s.Alerts.HistorySince(r.Context(), s.Now().Add(-time.Duration(days)*24*time.Hour))
	} else {
		res, err = s.Alerts.History(r.Context())
	}
	if err != nil {
		s.Logger.Error("history_query_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load alert history")
		return
	}

	if n := len(res.Skipped); n > 0 {
		w.Header().Set(skippedHeader, strconv.Itoa(n))
	}
	entries := res.Entries
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type weatherResponse struct {
	Weather weather.Conditions `json:"weather"`
	// Alert is only set for admin callers; evaluating can send a notification.
	Alert *domain.Outcome `json:"alert,omitempty"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.Weather == nil || !s.Weather.Configured() {
		writeError(w, http.StatusServiceUnavailable, "weather lookups are not configured")
		return
	}
	city := r.URL.Query().Get("city")
	if city == "" {
		city = s.DefaultCity
	}

	cond, err := s.Weather.Current(r.Context(), city)
	if err != nil {
		s.Logger.Warn("weather_fetch_failed", zap.String("city", city), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to fetch weather data")
		return
	}

	resp := weatherResponse{Weather: cond}
	if apimw.IsAdmin(s.keys, r) {
		out := s.Alerts.Evaluate(r.Context(), cond.Temperature)
		resp.Alert = &out
	}
	writeJSON(w, http.StatusOK, resp)
}
