package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/alert"
	"github.com/hamed0406/weatheralert/internal/domain"
	apimw "github.com/hamed0406/weatheralert/internal/httpapi/middleware"
	"github.com/hamed0406/weatheralert/internal/weather"
)

// AlertService is the part of *alert.Engine the API serves.
type AlertService interface {
	Evaluate(ctx context.Context, temp float64) domain.Outcome
	History(ctx context.Context) (alert.HistoryResult, error)
	HistorySince(ctx context.Context, start time.Time) (alert.HistoryResult, error)
}

// WeatherService fetches current conditions.
type WeatherService interface {
	Configured() bool
	Current(ctx context.Context, city string) (weather.Conditions, error)
}

type Server struct {
	Logger      *zap.Logger
	Alerts      AlertService
	Weather     WeatherService
	DefaultCity string
	Now         func() time.Time

	keys apimw.Keys
}

func NewServer(l *zap.Logger, alerts AlertService, w WeatherService, defaultCity string) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	if defaultCity == "" {
		defaultCity = "Montreal"
	}
	return &Server{Logger: l, Alerts: alerts, Weather: w, DefaultCity: defaultCity, Now: time.Now}
}

// Router wires the routes. Reads need a public or admin key, anything that
// can send an alert needs an admin key. Zero rpm disables a rate limit.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	s.keys = keys
	r := chi.NewRouter()
	r.Use(apimw.RequestLog(s.Logger))
	r.Use(apimw.Recovery(s.Logger))
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/weather-alert-history", s.handleHistory)
		r.Get("/weather", s.handleWeather)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/weather-alert", s.handleAlert)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{apimw.RequestIDHeader, skippedHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
