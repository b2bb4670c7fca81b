// Package weather fetches current conditions from OpenWeather.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("weather: no OpenWeather API key configured")

// Conditions is the subset of the current-weather payload the service uses.
type Conditions struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"` // °C
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Wind        float64 `json:"wind"` // m/s
}

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

type Client struct {
	http   *resty.Client
	apiKey string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(300 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: client, apiKey: cfg.APIKey}
}

func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

type owmResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  int      `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current returns the current conditions for city in metric units.
func (c *Client) Current(ctx context.Context, city string) (Conditions, error) {
	if !c.Configured() {
		return Conditions{}, ErrNotConfigured
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return Conditions{}, errors.New("weather: city is required")
	}

	var body owmResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"units": "metric",
			"appid": c.apiKey,
		}).
		SetResult(&body).
		Get("/data/2.5/weather")
	if err != nil {
		return Conditions{}, fmt.Errorf("weather request: %w", err)
	}
	if !resp.IsSuccess() {
		return Conditions{}, fmt.Errorf("weather api status %d", resp.StatusCode())
	}
	if body.Main.Temp == nil {
		return Conditions{}, errors.New("weather api: response has no temperature")
	}

	out := Conditions{
		City:        body.Name,
		Temperature: *body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Wind:        body.Wind.Speed,
	}
	if out.City == "" {
		out.City = city
	}
	if len(body.Weather) > 0 {
		out.Description = body.Weather[0].Description
		out.Icon = body.Weather[0].Icon
	}
	return out, nil
}
