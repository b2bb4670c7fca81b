package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultSendGridURL is the public SendGrid API base.
const DefaultSendGridURL = "https://api.sendgrid.com"

// SendGrid mails alerts through the SendGrid v3 API.
type SendGrid struct {
	http *resty.Client
	from string
	to   string
}

type SendGridConfig struct {
	APIKey  string
	From    string
	To      string
	BaseURL string
	Timeout time.Duration
}

// NewSendGrid returns nil unless key, sender and recipient are all set.
func NewSendGrid(cfg SendGridConfig) *SendGrid {
	if cfg.APIKey == "" || cfg.From == "" || cfg.To == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSendGridURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	// No retries: a resend after an ambiguous failure could mail twice.
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SendGrid{http: client, from: cfg.From, to: cfg.To}
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (s *SendGrid) Name() string { return "sendgrid" }

func (s *SendGrid) Send(ctx context.Context, title, text string) error {
	if s == nil {
		return errors.New("sendgrid disabled")
	}
	mail := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: s.to}}}},
		From:             sgAddress{Email: s.from},
		Subject:          title,
		Content:          []sgContent{{Type: "text/plain", Value: text}},
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(mail).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
