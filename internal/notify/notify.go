package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers one human-readable alert. A nil error means the
// transport confirmed it accepted the message.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// ErrNoChannel is returned by Disabled.
var ErrNoChannel = errors.New("no notification channel configured")

// Disabled rejects every message. Used when nothing is configured so alerts
// surface as send failures instead of being recorded as delivered.
type Disabled struct{}

func (Disabled) Send(context.Context, string, string) error { return ErrNoChannel }

func (Disabled) Name() string { return "disabled" }

// Multi fans a message out to every notifier. It succeeds when at least one
// of them accepted the message; failures of the others are logged.
type Multi struct {
	Notifiers []Notifier
	Log       *zap.Logger
}

func (m Multi) Send(ctx context.Context, title, text string) error {
	var (
		errs     error
		accepted int
	)
	for _, n := range m.Notifiers {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", NameOf(n), err))
			continue
		}
		accepted++
	}
	if accepted > 0 {
		if errs != nil && m.Log != nil {
			m.Log.Warn("notify_partial_failure", zap.Int("accepted", accepted), zap.Error(errs))
		}
		return nil
	}
	if errs == nil {
		return ErrNoChannel
	}
	return errs
}

func (m Multi) Name() string { return "multi" }

// NameOf returns the channel label of n for logs and metrics.
func NameOf(n Notifier) string {
	if named, ok := n.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n)
}
