package alert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/metrics"
	"github.com/hamed0406/weatheralert/internal/notify"
	"github.com/hamed0406/weatheralert/internal/repo"
	"github.com/hamed0406/weatheralert/internal/retry"
)

const (
	DefaultSendTimeout    = 10 * time.Second
	DefaultPersistTimeout = 5 * time.Second
	DefaultPersistBackoff = 200 * time.Millisecond
)

// Config is the immutable policy of an Engine.
type Config struct {
	Thresholds     Thresholds
	Cooldown       time.Duration
	HistoryWindow  time.Duration
	SendTimeout    time.Duration
	PersistTimeout time.Duration
	// PersistAttempts > 1 retries the commit after a successful send. Every
	// attempt reuses the same id and instant, so stores dedupe it.
	PersistAttempts int
	PersistBackoff  time.Duration
	// Location renders HistoryEntry.FormattedTime.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		Thresholds:      DefaultThresholds(),
		Cooldown:        DefaultCooldown,
		HistoryWindow:   DefaultHistoryWindow,
		SendTimeout:     DefaultSendTimeout,
		PersistTimeout:  DefaultPersistTimeout,
		PersistAttempts: 1,
		PersistBackoff:  DefaultPersistBackoff,
		Location:        time.UTC,
	}
}

// Engine decides, per reading, whether to notify and records what it sent.
type Engine struct {
	cfg     Config
	states  repo.AlertStateStore
	history repo.HistoryLog
	channel notify.Notifier
	log     *zap.Logger
	now     func() time.Time
	ids     *IDGenerator
	// one slot per condition; held from the state read to the commit
	locks map[domain.ConditionType]chan struct{}
}

type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(g *IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

func New(cfg Config, states repo.AlertStateStore, history repo.HistoryLog, n notify.Notifier, log *zap.Logger, opts ...Option) (*Engine, error) {
	if states == nil || history == nil {
		return nil, errors.New("alert: state store and history log are required")
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("alert: %w", err)
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("alert: negative cooldown %v", cfg.Cooldown)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if cfg.PersistAttempts < 1 {
		cfg.PersistAttempts = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if n == nil {
		n = notify.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		cfg:     cfg,
		states:  states,
		history: history,
		channel: n,
		log:     log,
		now:     time.Now,
		ids:     &IDGenerator{},
		locks:   make(map[domain.ConditionType]chan struct{}, len(domain.Conditions)),
	}
	for _, c := range domain.Conditions {
		e.locks[c] = make(chan struct{}, 1)
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Evaluate classifies temp and, for a cold or heat reading outside its
// cooldown, sends a notification and then records it. State and history
// are only written after the channel accepted the message.
func (e *Engine) Evaluate(ctx context.Context, temp float64) domain.Outcome {
	if math.IsNaN(temp) || math.IsInf(temp, 0) {
		return e.finish(domain.Outcome{
			Status:      domain.StatusError,
			Temperature: temp,
			Message:     "temperature must be a finite number",
			Err:         fmt.Errorf("%w: temperature %v", ErrValidation, temp),
		})
	}

	c, alerting := e.cfg.Thresholds.Classify(temp)
	if !alerting {
		return e.finish(domain.Outcome{
			Status:      domain.StatusNormal,
			Temperature: temp,
			Message:     "Temperature is within normal range",
		})
	}

	unlock, err := e.lock(ctx, c)
	if err != nil {
		return e.finish(errorOutcome(c, temp, "evaluation cancelled", err))
	}
	defer unlock()

	prev, err := e.states.Get(ctx, c)
	if err != nil {
		return e.finish(errorOutcome(c, temp, "failed to read alert state",
			fmt.Errorf("%w: %v", ErrLookup, err)))
	}

	now := e.now().UTC()
	var last *time.Time
	if prev != nil {
		last = &prev.LastNotifiedAt
	}
	if !ShouldNotify(now, last, e.cfg.Cooldown) {
		return e.finish(domain.Outcome{
			Status:      domain.StatusSkipped,
			Condition:   c,
			Temperature: temp,
			Message:     "Alert skipped due to cooldown period",
		})
	}

	if err := e.send(ctx, c, temp); err != nil {
		return e.finish(errorOutcome(c, temp, "Failed to send alert notification",
			fmt.Errorf("%w: %v", ErrChannel, err)))
	}

	entry := domain.HistoryEntry{
		ID:            e.ids.Next(now),
		Condition:     c,
		Temperature:   temp,
		NotifiedAt:    now,
		FormattedTime: now.In(e.cfg.Location).Format(DisplayLayout),
	}
	if err := e.commit(ctx, entry); err != nil {
		metrics.PersistFailuresTotal.Inc()
		return e.finish(errorOutcome(c, temp,
			"alert notification was sent but recording it failed: "+err.Error(),
			fmt.Errorf("%w: %v", ErrPersistence, err)))
	}

	return e.finish(domain.Outcome{
		Status:      domain.StatusAlertSent,
		Condition:   c,
		Temperature: temp,
		EntryID:     entry.ID,
		NotifiedAt:  entry.NotifiedAt,
	})
}

func (e *Engine) lock(ctx context.Context, c domain.ConditionType) (func(), error) {
	slot := e.locks[c]
	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) send(ctx context.Context, c domain.ConditionType, temp float64) error {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	defer cancel()

	title, text := Message(c, temp, e.cfg.Thresholds)
	start := time.Now()
	err := e.channel.Send(sctx, title, text)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

// commit writes state then history. It is detached from ctx cancellation:
// once the message is out, a caller hanging up must not drop the record.
func (e *Engine) commit(ctx context.Context, entry domain.HistoryEntry) error {
	state := domain.AlertState{
		Condition:       entry.Condition,
		LastNotifiedAt:  entry.NotifiedAt,
		LastTemperature: entry.Temperature,
	}
	return retry.Do(context.WithoutCancel(ctx), e.cfg.PersistAttempts, e.cfg.PersistBackoff, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, e.cfg.PersistTimeout)
		defer cancel()
		if err := e.states.Upsert(pctx, state); err != nil {
			return fmt.Errorf("upsert alert state: %w", err)
		}
		if err := e.history.Append(pctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
}

func errorOutcome(c domain.ConditionType, temp float64, msg string, err error) domain.Outcome {
	return domain.Outcome{
		Status:      domain.StatusError,
		Condition:   c,
		Temperature: temp,
		Message:     msg,
		Err:         err,
	}
}

func (e *Engine) finish(o domain.Outcome) domain.Outcome {
	metrics.EvaluationsTotal.WithLabelValues(string(o.Status), string(o.Condition)).Inc()

	fields := []zap.Field{
		zap.String("type", string(o.Condition)),
		zap.Float64("temperature", o.Temperature),
	}
	switch o.Status {
	case domain.StatusAlertSent:
		e.log.Info("alert_sent", append(fields, zap.String("id", o.EntryID))...)
	case domain.StatusSkipped:
		e.log.Info("alert_skipped", fields...)
	case domain.StatusNormal:
		e.log.Debug("reading_normal", fields...)
	case domain.StatusError:
		fields = append(fields, zap.Error(o.Err))
		switch {
		case errors.Is(o.Err, ErrChannel):
			e.log.Error("alert_send_failed", fields...)
		case errors.Is(o.Err, ErrPersistence):
			e.log.Error("alert_persist_failed", fields...)
		case errors.Is(o.Err, ErrLookup):
			e.log.Error("alert_lookup_failed", fields...)
		default:
			e.log.Warn("alert_evaluation_failed", fields...)
		}
	}
	return o
}

// History returns the entries of the configured window, newest first.
func (e *Engine) History(ctx context.Context) (HistoryResult, error) {
	return e.HistorySince(ctx, e.now().Add(-e.cfg.HistoryWindow))
}

// HistorySince returns every entry notified at or after start, newest
// first. Malformed rows are reported in Skipped, not returned as an error.
func (e *Engine) HistorySince(ctx context.Context, start time.Time) (HistoryResult, error) {
	records, err := e.history.ListSince(ctx, start)
	if err != nil {
		return HistoryResult{}, fmt.Errorf("list history: %w", err)
	}
	res := BuildHistory(records, start, e.cfg.Location)
	for _, s := range res.Skipped {
		metrics.HistorySkippedRecords.Inc()
		e.log.Warn("history_record_skipped", zap.String("id", s.ID), zap.Error(s.Reason))
	}
	return res, nil
}
