package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/metrics"
	"github.com/hamed0406/weatheralert/internal/weather"
)

// Fetcher returns the current conditions of a city.
type Fetcher interface {
	Current(ctx context.Context, city string) (weather.Conditions, error)
}

// Evaluator turns a reading into an alert outcome.
type Evaluator interface {
	Evaluate(ctx context.Context, temp float64) domain.Outcome
}

// Poller periodically fetches every city and evaluates its temperature.
type Poller struct {
	Logger      *zap.Logger
	Weather     Fetcher
	Engine      Evaluator
	Cities      []string
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
}

func NewPoller(
	logger *zap.Logger,
	fetcher Fetcher,
	engine Evaluator,
	cities []string,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Poller {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		Logger:      logger,
		Weather:     fetcher,
		Engine:      engine,
		Cities:      cities,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	if p.Interval == 0 || len(p.Cities) == 0 {
		p.Logger.Info("poller_disabled")
		return
	}
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("poller_stopped")
			return
		case <-t.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	sem := make(chan struct{}, p.Concurrency)
	var wg sync.WaitGroup

	for _, city := range p.Cities {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			p.pollCity(ctx, city)
		}()
	}

	wg.Wait()
}

func (p *Poller) pollCity(ctx context.Context, city string) {
	fctx, cancel := context.WithTimeout(ctx, p.Timeout)
	cond, err := p.Weather.Current(fctx, city)
	cancel()
	if err != nil {
		metrics.PollFailuresTotal.WithLabelValues(city).Inc()
		p.Logger.Warn("poller_fetch_error", zap.String("city", city), zap.Error(err))
		return
	}

	out := p.Engine.Evaluate(ctx, cond.Temperature)
	p.Logger.Debug("poller_evaluated",
		zap.String("city", city),
		zap.Float64("temperature", cond.Temperature),
		zap.String("status", string(out.Status)),
		zap.String("type", string(out.Condition)),
	)
}
