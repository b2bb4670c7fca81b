package main

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/alert"
	"github.com/hamed0406/weatheralert/internal/broker"
	"github.com/hamed0406/weatheralert/internal/config"
	"github.com/hamed0406/weatheralert/internal/notify"
	"github.com/hamed0406/weatheralert/internal/repo"
	"github.com/hamed0406/weatheralert/internal/repo/memory"
	"github.com/hamed0406/weatheralert/internal/repo/postgres"
	"github.com/hamed0406/weatheralert/internal/repo/redis"
)

// app holds the long-lived collaborators built from config.
type app struct {
	Engine  *alert.Engine
	MQTT    mqtt.Client
	closers []func() error
}

func (a *app) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	return err
}

type store interface {
	repo.AlertStateStore
	repo.HistoryLog
}

func build(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	if cfg.MQTT.Broker != "" {
		client, err := broker.Connect(broker.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		}, log)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQTT = client
		a.closers = append(a.closers, func() error { client.Disconnect(250); return nil })
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	eng, err := alert.New(engineConfig(cfg, loc), st, st, buildNotifier(cfg, a.MQTT, log), log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Engine = eng
	return a, nil
}

func engineConfig(cfg config.Config, loc *time.Location) alert.Config {
	return alert.Config{
		Thresholds:      alert.Thresholds{Cold: cfg.ColdThreshold, Heat: cfg.HeatThreshold},
		Cooldown:        cfg.Cooldown,
		HistoryWindow:   cfg.HistoryWindow,
		SendTimeout:     cfg.SendTimeout,
		PersistTimeout:  cfg.PersistTimeout,
		PersistAttempts: cfg.PersistAttempts,
		PersistBackoff:  cfg.PersistBackoff,
		Location:        loc,
	}
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store, func() error, error) {
	switch kind := cfg.StoreKind(); kind {
	case config.StoreMemory:
		return memory.New(), nil, nil
	case config.StorePostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.StoreRedis:
		rd, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return rd, rd.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}

// buildNotifier returns every configured channel behind notify.Multi, or
// notify.Disabled when there is none.
func buildNotifier(cfg config.Config, client mqtt.Client, log *zap.Logger) notify.Notifier {
	var ns []notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		ns = append(ns, s)
	}
	if sg := notify.NewSendGrid(notify.SendGridConfig{
		APIKey:  cfg.SendGrid.APIKey,
		From:    cfg.SendGrid.From,
		To:      cfg.SendGrid.To,
		Timeout: cfg.SendTimeout,
	}); sg != nil {
		ns = append(ns, sg)
	}
	if m := notify.NewMQTT(client, cfg.MQTT.AlertTopic); m != nil {
		ns = append(ns, m)
	}

	if len(ns) == 0 {
		log.Warn("notify_no_channel_configured")
		return notify.Disabled{}
	}
	names := make([]string, 0, len(ns))
	for _, n := range ns {
		names = append(names, notify.NameOf(n))
	}
	log.Info("notify_channels", zap.Strings("channels", names))
	return notify.Multi{Notifiers: ns, Log: log}
}
