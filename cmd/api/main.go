package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/config"
	"github.com/hamed0406/weatheralert/internal/httpapi"
	apimw "github.com/hamed0406/weatheralert/internal/httpapi/middleware"
	"github.com/hamed0406/weatheralert/internal/ingest"
	"github.com/hamed0406/weatheralert/internal/logging"
	"github.com/hamed0406/weatheralert/internal/scheduler"
	"github.com/hamed0406/weatheralert/internal/weather"
)

var (
	configPath string
	addr       string

	rootCmd = &cobra.Command{
		Use:          "weatheralert-api",
		Short:        "Serve temperature alerts, history and current weather",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return run(ctx, cfg)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file (env vars override it)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides API_ADDR")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	wc := weather.New(weather.Config{
		APIKey:     cfg.OpenWeather.APIKey,
		BaseURL:    cfg.OpenWeather.BaseURL,
		Timeout:    10 * time.Second,
		RetryCount: 2,
	})

	poller := scheduler.NewPoller(logger, wc, app.Engine, cfg.WeatherCities, cfg.PollInterval, 15*time.Second, 4)
	if wc.Configured() {
		go poller.Run(ctx)
	} else if cfg.PollInterval > 0 {
		logger.Warn("poller_needs_openweather_key")
	}

	if app.MQTT != nil && cfg.MQTT.ReadingsTopic != "" {
		sub := ingest.NewMQTTSubscriber(app.MQTT, cfg.MQTT.ReadingsTopic, app.Engine, logger)
		if err := sub.Start(ctx); err != nil {
			return err
		}
		defer sub.Stop()
	}

	city := ""
	if len(cfg.WeatherCities) > 0 {
		city = cfg.WeatherCities[0]
	}
	api := httpapi.NewServer(logger, app.Engine, wc, city)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreKind()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("api_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
