// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/weatheralert/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
	}
	ok(fmt.Sprintf("thresholds cold<%v heat>%v, cooldown %v", cfg.ColdThreshold, cfg.HeatThreshold, cfg.Cooldown))

	// Normalize and sanity-check lists (no spaces around commas).
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; anyone can post readings.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured; read routes are open.")
	}

	ok("API_ADDR=" + cfg.Addr)
	ok("store=" + cfg.StoreKind())

	channels := 0
	if cfg.SlackWebhookURL != "" {
		channels++
		ok("Slack webhook present")
	}
	if cfg.SendGrid.APIKey != "" {
		channels++
		ok("SendGrid mail to " + cfg.SendGrid.To)
	}
	if cfg.MQTT.Broker != "" {
		channels++
		ok("MQTT broker " + cfg.MQTT.Broker + " topic " + cfg.MQTT.AlertTopic)
	}
	if channels == 0 {
		warn("no notification channel configured; every alert will fail to send.")
	}

	if cfg.OpenWeather.APIKey == "" {
		warn("OPENWEATHER_API_KEY empty; /weather and the poller are disabled.")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	ok("preflight passed")
}
