package broker

import (
	"testing"
	"time"
)

func TestClientOptions(t *testing.T) {
	opts := ClientOptions(Options{
		Broker:   "tcp://localhost:1883",
		ClientID: "weatheralert-test",
		Username: "u",
		Password: "p",
	}, nil)

	if len(opts.Servers) != 1 || opts.Servers[0].Host != "localhost:1883" {
		t.Fatalf("servers=%v", opts.Servers)
	}
	if opts.ClientID != "weatheralert-test" || opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("credentials not applied: %+v", opts)
	}
	if opts.Order {
		t.Fatalf("handlers should run unordered")
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Fatalf("expected auto reconnect and clean session")
	}
}

func TestConnect_RequiresBroker(t *testing.T) {
	if _, err := Connect(Options{ConnectTimeout: time.Millisecond}, nil); err == nil {
		t.Fatalf("want error for empty broker")
	}
}
