// Package mqtt is the pub/sub transport adapter: it subscribes to a broker
// with a wildcard filter and feeds every message into the cache's ingest
// boundary. The core never sees MQTT types.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type Config struct {
	Broker string
	Filter string
}

// OnEvent is the ingest boundary: one call per received message, any order,
// any concurrency level.
type OnEvent func(topic string, payload []byte, at time.Time)

// Start connects to the broker and subscribes. The subscription is
// re-established from the connect handler so it survives reconnects.
// Returns once the initial connection attempt resolves; the paho client
// keeps retrying afterwards on its own.
func Start(ctx context.Context, cfg Config, onEvent OnEvent) error {
	if cfg.Filter == "" {
		cfg.Filter = "#"
	}

	handler := func(_ paho.Client, msg paho.Message) {
		onEvent(msg.Topic(), msg.Payload(), time.Now())
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("zenwatch-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	opts.OnConnect = func(c paho.Client) {
		slog.Info("mqtt connected, subscribing", "broker", cfg.Broker, "filter", cfg.Filter)
		token := c.Subscribe(cfg.Filter, 0, handler)
		go func() {
			token.Wait()
			if err := token.Error(); err != nil {
				slog.Error("mqtt subscribe failed", "filter", cfg.Filter, "error", err)
			}
		}()
	}

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		slog.Warn("mqtt connection lost, reconnecting", "error", err)
	}

	client := paho.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		// SetConnectRetry keeps trying in the background
		slog.Warn("mqtt broker not reachable yet, retrying in background", "broker", cfg.Broker)
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
	}()

	return nil
}
