package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/lifedash/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

// Notifier delivers a reminder. Delivery is fire-and-forget: a failure is
// logged by the caller and never affects the ledger.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	log.WithFields(log.Fields{
		"rule": r.RuleID,
		"kind": r.Kind,
	}).Infof("reminder: %s - %s", r.Title, r.Body)
	return nil
}

// RedisNotifier publishes reminders as JSON on a pub/sub channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{
		rdb:     rdb,
		channel: channel,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, r Reminder) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "notifier.redis.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}

// WebhookNotifier POSTs reminders as JSON to a URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, httpClient *http.Client) *WebhookNotifier {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: httpClient,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, r Reminder) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// MultiNotifier fans out to every notifier and combines their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, r Reminder) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, r))
	}
	return err
}
