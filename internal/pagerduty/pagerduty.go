// Package pagerduty sends trigger and resolve events to the PagerDuty
// Events API v2 enqueue endpoint.
//
// The routing key is resolved once at construction from a secrets.Store and
// never refreshed. A client whose key failed to resolve stays usable: every
// call logs the problem and reports failure instead of touching the network.
// No error values cross the public surface; alerting must not become its own
// source of cascading failures.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/pagerelay/internal/secrets"
)

const (
	// EventsAPIURL is the fixed Events API v2 enqueue endpoint.
	EventsAPIURL = "https://events.pagerduty.com/v2/enqueue"

	// DefaultRoutingKeySecret names the secret holding the service routing key.
	DefaultRoutingKeySecret = "PAGERDUTY_ROUTING_KEY"

	// AlertRoutingKeySecret names the secret holding the routing key for
	// validation-failure alerts, used by NewAlertClient.
	AlertRoutingKeySecret = "PAGERDUTY_VALIDATION_ALERTS_ROUTING_KEY"

	// DefaultSource identifies the affected system when the caller gives none.
	DefaultSource = "mai-service"

	// DefaultSeverity applies when the caller gives no severity.
	DefaultSeverity = "error"
)

// Severity values documented by the Events API. Trigger forwards whatever
// string it is given; these constants exist for callers, not validation.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Event actions accepted by the enqueue endpoint.
const (
	ActionTrigger = "trigger"
	ActionResolve = "resolve"
)

const (
	httpTimeout    = 10 * time.Second
	maxErrBodyLen  = 512
	maxRespBodyLen = 64 * 1024
)

var errNoRoutingKey = xerrors.New("routing key not resolved")

// Event is the Events API v2 enqueue request body.
type Event struct {
	RoutingKey  string   `json:"routing_key"`
	EventAction string   `json:"event_action"`
	DedupKey    string   `json:"dedup_key,omitempty"`
	Payload     *Payload `json:"payload,omitempty"`
}

// Payload carries the incident details of a trigger event. Resolve events
// include it only when a summary is given.
type Payload struct {
	Summary       string         `json:"summary"`
	Severity      string         `json:"severity,omitempty"`
	Source        string         `json:"source,omitempty"`
	CustomDetails map[string]any `json:"custom_details,omitempty"`
}

// Config controls client construction. Project is required; zero fields fall
// back to the package defaults above.
type Config struct {
	Project          string
	RoutingKeySecret string
	Endpoint         string
	Source           string
}

// Client posts incident events to PagerDuty. Immutable after construction
// and safe for concurrent use.
type Client struct {
	endpoint   string
	source     string
	routingKey string
	client     *http.Client
	logger     log.Logger
}

// New resolves the routing key from store and returns a ready client.
// Resolution failures are logged, never returned: the resulting client
// degrades to one whose calls all report failure without a network attempt.
func New(ctx context.Context, store secrets.Store, cfg Config, logger log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}

	secret := cfg.RoutingKeySecret
	if secret == "" {
		secret = DefaultRoutingKeySecret
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = EventsAPIURL
	}
	source := cfg.Source
	if source == "" {
		source = DefaultSource
	}

	c := &Client{
		endpoint: endpoint,
		source:   source,
		client:   &http.Client{Timeout: httpTimeout},
		logger:   logger,
	}

	key, err := store.AccessLatest(ctx, cfg.Project, secret)
	if err != nil {
		logger.Error(ctx, err, "failed to resolve pagerduty routing key",
			"project", cfg.Project, "secret", secret)
		return c
	}
	c.routingKey = strings.TrimSpace(key)
	return c
}

// NewAlertClient returns a client preconfigured with the validation-alerts
// routing key secret. Only the secret name differs from New.
func NewAlertClient(ctx context.Context, store secrets.Store, project string, logger log.Logger) *Client {
	return New(ctx, store, Config{
		Project:          project,
		RoutingKeySecret: AlertRoutingKeySecret,
	}, logger)
}

// Ready reports whether the routing key resolved at construction. A client
// that is not ready never makes network calls.
func (c *Client) Ready() bool {
	return c.routingKey != ""
}

// TriggerOptions are the optional fields of a trigger event.
type TriggerOptions struct {
	Severity      string // defaults to DefaultSeverity
	Source        string // defaults to the client's configured source
	CustomDetails map[string]any
	DedupKey      string
}

// Trigger opens (or re-triggers, when DedupKey matches an open incident) a
// PagerDuty incident. It returns the correlation key and true on success:
// the vendor-echoed dedup_key when present, else the DedupKey passed in.
// On any failure it logs and returns ("", false).
func (c *Client) Trigger(ctx context.Context, summary string, opts TriggerOptions) (string, bool) {
	if !c.Ready() {
		c.logger.Error(ctx, errNoRoutingKey, "cannot trigger incident", "summary", summary)
		return "", false
	}

	severity := opts.Severity
	if severity == "" {
		severity = DefaultSeverity
	}
	source := opts.Source
	if source == "" {
		source = c.source
	}

	ev := Event{
		RoutingKey:  c.routingKey,
		EventAction: ActionTrigger,
		DedupKey:    opts.DedupKey,
		Payload: &Payload{
			Summary:       summary,
			Severity:      severity,
			Source:        source,
			CustomDetails: opts.CustomDetails,
		},
	}

	body, err := c.post(ctx, &ev)
	if err != nil {
		c.logger.Error(ctx, err, "failed to trigger incident", "dedup_key", opts.DedupKey)
		return "", false
	}

	// Prefer the key the vendor assigned; fall back to the caller's so a
	// usable correlation key comes back whenever one was supplied.
	key := opts.DedupKey
	var resp struct {
		DedupKey string `json:"dedup_key"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.DedupKey != "" {
		key = resp.DedupKey
	}

	c.logger.Info(ctx, "incident triggered", "dedup_key", key, "severity", severity)
	return key, true
}

// Resolve closes the incident identified by dedupKey. summary is optional
// and, when non-empty, is sent as the resolution message. Returns true iff
// the events API accepted the event.
func (c *Client) Resolve(ctx context.Context, dedupKey, summary string) bool {
	if !c.Ready() {
		c.logger.Error(ctx, errNoRoutingKey, "cannot resolve incident", "dedup_key", dedupKey)
		return false
	}
	if dedupKey == "" {
		c.logger.Error(ctx, xerrors.New("dedup key is required"), "cannot resolve incident")
		return false
	}

	ev := Event{
		RoutingKey:  c.routingKey,
		EventAction: ActionResolve,
		DedupKey:    dedupKey,
	}
	if summary != "" {
		ev.Payload = &Payload{Summary: summary}
	}

	if _, err := c.post(ctx, &ev); err != nil {
		c.logger.Error(ctx, err, "failed to resolve incident", "dedup_key", dedupKey)
		return false
	}

	c.logger.Info(ctx, "incident resolved", "dedup_key", dedupKey)
	return true
}

// post sends ev to the enqueue endpoint and returns the response body on 2xx.
func (c *Client) post(ctx context.Context, ev *Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("pagerduty: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pagerduty: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req) //nolint:gosec // G704: endpoint is a fixed constant or trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("pagerduty: post event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyLen))
		return nil, fmt.Errorf("pagerduty: events api returned %d: %s", resp.StatusCode, string(respBody))
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxRespBodyLen))
}
