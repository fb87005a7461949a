package cfg

import (
	"errors"
	"flag"
	"fmt"

	"github.com/linnemanlabs/pagerelay/internal/pagerduty"
)

// SecretSource values accepted by -secret-source.
const (
	SecretSourceGSM = "gsm"
	SecretSourceEnv = "env"
)

// Config adds relay-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	GCPProject            string
	RoutingKeySecret      string
	EventsEndpoint        string
	EventSource           string
	SecretSource          string
	DatabaseURL           string
	APIToken              string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.GCPProject, "gcp-project", "", "Google Cloud project holding the PagerDuty routing key secret")
	fs.StringVar(&c.RoutingKeySecret, "routing-key-secret", "", "override for the routing key secret name (empty = "+pagerduty.DefaultRoutingKeySecret+")")
	fs.StringVar(&c.EventsEndpoint, "events-endpoint", pagerduty.EventsAPIURL, "PagerDuty Events API v2 enqueue URL")
	fs.StringVar(&c.EventSource, "event-source", "", "default source field for trigger events (empty = client default)")
	fs.StringVar(&c.SecretSource, "secret-source", SecretSourceGSM, "secret backend: gsm (Google Secret Manager) or env")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on the relay API (empty = auth disabled)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Every trigger/resolve is posted to the events endpoint
	if c.EventsEndpoint == "" {
		errs = append(errs, errors.New("EVENTS_ENDPOINT is required"))
	}

	switch c.SecretSource {
	case SecretSourceGSM:
		// GSM addressing needs a project
		if c.GCPProject == "" {
			errs = append(errs, errors.New("GCP_PROJECT is required when SECRET_SOURCE is gsm"))
		}
	case SecretSourceEnv:
	default:
		errs = append(errs, fmt.Errorf("invalid SECRET_SOURCE %q (must be gsm or env)", c.SecretSource))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
