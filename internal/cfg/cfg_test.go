package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"

	"github.com/linnemanlabs/pagerelay/internal/pagerduty"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		GCPProject:            "test-project",
		EventsEndpoint:        pagerduty.EventsAPIURL,
		SecretSource:          SecretSourceGSM,
		APIToken:              "test-token-123",
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.EventsEndpoint != pagerduty.EventsAPIURL {
		t.Errorf("EventsEndpoint = %q, want %q", c.EventsEndpoint, pagerduty.EventsAPIURL)
	}
	if c.SecretSource != SecretSourceGSM {
		t.Errorf("SecretSource = %q, want %q", c.SecretSource, SecretSourceGSM)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-gcp-project", "prod-project",
		"-routing-key-secret", "CUSTOM_ROUTING_KEY",
		"-events-endpoint", "https://events.example.com/v2/enqueue",
		"-secret-source", "env",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.GCPProject != "prod-project" {
		t.Errorf("GCPProject = %q, want %q", c.GCPProject, "prod-project")
	}
	if c.RoutingKeySecret != "CUSTOM_ROUTING_KEY" {
		t.Errorf("RoutingKeySecret = %q, want %q", c.RoutingKeySecret, "CUSTOM_ROUTING_KEY")
	}
	if c.EventsEndpoint != "https://events.example.com/v2/enqueue" {
		t.Errorf("EventsEndpoint = %q, want %q", c.EventsEndpoint, "https://events.example.com/v2/enqueue")
	}
	if c.SecretSource != SecretSourceEnv {
		t.Errorf("SecretSource = %q, want %q", c.SecretSource, SecretSourceEnv)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "defaults are valid",
			cfg:     validBase(),
			wantErr: false,
		},
		{
			name: "minimum valid values",
			cfg: Config{
				DrainSeconds: 1, ShutdownBudgetSeconds: 2, APIPort: 1,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr: false,
		},
		{
			name: "maximum valid values",
			cfg: Config{
				DrainSeconds: 299, ShutdownBudgetSeconds: 300, APIPort: 65535,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr: false,
		},
		{
			name: "env source without project",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				EventsEndpoint: "http://e", SecretSource: SecretSourceEnv,
			},
			wantErr: false,
		},
		// DrainSeconds boundaries
		{
			name: "drain zero",
			cfg: Config{
				DrainSeconds: 0, ShutdownBudgetSeconds: 90, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name: "drain negative",
			cfg: Config{
				DrainSeconds: -1, ShutdownBudgetSeconds: 90, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name: "drain above max",
			cfg: Config{
				DrainSeconds: 301, ShutdownBudgetSeconds: 302, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name: "drain at upper bound",
			cfg: Config{
				DrainSeconds: 300, ShutdownBudgetSeconds: 300, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr: true, // budget must be greater than drain
		},
		// ShutdownBudgetSeconds boundaries
		{
			name: "budget zero",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 0, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"SHUTDOWN_BUDGET_SECONDS"},
		},
		{
			name: "budget above max",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 301, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"SHUTDOWN_BUDGET_SECONDS"},
		},
		// Cross-field: budget vs drain
		{
			name: "budget equals drain",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 60, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name: "budget is drain plus one",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 61, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr: false,
		},
		// APIPort boundaries
		{
			name: "port zero",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 0,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name: "port above max",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 65536,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// String field validation
		{
			name: "empty events endpoint",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"EVENTS_ENDPOINT"},
		},
		{
			name: "gsm source without project",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				EventsEndpoint: "http://e", SecretSource: SecretSourceGSM,
			},
			wantErr:   true,
			errSubstr: []string{"GCP_PROJECT"},
		},
		{
			name: "unknown secret source",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				GCPProject: "p", EventsEndpoint: "http://e", SecretSource: "vault",
			},
			wantErr:   true,
			errSubstr: []string{"SECRET_SOURCE"},
		},
		// Error accumulation: all fields invalid
		{
			name:      "all fields invalid",
			cfg:       Config{DrainSeconds: 0, ShutdownBudgetSeconds: 0, APIPort: 0, SecretSource: "bogus"},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "EVENTS_ENDPOINT", "SECRET_SOURCE"},
		},
		// Extreme values
		{
			name: "extreme negative values",
			cfg: Config{
				DrainSeconds: math.MinInt32, ShutdownBudgetSeconds: math.MinInt32, APIPort: math.MinInt32,
				SecretSource: SecretSourceEnv, EventsEndpoint: "http://e",
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	// Seeds: defaults, boundaries, extremes
	seeds := []struct {
		drain, budget, port       int
		project, endpoint, source string
	}{
		{60, 90, 8080, "test-project", "https://events.pagerduty.com/v2/enqueue", "gsm"},
		{1, 2, 1, "p", "http://e", "gsm"},
		{299, 300, 65535, "p", "http://e", "gsm"},
		{60, 90, 8080, "", "http://e", "env"},
		{0, 0, 0, "", "", ""},
		{-1, -1, -1, "", "", "vault"},
		{300, 300, 65535, "p", "http://e", "gsm"},
		{301, 302, 65536, "", "", "gsm"},
		{150, 100, 8080, "p", "http://e", "env"},
		{math.MinInt32, math.MinInt32, math.MinInt32, "", "", ""},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, "", "", ""},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.project, s.endpoint, s.source)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port int, project, endpoint, source string) {
		c := Config{
			DrainSeconds:          drain,
			ShutdownBudgetSeconds: budget,
			APIPort:               port,
			GCPProject:            project,
			EventsEndpoint:        endpoint,
			SecretSource:          source,
		}
		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		crossOK := budget > drain
		endpointOK := endpoint != ""
		sourceOK := source == SecretSourceEnv || (source == SecretSourceGSM && project != "")

		allValid := drainOK && budgetOK && portOK && crossOK && endpointOK && sourceOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
