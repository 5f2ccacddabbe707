package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// StrategyMock authenticates against a static allow-list. Test only.
	StrategyMock = "mock"
	// StrategyLookup checks that the user exists as a directory principal
	// using a service credential; the password is not verified here.
	StrategyLookup = "lookup"
	// StrategyGrant performs a full password grant against the provider.
	StrategyGrant = "grant"
)

const EnvDevelopment = "development"

// Config is the process-wide configuration. It is loaded once at startup,
// validated, and passed by reference into component constructors; nothing
// mutates it afterwards.
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Environment string         `yaml:"environment"`
	Identity    IdentityConfig `yaml:"identity"`
	GitHub      GitHubConfig   `yaml:"github"`
	Authz       AuthzConfig    `yaml:"authz"`
	Audit       AuditConfig    `yaml:"audit"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`

	// AdminSigningKey signs the admin-route bearer tokens.
	// Leaving it empty disables the admin API entirely.
	AdminSigningKey string `yaml:"admin_signing_key"`
}

// IdentityConfig holds the identity-provider connection and the selected
// authentication strategy.
type IdentityConfig struct {
	// IssuerURL is used for OIDC discovery of the token endpoint.
	IssuerURL string `yaml:"issuer_url"`

	// TokenURL overrides discovery when set.
	TokenURL string `yaml:"token_url"`

	// BaseURL is the directory API root (user lookup, group membership).
	BaseURL string `yaml:"base_url"`

	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// Strategy selects the authentication capability: mock, lookup, grant.
	Strategy string `yaml:"strategy"`

	// Options carries strategy-specific settings; the selected strategy
	// decodes them at build time.
	Options map[string]any `yaml:"options"`
}

type GitHubConfig struct {
	AppID          int64  `yaml:"app_id"`
	PrivateKey     string `yaml:"private_key"`
	PrivateKeyPath string `yaml:"private_key_path"`

	// Server is the GitHub Enterprise base URL. Empty means github.com.
	Server string `yaml:"server"`

	// Organization is the default owner when a request omits one.
	Organization string `yaml:"organization"`
}

// AuthzConfig is the match configuration for the decision engine.
type AuthzConfig struct {
	GroupPattern           string `yaml:"group_pattern"`
	TeamPattern            string `yaml:"team_pattern"`
	MatchExpr              string `yaml:"match_expr"`
	DisableNameContainment bool   `yaml:"disable_name_containment"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Identity.Strategy == "" {
		c.Identity.Strategy = StrategyGrant
	}
	if c.Identity.BaseURL == "" {
		c.Identity.BaseURL = "https://graph.microsoft.com/v1.0"
	}
	if c.Audit.Enabled && c.Audit.Type == "" {
		c.Audit.Type = "memory"
	}
}

// applyEnvOverrides keeps the deployment contract of the original service:
// TEST_VALID_USERS replaces the mock allow-list.
func (c *Config) applyEnvOverrides() {
	if users := os.Getenv("TEST_VALID_USERS"); users != "" {
		if c.Identity.Options == nil {
			c.Identity.Options = make(map[string]any)
		}
		c.Identity.Options["users"] = splitAndTrim(users)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Identity.Strategy {
	case StrategyMock, StrategyLookup, StrategyGrant:
	default:
		return fmt.Errorf("unknown authentication strategy %q", c.Identity.Strategy)
	}

	if c.Identity.Strategy == StrategyGrant {
		if c.Identity.ClientID == "" {
			return fmt.Errorf("grant strategy requires identity.client_id")
		}
		if c.Identity.IssuerURL == "" && c.Identity.TokenURL == "" {
			return fmt.Errorf("grant strategy requires identity.issuer_url or identity.token_url")
		}
	}

	// lookup is allowed to be unconfigured: it fails closed at runtime
	// outside development mode.

	if !c.Development() {
		if c.GitHub.AppID == 0 {
			return fmt.Errorf("github.app_id is required")
		}
		if c.GitHub.PrivateKey == "" && c.GitHub.PrivateKeyPath == "" {
			return fmt.Errorf("github.private_key or github.private_key_path is required")
		}
	}

	switch c.Audit.Type {
	case "", "memory", "noop":
	case "file":
		if c.Audit.Path == "" {
			return fmt.Errorf("audit type 'file' requires audit.path")
		}
	default:
		return fmt.Errorf("unknown audit type %q", c.Audit.Type)
	}

	return nil
}

// Development reports whether the process runs in the designated
// development mode, which relaxes fail-closed behavior in a few places.
func (c *Config) Development() bool {
	return c.Environment == EnvDevelopment
}
