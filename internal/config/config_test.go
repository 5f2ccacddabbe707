package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
server:
  addr: ":9090"
environment: production
identity:
  issuer_url: https://login.example.com/tenant/v2.0
  client_id: client
  client_secret: secret
  strategy: grant
github:
  app_id: 1234
  private_key_path: /tmp/key.pem
  organization: acme
authz:
  group_pattern: '^proj(\d+)-(\w+)$'
  team_pattern: '^proj(\d+)-(\w+)$'
audit:
  enabled: true
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Identity.Strategy != StrategyGrant {
		t.Errorf("Identity.Strategy = %q, want grant", cfg.Identity.Strategy)
	}
	if cfg.Audit.Type != "memory" {
		t.Errorf("Audit.Type = %q, want memory default", cfg.Audit.Type)
	}
	if cfg.Identity.BaseURL == "" {
		t.Errorf("Identity.BaseURL empty, want default")
	}
}

func TestLoad_MockUsersEnvOverride(t *testing.T) {
	t.Setenv("TEST_VALID_USERS", "alice, bob")

	cfg, err := Load(writeConfig(t, `
environment: development
identity:
  strategy: mock
  options:
    users: ["*"]
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, cfg.Identity.Options["users"]); diff != "" {
		t.Errorf("Options[users] mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "Valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "Unknown Strategy",
			mutate:  func(c *Config) { c.Identity.Strategy = "saml" },
			wantErr: true,
		},
		{
			name: "Grant Without Client",
			mutate: func(c *Config) {
				c.Identity.Strategy = StrategyGrant
				c.Identity.ClientID = ""
			},
			wantErr: true,
		},
		{
			name: "Missing GitHub App Outside Development",
			mutate: func(c *Config) {
				c.GitHub.AppID = 0
			},
			wantErr: true,
		},
		{
			name: "Missing GitHub App In Development",
			mutate: func(c *Config) {
				c.Environment = EnvDevelopment
				c.GitHub.AppID = 0
			},
		},
		{
			name: "File Audit Without Path",
			mutate: func(c *Config) {
				c.Audit.Type = "file"
				c.Audit.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
