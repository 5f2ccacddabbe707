package core

import (
	"context"
	"time"
)

// AuthOutcome is the result of an authentication attempt.
// Strategies never return errors past this boundary: absence of success is
// denial, not a fatal condition. Reason is for logs only and must never be
// surfaced to the caller.
type AuthOutcome struct {
	Success     bool
	BearerToken string
	Reason      string
}

// Authenticator verifies a username/password against the identity provider.
// Implementations: mock allow-list, directory lookup, full password grant.
type Authenticator interface {
	// Name returns the strategy identifier (as used in config).
	Name() string

	Authenticate(ctx context.Context, username, password string) AuthOutcome
}

// GroupResolver fetches the caller's directory group memberships.
// A returned error means the fetch itself failed; callers degrade that to
// an empty set but keep the distinction for logging.
type GroupResolver interface {
	ResolveGroups(ctx context.Context, bearerToken, username string) ([]DirectoryGroup, error)
}

// TeamResolver fetches the teams with access to a repository.
type TeamResolver interface {
	ResolveTeams(ctx context.Context, org, repo string) ([]RepositoryTeam, error)
}

// TokenIssuer mints a platform token constrained to one repository and the
// permissions implied by the given level.
type TokenIssuer interface {
	Issue(ctx context.Context, org, repo string, level PermissionLevel) (*TokenArtifact, error)
}

// TokenArtifact is the result of a successful Issue operation.
type TokenArtifact struct {
	// Value is the actual secret/token string (the GitHub Installation Token).
	Value string `json:"value"`

	// Fingerprint identifies the token in audit logs without storing it.
	Fingerprint string `json:"fingerprint"`

	// ExpiresAt indicates when this token becomes invalid.
	ExpiresAt time.Time `json:"expires_at"`

	// Metadata contains extra information (e.g., "installation": 123).
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Fingerprinter func(token string) string
