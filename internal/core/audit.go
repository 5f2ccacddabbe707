package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "credential.validate")
	Action string `json:"action"`

	// Username identifies who made the request
	Username string `json:"username,omitempty"`

	// Organization / Repository that were targeted
	Organization string `json:"organization,omitempty"`
	Repository   string `json:"repository,omitempty"`

	// Strategy is the authentication strategy that handled the request.
	Strategy string `json:"strategy,omitempty"`

	// Decision details
	Granted       bool     `json:"granted"`
	Permission    string   `json:"permission,omitempty"`
	MatchedGroups []string `json:"matched_groups,omitempty"`
	MatchedTeams  []string `json:"matched_teams,omitempty"`
	Error         string   `json:"error,omitempty"`

	// TokenFingerprint identifies the issued token. Never the token itself.
	TokenFingerprint string `json:"token_fingerprint,omitempty"`

	// Metadata contains artifact details
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditSearcher is implemented by auditors that can be queried back,
// used by the admin API.
type AuditSearcher interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
