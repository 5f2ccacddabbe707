package core

import (
	"context"
	"time"
)

// TokenMetadata represents the state of an issued token.
// Only metadata is kept; the token value itself is never stored.
type TokenMetadata struct {
	// CorrelationID is the ID of the request that created the token.
	CorrelationID string `json:"correlation_id"`

	// Username is the caller the token was issued to.
	Username string `json:"username"`

	// Organization / Repository the token is scoped to.
	Organization string `json:"organization"`
	Repository   string `json:"repository"`

	// Permission is the authorization level the token was minted with.
	Permission string `json:"permission"`

	// ExpiresAt is the expiration time of the issued token.
	// It is used to check if the token is "active".
	ExpiresAt time.Time `json:"expires_at"`

	// IssuedAt is the time when the token was issued.
	IssuedAt time.Time `json:"issued_at"`

	// Metadata contains extra metadata (like installation_id, scopes, ...)
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TokenStore manages the lifecycle of issued tokens.
type TokenStore interface {
	// Save records a new issued token
	Save(ctx context.Context, meta TokenMetadata) error

	// ListActive returns tokens that have not expired yet
	ListActive(ctx context.Context) ([]TokenMetadata, error)
}
