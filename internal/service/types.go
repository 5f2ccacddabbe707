package service

import "time"

// ValidateRequest is one credential-validation request as it reaches the
// core, after the transport layer has checked required fields.
type ValidateRequest struct {
	Username     string
	Password     string
	Repository   string
	Organization string
}

// ValidateResult is the success outcome of a validation: an issued token
// and the decision diagnostics.
type ValidateResult struct {
	// Token is either the minted installation token or, for PAT
	// passthrough, the caller's own secret echoed back.
	Token string

	// Scopes are the token-scope labels implied by the permission.
	Scopes []string

	// Permission is the merged highest-privilege level ("pat" for
	// passthrough).
	Permission string

	// UserGroups / MatchingTeams are the names that participated in the
	// authorization decision.
	UserGroups    []string
	MatchingTeams []string

	// ExpiresAt is set for minted tokens; passthrough tokens have no
	// known expiry.
	ExpiresAt *time.Time
}
