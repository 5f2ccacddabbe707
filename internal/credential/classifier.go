// Package credential classifies the secret a pipeline presents: either a
// GitHub personal access token that is passed through verbatim, or a
// password that has to go through the full authentication and
// authorization pipeline.
package credential

import "regexp"

// Kind is the classification of a supplied secret.
type Kind int

const (
	// KindPassword requires identity-provider authentication.
	KindPassword Kind = iota

	// KindPassthroughToken is a platform PAT returned verbatim as the
	// issued token. A valid PAT is treated as its own proof of
	// authorization; no authentication or matching happens for it.
	KindPassthroughToken
)

const (
	// PassthroughScope labels tokens that bypassed the pipeline.
	PassthroughScope = "pat-passthrough"

	// PassthroughPermission is the permission label for passthrough tokens.
	PassthroughPermission = "pat"
)

// patShape matches GitHub personal access tokens: a recognized short prefix
// (personal, oauth, user-to-server, server-to-server, refresh) followed by
// exactly 36 token characters.
var patShape = regexp.MustCompile(`^gh[opsur]_[0-9A-Za-z/]{36}$`)

// Classify decides whether the secret is a passthrough token or a password.
// Pure function, no side effects.
func Classify(secret string) Kind {
	if patShape.MatchString(secret) {
		return KindPassthroughToken
	}
	return KindPassword
}
