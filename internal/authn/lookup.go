package authn

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/directory"
)

var _ core.Authenticator = (*LookupAuthenticator)(nil)

// LookupAuthenticator acquires a service token via client-credential grant
// and checks only that the username exists as a directory principal. The
// password is not verified by this strategy; authentication is assumed to
// have happened upstream. Without a configured service client it fails
// closed outside development mode.
type LookupAuthenticator struct {
	cc          *clientcredentials.Config // nil when not configured
	dir         *directory.Client
	development bool
}

func NewLookup(cc *clientcredentials.Config, dir *directory.Client, development bool) *LookupAuthenticator {
	return &LookupAuthenticator{
		cc:          cc,
		dir:         dir,
		development: development,
	}
}

func (l *LookupAuthenticator) Name() string {
	return config.StrategyLookup
}

func (l *LookupAuthenticator) Authenticate(ctx context.Context, username, _ string) core.AuthOutcome {
	logger := log.Ctx(ctx)

	if l.cc == nil {
		if l.development {
			logger.Warn().Str("user", username).
				Msg("lookup strategy has no service client, allowing in development mode")
			return core.AuthOutcome{Success: true}
		}
		logger.Error().Msg("lookup strategy has no service client configured, denying")
		return core.AuthOutcome{Reason: "service client not configured"}
	}

	token, err := l.cc.Token(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("client-credential grant failed")
		return core.AuthOutcome{Reason: "service token acquisition failed"}
	}

	exists, err := l.dir.UserExists(ctx, token.AccessToken, username)
	if err != nil {
		logger.Error().Err(err).Str("user", username).Msg("directory principal lookup failed")
		return core.AuthOutcome{Reason: "directory lookup failed"}
	}
	if !exists {
		logger.Warn().Str("user", username).Msg("unknown directory principal")
		return core.AuthOutcome{Reason: "unknown principal"}
	}

	// group resolution runs with the service token and the username
	return core.AuthOutcome{
		Success:     true,
		BearerToken: token.AccessToken,
	}
}
