package authn

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/directory"
)

var _ core.Authenticator = (*GrantAuthenticator)(nil)

// GrantAuthenticator performs a resource-owner password grant against the
// identity provider and then cross-checks the returned principal's
// canonical name against the submitted username, so a token belonging to a
// different account cannot be substituted.
type GrantAuthenticator struct {
	conf *oauth2.Config
	dir  *directory.Client
}

func NewGrant(conf *oauth2.Config, dir *directory.Client) *GrantAuthenticator {
	return &GrantAuthenticator{
		conf: conf,
		dir:  dir,
	}
}

func (g *GrantAuthenticator) Name() string {
	return config.StrategyGrant
}

func (g *GrantAuthenticator) Authenticate(ctx context.Context, username, password string) core.AuthOutcome {
	logger := log.Ctx(ctx)

	token, err := g.conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		// classify provider error codes for the logs; the caller only
		// ever sees a generic authentication failure
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			switch retrieveErr.ErrorCode {
			case "invalid_grant":
				logger.Warn().Str("user", username).Msg("password grant rejected, invalid credentials")
			case "unauthorized_client":
				logger.Error().Msg("password grant rejected, client not authorized for this grant")
			case "unsupported_grant_type":
				logger.Error().Msg("password grant rejected, grant type not supported by provider")
			case "invalid_request":
				logger.Error().Msg("password grant rejected, malformed request")
			default:
				logger.Error().Str("code", retrieveErr.ErrorCode).Msg("password grant rejected by provider")
			}
		} else {
			logger.Error().Err(err).Msg("password grant failed, provider unreachable")
		}
		return core.AuthOutcome{Reason: "password grant failed"}
	}

	profile, err := g.dir.Me(ctx, token.AccessToken)
	if err != nil {
		logger.Error().Err(err).Msg("profile lookup after grant failed")
		return core.AuthOutcome{Reason: "profile lookup failed"}
	}

	if !strings.EqualFold(profile.UserPrincipalName, username) {
		logger.Warn().
			Str("submitted", username).
			Str("canonical", profile.UserPrincipalName).
			Msg("principal mismatch after grant, possible token substitution")
		return core.AuthOutcome{Reason: "principal mismatch"}
	}

	return core.AuthOutcome{
		Success:     true,
		BearerToken: token.AccessToken,
	}
}
