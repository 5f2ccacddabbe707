// Package ghapp talks to the platform API as a GitHub App: it resolves the
// teams with access to a repository and mints installation tokens scoped to
// exactly one repository and one permission map.
package ghapp

import (
	"context"
	"fmt"
	"os"

	"github.com/google/go-github/v80/github"
	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/middleware"
	"github.com/david-wiggs/jenkins-passthrough/internal/audit"
	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

var (
	_ core.TeamResolver = (*App)(nil)
	_ core.TokenIssuer  = (*App)(nil)
)

// App implements team resolution and token issuance against GitHub Cloud or
// GitHub Enterprise. The app must be installed on the target owner; the
// installation is looked up per request by owner name.
type App struct {
	appID      int64
	privateKey []byte

	serverBaseURL string
}

// New creates an App from config, reading the private key from file when it
// is not given inline.
func New(cfg config.GitHubConfig) (*App, error) {
	var keyBytes []byte
	if cfg.PrivateKey != "" {
		keyBytes = []byte(cfg.PrivateKey)
	} else if cfg.PrivateKeyPath != "" {
		contents, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading github app private key file: %w", err)
		}
		keyBytes = contents
	} else {
		return nil, fmt.Errorf("github app config missing 'private_key' or 'private_key_path'")
	}
	return &App{
		appID:         cfg.AppID,
		privateKey:    keyBytes,
		serverBaseURL: cfg.Server,
	}, nil
}

// ResolveTeams fetches the teams with access to org/repo together with
// their permission level. Teams without a reported permission default to
// pull.
func (a *App) ResolveTeams(ctx context.Context, org, repo string) ([]core.RepositoryTeam, error) {
	appClient, err := a.appClient(ctx, "")
	if err != nil {
		return nil, err
	}

	instID, err := a.installationID(ctx, appClient, org)
	if err != nil {
		return nil, err
	}

	// listing repository teams requires installation credentials,
	// the app JWT alone cannot do it
	instClient, err := InstallationTokenClient(ctx, appClient, instID)
	if err != nil {
		return nil, err
	}

	var teams []core.RepositoryTeam
	opts := &github.ListOptions{PerPage: 100}
	for {
		page, resp, err := instClient.Repositories.ListTeams(ctx, org, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing teams for %s/%s: %w", org, repo, err)
		}
		for _, t := range page {
			teams = append(teams, core.RepositoryTeam{
				Name:       t.GetName(),
				Slug:       t.GetSlug(),
				Permission: core.ParsePermission(t.GetPermission()),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return teams, nil
}

// Issue mints an installation token constrained to the single repository
// and the permission map implied by level.
func (a *App) Issue(ctx context.Context, org, repo string, level core.PermissionLevel) (*core.TokenArtifact, error) {
	logger := log.Ctx(ctx)

	appClient, err := a.appClient(ctx, middleware.CorrelationCtx(ctx))
	if err != nil {
		return nil, err
	}

	instID, err := a.installationID(ctx, appClient, org)
	if err != nil {
		return nil, err
	}

	opts := &github.InstallationTokenOptions{
		Repositories: []string{repo},
		Permissions:  InstallationPermissionsFor(level),
	}

	logger.Info().
		Int64("installation_id", instID).
		Str("repository", org+"/"+repo).
		Str("permission", level.String()).
		Msg("minting GitHub App installation token")

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, instID, opts)
	if err != nil {
		return nil, fmt.Errorf("creating installation token for installation ID %d: %w", instID, err)
	}
	logger.Debug().Msgf("minted token expiring at %s", token.GetExpiresAt().Time.String())

	tok := token.GetToken()

	return &core.TokenArtifact{
		Value:       tok,
		ExpiresAt:   token.GetExpiresAt().Time,
		Fingerprint: audit.CalculateFingerprint(audit.GitHubFingerprintType, tok),
		Metadata: map[string]any{
			"installation": instID,
			"repositories": opts.Repositories,
			"permissions":  token.GetPermissions(),
		},
	}, nil
}

func (a *App) installationID(ctx context.Context, appClient *github.Client, owner string) (int64, error) {
	// the most common case is that the app is installed in an org
	installation, _, err := appClient.Apps.FindOrganizationInstallation(ctx, owner)
	if err != nil {
		var err2 error
		installation, _, err2 = appClient.Apps.FindUserInstallation(ctx, owner)
		if err2 != nil {
			return 0, fmt.Errorf("could not find app installation for owner '%s': %w / %v", owner, err, err2)
		}
	}
	return installation.GetID(), nil
}

func (a *App) appClient(ctx context.Context, correlationID string) (*github.Client, error) {
	client, err := NewAppClient(a.appID, a.privateKey, a.serverBaseURL)
	if err != nil {
		return nil, err
	}
	if correlationID != "" {
		// set user agent for auditing
		client.UserAgent = audit.CreateUserAgent(correlationID, "")
	}
	return client, nil
}
