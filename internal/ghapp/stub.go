package ghapp

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/audit"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

var (
	_ core.TeamResolver = (*Stub)(nil)
	_ core.TokenIssuer  = (*Stub)(nil)
)

// Stub stands in for the GitHub App in local development, where no app
// credentials are configured. It resolves a static team list and mints
// worthless placeholder tokens.
type Stub struct {
	teams []core.RepositoryTeam
}

func NewStub(teams []core.RepositoryTeam) *Stub {
	return &Stub{teams: teams}
}

func (s *Stub) ResolveTeams(ctx context.Context, org, repo string) ([]core.RepositoryTeam, error) {
	log.Ctx(ctx).Warn().
		Str("repository", org+"/"+repo).
		Msg("stub resolver active, returning static team list")
	return s.teams, nil
}

func (s *Stub) Issue(ctx context.Context, org, repo string, level core.PermissionLevel) (*core.TokenArtifact, error) {
	value := fmt.Sprintf("dev-token-%s", xid.New().String())

	log.Ctx(ctx).Warn().
		Str("repository", org+"/"+repo).
		Str("permission", level.String()).
		Msg("stub issuer active, minting placeholder token")

	return &core.TokenArtifact{
		Value:       value,
		ExpiresAt:   time.Now().Add(time.Hour),
		Fingerprint: audit.CalculateFingerprint(audit.GitHubFingerprintType, value),
		Metadata: map[string]any{
			"stub":       true,
			"repository": org + "/" + repo,
		},
	}, nil
}
