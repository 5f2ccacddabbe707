package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/middleware"
	"github.com/david-wiggs/jenkins-passthrough/internal/audit"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/credential"
	"github.com/david-wiggs/jenkins-passthrough/internal/engine"
	"github.com/david-wiggs/jenkins-passthrough/internal/ghapp"
)

// ValidationService runs the full pipeline for one request: classify the
// credential, authenticate, resolve groups and teams, match, map scopes,
// mint. Requests are independent; the service holds no mutable state.
type ValidationService struct {
	authenticator core.Authenticator
	groups        core.GroupResolver
	teams         core.TeamResolver
	issuer        core.TokenIssuer
	engine        *engine.Engine
	auditor       core.Auditor
	tokenStore    core.TokenStore
	defaultOrg    string
}

func NewValidationService(
	authenticator core.Authenticator,
	groups core.GroupResolver,
	teams core.TeamResolver,
	issuer core.TokenIssuer,
	eng *engine.Engine,
	auditor core.Auditor,
	tokenStore core.TokenStore,
	defaultOrg string,
) *ValidationService {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &ValidationService{
		authenticator: authenticator,
		groups:        groups,
		teams:         teams,
		issuer:        issuer,
		engine:        eng,
		auditor:       auditor,
		tokenStore:    tokenStore,
		defaultOrg:    defaultOrg,
	}
}

// noopAuditor keeps the hot path free of nil checks.
type noopAuditor struct{}

func (noopAuditor) Log(core.AuditEntry) error { return nil }
func (noopAuditor) Close() error              { return nil }

// Validate runs one request through the pipeline. All failures come back as
// *HTTPError; nothing below this boundary panics or leaks provider detail
// to the caller.
func (s *ValidationService) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	logger := log.Ctx(ctx)
	reqID := middleware.CorrelationCtx(ctx)

	org := req.Organization
	if org == "" {
		org = s.defaultOrg
	}

	auditEntry := core.AuditEntry{
		ID:           reqID,
		Time:         time.Now(),
		Action:       "credential.validate",
		Username:     req.Username,
		Organization: org,
		Repository:   req.Repository,
		Strategy:     s.authenticator.Name(),
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry")
		}
	}()

	// a platform PAT short-circuits everything: it is its own proof of
	// authorization and is returned verbatim
	if credential.Classify(req.Password) == credential.KindPassthroughToken {
		logger.Info().Str("user", req.Username).Msg("passthrough token detected, skipping pipeline")
		auditEntry.Granted = true
		auditEntry.Permission = credential.PassthroughPermission
		auditEntry.TokenFingerprint = audit.CalculateFingerprint(audit.PassthroughFingerprintType, req.Password)
		return &ValidateResult{
			Token:      req.Password,
			Scopes:     []string{credential.PassthroughScope},
			Permission: credential.PassthroughPermission,
		}, nil
	}

	outcome := s.authenticator.Authenticate(ctx, req.Username, req.Password)
	if !outcome.Success {
		logger.Warn().
			Str("user", req.Username).
			Str("strategy", s.authenticator.Name()).
			Str("reason", outcome.Reason).
			Msg("authentication denied")
		auditEntry.Error = "authentication denied"
		// generic message only, never provider detail
		return nil, httpError(http.StatusUnauthorized, fmt.Errorf("authentication failed"))
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("user", req.Username)
	})

	// group and team resolution are independent, run them concurrently
	var (
		wg        sync.WaitGroup
		groups    []core.DirectoryGroup
		groupsErr error
		teams     []core.RepositoryTeam
		teamsErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		groups, groupsErr = s.groups.ResolveGroups(ctx, outcome.BearerToken, req.Username)
	}()
	go func() {
		defer wg.Done()
		teams, teamsErr = s.teams.ResolveTeams(ctx, org, req.Repository)
	}()
	wg.Wait()

	// fetch failures degrade to empty sets (the matcher denies on empty)
	// but stay distinguishable from genuine zero membership in the logs
	if groupsErr != nil {
		logger.Error().Err(groupsErr).Msg("group resolution failed, degrading to empty set")
		groups = nil
	}
	if teamsErr != nil {
		logger.Error().Err(teamsErr).Msg("team resolution failed, degrading to empty set")
		teams = nil
	}

	filteredGroups := s.engine.FilterGroups(groups)
	filteredTeams := s.engine.FilterTeams(teams)

	verdict := s.engine.Match(filteredGroups, filteredTeams)
	if !verdict.Authorized {
		if len(filteredGroups) == 0 || len(filteredTeams) == 0 {
			logger.Warn().
				Int("groups", len(filteredGroups)).
				Int("teams", len(filteredTeams)).
				Msg("authorization denied, no candidates on one side")
		} else {
			logger.Warn().
				Int("groups", len(filteredGroups)).
				Int("teams", len(filteredTeams)).
				Msg("authorization denied, candidates present but uncorrelated")
		}
		auditEntry.Error = "authorization denied"
		return nil, httpError(http.StatusUnauthorized, &AuthzDeniedError{
			UserGroups:    groupNames(groups),
			MatchingTeams: teamNames(teams),
		})
	}

	auditEntry.Permission = verdict.Permission.String()
	auditEntry.MatchedGroups = verdict.MatchedGroups
	auditEntry.MatchedTeams = verdict.MatchedTeams

	scopes := ghapp.ScopesFor(verdict.Permission)

	artifact, err := s.issuer.Issue(ctx, org, req.Repository, verdict.Permission)
	if err != nil {
		// authorization succeeded, minting did not: platform-side or
		// configuration problem, not caller fault
		logger.Error().Err(err).Msg("token issuance failed")
		auditEntry.Error = "token issuance failed"
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("token issuance failed"))
	}

	auditEntry.Granted = true
	auditEntry.TokenFingerprint = artifact.Fingerprint
	auditEntry.Metadata = artifact.Metadata

	if s.tokenStore != nil {
		meta := core.TokenMetadata{
			CorrelationID: reqID,
			Username:      req.Username,
			Organization:  org,
			Repository:    req.Repository,
			Permission:    verdict.Permission.String(),
			IssuedAt:      time.Now(),
			ExpiresAt:     artifact.ExpiresAt,
			Metadata:      artifact.Metadata,
		}
		if err := s.tokenStore.Save(ctx, meta); err != nil {
			logger.Error().Err(err).Msg("failed to save token metadata")
		}
	}

	logger.Info().
		Str("permission", verdict.Permission.String()).
		Strs("matched_groups", verdict.MatchedGroups).
		Strs("matched_teams", verdict.MatchedTeams).
		Msg("credential validated, token issued")

	expiresAt := artifact.ExpiresAt
	return &ValidateResult{
		Token:         artifact.Value,
		Scopes:        scopes,
		Permission:    verdict.Permission.String(),
		UserGroups:    verdict.MatchedGroups,
		MatchingTeams: verdict.MatchedTeams,
		ExpiresAt:     &expiresAt,
	}, nil
}

func groupNames(groups []core.DirectoryGroup) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

func teamNames(teams []core.RepositoryTeam) []string {
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}
	return names
}
