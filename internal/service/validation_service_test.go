package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/david-wiggs/jenkins-passthrough/internal/api/middleware"
	"github.com/david-wiggs/jenkins-passthrough/internal/audit"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/engine"
)

// fakeAuthenticator records whether it was called and answers from a static
// allow-list.
type fakeAuthenticator struct {
	allowed map[string]bool
	called  bool
}

func (f *fakeAuthenticator) Name() string { return "fake" }

func (f *fakeAuthenticator) Authenticate(_ context.Context, username, _ string) core.AuthOutcome {
	f.called = true
	if f.allowed[username] {
		return core.AuthOutcome{Success: true, BearerToken: "bearer-" + username}
	}
	return core.AuthOutcome{Reason: "not allowed"}
}

type fakeGroupResolver struct {
	groups []core.DirectoryGroup
	err    error
}

func (f *fakeGroupResolver) ResolveGroups(context.Context, string, string) ([]core.DirectoryGroup, error) {
	return f.groups, f.err
}

type fakeTeamResolver struct {
	teams []core.RepositoryTeam
	err   error
}

func (f *fakeTeamResolver) ResolveTeams(context.Context, string, string) ([]core.RepositoryTeam, error) {
	return f.teams, f.err
}

type fakeIssuer struct {
	err    error
	issued bool
}

func (f *fakeIssuer) Issue(_ context.Context, org, repo string, level core.PermissionLevel) (*core.TokenArtifact, error) {
	f.issued = true
	if f.err != nil {
		return nil, f.err
	}
	return &core.TokenArtifact{
		Value:       "minted-token",
		Fingerprint: "fp",
		ExpiresAt:   time.Now().Add(time.Hour),
		Metadata:    map[string]any{"repository": org + "/" + repo},
	}, nil
}

func mustEngine(t *testing.T, cfg engine.Config) *engine.Engine {
	t.Helper()
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return eng
}

func newTestService(t *testing.T, auth *fakeAuthenticator, groups *fakeGroupResolver, teams *fakeTeamResolver, issuer *fakeIssuer) *ValidationService {
	t.Helper()
	return NewValidationService(
		auth, groups, teams, issuer,
		mustEngine(t, engine.Config{}),
		nil, nil, "acme",
	)
}

func TestValidate_Success(t *testing.T) {
	auth := &fakeAuthenticator{allowed: map[string]bool{"alice": true}}
	groups := &fakeGroupResolver{groups: []core.DirectoryGroup{
		{ID: "g1", Name: "JenkinsDeployers"},
	}}
	teams := &fakeTeamResolver{teams: []core.RepositoryTeam{
		{Name: "deployers", Slug: "deployers", Permission: core.PermPush},
	}}
	issuer := &fakeIssuer{}
	auditor := audit.NewInMemoryAuditor()

	svc := NewValidationService(
		auth, groups, teams, issuer,
		mustEngine(t, engine.Config{}),
		auditor, nil, "acme",
	)
	ctx := middleware.WithCorrelation(context.Background(), "req-1")
	result, err := svc.Validate(ctx, ValidateRequest{
		Username:   "alice",
		Password:   "pw",
		Repository: "deploy-tool",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if result.Token != "minted-token" {
		t.Errorf("Token = %q, want minted-token", result.Token)
	}
	if result.Permission != "push" {
		t.Errorf("Permission = %q, want push", result.Permission)
	}
	if diff := cmp.Diff([]string{"repo"}, result.Scopes); diff != "" {
		t.Errorf("Scopes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"JenkinsDeployers"}, result.UserGroups); diff != "" {
		t.Errorf("UserGroups mismatch (-want +got):\n%s", diff)
	}
	if result.ExpiresAt == nil || result.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want set", result.ExpiresAt)
	}

	entries, err := auditor.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.ID != "req-1" {
		t.Errorf("audit ID = %q, want correlation ID req-1", entry.ID)
	}
	if !entry.Granted || entry.Permission != "push" {
		t.Errorf("audit entry = granted %v permission %q, want granted push", entry.Granted, entry.Permission)
	}
	if entry.TokenFingerprint != "fp" {
		t.Errorf("audit fingerprint = %q, want fp", entry.TokenFingerprint)
	}
}

func TestValidate_AuthenticationDeniedIsGeneric(t *testing.T) {
	auth := &fakeAuthenticator{allowed: map[string]bool{}}
	issuer := &fakeIssuer{}

	svc := newTestService(t, auth, &fakeGroupResolver{}, &fakeTeamResolver{}, issuer)
	_, err := svc.Validate(context.Background(), ValidateRequest{
		Username:   "bob",
		Password:   "wrong",
		Repository: "deploy-tool",
	})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Validate() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", httpErr.StatusCode)
	}
	// provider detail must not leak into the caller-facing message
	if got := httpErr.Error(); got != "authentication failed" {
		t.Errorf("Error() = %q, want generic message", got)
	}
	if issuer.issued {
		t.Errorf("Issue was called after authentication denial")
	}
}

func TestValidate_AuthzDenialCarriesDiagnostics(t *testing.T) {
	auth := &fakeAuthenticator{allowed: map[string]bool{"alice": true}}
	groups := &fakeGroupResolver{groups: []core.DirectoryGroup{
		{ID: "g1", Name: "SomethingUnrelated"},
	}}
	teams := &fakeTeamResolver{teams: []core.RepositoryTeam{
		{Name: "deployers", Slug: "deployers", Permission: core.PermPush},
	}}
	issuer := &fakeIssuer{}

	svc := newTestService(t, auth, groups, teams, issuer)
	_, err := svc.Validate(context.Background(), ValidateRequest{
		Username:   "alice",
		Password:   "pw",
		Repository: "deploy-tool",
	})

	var denied *AuthzDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Validate() error = %v, want *AuthzDeniedError", err)
	}
	if diff := cmp.Diff([]string{"SomethingUnrelated"}, denied.UserGroups); diff != "" {
		t.Errorf("UserGroups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"deployers"}, denied.MatchingTeams); diff != "" {
		t.Errorf("MatchingTeams mismatch (-want +got):\n%s", diff)
	}
	if issuer.issued {
		t.Errorf("Issue was called after authorization denial")
	}
}

func TestValidate_ResolverFailureDegradesToDenial(t *testing.T) {
	auth := &fakeAuthenticator{allowed: map[string]bool{"alice": true}}
	groups := &fakeGroupResolver{err: errors.New("directory unreachable")}
	teams := &fakeTeamResolver{teams: []core.RepositoryTeam{
		{Name: "alice-team", Slug: "alice-team", Permission: core.PermPush},
	}}

	svc := newTestService(t, auth, groups, teams, &fakeIssuer{})
	_, err := svc.Validate(context.Background(), ValidateRequest{
		Username:   "alice",
		Password:   "pw",
		Repository: "deploy-tool",
	})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Validate() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401 (empty set denies)", httpErr.StatusCode)
	}
}

func TestValidate_PassthroughSkipsPipeline(t *testing.T) {
	pat := "ghp_" + strings.Repeat("A", 36)

	auth := &fakeAuthenticator{allowed: map[string]bool{}}
	issuer := &fakeIssuer{}

	svc := newTestService(t, auth, &fakeGroupResolver{}, &fakeTeamResolver{}, issuer)
	result, err := svc.Validate(context.Background(), ValidateRequest{
		Username:   "alice",
		Password:   pat,
		Repository: "deploy-tool",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if result.Token != pat {
		t.Errorf("Token = %q, want the PAT echoed back", result.Token)
	}
	if result.Permission != "pat" {
		t.Errorf("Permission = %q, want pat", result.Permission)
	}
	if diff := cmp.Diff([]string{"pat-passthrough"}, result.Scopes); diff != "" {
		t.Errorf("Scopes mismatch (-want +got):\n%s", diff)
	}
	if result.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil for passthrough", result.ExpiresAt)
	}
	if auth.called {
		t.Errorf("Authenticate was called for a passthrough token")
	}
	if issuer.issued {
		t.Errorf("Issue was called for a passthrough token")
	}
}

func TestValidate_IssuanceFailureIsServerError(t *testing.T) {
	auth := &fakeAuthenticator{allowed: map[string]bool{"alice": true}}
	groups := &fakeGroupResolver{groups: []core.DirectoryGroup{
		{ID: "g1", Name: "deployers"},
	}}
	teams := &fakeTeamResolver{teams: []core.RepositoryTeam{
		{Name: "deployers", Slug: "deployers", Permission: core.PermPush},
	}}
	issuer := &fakeIssuer{err: errors.New("installation not found")}

	svc := newTestService(t, auth, groups, teams, issuer)
	_, err := svc.Validate(context.Background(), ValidateRequest{
		Username:   "alice",
		Password:   "pw",
		Repository: "deploy-tool",
	})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Validate() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", httpErr.StatusCode)
	}
	if got := httpErr.Error(); got != "token issuance failed" {
		t.Errorf("Error() = %q, want generic issuance message", got)
	}
}
