package ghapp

import (
	"github.com/google/go-github/v80/github"

	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

// ScopesFor maps an authorization level to the token-scope labels reported
// to the caller. Pure, total function: unknown input falls through to the
// pull row via ParsePermission's floor.
func ScopesFor(level core.PermissionLevel) []string {
	switch level {
	case core.PermAdmin:
		return []string{"repo", "admin:repo_hook", "delete_repo"}
	case core.PermMaintain:
		return []string{"repo", "admin:repo_hook"}
	case core.PermPush:
		return []string{"repo"}
	case core.PermTriage:
		return []string{"repo:status", "repo_deployment"}
	default:
		return []string{"repo:status", "public_repo"}
	}
}

// InstallationPermissionsFor translates an authorization level into the
// permission map the installation token is minted with. The scopes above
// are what the caller sees; this is what the token can actually do.
func InstallationPermissionsFor(level core.PermissionLevel) *github.InstallationPermissions {
	switch level {
	case core.PermAdmin:
		return &github.InstallationPermissions{
			Administration:  github.Ptr("write"),
			Contents:        github.Ptr("write"),
			Metadata:        github.Ptr("read"),
			PullRequests:    github.Ptr("write"),
			RepositoryHooks: github.Ptr("write"),
			Workflows:       github.Ptr("write"),
		}
	case core.PermMaintain:
		return &github.InstallationPermissions{
			Contents:        github.Ptr("write"),
			Metadata:        github.Ptr("read"),
			PullRequests:    github.Ptr("write"),
			RepositoryHooks: github.Ptr("write"),
			Workflows:       github.Ptr("write"),
		}
	case core.PermPush:
		return &github.InstallationPermissions{
			Contents:     github.Ptr("write"),
			Metadata:     github.Ptr("read"),
			PullRequests: github.Ptr("write"),
		}
	case core.PermTriage:
		return &github.InstallationPermissions{
			Contents:     github.Ptr("read"),
			Issues:       github.Ptr("write"),
			Metadata:     github.Ptr("read"),
			PullRequests: github.Ptr("write"),
		}
	default:
		return &github.InstallationPermissions{
			Contents: github.Ptr("read"),
			Metadata: github.Ptr("read"),
		}
	}
}
