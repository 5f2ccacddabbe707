package core

import "strings"

// PermissionLevel is the ordered repository permission currency.
// It is both the matching result and the scope-mapping key.
// Ordering matters: higher values win when multiple matches exist.
type PermissionLevel int

const (
	PermPull PermissionLevel = iota
	PermTriage
	PermPush
	PermMaintain
	PermAdmin
)

// ParsePermission maps an upstream permission string to a PermissionLevel.
// Unknown or empty input falls through to PermPull, the floor.
func ParsePermission(s string) PermissionLevel {
	switch strings.ToLower(s) {
	case "admin":
		return PermAdmin
	case "maintain":
		return PermMaintain
	case "push", "write":
		return PermPush
	case "triage":
		return PermTriage
	default: // "pull", "read", and anything unexpected
		return PermPull
	}
}

func (p PermissionLevel) String() string {
	switch p {
	case PermAdmin:
		return "admin"
	case PermMaintain:
		return "maintain"
	case PermPush:
		return "push"
	case PermTriage:
		return "triage"
	default:
		return "pull"
	}
}

// DirectoryGroup is a group membership of the caller in the identity
// directory. Resolved fresh per request, never cached.
type DirectoryGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RepositoryTeam is a team with access to the target repository, together
// with the permission level that team holds on it.
type RepositoryTeam struct {
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Permission PermissionLevel `json:"permission"`
}

// Verdict is the output of the authorization matcher.
// MatchedGroups and MatchedTeams list every name that participated in at
// least one satisfied (group, team) pair, not just the winning one.
type Verdict struct {
	Authorized    bool            `json:"authorized"`
	Permission    PermissionLevel `json:"permission"`
	MatchedGroups []string        `json:"matched_groups,omitempty"`
	MatchedTeams  []string        `json:"matched_teams,omitempty"`
}
