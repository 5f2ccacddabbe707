// Package engine holds the authorization decision engine: the pattern
// filter reducing groups/teams to the configured naming convention, and the
// matcher correlating the two sets into a single highest-privilege verdict.
package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

// Config is the immutable matching configuration, constructed once at
// startup and passed into New. Patterns may define one capture group whose
// value is the correlation key (e.g. a project identifier plus a
// permission-level token).
type Config struct {
	// GroupPattern filters directory group names. Empty means no filtering.
	GroupPattern string

	// TeamPattern filters repository team names. Empty means no filtering.
	TeamPattern string

	// MatchExpr is an optional expression evaluated per (group, team) pair
	// as an additional predicate, with `group` and `team` in scope.
	MatchExpr string

	// DisableNameContainment turns off the bidirectional substring rule,
	// leaving only capture-key correlation. The containment rule can
	// produce false positives for short or overlapping names.
	DisableNameContainment bool
}

// Engine evaluates the match configuration. Safe for concurrent use; all
// state is read-only after New.
type Engine struct {
	groupRe *regexp.Regexp
	teamRe  *regexp.Regexp

	pairExpr *vm.Program

	disableContainment bool
}

// New compiles the configuration into an Engine. An invalid pattern is
// logged and left uncompiled: the filter then passes entities through
// unchanged (fail-open on configuration error, the matcher still denies
// uncorrelated sets). An invalid MatchExpr is a hard error since it is an
// explicitly opted-in restriction.
func New(cfg Config) (*Engine, error) {
	e := &Engine{
		groupRe:            compilePattern("group_pattern", cfg.GroupPattern),
		teamRe:             compilePattern("team_pattern", cfg.TeamPattern),
		disableContainment: cfg.DisableNameContainment,
	}

	if cfg.MatchExpr != "" {
		prog, err := expr.Compile(cfg.MatchExpr, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling match_expr: %w", err)
		}
		e.pairExpr = prog
	}

	return e, nil
}

func compilePattern(name, pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	// name matching is case-insensitive throughout
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Warn().Err(err).Str("pattern", pattern).
			Msgf("invalid %s, filtering disabled for it", name)
		return nil
	}
	return re
}

// FilterGroups reduces groups to those whose name matches the configured
// group pattern. Without a (valid) pattern the input is returned unchanged;
// a deliberately loose fallback, not a security boundary.
func (e *Engine) FilterGroups(groups []core.DirectoryGroup) []core.DirectoryGroup {
	if e.groupRe == nil {
		return groups
	}
	filtered := make([]core.DirectoryGroup, 0, len(groups))
	for _, g := range groups {
		if e.groupRe.MatchString(g.Name) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// FilterTeams reduces teams to those whose name matches the configured team
// pattern, with the same permissive fallback as FilterGroups.
func (e *Engine) FilterTeams(teams []core.RepositoryTeam) []core.RepositoryTeam {
	if e.teamRe == nil {
		return teams
	}
	filtered := make([]core.RepositoryTeam, 0, len(teams))
	for _, t := range teams {
		if e.teamRe.MatchString(t.Name) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Match correlates filtered groups against filtered teams and merges all
// satisfied pairs into one verdict. The verdict permission is the maximum
// across all satisfied pairs; a total-order reduction, not a first-match.
// Empty input on either side denies immediately without pairwise work.
func (e *Engine) Match(groups []core.DirectoryGroup, teams []core.RepositoryTeam) core.Verdict {
	if len(groups) == 0 || len(teams) == 0 {
		return core.Verdict{Authorized: false}
	}

	var (
		authorized    bool
		best          core.PermissionLevel
		matchedGroups = make(map[string]struct{})
		matchedTeams  = make(map[string]struct{})
	)

	for _, g := range groups {
		for _, t := range teams {
			if !e.pairMatches(g.Name, t.Name) {
				continue
			}
			if e.pairExpr != nil && !e.evalPairExpr(g, t) {
				continue
			}

			if !authorized || t.Permission > best {
				best = t.Permission
			}
			authorized = true
			matchedGroups[g.Name] = struct{}{}
			matchedTeams[t.Name] = struct{}{}
		}
	}

	if !authorized {
		return core.Verdict{Authorized: false}
	}

	verdict := core.Verdict{
		Authorized: true,
		Permission: best,
	}
	// preserve input order in the diagnostic lists
	for _, g := range groups {
		if _, ok := matchedGroups[g.Name]; ok {
			verdict.MatchedGroups = append(verdict.MatchedGroups, g.Name)
			delete(matchedGroups, g.Name)
		}
	}
	for _, t := range teams {
		if _, ok := matchedTeams[t.Name]; ok {
			verdict.MatchedTeams = append(verdict.MatchedTeams, t.Name)
			delete(matchedTeams, t.Name)
		}
	}
	return verdict
}

// pairMatches is the match predicate: bidirectional substring containment
// (unless disabled) or equal non-empty capture keys from both patterns.
func (e *Engine) pairMatches(groupName, teamName string) bool {
	if !e.disableContainment {
		gl, tl := strings.ToLower(groupName), strings.ToLower(teamName)
		if strings.Contains(gl, tl) || strings.Contains(tl, gl) {
			return true
		}
	}

	if e.groupRe == nil || e.teamRe == nil {
		return false
	}
	groupKey := captureKey(e.groupRe, groupName)
	teamKey := captureKey(e.teamRe, teamName)
	return groupKey != "" && teamKey != "" && strings.EqualFold(groupKey, teamKey)
}

// captureKey extracts the first capture group of the pattern applied to
// name, or "" when the pattern does not match or defines no capture.
func captureKey(re *regexp.Regexp, name string) string {
	sub := re.FindStringSubmatch(name)
	if len(sub) < 2 {
		return ""
	}
	return sub[1]
}

func (e *Engine) evalPairExpr(g core.DirectoryGroup, t core.RepositoryTeam) bool {
	out, err := expr.Run(e.pairExpr, map[string]any{
		"group": map[string]any{
			"id":          g.ID,
			"name":        g.Name,
			"description": g.Description,
		},
		"team": map[string]any{
			"name":       t.Name,
			"slug":       t.Slug,
			"permission": t.Permission.String(),
		},
	})
	if err != nil {
		log.Warn().Err(err).
			Str("group", g.Name).
			Str("team", t.Name).
			Msg("match expression failed, treating pair as unmatched")
		return false
	}
	b, ok := out.(bool)
	return ok && b
}
