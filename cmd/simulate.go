package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/engine"
	"github.com/david-wiggs/jenkins-passthrough/internal/ghapp"
)

var (
	simGroups []string
	simTeams  []string
	simDebug  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the authorization matcher against hand-written inputs",
	Long: `Evaluates the configured group/team patterns and the matcher locally,
without talking to the identity provider or GitHub. Useful for answering
"would this user's groups grant access to this repository's teams?" before
rolling out a pattern change.`,
	Example: `  # would a member of JenkinsProject7Deploy get access via proj7-gh-push?
  jenkins-passthrough simulate \
    --group JenkinsProject7Deploy \
    --team proj7-gh-push:push --team platform-admins:admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		eng, err := engine.New(engine.Config{
			GroupPattern:           cfg.Authz.GroupPattern,
			TeamPattern:            cfg.Authz.TeamPattern,
			MatchExpr:              cfg.Authz.MatchExpr,
			DisableNameContainment: cfg.Authz.DisableNameContainment,
		})
		if err != nil {
			return fmt.Errorf("building decision engine: %w", err)
		}

		groups := make([]core.DirectoryGroup, 0, len(simGroups))
		for i, name := range simGroups {
			groups = append(groups, core.DirectoryGroup{
				ID:   fmt.Sprintf("simulated-%d", i),
				Name: name,
			})
		}

		teams := make([]core.RepositoryTeam, 0, len(simTeams))
		for _, raw := range simTeams {
			teams = append(teams, parseSimTeam(raw))
		}

		filteredGroups := eng.FilterGroups(groups)
		filteredTeams := eng.FilterTeams(teams)
		log.Info().Msgf("%d/%d group(s) and %d/%d team(s) survive the pattern filter",
			len(filteredGroups), len(groups), len(filteredTeams), len(teams))

		verdict := eng.Match(filteredGroups, filteredTeams)

		if simDebug {
			log.Info().Msg(spew.Sdump(verdict))
		}

		printVerdict(verdict)
		return nil
	},
}

// parseSimTeam parses "name" or "name:permission" into a RepositoryTeam. The
// slug is derived the way GitHub does, lowercased with spaces dashed.
func parseSimTeam(raw string) core.RepositoryTeam {
	name, perm, _ := strings.Cut(raw, ":")
	return core.RepositoryTeam{
		Name:       name,
		Slug:       strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Permission: core.ParsePermission(perm),
	}
}

func printVerdict(verdict core.Verdict) {
	fmt.Println(bold("\n── Simulated Verdict ──"))

	decision := red("denied")
	if verdict.Authorized {
		decision = green("authorized")
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRows([]table.Row{
		{"Decision", bold(decision)},
		{"Permission", verdict.Permission.String()},
		{"Scopes", strings.Join(ghapp.ScopesFor(verdict.Permission), ", ")},
		{"Matched groups", listOrNone(verdict.MatchedGroups)},
		{"Matched teams", listOrNone(verdict.MatchedTeams)},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return faint("(none)")
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringArrayVar(&simGroups, "group", nil,
		"Directory group name the user is a member of (repeatable)")
	simulateCmd.Flags().StringArrayVar(&simTeams, "team", nil,
		"Repository team as name[:permission] (repeatable)")
	simulateCmd.Flags().BoolVar(&simDebug, "debug", false, "Dump the raw verdict")

	_ = simulateCmd.MarkFlagRequired("group")
	_ = simulateCmd.MarkFlagRequired("team")
}
