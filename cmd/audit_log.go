package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching audit log...")
		audits, err := cli.ListAudits(cmd.Context(), uint(limit))
		if err != nil {
			return err
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "User", "Repository", "Granted", "Permission", "Matched Teams", "Error",
		})

		for _, e := range audits {
			status := red("NO")
			if e.Granted {
				status = green("YES")
			}

			repo := e.Repository
			if e.Organization != "" {
				repo = e.Organization + "/" + repo
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				truncate(e.Username, 35),
				truncate(repo, 45),
				status,
				e.Permission,
				truncate(strings.Join(e.MatchedTeams, ", "), 40),
				e.Error,
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
}
