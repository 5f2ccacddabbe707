package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/david-wiggs/jenkins-passthrough/internal/config"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return err
		}
		log.Info().Msg("Configuration is valid.")

		fmt.Println(bold("\n── Resolved Configuration ──"))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Listen address", cfg.Server.Addr},
			{"Environment", orDefault(cfg.Environment, "(production)")},
			{"Admin API", enabledWhen(cfg.Server.AdminSigningKey != "")},
			{"Auth strategy", cfg.Identity.Strategy},
			{"Directory base URL", cfg.Identity.BaseURL},
			{"GitHub server", orDefault(cfg.GitHub.Server, "github.com")},
			{"GitHub organization", orDefault(cfg.GitHub.Organization, "(per request)")},
			{"Group pattern", orDefault(cfg.Authz.GroupPattern, "(none)")},
			{"Team pattern", orDefault(cfg.Authz.TeamPattern, "(none)")},
			{"Match expression", orDefault(cfg.Authz.MatchExpr, "(none)")},
			{"Name containment", enabledWhen(!cfg.Authz.DisableNameContainment)},
			{"Audit", auditSummary(cfg.Audit)},
		})
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func orDefault(s, fallback string) string {
	if s == "" {
		return faint(fallback)
	}
	return s
}

func enabledWhen(enabled bool) string {
	if enabled {
		return green("enabled")
	}
	return faint("disabled")
}

func auditSummary(cfg config.AuditConfig) string {
	if !cfg.Enabled {
		return faint("disabled")
	}
	parts := []string{cfg.Type}
	if cfg.Path != "" {
		parts = append(parts, cfg.Path)
	}
	return green("enabled") + " (" + strings.Join(parts, ", ") + ")"
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
