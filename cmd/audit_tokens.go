package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var auditTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List currently active tokens",
	Long: `Retrieves metadata of all currently active (non-expired) tokens issued by
the server: who requested them, for which repository, and when they expire.
Token values themselves are never stored or shown.`,
	Example: `  jenkins-passthrough audit tokens --server http://localhost:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching active tokens...")
		tokens, err := cli.ListActiveTokens(cmd.Context())
		if err != nil {
			return err
		}

		if len(tokens) == 0 {
			log.Info().Msg("No active tokens found")
			return nil
		}
		log.Debug().Msgf("Retrieved %d active token(s)", len(tokens))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Issued", "Expires", "User", "Repository", "Permission", "Meta",
		})

		for _, tok := range tokens {
			timeLeft := time.Until(tok.ExpiresAt).Round(time.Minute)

			metaStr := "(empty)"
			if tok.Metadata != nil {
				metaStr = fmt.Sprintf("(%d entries)", len(tok.Metadata))
			}

			t.AppendRow(table.Row{
				tok.IssuedAt.Format(time.RFC3339),
				fmt.Sprintf("%s (%s)", tok.ExpiresAt.Format("15:04"), faint(timeLeft.String())),
				bold(truncate(tok.Username, 35)),
				truncate(tok.Organization+"/"+tok.Repository, 45),
				bold(tok.Permission),
				faint(metaStr),
			})
		}

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditTokensCmd)
}
