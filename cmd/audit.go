package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail of a running server",
	Long: `Commands for querying the audit trail and active tokens of a running
server. These talk to the admin API and require --server plus an admin
bearer token.`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
