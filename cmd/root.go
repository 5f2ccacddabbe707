package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/david-wiggs/jenkins-passthrough/internal/buildinfo"
	"github.com/david-wiggs/jenkins-passthrough/internal/logging"
)

// global flags
var (
	cfgFile    string
	serverAddr string
)

const (
	ServerAddrKey = "server"
	AdminTokenKey = "token"
)

var rootCmd = &cobra.Command{
	Use:   "jenkins-passthrough",
	Short: fmt.Sprintf("Jenkins credential broker (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `jenkins-passthrough validates Jenkins pipeline credentials against a
directory identity provider and exchanges them for short-lived, repository-scoped
GitHub tokens minted through a GitHub App installation.`,
	Version: buildinfo.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(nil)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml",
		"Path to the service configuration file")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "",
		"Address of a running jenkins-passthrough server (for remote commands)")
	_ = viper.BindPFlag(ServerAddrKey, rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().String("token", "", "Admin bearer token for remote commands")
	_ = viper.BindPFlag(AdminTokenKey, rootCmd.PersistentFlags().Lookup("token"))

	viper.SetEnvPrefix("PASSTHROUGH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
