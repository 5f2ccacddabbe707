package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/david-wiggs/jenkins-passthrough/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(ServerAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or env")
	}

	var opts []client.Option
	if token := viper.GetString(AdminTokenKey); token != "" {
		opts = append(opts, client.WithAuthToken(token))
	}

	return client.NewClient(server, opts...), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
