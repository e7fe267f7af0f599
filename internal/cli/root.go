// Package cli wires configuration, storage and services into commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "promile",
	Short:         "Discord drink tracker with live leaderboards",
	Long:          "Promile tracks drinks per Discord server, estimates each member's intoxication and keeps monthly and live leaderboards.",
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(pruneCmd)
}
