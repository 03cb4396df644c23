// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "healthdash",
	Short: "HealthDash is a role based health monitoring dashboard",
	Long: `HealthDash is a role based health monitoring dashboard.

"start" runs the dashboard API server. The remaining commands hold a
session against a running server and call it on the user's behalf.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newGetCmd(),
		newRoutesCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
