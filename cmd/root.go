package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rt",
	Short: "Redmine time tracker – plan and submit time entries",
	Long: `rt pulls your assigned Redmine issues, spreads your estimated hours
across upcoming workdays (8h per day, quarter-hour entries), and submits
the resulting time entries back to Redmine.
Connection settings live in ~/.redmine-tracker/config.json.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(whoamiCmd)
}
