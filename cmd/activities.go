package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkhoatd/redmine-tracker/internal/config"
	"github.com/mkhoatd/redmine-tracker/internal/redmine"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List the server's time-entry activities",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

func runActivities(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := redmine.NewClient(redmine.Config{
		Endpoint: cfg.Redmine.Endpoint,
		APIKey:   cfg.Redmine.APIKey,
	})

	activities, err := client.Activities(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch activities: %v\n", err)
		os.Exit(1)
	}

	for _, activity := range activities {
		marker := ""
		if activity.IsDefault {
			marker = "  (default)"
		}
		fmt.Printf("%-4d %s%s\n", activity.ID, activity.Name, marker)
	}
	return nil
}
