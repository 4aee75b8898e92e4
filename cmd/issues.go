package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkhoatd/redmine-tracker/internal/config"
	"github.com/mkhoatd/redmine-tracker/internal/plan"
	"github.com/mkhoatd/redmine-tracker/internal/redmine"
)

var issuesSpent bool

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List your issues for the current reporting period",
	Args:  cobra.NoArgs,
	RunE:  runIssues,
}

func init() {
	issuesCmd.Flags().BoolVar(&issuesSpent, "spent", false, "Also show hours already logged per issue")
}

func runIssues(cmd *cobra.Command, args []string) error {
	now := time.Now()
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

	issues, err := client.IssuesForPeriod(ctx, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch issues: %v\n", err)
		os.Exit(1)
	}
	if len(issues) == 0 {
		fmt.Println("No issues found for the current period.")
		return nil
	}

	fmt.Printf("%d issues (%s → %s, plus open)\n\n",
		len(issues),
		plan.StartOfPreviousMonth(now).Format(plan.DateFormat),
		plan.EndOfMonth(now).Format(plan.DateFormat))

	for _, issue := range issues {
		est := ""
		if issue.EstimatedHours != nil {
			est = fmt.Sprintf("  est. %.1fh", *issue.EstimatedHours)
		}
		logged := ""
		if issuesSpent {
			entries, err := client.TimeEntriesForIssue(ctx, issue.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			} else {
				var spent float64
				for _, e := range entries {
					spent += e.Hours
				}
				logged = fmt.Sprintf("  logged %.2fh", spent)
			}
		}
		fmt.Printf("#%-6d %-12s %s%s%s\n", issue.ID, issue.Status.Name, issue.Subject, est, logged)
	}

	fmt.Printf("\n%d workdays left this month (%.0fh at %.0fh/day)\n",
		plan.RemainingWorkdays(now), plan.AvailableHours(now), plan.MaxHoursPerDay)
	return nil
}
