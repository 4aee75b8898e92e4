package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/mkhoatd/redmine-tracker/internal/config"
	"github.com/mkhoatd/redmine-tracker/internal/plan"
	"github.com/mkhoatd/redmine-tracker/internal/redmine"
	"github.com/mkhoatd/redmine-tracker/internal/render"
)

var (
	planFrom      string
	planTo        string
	planEstimates []string
	planActivity  string
	planDryRun    bool
	planYes       bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Spread estimated hours across workdays and submit them",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFrom, "from", "", "First day to schedule (YYYY-MM-DD); defaults to today")
	planCmd.Flags().StringVar(&planTo, "to", "", "Last day to schedule (YYYY-MM-DD); defaults to the end of the month")
	planCmd.Flags().StringArrayVar(&planEstimates, "estimate", nil, "Estimate as <issue-id>=<hours>; repeatable, skips the interactive selection")
	planCmd.Flags().StringVar(&planActivity, "activity", "", "Activity name for submitted entries (default: config, then server default)")
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "Show the preview without submitting")
	planCmd.Flags().BoolVar(&planYes, "yes", false, "Submit without asking for confirmation")
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	from, to, err := scheduleRange(now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := redmine.NewClient(redmine.Config{
		Endpoint: cfg.Redmine.Endpoint,
		APIKey:   cfg.Redmine.APIKey,
	})

	var issues []redmine.Issue
	var fetchErr error
	_ = spinner.New().Title("Fetching issues...").Action(func() {
		issues, fetchErr = client.IssuesForPeriod(ctx, now)
	}).Run()
	if fetchErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch issues: %v\n", fetchErr)
		os.Exit(1)
	}
	if len(issues) == 0 {
		fmt.Println("No issues found for the current period.")
		return nil
	}

	var items []plan.Estimate
	if len(planEstimates) > 0 {
		items, err = estimatesFromFlags(planEstimates, issues)
	} else {
		items, err = estimatesInteractive(issues)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(items) == 0 {
		fmt.Println("Nothing to plan.")
		return nil
	}

	workdays := plan.Workdays(from, to)
	allocations := plan.Distribute(items, workdays)
	if len(allocations) == 0 {
		fmt.Println("No entries could be scheduled in the selected range.")
		return nil
	}

	fmt.Print(render.Preview(allocations, plan.RequestedHours(items)))

	if planDryRun {
		return nil
	}

	entryCount := 0
	for _, alloc := range allocations {
		entryCount += len(alloc.Entries)
	}

	if !planYes {
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Submit %d time entries to Redmine?", entryCount)).
				Affirmative("Submit").
				Negative("Cancel").
				Value(&confirmed),
		))
		if err := form.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	activityName := planActivity
	if activityName == "" {
		activityName = cfg.Redmine.DefaultActivity
	}
	activities, err := client.Activities(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch activities: %v\n", err)
		os.Exit(1)
	}
	activityID, err := redmine.ResolveActivity(activities, activityName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	entries := redmine.MapAllocations(allocations, activityID)

	var result redmine.BatchResult
	_ = spinner.New().Title("Submitting time entries...").Action(func() {
		result = client.CreateTimeEntries(ctx, entries)
	}).Run()

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d created\n", len(result.Created))
	if len(result.Failed) > 0 {
		fmt.Println(render.Warning(fmt.Sprintf("  %d failed", len(result.Failed))))
		for _, f := range result.Failed {
			fmt.Println(render.Muted(fmt.Sprintf("  ! #%d %s: %s",
				f.Entry.IssueID, f.Entry.SpentOn, f.Reason)))
		}
		os.Exit(2)
	}
	return nil
}

// scheduleRange resolves the --from/--to flags against their defaults:
// today through the end of the current month.
func scheduleRange(now time.Time) (time.Time, time.Time, error) {
	from := plan.StartOfDay(now)
	to := plan.EndOfMonth(now)

	if planFrom != "" {
		d, err := time.Parse(plan.DateFormat, planFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value %q: %w", planFrom, err)
		}
		from = d
	}
	if planTo != "" {
		d, err := time.Parse(plan.DateFormat, planTo)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value %q: %w", planTo, err)
		}
		to = d
	}
	return from, to, nil
}

// parseEstimate parses an --estimate flag value of the form <issue-id>=<hours>.
func parseEstimate(spec string) (int, float64, error) {
	idStr, hoursStr, ok := strings.Cut(spec, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --estimate value %q: expected <issue-id>=<hours>", spec)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid issue id in --estimate value %q", spec)
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(hoursStr), 64)
	if err != nil || hours < 0 {
		return 0, 0, fmt.Errorf("invalid hours in --estimate value %q", spec)
	}
	return id, hours, nil
}

// estimatesFromFlags builds the estimate list from --estimate flags, keeping
// flag order. Every referenced issue must be in the fetched period.
func estimatesFromFlags(specs []string, issues []redmine.Issue) ([]plan.Estimate, error) {
	byID := make(map[int]redmine.Issue, len(issues))
	for _, issue := range issues {
		byID[issue.ID] = issue
	}

	var items []plan.Estimate
	for _, spec := range specs {
		id, hours, err := parseEstimate(spec)
		if err != nil {
			return nil, err
		}
		issue, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("issue #%d is not among your issues for the current period", id)
		}
		items = append(items, plan.Estimate{
			Issue:          plan.Issue{ID: issue.ID, Subject: issue.Subject},
			EstimatedHours: hours,
		})
	}
	return items, nil
}

// validateHours accepts an empty string (issue is skipped) or a non-negative
// decimal number of hours.
func validateHours(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("enter hours as a number, e.g. 4.5")
	}
	if hours < 0 {
		return fmt.Errorf("hours cannot be negative")
	}
	return nil
}

// estimatesInteractive runs the two-step selection: multi-select the issues,
// then enter hours per selected issue. Empty inputs skip the issue.
func estimatesInteractive(issues []redmine.Issue) ([]plan.Estimate, error) {
	options := make([]huh.Option[int], len(issues))
	byID := make(map[int]redmine.Issue, len(issues))
	for i, issue := range issues {
		byID[issue.ID] = issue
		label := fmt.Sprintf("#%d %s", issue.ID, issue.Subject)
		if issue.EstimatedHours != nil {
			label += fmt.Sprintf(" (est. %.1fh)", *issue.EstimatedHours)
		}
		options[i] = huh.NewOption(label, issue.ID)
	}

	var selected []int
	selectForm := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[int]().
			Title("Select issues to log time for").
			Options(options...).
			Value(&selected),
	))
	if err := selectForm.Run(); err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, nil
	}

	values := make([]string, len(selected))
	fields := make([]huh.Field, len(selected))
	for i, id := range selected {
		issue := byID[id]
		fields[i] = huh.NewInput().
			Title(fmt.Sprintf("#%d %s", issue.ID, issue.Subject)).
			Placeholder("hours, e.g. 4.5").
			Validate(validateHours).
			Value(&values[i])
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return nil, err
	}

	var items []plan.Estimate
	for i, id := range selected {
		s := strings.TrimSpace(values[i])
		if s == "" {
			continue
		}
		hours, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Validated above; a parse failure here is a programming error.
			return nil, fmt.Errorf("invalid hours %q for issue #%d", s, id)
		}
		items = append(items, plan.Estimate{
			Issue:          plan.Issue{ID: id, Subject: byID[id].Subject},
			EstimatedHours: hours,
		})
	}
	return items, nil
}
