// Package render formats allocation previews for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkhoatd/redmine-tracker/internal/plan"
)

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorMuted   = lipgloss.Color("#666666")
	colorWarning = lipgloss.Color("#F39C12")
	colorSuccess = lipgloss.Color("#2ECC71")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	issueStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning)
)

// Preview renders the per-issue allocations, the day-by-day breakdown, the
// grand total, and a warning when less than the requested hours could be
// scheduled.
func Preview(allocations []plan.Allocation, requestedHours float64) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Planned time entries"))
	b.WriteString("\n\n")

	for _, alloc := range allocations {
		planned := 0.0
		for _, entry := range alloc.Entries {
			planned += entry.Hours
		}
		b.WriteString(issueStyle.Render(fmt.Sprintf("#%d %s", alloc.Issue.ID, alloc.Issue.Subject)))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%s estimated, %s planned)",
			formatHours(alloc.EstimatedHours), formatHours(planned))))
		b.WriteString("\n")
		for _, entry := range alloc.Entries {
			b.WriteString(fmt.Sprintf("  %s  %6s\n", entry.Date, formatHours(entry.Hours)))
		}
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Daily breakdown"))
	b.WriteString("\n\n")
	for _, day := range plan.SortedBreakdown(allocations) {
		b.WriteString(fmt.Sprintf("%s  %6s\n", day.Date, formatHours(day.TotalHours)))
		for _, entry := range day.Entries {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  #%-6d %6s  %s",
				entry.IssueID, formatHours(entry.Hours), entry.Comments)))
			b.WriteString("\n")
		}
	}

	total := plan.TotalHours(allocations)
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total: %s", formatHours(total))))
	b.WriteString("\n")

	if total < requestedHours {
		b.WriteString(warningStyle.Render(fmt.Sprintf(
			"Warning: only %s of the requested %s fit the available workdays",
			formatHours(total), formatHours(requestedHours))))
		b.WriteString("\n")
	}
	return b.String()
}

// Warning styles a warning line for the terminal.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Muted styles a de-emphasised line for the terminal.
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// formatHours prints hours compactly: "8h", "2.5h", "0.75h".
func formatHours(hours float64) string {
	s := fmt.Sprintf("%.2f", hours)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + "h"
}
