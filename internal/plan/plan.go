// Package plan spreads estimated hours for issues across a set of workdays.
// It is pure computation: no I/O, no state shared between calls.
package plan

import (
	"math"
	"sort"
	"time"
)

const (
	// MaxHoursPerDay is the cap on hours any single day may receive.
	MaxHoursPerDay = 8.0
	// MinHoursPerEntry is the smallest fragment worth logging; a day with
	// less room than this is skipped for the issue rather than logging a sliver.
	MinHoursPerEntry = 0.5
)

// DateFormat is the day key format used throughout (ISO date, no time).
const DateFormat = "2006-01-02"

// Issue identifies an issue to log time against. The engine only needs the
// id and display subject, not the full tracker record.
type Issue struct {
	ID      int
	Subject string
}

// Estimate pairs an issue with the hours the user expects to spend on it.
type Estimate struct {
	Issue          Issue
	EstimatedHours float64
}

// Entry is a single planned time log: one date, quarter-hour rounded hours,
// and a comment derived from the issue subject.
type Entry struct {
	Date     string
	Hours    float64
	Comments string
}

// Allocation is the full set of entries produced for one issue, carrying the
// original (not remaining) estimate.
type Allocation struct {
	Issue          Issue
	EstimatedHours float64
	Entries        []Entry
}

// DayEntry is one issue's share of a day, as seen in a breakdown.
type DayEntry struct {
	IssueID  int
	Hours    float64
	Comments string
}

// DayTotal summarises one day of a set of allocations.
type DayTotal struct {
	Date       string
	TotalHours float64
	Entries    []DayEntry
}

// dayState tracks the running (unrounded) total for one workday during a
// Distribute run. Rounding only ever applies to emitted entries, never to
// this total, so rounding error cannot compound across days.
type dayState struct {
	date  string
	total float64
}

// RoundToQuarter rounds hours to the nearest quarter hour.
func RoundToQuarter(hours float64) float64 {
	return math.Round(hours*4) / 4
}

// Distribute spreads each estimate across the given workdays.
//
// Issues are processed in descending estimate order (ties keep input order),
// so the largest tasks claim early days and partial-day fragments land on the
// smaller ones. Days fill in ascending date order against a shared capacity
// of MaxHoursPerDay; a fragment below MinHoursPerEntry is deferred to a later
// day with more room, or dropped if none exists. Issues that receive no
// entries are omitted from the result.
//
// The returned allocations sum to at most the requested hours; when the
// workdays cannot hold everything, the shortfall is silent. Callers that care
// should compare TotalHours against the requested sum.
func Distribute(items []Estimate, workdays []time.Time) []Allocation {
	days := make([]*dayState, len(workdays))
	for i, d := range workdays {
		days[i] = &dayState{date: d.Format(DateFormat)}
	}

	sorted := make([]Estimate, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EstimatedHours > sorted[j].EstimatedHours
	})

	var allocations []Allocation
	for _, item := range sorted {
		remaining := item.EstimatedHours
		var entries []Entry

		for _, day := range days {
			if remaining <= 0 {
				break
			}
			available := MaxHoursPerDay - day.total
			if available <= 0 {
				continue
			}
			toAllocate := math.Min(remaining, available)
			if toAllocate < MinHoursPerEntry {
				continue
			}

			entries = append(entries, Entry{
				Date:     day.date,
				Hours:    RoundToQuarter(toAllocate),
				Comments: "Working on: " + item.Issue.Subject,
			})
			day.total += toAllocate
			remaining -= toAllocate
		}

		if len(entries) > 0 {
			allocations = append(allocations, Allocation{
				Issue:          item.Issue,
				EstimatedHours: item.EstimatedHours,
				Entries:        entries,
			})
		}
	}
	return allocations
}

// TotalHours sums every entry's hours across all allocations.
func TotalHours(allocations []Allocation) float64 {
	var total float64
	for _, alloc := range allocations {
		for _, entry := range alloc.Entries {
			total += entry.Hours
		}
	}
	return total
}

// RequestedHours sums the estimates of all items.
func RequestedHours(items []Estimate) float64 {
	var total float64
	for _, item := range items {
		total += item.EstimatedHours
	}
	return total
}

// DailyBreakdown re-derives a per-day summary from allocation output.
func DailyBreakdown(allocations []Allocation) map[string]*DayTotal {
	breakdown := make(map[string]*DayTotal)
	for _, alloc := range allocations {
		for _, entry := range alloc.Entries {
			day, ok := breakdown[entry.Date]
			if !ok {
				day = &DayTotal{Date: entry.Date}
				breakdown[entry.Date] = day
			}
			day.TotalHours += entry.Hours
			day.Entries = append(day.Entries, DayEntry{
				IssueID:  alloc.Issue.ID,
				Hours:    entry.Hours,
				Comments: entry.Comments,
			})
		}
	}
	return breakdown
}

// SortedBreakdown returns the daily breakdown as a slice in ascending date
// order, for display.
func SortedBreakdown(allocations []Allocation) []*DayTotal {
	breakdown := DailyBreakdown(allocations)
	days := make([]*DayTotal, 0, len(breakdown))
	for _, day := range breakdown {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
