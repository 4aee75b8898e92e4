package redmine

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mkhoatd/redmine-tracker/internal/plan"
)

// NewTimeEntry is a time entry to be created via POST /time_entries.json.
type NewTimeEntry struct {
	IssueID    int     `json:"issue_id"`
	SpentOn    string  `json:"spent_on"`
	Hours      float64 `json:"hours"`
	Comments   string  `json:"comments"`
	ActivityID int     `json:"activity_id,omitempty"`
}

// TimeEntry is a persisted time entry as returned by the server.
type TimeEntry struct {
	ID      int `json:"id"`
	Project Ref `json:"project"`
	Issue   struct {
		ID int `json:"id"`
	} `json:"issue"`
	User     Ref     `json:"user"`
	Activity Ref     `json:"activity"`
	Hours    float64 `json:"hours"`
	Comments string  `json:"comments"`
	SpentOn  string  `json:"spent_on"`
}

// FailedEntry records one entry that could not be created, with the reason.
type FailedEntry struct {
	Entry  NewTimeEntry
	Reason string
}

// BatchResult is the outcome of a best-effort batch submission: the entries
// the server accepted and the ones it rejected. Successes are never rolled
// back on account of later failures.
type BatchResult struct {
	Created []TimeEntry
	Failed  []FailedEntry
}

// timeEntriesResponse is the paged response envelope for /time_entries.json.
type timeEntriesResponse struct {
	TimeEntries []TimeEntry `json:"time_entries"`
	TotalCount  int         `json:"total_count"`
}

// TimeEntriesForIssue returns the logged time entries for one issue.
func (c *Client) TimeEntriesForIssue(ctx context.Context, issueID int) ([]TimeEntry, error) {
	var resp timeEntriesResponse
	err := c.get(ctx, "/time_entries.json", url.Values{
		"issue_id": {strconv.Itoa(issueID)},
		"limit":    {strconv.Itoa(pageSize)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetching time entries for issue %d: %w", issueID, err)
	}
	return resp.TimeEntries, nil
}

// CreateTimeEntry persists a single time entry and returns the server's record.
func (c *Client) CreateTimeEntry(ctx context.Context, entry NewTimeEntry) (TimeEntry, error) {
	payload := struct {
		TimeEntry NewTimeEntry `json:"time_entry"`
	}{TimeEntry: entry}
	var resp struct {
		TimeEntry TimeEntry `json:"time_entry"`
	}
	if err := c.post(ctx, "/time_entries.json", payload, &resp); err != nil {
		return TimeEntry{}, fmt.Errorf("creating time entry: %w", err)
	}
	return resp.TimeEntry, nil
}

// CreateTimeEntries submits entries one at a time, continuing past individual
// failures. The result carries both the created records and the rejected
// entries with their reasons.
func (c *Client) CreateTimeEntries(ctx context.Context, entries []NewTimeEntry) BatchResult {
	var result BatchResult
	for _, entry := range entries {
		created, err := c.CreateTimeEntry(ctx, entry)
		if err != nil {
			result.Failed = append(result.Failed, FailedEntry{Entry: entry, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result
}

// MapAllocations flattens allocations into the create-requests to submit.
// activityID 0 leaves the activity to the server's default.
func MapAllocations(allocations []plan.Allocation, activityID int) []NewTimeEntry {
	var entries []NewTimeEntry
	for _, alloc := range allocations {
		for _, entry := range alloc.Entries {
			entries = append(entries, NewTimeEntry{
				IssueID:    alloc.Issue.ID,
				SpentOn:    entry.Date,
				Hours:      entry.Hours,
				Comments:   entry.Comments,
				ActivityID: activityID,
			})
		}
	}
	return entries
}
