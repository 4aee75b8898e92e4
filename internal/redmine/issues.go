package redmine

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkhoatd/redmine-tracker/internal/plan"
)

// pageSize is the per-request limit for paged list endpoints.
const pageSize = 100

// Ref is a compact id/name reference embedded in issue records.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Issue is a Redmine issue as returned by /issues.json.
type Issue struct {
	ID             int       `json:"id"`
	Project        Ref       `json:"project"`
	Tracker        Ref       `json:"tracker"`
	Status         Ref       `json:"status"`
	Priority       Ref       `json:"priority"`
	Author         Ref       `json:"author"`
	AssignedTo     *Ref      `json:"assigned_to,omitempty"`
	Subject        string    `json:"subject"`
	Description    string    `json:"description,omitempty"`
	DoneRatio      int       `json:"done_ratio"`
	EstimatedHours *float64  `json:"estimated_hours,omitempty"`
	SpentHours     float64   `json:"spent_hours,omitempty"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

// issuesResponse is the paged response envelope for /issues.json.
type issuesResponse struct {
	Issues     []Issue `json:"issues"`
	TotalCount int     `json:"total_count"`
	Offset     int     `json:"offset"`
	Limit      int     `json:"limit"`
}

// issues fetches every page of /issues.json matching params.
func (c *Client) issues(ctx context.Context, params url.Values) ([]Issue, error) {
	var all []Issue
	offset := 0
	for {
		query := url.Values{}
		for k, v := range params {
			query[k] = v
		}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		var page issuesResponse
		if err := c.get(ctx, "/issues.json", query, &page); err != nil {
			return nil, fmt.Errorf("fetching issues: %w", err)
		}
		all = append(all, page.Issues...)
		offset += len(page.Issues)
		if len(page.Issues) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// OpenIssues returns all open issues assigned to the given user.
func (c *Client) OpenIssues(ctx context.Context, userID int) ([]Issue, error) {
	return c.issues(ctx, url.Values{
		"assigned_to_id": {strconv.Itoa(userID)},
		"status_id":      {"open"},
	})
}

// IssuesCreatedBetween returns the user's issues (any status) created in
// [from, to], using Redmine's "><" range filter on created_on.
func (c *Client) IssuesCreatedBetween(ctx context.Context, userID int, from, to time.Time) ([]Issue, error) {
	return c.issues(ctx, url.Values{
		"assigned_to_id": {strconv.Itoa(userID)},
		"created_on": {fmt.Sprintf("><%s|%s",
			from.Format(plan.DateFormat), to.Format(plan.DateFormat))},
	})
}

// IssuesForPeriod returns the issues relevant to the current reporting
// period: all open assigned issues merged with issues created between the
// start of the previous month and the end of now's month, deduplicated by id
// and sorted newest first. The two fetches run in parallel.
func (c *Client) IssuesForPeriod(ctx context.Context, now time.Time) ([]Issue, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var open, ranged []Issue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		open, err = c.OpenIssues(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		ranged, err = c.IssuesCreatedBetween(gctx, user.ID,
			plan.StartOfPreviousMonth(now), plan.EndOfMonth(now))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[int]Issue, len(open)+len(ranged))
	for _, issue := range open {
		merged[issue.ID] = issue
	}
	for _, issue := range ranged {
		merged[issue.ID] = issue
	}

	issues := make([]Issue, 0, len(merged))
	for _, issue := range merged {
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		if !issues[i].CreatedOn.Equal(issues[j].CreatedOn) {
			return issues[i].CreatedOn.After(issues[j].CreatedOn)
		}
		return issues[i].ID > issues[j].ID
	})
	return issues, nil
}
