package redmine

import (
	"context"
	"fmt"
	"strings"
)

// Activity is a time-entry activity from the server's enumeration.
type Activity struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Activities fetches the server's time-entry activity enumeration.
func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var resp struct {
		Activities []Activity `json:"time_entry_activities"`
	}
	if err := c.get(ctx, "/enumerations/time_entry_activities.json", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching time entry activities: %w", err)
	}
	return resp.Activities, nil
}

// ResolveActivity picks the activity to classify entries with. A non-empty
// name must match one of the server's activities (case-insensitive); an empty
// name falls back to the server default, or 0 (server decides) if none is
// marked default.
func ResolveActivity(activities []Activity, name string) (int, error) {
	if name == "" {
		for _, a := range activities {
			if a.IsDefault {
				return a.ID, nil
			}
		}
		return 0, nil
	}
	var known []string
	for _, a := range activities {
		if strings.EqualFold(a.Name, name) {
			return a.ID, nil
		}
		known = append(known, a.Name)
	}
	return 0, fmt.Errorf("unknown activity %q (server has: %s)", name, strings.Join(known, ", "))
}
