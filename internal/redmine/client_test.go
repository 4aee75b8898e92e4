package redmine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/mkhoatd/redmine-tracker/internal/plan"
	"github.com/mkhoatd/redmine-tracker/internal/redmine"
)

func newTestClient(t *testing.T, handler http.Handler) *redmine.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return redmine.NewClient(redmine.Config{Endpoint: server.URL, APIKey: "test-key"})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func issueJSON(id int, subject, createdOn string) map[string]any {
	return map[string]any{
		"id":         id,
		"subject":    subject,
		"project":    map[string]any{"id": 1, "name": "Website"},
		"status":     map[string]any{"id": 1, "name": "New"},
		"created_on": createdOn,
		"updated_on": createdOn,
	}
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Redmine-API-Key"); got != "test-key" {
			t.Errorf("API key header = %q, want %q", got, "test-key")
		}
		if r.URL.Path != "/users/current.json" {
			t.Errorf("path = %q, want /users/current.json", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"user": map[string]any{
			"id": 7, "login": "jdoe", "firstname": "Jane", "lastname": "Doe",
		}})
	}))

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("ID = %d, want 7", user.ID)
	}
	if user.Name() != "Jane Doe" {
		t.Errorf("Name = %q, want %q", user.Name(), "Jane Doe")
	}
}

func TestCurrentUser_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	}))
	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestOpenIssues_Pagination(t *testing.T) {
	// 150 issues served in two pages of 100.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status_id"); got != "open" {
			t.Errorf("status_id = %q, want open", got)
		}
		if got := r.URL.Query().Get("assigned_to_id"); got != "7" {
			t.Errorf("assigned_to_id = %q, want 7", got)
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var issues []map[string]any
		for i := offset; i < offset+100 && i < 150; i++ {
			issues = append(issues, issueJSON(i+1, fmt.Sprintf("issue %d", i+1), "2026-02-01T09:00:00Z"))
		}
		writeJSON(t, w, map[string]any{
			"issues": issues, "total_count": 150, "offset": offset, "limit": 100,
		})
	}))

	issues, err := client.OpenIssues(context.Background(), 7)
	if err != nil {
		t.Fatalf("OpenIssues: %v", err)
	}
	if len(issues) != 150 {
		t.Errorf("issues = %d, want 150", len(issues))
	}
}

func TestIssuesForPeriod_MergesAndSorts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/current.json":
			writeJSON(t, w, map[string]any{"user": map[string]any{"id": 7, "login": "jdoe"}})
		case r.URL.Query().Get("status_id") == "open":
			writeJSON(t, w, map[string]any{"issues": []map[string]any{
				issueJSON(1, "old open", "2026-01-05T09:00:00Z"),
				issueJSON(2, "shared", "2026-02-10T09:00:00Z"),
			}, "total_count": 2})
		default:
			// The date-range fetch; expect the "><" created_on filter.
			if got := r.URL.Query().Get("created_on"); got != "><2026-01-01|2026-02-28" {
				t.Errorf("created_on = %q, want ><2026-01-01|2026-02-28", got)
			}
			writeJSON(t, w, map[string]any{"issues": []map[string]any{
				issueJSON(2, "shared", "2026-02-10T09:00:00Z"),
				issueJSON(3, "newest", "2026-02-20T09:00:00Z"),
			}, "total_count": 2})
		}
	}))

	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	issues, err := client.IssuesForPeriod(context.Background(), now)
	if err != nil {
		t.Fatalf("IssuesForPeriod: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("issues = %d, want 3 (deduplicated)", len(issues))
	}
	wantOrder := []int{3, 2, 1} // newest first
	for i, want := range wantOrder {
		if issues[i].ID != want {
			t.Errorf("issues[%d].ID = %d, want %d", i, issues[i].ID, want)
		}
	}
}

func TestActivities(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enumerations/time_entry_activities.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"time_entry_activities": []map[string]any{
			{"id": 8, "name": "Design"},
			{"id": 9, "name": "Development", "is_default": true},
		}})
	}))

	activities, err := client.Activities(context.Background())
	if err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(activities))
	}
	if !activities[1].IsDefault {
		t.Error("expected Development to be the default activity")
	}
}

func TestResolveActivity(t *testing.T) {
	activities := []redmine.Activity{
		{ID: 8, Name: "Design"},
		{ID: 9, Name: "Development", IsDefault: true},
	}
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"", 9, false},
		{"Design", 8, false},
		{"development", 9, false},
		{"Testing", 0, true},
	}
	for _, tt := range tests {
		got, err := redmine.ResolveActivity(activities, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveActivity(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveActivity(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	// No default marked and no name given: leave the choice to the server.
	if got, err := redmine.ResolveActivity([]redmine.Activity{{ID: 8, Name: "Design"}}, ""); err != nil || got != 0 {
		t.Errorf("ResolveActivity with no default = (%d, %v), want (0, nil)", got, err)
	}
}

func TestCreateTimeEntry(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/time_entries.json" {
			t.Errorf("request = %s %s, want POST /time_entries.json", r.Method, r.URL.Path)
		}
		var payload struct {
			TimeEntry redmine.NewTimeEntry `json:"time_entry"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if payload.TimeEntry.IssueID != 42 || payload.TimeEntry.Hours != 2.5 {
			t.Errorf("payload = %+v", payload.TimeEntry)
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"time_entry": map[string]any{
			"id": 1001, "hours": 2.5, "spent_on": "2026-02-23",
		}})
	}))

	created, err := client.CreateTimeEntry(context.Background(), redmine.NewTimeEntry{
		IssueID: 42, SpentOn: "2026-02-23", Hours: 2.5, Comments: "Working on: thing",
	})
	if err != nil {
		t.Fatalf("CreateTimeEntry: %v", err)
	}
	if created.ID != 1001 {
		t.Errorf("ID = %d, want 1001", created.ID)
	}
}

func TestCreateTimeEntries_BestEffort(t *testing.T) {
	// Entries for issue 13 are rejected; the batch must keep going and
	// report both outcomes.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			TimeEntry redmine.NewTimeEntry `json:"time_entry"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if payload.TimeEntry.IssueID == 13 {
			http.Error(w, `{"errors":["Issue is invalid"]}`, http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"time_entry": map[string]any{
			"id": 2000 + payload.TimeEntry.IssueID, "hours": payload.TimeEntry.Hours,
		}})
	}))

	result := client.CreateTimeEntries(context.Background(), []redmine.NewTimeEntry{
		{IssueID: 1, SpentOn: "2026-02-23", Hours: 4},
		{IssueID: 13, SpentOn: "2026-02-23", Hours: 2},
		{IssueID: 2, SpentOn: "2026-02-24", Hours: 1},
	})
	if len(result.Created) != 2 {
		t.Errorf("Created = %d, want 2", len(result.Created))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %d, want 1", len(result.Failed))
	}
	if result.Failed[0].Entry.IssueID != 13 {
		t.Errorf("failed entry issue = %d, want 13", result.Failed[0].Entry.IssueID)
	}
	if result.Failed[0].Reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestTimeEntriesForIssue(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("issue_id"); got != "42" {
			t.Errorf("issue_id = %q, want 42", got)
		}
		writeJSON(t, w, map[string]any{"time_entries": []map[string]any{
			{"id": 1, "hours": 3, "spent_on": "2026-02-20"},
			{"id": 2, "hours": 1.5, "spent_on": "2026-02-21"},
		}, "total_count": 2})
	}))

	entries, err := client.TimeEntriesForIssue(context.Background(), 42)
	if err != nil {
		t.Fatalf("TimeEntriesForIssue: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

func TestMapAllocations(t *testing.T) {
	allocations := []plan.Allocation{
		{
			Issue:          plan.Issue{ID: 1, Subject: "big"},
			EstimatedHours: 10,
			Entries: []plan.Entry{
				{Date: "2026-02-23", Hours: 8, Comments: "Working on: big"},
				{Date: "2026-02-24", Hours: 2, Comments: "Working on: big"},
			},
		},
		{
			Issue:          plan.Issue{ID: 2, Subject: "small"},
			EstimatedHours: 2,
			Entries: []plan.Entry{
				{Date: "2026-02-24", Hours: 2, Comments: "Working on: small"},
			},
		},
	}
	entries := redmine.MapAllocations(allocations, 9)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	want := redmine.NewTimeEntry{
		IssueID: 1, SpentOn: "2026-02-23", Hours: 8,
		Comments: "Working on: big", ActivityID: 9,
	}
	if entries[0] != want {
		t.Errorf("entries[0] = %+v, want %+v", entries[0], want)
	}
	if entries[2].IssueID != 2 || entries[2].ActivityID != 9 {
		t.Errorf("entries[2] = %+v", entries[2])
	}
}
