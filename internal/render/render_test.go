package render_test

import (
	"strings"
	"testing"

	"github.com/mkhoatd/redmine-tracker/internal/plan"
	"github.com/mkhoatd/redmine-tracker/internal/render"
)

func sampleAllocations() []plan.Allocation {
	return []plan.Allocation{
		{
			Issue:          plan.Issue{ID: 101, Subject: "Fix login"},
			EstimatedHours: 10,
			Entries: []plan.Entry{
				{Date: "2026-02-23", Hours: 8, Comments: "Working on: Fix login"},
				{Date: "2026-02-24", Hours: 2, Comments: "Working on: Fix login"},
			},
		},
	}
}

func TestPreview(t *testing.T) {
	out := render.Preview(sampleAllocations(), 10)

	for _, want := range []string{
		"#101 Fix login",
		"2026-02-23",
		"2026-02-24",
		"Daily breakdown",
		"Total: 10h",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Warning") {
		t.Errorf("unexpected warning in fully-scheduled preview:\n%s", out)
	}
}

func TestPreview_UnderAllocationWarning(t *testing.T) {
	// 12h requested but only 10h planned: the shortfall must be surfaced.
	out := render.Preview(sampleAllocations(), 12)
	if !strings.Contains(out, "Warning") || !strings.Contains(out, "10h") || !strings.Contains(out, "12h") {
		t.Errorf("expected under-allocation warning naming 10h and 12h:\n%s", out)
	}
}

func TestPreview_BreakdownAscending(t *testing.T) {
	out := render.Preview(sampleAllocations(), 10)
	breakdown := out[strings.Index(out, "Daily breakdown"):]
	first := strings.Index(breakdown, "2026-02-23")
	second := strings.Index(breakdown, "2026-02-24")
	if first == -1 || second == -1 || first > second {
		t.Errorf("breakdown days not in ascending order:\n%s", breakdown)
	}
}
