package fields

import (
	"testing"

	"github.com/tuannvm/jira-assistant/internal/models"
)

func TestInterpretChoiceByIndex(t *testing.T) {
	got, ok := InterpretChoice(FieldIssueType, "2")
	if !ok || got != "Story" {
		t.Errorf("Expected index 2 to resolve to Story, got %q (ok=%v)", got, ok)
	}

	got, ok = InterpretChoice(FieldPriority, "5")
	if !ok || got != "Lowest" {
		t.Errorf("Expected index 5 to resolve to Lowest, got %q (ok=%v)", got, ok)
	}

	if _, ok := InterpretChoice(FieldIssueType, "0"); ok {
		t.Error("Expected index 0 to be rejected")
	}
	if _, ok := InterpretChoice(FieldIssueType, "4"); ok {
		t.Error("Expected out-of-range index to be rejected")
	}
}

func TestInterpretChoiceByName(t *testing.T) {
	cases := []struct {
		field string
		input string
		want  string
	}{
		{FieldIssueType, "task", "Task"},
		{FieldIssueType, "EPIC", "Epic"},
		{FieldStatus, "in progress", "In Progress"},
		{FieldStatus, "In-Progress", "In Progress"},
		{FieldStatus, "inprogress", "In Progress"},
		{FieldStatus, "to do", "To Do"},
		{FieldPriority, "  high  ", "High"},
	}
	for _, tc := range cases {
		got, ok := InterpretChoice(tc.field, tc.input)
		if !ok {
			t.Errorf("Expected %q to resolve for %s, but it was rejected", tc.input, tc.field)
			continue
		}
		if got != tc.want {
			t.Errorf("Expected %q to resolve to %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestInterpretChoiceRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "bug", "urgent", "done"} {
		if got, ok := InterpretChoice(FieldIssueType, input); ok {
			t.Errorf("Expected %q to be rejected, got %q", input, got)
		}
	}
}

func TestMissing(t *testing.T) {
	draft := &models.IssueDraft{}
	got := Missing(draft)
	want := []string{FieldIssueType, FieldPriority, FieldSummary, FieldDescription}
	if len(got) != len(want) {
		t.Fatalf("Expected %d missing fields, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected missing[%d] to be %s, got %s", i, want[i], got[i])
		}
	}

	draft.IssueType = models.IssueTypeTask
	draft.Summary = "Fix login"
	got = Missing(draft)
	if len(got) != 2 || got[0] != FieldPriority || got[1] != FieldDescription {
		t.Errorf("Expected [priority description], got %v", got)
	}

	draft.Priority = models.PriorityHigh
	draft.Description = "Login times out"
	if got := Missing(draft); got != nil {
		t.Errorf("Expected no missing fields, got %v", got)
	}
}

func TestIsSetSkipsUnknownFields(t *testing.T) {
	draft := &models.IssueDraft{}
	if IsSet(draft, FieldSummary) {
		t.Error("Expected summary to be unset on an empty draft")
	}
	if !IsSet(draft, "reporter") {
		t.Error("Expected unknown field to report set so collection skips it")
	}
}
