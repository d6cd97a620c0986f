// Package fields declares the issue fields the assistant collects, their
// order, their menu choices, and the validation rules applied to raw
// conversational input.
package fields

import (
	"strconv"
	"strings"

	"github.com/tuannvm/jira-assistant/internal/models"
)

// Field names as they appear in the turn contract and in prompts.
const (
	FieldIssueType   = "issue_type"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldAssignee    = "assignee"
	FieldStartDate   = "start_date"
	FieldDueDate     = "due_date"
	FieldParentKey   = "parent_key"
	FieldLabels      = "labels"
)

// Order is the guided-collection order for issue creation.
var Order = []string{
	FieldIssueType,
	FieldPriority,
	FieldStatus,
	FieldSummary,
	FieldDescription,
	FieldAssignee,
	FieldStartDate,
	FieldDueDate,
	FieldParentKey,
	FieldLabels,
}

// Required is the set of fields a draft needs before it is ready for Jira.
var Required = []string{FieldIssueType, FieldPriority, FieldSummary, FieldDescription}

var choiceMaps = map[string][]string{
	FieldIssueType: {"Task", "Story", "Epic"},
	FieldPriority:  {"Highest", "High", "Medium", "Low", "Lowest"},
	FieldStatus:    {"To Do", "In Progress", "In Review"},
}

// Choices returns the ordered menu options for a field, or nil for
// free-text fields.
func Choices(field string) []string {
	return choiceMaps[field]
}

// IsMenu reports whether the field is answered by picking from a closed
// choice list.
func IsMenu(field string) bool {
	_, ok := choiceMaps[field]
	return ok
}

// InterpretChoice maps raw user input to a declared choice for a menu
// field. It accepts a 1-based index into the choice list or a textual match
// that ignores case, spaces and hyphens ("in progress", "In-Progress" and
// "inprogress" all resolve to "In Progress"). The second return value is
// false when nothing matches.
func InterpretChoice(field, text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}

	opts := choiceMaps[field]

	if n, err := strconv.Atoi(t); err == nil {
		if n >= 1 && n <= len(opts) {
			return opts[n-1], true
		}
		return "", false
	}

	for _, opt := range opts {
		if squash(t) == squash(strings.ToLower(opt)) {
			return opt, true
		}
	}
	return "", false
}

func squash(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// IsSet reports whether the named field holds a value in the draft.
// Unknown field names report true so the collection cursor skips them.
func IsSet(d *models.IssueDraft, field string) bool {
	if d == nil {
		return false
	}
	switch field {
	case FieldIssueType:
		return d.IssueType != ""
	case FieldPriority:
		return d.Priority != ""
	case FieldStatus:
		return d.Status != ""
	case FieldSummary:
		return d.Summary != ""
	case FieldDescription:
		return d.Description != ""
	case FieldAssignee:
		return d.Assignee != ""
	case FieldStartDate:
		return d.StartDate != ""
	case FieldDueDate:
		return d.DueDate != ""
	case FieldParentKey:
		return d.ParentKey != ""
	case FieldLabels:
		return len(d.Labels) > 0
	}
	return true
}

// SetChoice writes a resolved menu choice into the draft.
func SetChoice(d *models.IssueDraft, field, choice string) {
	switch field {
	case FieldIssueType:
		d.IssueType = models.IssueType(choice)
	case FieldPriority:
		d.Priority = models.Priority(choice)
	case FieldStatus:
		d.Status = models.IssueStatus(choice)
	}
}

// Missing returns the required fields not yet present in the draft, in
// registry order.
func Missing(d *models.IssueDraft) []string {
	var out []string
	for _, f := range Required {
		if !IsSet(d, f) {
			out = append(out, f)
		}
	}
	return out
}
