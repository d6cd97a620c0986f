package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/tuannvm/jira-assistant/internal/conversation"
	"github.com/tuannvm/jira-assistant/internal/fields"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// fieldPrompt builds the question for a field, with an optional leading
// validation error, and packages it as a not-ready response awaiting that
// field.
func (a *IssueAgent) fieldPrompt(state *conversation.State, field, errMsg string) *models.AgentResponse {
	prefix := ""
	if errMsg != "" {
		prefix = errMsg + "\n\n"
	}

	var message string
	switch field {
	case fields.FieldIssueType:
		message = prefix + "Select Work Type:\n" + choiceMenu(field) + "\n\nEnter a number or name:"

	case fields.FieldPriority:
		message = prefix + "Select Priority:\n" + choiceMenu(field) + "\n\nEnter a number or name:"

	case fields.FieldStatus:
		message = prefix + "Select Status:\n" + choiceMenu(field) + "\n\nEnter a number or name:"

	case fields.FieldSummary:
		message = prefix + "Enter Issue Summary:\nProvide a brief, clear title for this issue:"

	case fields.FieldDescription:
		message = prefix + "Enter Description:\nProvide detailed information about this issue:"

	case fields.FieldAssignee:
		message = prefix + "Enter Assignee:\nEmail address to assign this issue (or type 'skip'):"

	case fields.FieldStartDate:
		message = prefix + fmt.Sprintf("Enter Start Date:\nFormat: YYYY-MM-DD (e.g., %s) or type 'skip':", exampleDate())

	case fields.FieldDueDate:
		message = prefix + fmt.Sprintf("Enter Due Date:\nFormat: YYYY-MM-DD (e.g., %s) or type 'skip':", exampleDate())

	case fields.FieldParentKey:
		message = prefix + "Enter Parent Issue:\nLink to a parent issue (e.g., TJ-123) or type 'skip':"

	case fields.FieldLabels:
		if len(state.Draft.Labels) > 0 {
			message = prefix + fmt.Sprintf(
				"Review Labels:\nAuto-generated labels: %s\n\nAdd more labels (comma-separated), type 'clear' to remove all, or 'skip' to keep current:",
				strings.Join(state.Draft.Labels, ", "))
		} else {
			message = prefix + "Enter Labels:\nAdd labels (comma-separated) or type 'skip':"
		}

	default:
		message = prefix + fmt.Sprintf("Please provide a value for %s:", field)
	}

	return &models.AgentResponse{
		Intent:          models.IntentCreateIssue,
		Confidence:      1.0,
		ExtractedData:   state.Draft,
		MissingFields:   []string{field},
		NextQuestion:    message,
		ReadyForJira:    false,
		ResponseMessage: message,
	}
}

func choiceMenu(field string) string {
	opts := fields.Choices(field)
	lines := make([]string, len(opts))
	for i, opt := range opts {
		lines[i] = fmt.Sprintf("%d. %s", i+1, opt)
	}
	return strings.Join(lines, "\n")
}

func exampleDate() string {
	return time.Now().Format("2006-01-02")
}

// helpMessage summarizes what the assistant can do.
const helpMessage = `I can help you manage Jira issues. Try:
- "Create a task" to start a new issue (I will walk you through the fields)
- "What's the status of TJ-123?" to check an issue
- "Update TJ-123, move it to In Progress" to change an issue
- "Search for high priority tasks" to find issues
- "help" to see this message again`
