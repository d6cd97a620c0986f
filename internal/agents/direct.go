package agents

import (
	"fmt"
	"strings"

	"github.com/tuannvm/jira-assistant/internal/fields"
	"github.com/tuannvm/jira-assistant/internal/labels"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// ProcessDirect validates a fully-formed draft submitted outside the
// conversation, e.g. from a structured form. It shares the interactive
// path's rules but touches no conversation state: required fields are
// checked, labels are inferred from the description when absent, and the
// project key is defaulted.
func (a *IssueAgent) ProcessDirect(draft *models.IssueDraft) *models.AgentResponse {
	if draft == nil {
		draft = &models.IssueDraft{}
	}

	if missing := fields.Missing(draft); len(missing) > 0 {
		joined := strings.Join(missing, ", ")
		return &models.AgentResponse{
			Intent:          models.IntentCreateIssue,
			Confidence:      1.0,
			ExtractedData:   draft,
			MissingFields:   missing,
			ReadyForJira:    false,
			ResponseMessage: fmt.Sprintf("Missing required fields: %s", joined),
			Error:           fmt.Sprintf("Required fields missing: %s", joined),
		}
	}

	if len(draft.Labels) == 0 && draft.Description != "" {
		draft.Labels = labels.FromDescription(draft.Description)
	}
	if draft.ProjectKey == "" {
		draft.ProjectKey = a.cfg.JiraProjectKey
	}

	return &models.AgentResponse{
		Intent:          models.IntentCreateIssue,
		Confidence:      1.0,
		ExtractedData:   draft,
		ReadyForJira:    true,
		ResponseMessage: "Issue data validated and ready for creation",
	}
}
