package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/jira"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// Dispatcher executes ready responses against the tracker and renders the
// outcome for the user. Tracker failures are surfaced verbatim; nothing is
// retried and conversation state is not reset.
type Dispatcher struct {
	cfg     *config.Config
	service jira.Service
}

// NewDispatcher creates a dispatcher over the given tracker service.
func NewDispatcher(cfg *config.Config, service jira.Service) *Dispatcher {
	return &Dispatcher{cfg: cfg, service: service}
}

// Dispatch runs the operation a ready response calls for and returns the
// user-facing outcome message plus an error descriptor when the tracker
// call failed.
func (d *Dispatcher) Dispatch(ctx context.Context, resp *models.AgentResponse) (string, string) {
	draft := resp.ExtractedData
	if draft == nil {
		draft = &models.IssueDraft{}
	}

	switch resp.Intent {
	case models.IntentCreateIssue:
		result := d.service.CreateIssue(ctx, draft)
		if !result.Success {
			return result.Message, result.Error
		}
		msg := result.Message
		if result.IssueURL != "" {
			msg += "\n" + result.IssueURL
		}
		return msg, ""

	case models.IntentUpdateIssue:
		if draft.IssueKey == "" {
			return "I need an issue key (e.g., TJ-123) to update an issue.", "missing issue key"
		}
		result := d.service.UpdateIssue(ctx, draft.IssueKey, draft)
		return result.Message, result.Error

	case models.IntentQueryIssue:
		if draft.IssueKey == "" {
			return "I need an issue key (e.g., TJ-123) to look up an issue.", "missing issue key"
		}
		result := d.service.GetIssue(ctx, draft.IssueKey)
		if !result.Success {
			return result.Message, result.Error
		}
		return formatIssueDetails(result.Issue), ""

	case models.IntentSearchIssues:
		jql := d.buildJQL(draft)
		log.Debugf("Searching issues with JQL: %s", jql)
		result := d.service.SearchIssues(ctx, jql, 10)
		if !result.Success {
			return result.Message, result.Error
		}
		return formatSearchResult(result), ""

	case models.IntentHelp:
		return helpMessage, ""
	}

	return resp.ResponseMessage, ""
}

// buildJQL turns the extracted filters into a JQL query scoped to the
// configured project.
func (d *Dispatcher) buildJQL(draft *models.IssueDraft) string {
	projectKey := draft.ProjectKey
	if projectKey == "" {
		projectKey = d.cfg.JiraProjectKey
	}

	clauses := []string{fmt.Sprintf("project = %q", projectKey)}
	if draft.IssueType != "" {
		clauses = append(clauses, fmt.Sprintf("issuetype = %q", string(draft.IssueType)))
	}
	if draft.Priority != "" {
		clauses = append(clauses, fmt.Sprintf("priority = %q", string(draft.Priority)))
	}
	if draft.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = %q", string(draft.Status)))
	}
	if draft.Assignee != "" {
		clauses = append(clauses, fmt.Sprintf("assignee = %q", draft.Assignee))
	}

	return strings.Join(clauses, " AND ") + " ORDER BY updated DESC"
}

func formatIssueDetails(issue *models.IssueDetails) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", issue.Key, issue.Summary))
	sb.WriteString(fmt.Sprintf("Type: %s | Status: %s | Priority: %s\n", issue.IssueType, issue.Status, issue.Priority))
	sb.WriteString(fmt.Sprintf("Assignee: %s\n", issue.Assignee))
	sb.WriteString(fmt.Sprintf("Description: %s\n", issue.Description))
	sb.WriteString(issue.URL)
	return sb.String()
}

func formatSearchResult(result *models.SearchResult) string {
	if len(result.Issues) == 0 {
		return "No issues matched your search."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n", result.Total))
	for i, issue := range result.Issues {
		sb.WriteString(fmt.Sprintf("%d. %s: %s [%s, %s, %s]\n",
			i+1, issue.Key, issue.Summary, issue.Status, issue.Priority, issue.Assignee))
	}
	return strings.TrimRight(sb.String(), "\n")
}
