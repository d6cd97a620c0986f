package jira

import (
	"context"
	"io"

	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// Service defines the tracker operations the dispatcher calls once a draft
// is ready. Implementations report failure as data (result structs), never
// as panics; the caller surfaces failures to the end user verbatim.
type Service interface {
	CreateIssue(ctx context.Context, draft *models.IssueDraft) *models.DispatchResult
	UpdateIssue(ctx context.Context, issueKey string, draft *models.IssueDraft) *models.DispatchResult
	GetIssue(ctx context.Context, issueKey string) *models.IssueResult
	SearchIssues(ctx context.Context, jql string, maxResults int) *models.SearchResult
	AddComment(ctx context.Context, issueKey, body string) *models.DispatchResult
	AddAttachment(ctx context.Context, issueKey, filename string, content io.Reader) *models.DispatchResult
}

// NewService returns a real client when Jira credentials are configured
// and a mock otherwise, so the agent can be exercised end to end without a
// Jira instance.
func NewService(cfg *config.Config) Service {
	if !cfg.HasJiraCredentials() {
		return NewMock(cfg.JiraProjectKey)
	}
	return NewClient(cfg)
}
