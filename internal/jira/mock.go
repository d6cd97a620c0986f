package jira

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"

	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// Mock implements Service without a Jira instance. It is used when
// credentials are not configured and by tests; no issues are created
// anywhere.
type Mock struct {
	projectKey string
}

// NewMock returns a mock service issuing keys in the given project.
func NewMock(projectKey string) *Mock {
	if projectKey == "" {
		projectKey = "TJ"
	}
	log.Warnf("Jira credentials not configured - running in mock mode")
	return &Mock{projectKey: projectKey}
}

func (m *Mock) CreateIssue(_ context.Context, draft *models.IssueDraft) *models.DispatchResult {
	key := m.mockKey(draft.Summary)
	issueType := string(draft.IssueType)
	if issueType == "" {
		issueType = "issue"
	}
	return &models.DispatchResult{
		Success:  true,
		IssueKey: key,
		IssueURL: "https://mock-jira.example.com/browse/" + key,
		Message:  fmt.Sprintf("Mock: Created %s %s", issueType, key),
	}
}

func (m *Mock) UpdateIssue(_ context.Context, issueKey string, _ *models.IssueDraft) *models.DispatchResult {
	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		Message:  fmt.Sprintf("Mock: Updated issue %s", issueKey),
	}
}

func (m *Mock) GetIssue(_ context.Context, issueKey string) *models.IssueResult {
	return &models.IssueResult{
		Success: true,
		Issue: &models.IssueDetails{
			Key:         issueKey,
			Summary:     "Mock Issue Summary",
			Status:      "To Do",
			Priority:    "Medium",
			Assignee:    "Mock User",
			IssueType:   "Task",
			Created:     "2024-01-01T00:00:00.000+0000",
			Updated:     "2024-01-01T00:00:00.000+0000",
			Description: "This is a mock issue for testing",
			URL:         "https://mock-jira.example.com/browse/" + issueKey,
		},
		Message: fmt.Sprintf("Found issue %s", issueKey),
	}
}

func (m *Mock) SearchIssues(_ context.Context, jql string, _ int) *models.SearchResult {
	return &models.SearchResult{
		Success: true,
		Total:   2,
		Issues: []models.IssueSummary{
			{
				Key:      m.projectKey + "-123",
				Summary:  "Mock Task 1",
				Status:   "In Progress",
				Priority: "High",
				Assignee: "Mock User",
				URL:      "https://mock-jira.example.com/browse/" + m.projectKey + "-123",
			},
			{
				Key:      m.projectKey + "-124",
				Summary:  "Mock Story 2",
				Status:   "To Do",
				Priority: "Medium",
				Assignee: "Unassigned",
				URL:      "https://mock-jira.example.com/browse/" + m.projectKey + "-124",
			},
		},
		Message: "Found 2 mock issues",
	}
}

func (m *Mock) AddComment(_ context.Context, issueKey, _ string) *models.DispatchResult {
	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		Message:  fmt.Sprintf("Mock: Added comment to %s", issueKey),
	}
}

func (m *Mock) AddAttachment(_ context.Context, issueKey, filename string, _ io.Reader) *models.DispatchResult {
	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		Message:  fmt.Sprintf("Mock: Added attachment %s to %s", filename, issueKey),
	}
}

func (m *Mock) mockKey(summary string) string {
	if summary == "" {
		summary = "mock"
	}
	h := fnv.New32a()
	h.Write([]byte(summary))
	return fmt.Sprintf("%s-%d", m.projectKey, h.Sum32()%1000)
}
