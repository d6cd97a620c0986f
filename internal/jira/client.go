package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/labels"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// issueTypeIDs maps issue type names to the scheme's type IDs. Creating by
// ID is more reliable than by name on instances with renamed types.
var issueTypeIDs = map[string]string{
	"Task":  "10003",
	"Story": "10004",
	"Epic":  "10000",
}

// Client is a Jira REST v2 API client.
type Client struct {
	config     *config.Config
	httpClient *http.Client
}

// NewClient creates a new Jira client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// CreateIssue creates a new issue from a ready draft. Labels are
// auto-generated from the description when the draft has none, the project
// key falls back to the configured default, and a requested status is
// applied as a post-create transition.
func (c *Client) CreateIssue(ctx context.Context, draft *models.IssueDraft) *models.DispatchResult {
	projectKey := draft.ProjectKey
	if projectKey == "" {
		projectKey = c.config.JiraProjectKey
	}

	issueTypeName := string(draft.IssueType)
	issueTypeID, ok := issueTypeIDs[issueTypeName]
	if !ok {
		log.Warnf("Unknown issue type %q, defaulting to Task", issueTypeName)
		issueTypeID = issueTypeIDs["Task"]
	}

	summary := draft.Summary
	if summary == "" {
		summary = "Issue created via assistant"
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": projectKey},
		"summary":   summary,
		"issuetype": map[string]string{"id": issueTypeID},
	}

	if draft.Description != "" {
		fields["description"] = draft.Description
	}

	if draft.Priority != "" {
		if c.config.JiraPriorityTaskOnly && draft.IssueType != models.IssueTypeTask {
			log.Debugf("Skipping priority for issue type %s", issueTypeName)
		} else {
			fields["priority"] = map[string]string{"name": string(draft.Priority)}
		}
	}

	issueLabels := draft.Labels
	if len(issueLabels) == 0 && draft.Description != "" {
		issueLabels = labels.FromDescription(draft.Description)
	}
	if len(issueLabels) > 0 {
		normalized := make([]string, 0, len(issueLabels))
		for _, l := range issueLabels {
			if n := labels.Normalize(l); n != "" {
				normalized = append(normalized, n)
			}
		}
		fields["labels"] = normalized
	}

	if draft.DueDate != "" {
		fields["duedate"] = draft.DueDate
	}
	if c.config.JiraStartDateFieldID != "" && draft.StartDate != "" {
		fields[c.config.JiraStartDateFieldID] = draft.StartDate
	}
	if draft.ParentKey != "" {
		fields["parent"] = map[string]string{"key": draft.ParentKey}
	}

	if draft.Assignee != "" {
		if user := c.findUser(ctx, draft.Assignee); user != nil {
			fields["assignee"] = map[string]string{"accountId": user.AccountID}
		} else {
			log.Warnf("Assignee not found: %s (continuing without assignee)", draft.Assignee)
		}
	}

	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue", map[string]interface{}{"fields": fields}, http.StatusCreated, &created); err != nil {
		return &models.DispatchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to create issue: %v", err),
		}
	}

	if draft.Status != "" {
		if err := c.transitionIssue(ctx, created.Key, string(draft.Status)); err != nil {
			log.Warnf("Could not transition %s to %s: %v", created.Key, draft.Status, err)
		}
	}

	return &models.DispatchResult{
		Success:  true,
		IssueKey: created.Key,
		IssueURL: c.browseURL(created.Key),
		Message:  fmt.Sprintf("Successfully created %s %s", issueTypeName, created.Key),
	}
}

// UpdateIssue applies the draft's set fields to an existing issue and
// transitions it when a status change was requested.
func (c *Client) UpdateIssue(ctx context.Context, issueKey string, draft *models.IssueDraft) *models.DispatchResult {
	fields := map[string]interface{}{}

	if draft.Summary != "" {
		fields["summary"] = draft.Summary
	}
	if draft.Description != "" {
		fields["description"] = draft.Description
	}
	if draft.Priority != "" {
		fields["priority"] = map[string]string{"name": string(draft.Priority)}
	}
	if draft.IssueType != "" {
		fields["issuetype"] = map[string]string{"name": string(draft.IssueType)}
	}
	if draft.DueDate != "" {
		fields["duedate"] = draft.DueDate
	}
	if c.config.JiraStartDateFieldID != "" && draft.StartDate != "" {
		fields[c.config.JiraStartDateFieldID] = draft.StartDate
	}
	if len(draft.Labels) > 0 {
		normalized := make([]string, 0, len(draft.Labels))
		for _, l := range draft.Labels {
			if n := labels.Normalize(l); n != "" {
				normalized = append(normalized, n)
			}
		}
		fields["labels"] = normalized
	}
	if draft.ParentKey != "" {
		fields["parent"] = map[string]string{"key": draft.ParentKey}
	}
	if draft.Assignee != "" {
		if user := c.findUser(ctx, draft.Assignee); user != nil {
			fields["assignee"] = map[string]string{"accountId": user.AccountID}
		} else {
			log.Warnf("Assignee not found: %s (continuing without changing assignee)", draft.Assignee)
		}
	}

	if len(fields) > 0 {
		path := fmt.Sprintf("/rest/api/2/issue/%s", issueKey)
		if err := c.do(ctx, http.MethodPut, path, map[string]interface{}{"fields": fields}, http.StatusNoContent, nil); err != nil {
			return &models.DispatchResult{
				Success: false,
				Error:   err.Error(),
				Message: fmt.Sprintf("Failed to update issue %s: %v", issueKey, err),
			}
		}
	} else {
		log.Debugf("No field changes to apply for %s", issueKey)
	}

	if draft.Status != "" {
		if err := c.transitionIssue(ctx, issueKey, string(draft.Status)); err != nil {
			log.Warnf("Could not transition %s to %s: %v", issueKey, draft.Status, err)
		}
	}

	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		IssueURL: c.browseURL(issueKey),
		Message:  fmt.Sprintf("Successfully updated issue %s", issueKey),
	}
}

// GetIssue fetches an issue and flattens it for display.
func (c *Client) GetIssue(ctx context.Context, issueKey string) *models.IssueResult {
	var raw map[string]interface{}
	path := fmt.Sprintf("/rest/api/2/issue/%s", issueKey)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &raw); err != nil {
		return &models.IssueResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Could not find issue %s", issueKey),
		}
	}

	fieldsMap, ok := raw["fields"].(map[string]interface{})
	if !ok {
		return &models.IssueResult{
			Success: false,
			Error:   "response missing fields",
			Message: fmt.Sprintf("Could not find issue %s", issueKey),
		}
	}

	details := &models.IssueDetails{
		Key:         rawString(raw["key"]),
		Summary:     rawString(fieldsMap["summary"]),
		Status:      nestedName(fieldsMap, "status"),
		Priority:    nestedName(fieldsMap, "priority"),
		Assignee:    nestedString(fieldsMap, "assignee", "displayName"),
		IssueType:   nestedName(fieldsMap, "issuetype"),
		Created:     rawString(fieldsMap["created"]),
		Updated:     rawString(fieldsMap["updated"]),
		Description: rawString(fieldsMap["description"]),
		URL:         c.browseURL(rawString(raw["key"])),
	}
	if details.Priority == "" {
		details.Priority = "None"
	}
	if details.Assignee == "" {
		details.Assignee = "Unassigned"
	}
	if details.Description == "" {
		details.Description = "No description"
	}

	return &models.IssueResult{
		Success: true,
		Issue:   details,
		Message: fmt.Sprintf("Found issue %s", issueKey),
	}
}

// SearchIssues runs a JQL query and returns a flattened result page.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) *models.SearchResult {
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("fields", "summary,status,priority,assignee")

	var raw struct {
		Total  int                      `json:"total"`
		Issues []map[string]interface{} `json:"issues"`
	}
	path := "/rest/api/2/search?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &raw); err != nil {
		return &models.SearchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Search failed: %v", err),
		}
	}

	issues := make([]models.IssueSummary, 0, len(raw.Issues))
	for _, issue := range raw.Issues {
		key := rawString(issue["key"])
		fieldsMap, _ := issue["fields"].(map[string]interface{})
		row := models.IssueSummary{
			Key:      key,
			Summary:  rawString(fieldsMap["summary"]),
			Status:   nestedName(fieldsMap, "status"),
			Priority: nestedName(fieldsMap, "priority"),
			Assignee: nestedString(fieldsMap, "assignee", "displayName"),
			URL:      c.browseURL(key),
		}
		if row.Priority == "" {
			row.Priority = "None"
		}
		if row.Assignee == "" {
			row.Assignee = "Unassigned"
		}
		issues = append(issues, row)
	}

	return &models.SearchResult{
		Success: true,
		Total:   raw.Total,
		Issues:  issues,
		Message: fmt.Sprintf("Found %d issues", len(issues)),
	}
}

// AddComment posts a comment to an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, body string) *models.DispatchResult {
	path := fmt.Sprintf("/rest/api/2/issue/%s/comment", issueKey)
	var comment struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"body": body}, http.StatusCreated, &comment); err != nil {
		return &models.DispatchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to add comment to %s: %v", issueKey, err),
		}
	}

	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		IssueURL: fmt.Sprintf("%s?focusedCommentId=%s", c.browseURL(issueKey), comment.ID),
		Message:  fmt.Sprintf("Added comment to %s", issueKey),
	}
}

// AddAttachment uploads a file to an issue.
func (c *Client) AddAttachment(ctx context.Context, issueKey, filename string, content io.Reader) *models.DispatchResult {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		return &models.DispatchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to upload attachment: %v", err),
		}
	}

	reqURL := fmt.Sprintf("%s/rest/api/2/issue/%s/attachments", strings.TrimRight(c.config.JiraBaseURL, "/"), issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return &models.DispatchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to upload attachment: %v", err),
		}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.DispatchResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to upload attachment: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &models.DispatchResult{
			Success: false,
			Error:   fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
			Message: fmt.Sprintf("Failed to upload attachment to %s", issueKey),
		}
	}

	return &models.DispatchResult{
		Success:  true,
		IssueKey: issueKey,
		Message:  fmt.Sprintf("Attachment %s uploaded to %s", filename, issueKey),
	}
}

// transitionIssue moves an issue to the named status by resolving the
// matching workflow transition.
func (c *Client) transitionIssue(ctx context.Context, issueKey, targetStatus string) error {
	target := strings.ToLower(strings.TrimSpace(targetStatus))

	var raw struct {
		Transitions []struct {
			ID string `json:"id"`
			To struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	path := fmt.Sprintf("/rest/api/2/issue/%s/transitions", issueKey)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &raw); err != nil {
		return fmt.Errorf("failed to list transitions: %w", err)
	}

	transitionID := ""
	for _, t := range raw.Transitions {
		if strings.ToLower(t.To.Name) == target {
			transitionID = t.ID
			break
		}
	}
	if transitionID == "" {
		return fmt.Errorf("no transition leads to status %q", targetStatus)
	}

	payload := map[string]interface{}{
		"transition": map[string]string{"id": transitionID},
	}
	return c.do(ctx, http.MethodPost, path, payload, http.StatusNoContent, nil)
}

type jiraUser struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// findUser resolves an email or display name to a Jira user. A lookup
// failure is not fatal; callers continue without an assignee.
func (c *Client) findUser(ctx context.Context, identifier string) *jiraUser {
	params := url.Values{}
	params.Set("query", identifier)

	var users []jiraUser
	path := "/rest/api/2/user/search?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &users); err != nil {
		log.Warnf("User search for %q failed: %v", identifier, err)
		return nil
	}

	lower := strings.ToLower(identifier)
	for i := range users {
		if strings.Contains(strings.ToLower(users[i].EmailAddress), lower) ||
			strings.Contains(strings.ToLower(users[i].DisplayName), lower) {
			return &users[i]
		}
	}
	if len(users) > 0 {
		return &users[0]
	}
	return nil
}

// do sends one authenticated JSON request and decodes the response into
// out when it is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonPayload)
	}

	reqURL := strings.TrimRight(c.config.JiraBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// addAuthHeader adds authentication headers to the request
func (c *Client) addAuthHeader(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.config.JiraEmail + ":" + c.config.JiraAPIToken))
	req.Header.Set("Authorization", "Basic "+auth)
}

func (c *Client) browseURL(issueKey string) string {
	return fmt.Sprintf("%s/browse/%s", strings.TrimRight(c.config.JiraBaseURL, "/"), issueKey)
}

// rawString safely converts an interface{} to a string
func rawString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// nestedName extracts fields[key]["name"], e.g. status.name.
func nestedName(fields map[string]interface{}, key string) string {
	return nestedString(fields, key, "name")
}

func nestedString(fields map[string]interface{}, key, sub string) string {
	if m, ok := fields[key].(map[string]interface{}); ok {
		return rawString(m[sub])
	}
	return ""
}
