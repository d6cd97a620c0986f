package agents

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/conversation"
	"github.com/tuannvm/jira-assistant/internal/llm"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// stubExtractor returns canned responses in order and records calls.
type stubExtractor struct {
	responses []*models.AgentResponse
	err       error
	panicMsg  string
	calls     int
}

func (s *stubExtractor) Extract(ctx context.Context, message string, conv llm.Context) (*models.AgentResponse, error) {
	s.calls++
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	// Copy so the engine's merge does not mutate the canned response.
	out := *resp
	out.ExtractedData = resp.ExtractedData.Clone()
	return &out, nil
}

func testConfig() *config.Config {
	return &config.Config{JiraProjectKey: "TJ"}
}

func createIntent(draft *models.IssueDraft) *models.AgentResponse {
	if draft == nil {
		draft = &models.IssueDraft{}
	}
	return &models.AgentResponse{
		Intent:          models.IntentCreateIssue,
		Confidence:      0.9,
		ExtractedData:   draft,
		ResponseMessage: "Starting issue creation.",
	}
}

func TestCreateStartsGuidedCollection(t *testing.T) {
	agent := NewIssueAgent(testConfig(), &stubExtractor{responses: []*models.AgentResponse{createIntent(nil)}})

	resp := agent.ProcessMessage(context.Background(), "alice", "create a task")

	if resp.Intent != models.IntentCreateIssue {
		t.Errorf("Expected create_issue intent, got %s", resp.Intent)
	}
	if resp.ReadyForJira {
		t.Error("Expected not ready while fields are missing")
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"issue_type"}) {
		t.Errorf("Expected to await issue_type, got %v", resp.MissingFields)
	}
	for _, want := range []string{"Select Work Type", "1. Task", "2. Story", "3. Epic"} {
		if !strings.Contains(resp.NextQuestion, want) {
			t.Errorf("Expected issue type menu to contain %q, got %q", want, resp.NextQuestion)
		}
	}
}

func TestMenuAnswerByIndexAdvances(t *testing.T) {
	agent := NewIssueAgent(testConfig(), &stubExtractor{responses: []*models.AgentResponse{createIntent(nil)}})

	agent.ProcessMessage(context.Background(), "alice", "create an issue")
	resp := agent.ProcessMessage(context.Background(), "alice", "2")

	if resp.ExtractedData.IssueType != models.IssueTypeStory {
		t.Errorf("Expected choice 2 to set Story, got %s", resp.ExtractedData.IssueType)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"priority"}) {
		t.Errorf("Expected to advance to priority, got %v", resp.MissingFields)
	}
	if !strings.Contains(resp.NextQuestion, "Select Priority") {
		t.Errorf("Expected priority menu, got %q", resp.NextQuestion)
	}
}

func TestMenuAnswerByNameIgnoresCaseAndHyphens(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType: models.IssueTypeTask,
		Priority:  models.PriorityHigh,
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create a high priority task")
	if !reflect.DeepEqual(resp.MissingFields, []string{"status"}) {
		t.Fatalf("Expected to await status, got %v", resp.MissingFields)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "In-Progress")
	if resp.ExtractedData.Status != models.StatusInProgress {
		t.Errorf("Expected In-Progress to resolve to In Progress, got %s", resp.ExtractedData.Status)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"summary"}) {
		t.Errorf("Expected to advance to summary, got %v", resp.MissingFields)
	}
}

func TestInvalidMenuChoiceReprompts(t *testing.T) {
	agent := NewIssueAgent(testConfig(), &stubExtractor{responses: []*models.AgentResponse{createIntent(nil)}})

	agent.ProcessMessage(context.Background(), "alice", "create an issue")
	resp := agent.ProcessMessage(context.Background(), "alice", "bug")

	if !strings.Contains(resp.ResponseMessage, "Invalid choice") {
		t.Errorf("Expected invalid choice message, got %q", resp.ResponseMessage)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"issue_type"}) {
		t.Errorf("Expected to still await issue_type, got %v", resp.MissingFields)
	}
	if resp.ExtractedData.IssueType != "" {
		t.Errorf("Expected issue type to stay unset, got %s", resp.ExtractedData.IssueType)
	}
}

func TestCollectionStartsAtFirstGap(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType: models.IssueTypeTask,
		Summary:   "Fix login timeout",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create a task: fix login timeout")

	if !reflect.DeepEqual(resp.MissingFields, []string{"priority"}) {
		t.Errorf("Expected collection to start at priority, got %v", resp.MissingFields)
	}
	if resp.ExtractedData.Summary != "Fix login timeout" {
		t.Errorf("Expected extracted summary to be kept, got %q", resp.ExtractedData.Summary)
	}
}

func TestInvalidAssigneeEmailReprompts(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType:   models.IssueTypeTask,
		Priority:    models.PriorityHigh,
		Status:      models.StatusToDo,
		Summary:     "Fix login",
		Description: "Users cannot reset their password",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create it")
	if !reflect.DeepEqual(resp.MissingFields, []string{"assignee"}) {
		t.Fatalf("Expected to await assignee, got %v", resp.MissingFields)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "not-an-email")
	if !strings.Contains(resp.ResponseMessage, "Invalid email format") {
		t.Errorf("Expected email validation message, got %q", resp.ResponseMessage)
	}
	if resp.ExtractedData.Assignee != "" {
		t.Errorf("Expected assignee to stay unset, got %q", resp.ExtractedData.Assignee)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "skip")
	if resp.ExtractedData.Assignee != "" {
		t.Errorf("Expected skip to leave assignee unset, got %q", resp.ExtractedData.Assignee)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"start_date"}) {
		t.Errorf("Expected to advance to start_date, got %v", resp.MissingFields)
	}
}

func TestInvalidDateReprompts(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType:   models.IssueTypeTask,
		Priority:    models.PriorityHigh,
		Status:      models.StatusToDo,
		Summary:     "Fix login",
		Description: "Users cannot reset their password",
		Assignee:    "dev@example.com",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	agent.ProcessMessage(context.Background(), "alice", "create it")
	resp := agent.ProcessMessage(context.Background(), "alice", "2025-02-30")

	if !strings.Contains(resp.ResponseMessage, "Invalid date format") {
		t.Errorf("Expected date validation message, got %q", resp.ResponseMessage)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"start_date"}) {
		t.Errorf("Expected to still await start_date, got %v", resp.MissingFields)
	}
}

func TestDescriptionRegeneratesLabels(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType: models.IssueTypeTask,
		Priority:  models.PriorityHigh,
		Status:    models.StatusToDo,
		Summary:   "Fix login",
		Labels:    []string{"stale-label"},
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create it")
	if !reflect.DeepEqual(resp.MissingFields, []string{"description"}) {
		t.Fatalf("Expected to await description, got %v", resp.MissingFields)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "The login page crashes")
	if !reflect.DeepEqual(resp.ExtractedData.Labels, []string{"login"}) {
		t.Errorf("Expected description to replace labels with [login], got %v", resp.ExtractedData.Labels)
	}
}

func TestLabelsReviewStep(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType:   models.IssueTypeTask,
		Priority:    models.PriorityHigh,
		Status:      models.StatusToDo,
		Summary:     "Fix login",
		Description: "Users cannot reset their password",
		Assignee:    "dev@example.com",
		StartDate:   "2025-06-01",
		DueDate:     "2025-06-15",
		ParentKey:   "TJ-1",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	// Every other field is filled, but labels still get a review step.
	resp := agent.ProcessMessage(context.Background(), "alice", "create it")
	if !reflect.DeepEqual(resp.MissingFields, []string{"labels"}) {
		t.Fatalf("Expected labels review step, got %v", resp.MissingFields)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "backend, Auth Fix")
	if !reflect.DeepEqual(resp.ExtractedData.Labels, []string{"backend", "auth-fix"}) {
		t.Errorf("Expected normalized manual labels, got %v", resp.ExtractedData.Labels)
	}
	if !resp.ReadyForJira {
		t.Error("Expected draft to be ready after the last field")
	}
	if len(resp.MissingFields) != 0 || resp.NextQuestion != "" {
		t.Errorf("Expected ready response to carry no missing fields or question, got %v / %q",
			resp.MissingFields, resp.NextQuestion)
	}
}

func TestLabelsClear(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType:   models.IssueTypeTask,
		Priority:    models.PriorityHigh,
		Status:      models.StatusToDo,
		Summary:     "Fix login",
		Description: "The login page crashes",
		Assignee:    "dev@example.com",
		StartDate:   "2025-06-01",
		DueDate:     "2025-06-15",
		ParentKey:   "TJ-1",
		Labels:      []string{"login"},
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create it")
	if !strings.Contains(resp.NextQuestion, "Auto-generated labels: login") {
		t.Errorf("Expected review prompt to show current labels, got %q", resp.NextQuestion)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "clear")
	if len(resp.ExtractedData.Labels) != 0 {
		t.Errorf("Expected clear to drop all labels, got %v", resp.ExtractedData.Labels)
	}
	if !resp.ReadyForJira {
		t.Error("Expected draft to be ready after the labels step")
	}
}

func TestMergeDraftUnionsLabels(t *testing.T) {
	existing := &models.IssueDraft{Labels: []string{"api"}, Summary: "Fix login"}
	extracted := &models.IssueDraft{Labels: []string{"mobile", "api"}, Priority: models.PriorityHigh}

	merged := mergeDraft(existing, extracted)

	if !reflect.DeepEqual(merged.Labels, []string{"api", "mobile"}) {
		t.Errorf("Expected labels to union, got %v", merged.Labels)
	}
	if merged.Summary != "Fix login" {
		t.Errorf("Expected absent fields to survive the merge, got %q", merged.Summary)
	}
	if merged.Priority != models.PriorityHigh {
		t.Errorf("Expected present fields to overwrite, got %s", merged.Priority)
	}
	if len(existing.Labels) != 1 {
		t.Errorf("Expected merge to leave the stored draft untouched, got %v", existing.Labels)
	}
}

func TestExtractionFailureDegrades(t *testing.T) {
	stub := &stubExtractor{err: errors.New("provider unavailable")}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create an issue")

	if resp.Intent != models.IntentUnknown {
		t.Errorf("Expected unknown intent on extraction failure, got %s", resp.Intent)
	}
	if resp.Error == "" {
		t.Error("Expected error descriptor on extraction failure")
	}
	if !strings.Contains(resp.ResponseMessage, "having trouble") {
		t.Errorf("Expected clarification message, got %q", resp.ResponseMessage)
	}
}

func TestAwaitedFieldAbsorbsTurn(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType: models.IssueTypeTask,
		Summary:   "Fix login",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	agent.ProcessMessage(context.Background(), "alice", "create a task: fix login")

	// The engine is awaiting priority; an out-of-range choice re-prompts
	// without touching the stored draft.
	resp := agent.ProcessMessage(context.Background(), "alice", "9")
	if !strings.Contains(resp.ResponseMessage, "Invalid choice") {
		t.Fatalf("Expected the awaited field to absorb the turn, got %q", resp.ResponseMessage)
	}
	if resp.ExtractedData.Summary != "Fix login" {
		t.Errorf("Expected stored draft to survive, got %q", resp.ExtractedData.Summary)
	}
}

func TestUnknownIntentDoesNotClobberDraft(t *testing.T) {
	ready := createIntent(&models.IssueDraft{
		IssueType:   models.IssueTypeTask,
		Priority:    models.PriorityHigh,
		Summary:     "Fix login",
		Description: "Users cannot reset their password",
	})
	ready.ReadyForJira = true
	stub := &stubExtractor{responses: []*models.AgentResponse{ready}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create a task...")
	if !resp.ReadyForJira {
		t.Fatalf("Expected a ready first turn, got %v", resp)
	}

	// A provider failure on the next turn degrades to unknown and must
	// leave the stored draft alone.
	stub.err = errors.New("provider unavailable")
	agent.ProcessMessage(context.Background(), "alice", "thanks")

	stub.err = nil
	stub.responses = []*models.AgentResponse{createIntent(nil)}
	resp = agent.ProcessMessage(context.Background(), "alice", "create another field pass")
	if resp.ExtractedData.Summary != "Fix login" {
		t.Errorf("Expected stored draft to survive the unknown turn, got %q", resp.ExtractedData.Summary)
	}
}

func TestPanicRecovery(t *testing.T) {
	stub := &stubExtractor{panicMsg: "boom"}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create an issue")

	if resp == nil {
		t.Fatal("Expected a response despite the panic")
	}
	if resp.Intent != models.IntentUnknown {
		t.Errorf("Expected unknown intent after panic, got %s", resp.Intent)
	}
	if !strings.Contains(resp.Error, "boom") {
		t.Errorf("Expected error to carry the panic value, got %q", resp.Error)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{
		createIntent(&models.IssueDraft{Summary: "Alice's issue"}),
		createIntent(&models.IssueDraft{Summary: "Bob's issue"}),
	}}
	agent := NewIssueAgent(testConfig(), stub)

	a := agent.ProcessMessage(context.Background(), "alice", "create an issue")
	b := agent.ProcessMessage(context.Background(), "bob", "create an issue")

	if a.ExtractedData.Summary != "Alice's issue" {
		t.Errorf("Expected alice's draft, got %q", a.ExtractedData.Summary)
	}
	if b.ExtractedData.Summary != "Bob's issue" {
		t.Errorf("Expected bob's draft, got %q", b.ExtractedData.Summary)
	}
}

func TestExtractorReadyClaimIsRevalidated(t *testing.T) {
	// The model claims readiness while only the summary is set; the
	// engine must re-derive readiness from the merged draft and fall
	// back to guided collection.
	claim := createIntent(&models.IssueDraft{Summary: "Fix login"})
	claim.ReadyForJira = true
	agent := NewIssueAgent(testConfig(), &stubExtractor{responses: []*models.AgentResponse{claim}})

	resp := agent.ProcessMessage(context.Background(), "alice", "create an issue for the login fix")

	if resp.ReadyForJira {
		t.Fatal("Expected readiness claim to be rejected while required fields are missing")
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"issue_type"}) {
		t.Errorf("Expected collection to start at issue_type, got %v", resp.MissingFields)
	}
	if !strings.Contains(resp.NextQuestion, "Select Work Type") {
		t.Errorf("Expected issue type menu, got %q", resp.NextQuestion)
	}
}

func TestDescriptionCannotBeSkipped(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{createIntent(&models.IssueDraft{
		IssueType: models.IssueTypeTask,
		Priority:  models.PriorityHigh,
		Status:    models.StatusToDo,
		Summary:   "Fix login",
	})}}
	agent := NewIssueAgent(testConfig(), stub)

	resp := agent.ProcessMessage(context.Background(), "alice", "create it")
	if !reflect.DeepEqual(resp.MissingFields, []string{"description"}) {
		t.Fatalf("Expected to await description, got %v", resp.MissingFields)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "skip")
	if !strings.Contains(resp.ResponseMessage, "required and cannot be skipped") {
		t.Errorf("Expected required-field message, got %q", resp.ResponseMessage)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"description"}) {
		t.Errorf("Expected to still await description, got %v", resp.MissingFields)
	}
	if resp.ExtractedData.Description != "" {
		t.Errorf("Expected description to stay unset, got %q", resp.ExtractedData.Description)
	}

	resp = agent.ProcessMessage(context.Background(), "alice", "Users cannot reset their password")
	if resp.ExtractedData.Description != "Users cannot reset their password" {
		t.Errorf("Expected description to be set, got %q", resp.ExtractedData.Description)
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"assignee"}) {
		t.Errorf("Expected to advance to assignee, got %v", resp.MissingFields)
	}
}

func TestExhaustedPassRepromptsMissingRequired(t *testing.T) {
	agent := NewIssueAgent(testConfig(), &stubExtractor{})

	// Cursor already at the last field with a required field still unset;
	// exhaustion must re-enter collection rather than declare readiness.
	state := &conversation.State{
		UserID: "alice",
		Draft: &models.IssueDraft{
			IssueType: models.IssueTypeTask,
			Priority:  models.PriorityHigh,
			Summary:   "Fix login",
		},
		AwaitingField: "labels",
	}

	resp := agent.nextFieldPrompt(state)

	if resp.ReadyForJira {
		t.Fatal("Expected exhausted pass with a missing required field to stay unready")
	}
	if !reflect.DeepEqual(resp.MissingFields, []string{"description"}) {
		t.Errorf("Expected to re-enter at description, got %v", resp.MissingFields)
	}
	if state.AwaitingField != "description" {
		t.Errorf("Expected cursor to move back to description, got %q", state.AwaitingField)
	}
	if !strings.Contains(resp.ResponseMessage, "required and cannot be skipped") {
		t.Errorf("Expected required-field message, got %q", resp.ResponseMessage)
	}
}

func TestClearConversation(t *testing.T) {
	stub := &stubExtractor{responses: []*models.AgentResponse{
		createIntent(&models.IssueDraft{Summary: "Fix login"}),
		createIntent(nil),
	}}
	agent := NewIssueAgent(testConfig(), stub)

	agent.ProcessMessage(context.Background(), "alice", "create an issue")
	agent.ClearConversation("alice")

	resp := agent.ProcessMessage(context.Background(), "alice", "create an issue")
	if resp.ExtractedData.Summary != "" {
		t.Errorf("Expected a fresh draft after clearing, got %q", resp.ExtractedData.Summary)
	}
}
