// Package agents contains the conversational collection engine that turns
// free-text chat into structured Jira operations, the dispatcher that
// executes ready drafts, and the A2A task-processor binding.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/conversation"
	"github.com/tuannvm/jira-assistant/internal/fields"
	"github.com/tuannvm/jira-assistant/internal/labels"
	"github.com/tuannvm/jira-assistant/internal/llm"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// historyTailSize is how many recent turn lines the extractor sees.
const historyTailSize = 5

// IssueAgent runs the turn-by-turn field collection conversation. Each
// user has independent state; a turn holds that user's state lock from
// start to finish, so concurrent messages from one user are serialized.
type IssueAgent struct {
	cfg       *config.Config
	extractor llm.Extractor
	store     *conversation.Store
}

// NewIssueAgent creates an agent backed by the given intent extractor.
func NewIssueAgent(cfg *config.Config, extractor llm.Extractor) *IssueAgent {
	return &IssueAgent{
		cfg:       cfg,
		extractor: extractor,
		store:     conversation.NewStore(),
	}
}

// ProcessMessage handles one conversation turn. It never returns an error:
// every failure mode degrades to a well-formed response so the
// conversation survives the turn.
func (a *IssueAgent) ProcessMessage(ctx context.Context, userID, message string) (resp *models.AgentResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Recovered from panic while processing message for %s: %v", userID, r)
			resp = &models.AgentResponse{
				Intent:          models.IntentUnknown,
				Confidence:      0.0,
				ExtractedData:   &models.IssueDraft{},
				ResponseMessage: "Sorry, I encountered an error. Please try again.",
				Error:           fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	state := a.store.Get(userID)
	state.Lock()
	defer state.Unlock()

	// A pending field answer is handled directly; the extractor is not
	// consulted for this turn.
	if awaiting := state.AwaitingField; awaiting != "" {
		if r := a.handleFieldInput(state, message, awaiting); r != nil {
			state.AppendHistory("User: " + message)
			state.AppendHistory("Agent: " + r.ResponseMessage)
			return r
		}
	}

	state.AppendHistory("User: " + message)

	r := a.extractIntent(ctx, state, message)

	if r.Intent == models.IntentCreateIssue && !r.ReadyForJira {
		a.updateState(state, r)
		r = a.startCollection(state)
	}

	a.updateState(state, r)
	state.AppendHistory("Agent: " + r.ResponseMessage)
	return r
}

// ClearConversation drops a user's conversation state.
func (a *IssueAgent) ClearConversation(userID string) {
	a.store.Clear(userID)
}

// handleFieldInput interprets raw input as the answer to the awaited
// field. It returns nil when the field name is not one the engine
// collects, in which case the turn falls through to intent extraction.
func (a *IssueAgent) handleFieldInput(state *conversation.State, message, field string) *models.AgentResponse {
	draft := state.Draft
	input := strings.TrimSpace(message)

	if fields.IsMenu(field) {
		choice, ok := fields.InterpretChoice(field, input)
		if !ok {
			return a.fieldPrompt(state, field, "Invalid choice. Please try again.")
		}
		fields.SetChoice(draft, field, choice)
		return a.nextFieldPrompt(state)
	}

	switch field {
	case fields.FieldSummary:
		if input == "" {
			return a.fieldPrompt(state, field, "Summary cannot be empty. Please enter a title.")
		}
		if !fields.ValidateSummary(input) {
			return a.fieldPrompt(state, field,
				fmt.Sprintf("Summary too long (%d characters). Please keep it under %d characters and provide a brief title.",
					len([]rune(input)), fields.MaxSummaryLength))
		}
		draft.Summary = input

	case fields.FieldDescription:
		if isSkip(input) {
			return a.fieldPrompt(state, field, "A description is required and cannot be skipped.")
		}
		draft.Description = input
		// A fresh description replaces any earlier labels, manual or
		// inferred; the labels step later in the pass lets the user
		// review and extend them.
		draft.Labels = labels.FromDescription(input)

	case fields.FieldAssignee:
		if !isSkip(input) {
			if !fields.ValidateEmail(input) {
				return a.fieldPrompt(state, field, "Invalid email format. Please enter a valid email or 'skip'.")
			}
			draft.Assignee = input
		}

	case fields.FieldStartDate, fields.FieldDueDate:
		if !isSkip(input) {
			if !fields.ValidateDate(input) {
				return a.fieldPrompt(state, field, "Invalid date format. Please use YYYY-MM-DD or 'skip'.")
			}
			if field == fields.FieldStartDate {
				draft.StartDate = strings.TrimSpace(input)
			} else {
				draft.DueDate = strings.TrimSpace(input)
			}
		}

	case fields.FieldParentKey:
		if !isSkip(input) {
			if !fields.ValidateIssueKey(input) {
				return a.fieldPrompt(state, field, "Invalid issue key format. Use a format like TJ-123 or 'skip'.")
			}
			draft.ParentKey = strings.ToUpper(strings.TrimSpace(input))
		}

	case fields.FieldLabels:
		switch {
		case isSkip(input):
			// keep current labels, auto-generated or not
		case strings.EqualFold(input, "clear"):
			draft.Labels = nil
		default:
			var manual []string
			for _, l := range strings.Split(input, ",") {
				if n := labels.Normalize(l); n != "" {
					manual = append(manual, n)
				}
			}
			draft.Labels = labels.Union(draft.Labels, manual)
		}

	default:
		return nil
	}

	return a.nextFieldPrompt(state)
}

// startCollection enters guided mode at the first field, in registry
// order, that the draft does not yet hold a value for. Fields the
// extractor already filled are not asked again.
func (a *IssueAgent) startCollection(state *conversation.State) *models.AgentResponse {
	for _, f := range fields.Order {
		if fieldDone(state.Draft, f) {
			continue
		}
		state.AwaitingField = f
		return a.fieldPrompt(state, f, "")
	}
	return a.finishOrReprompt(state)
}

// nextFieldPrompt advances the cursor past the field just answered to the
// next undone field, or declares readiness when the registry is exhausted.
// The cursor only moves forward, so fields the user explicitly skipped are
// not revisited.
func (a *IssueAgent) nextFieldPrompt(state *conversation.State) *models.AgentResponse {
	idx := fieldIndex(state.AwaitingField)
	for i := idx + 1; i < len(fields.Order); i++ {
		f := fields.Order[i]
		if fieldDone(state.Draft, f) {
			continue
		}
		state.AwaitingField = f
		return a.fieldPrompt(state, f, "")
	}
	return a.finishOrReprompt(state)
}

// finishOrReprompt closes out a collection pass. Readiness is re-derived
// from the draft, never assumed from cursor position: if a required field
// is still unset at registry exhaustion, collection re-enters at that
// field instead of declaring the draft ready.
func (a *IssueAgent) finishOrReprompt(state *conversation.State) *models.AgentResponse {
	if missing := fields.Missing(state.Draft); len(missing) > 0 {
		f := missing[0]
		state.AwaitingField = f
		return a.fieldPrompt(state, f, "This field is required and cannot be skipped.")
	}
	state.AwaitingField = ""
	return a.readyResponse(state.Draft)
}

// fieldDone reports whether guided collection can pass over a field. The
// labels field is never skipped: when a description auto-generated labels,
// the user still gets a review step to add, clear, or keep them.
func fieldDone(draft *models.IssueDraft, field string) bool {
	if field == fields.FieldLabels {
		return false
	}
	return fields.IsSet(draft, field)
}

func fieldIndex(field string) int {
	for i, f := range fields.Order {
		if f == field {
			return i
		}
	}
	return -1
}

func (a *IssueAgent) readyResponse(draft *models.IssueDraft) *models.AgentResponse {
	issueType := string(draft.IssueType)
	if issueType == "" {
		issueType = "new"
	}
	return &models.AgentResponse{
		Intent:          models.IntentCreateIssue,
		Confidence:      1.0,
		ExtractedData:   draft,
		ReadyForJira:    true,
		ResponseMessage: fmt.Sprintf("Perfect! I have all the information needed. Creating your %s issue now...", issueType),
	}
}

// extractIntent runs the extractor and merges its partial draft into the
// conversation. Failures degrade to an unknown-intent response; state is
// untouched beyond the history the caller appends.
func (a *IssueAgent) extractIntent(ctx context.Context, state *conversation.State, message string) *models.AgentResponse {
	resp, err := a.extractor.Extract(ctx, message, llm.Context{
		History:       state.HistoryTail(historyTailSize),
		Draft:         state.Draft,
		AwaitingField: state.AwaitingField,
	})
	if err != nil {
		log.Warnf("Intent extraction failed for %s: %v", state.UserID, err)
		return &models.AgentResponse{
			Intent:          models.IntentUnknown,
			Confidence:      0.0,
			ExtractedData:   &models.IssueDraft{},
			ResponseMessage: "I'm having trouble understanding that request. Try 'create an issue' or 'what's the status of TJ-123?'",
			Error:           fmt.Sprintf("extraction error: %v", err),
		}
	}

	resp.ExtractedData = mergeDraft(state.Draft, resp.ExtractedData)
	// Readiness is a property of the merged draft, not the model's
	// self-report: a creation draft with required fields unset is never
	// dispatched, whatever the extractor claimed.
	if resp.Intent == models.IntentCreateIssue && resp.ReadyForJira {
		if missing := fields.Missing(resp.ExtractedData); len(missing) > 0 {
			resp.ReadyForJira = false
			resp.MissingFields = missing
		}
	}
	return resp
}

// mergeDraft overlays newly extracted values onto the stored partial
// draft: field-wise overwrite-if-present, except labels, which union so
// labels collected earlier are never lost.
func mergeDraft(existing, extracted *models.IssueDraft) *models.IssueDraft {
	merged := existing.Clone()
	if extracted == nil {
		return merged
	}

	if extracted.IssueType != "" {
		merged.IssueType = extracted.IssueType
	}
	if extracted.Priority != "" {
		merged.Priority = extracted.Priority
	}
	if extracted.Summary != "" {
		merged.Summary = extracted.Summary
	}
	if extracted.Description != "" {
		merged.Description = extracted.Description
	}
	if extracted.Assignee != "" {
		merged.Assignee = extracted.Assignee
	}
	if extracted.ProjectKey != "" {
		merged.ProjectKey = extracted.ProjectKey
	}
	if extracted.IssueKey != "" {
		merged.IssueKey = extracted.IssueKey
	}
	if extracted.Status != "" {
		merged.Status = extracted.Status
	}
	if extracted.DueDate != "" {
		merged.DueDate = extracted.DueDate
	}
	if extracted.StartDate != "" {
		merged.StartDate = extracted.StartDate
	}
	if extracted.ParentKey != "" {
		merged.ParentKey = extracted.ParentKey
	}
	if len(extracted.Labels) > 0 {
		merged.Labels = labels.Union(merged.Labels, extracted.Labels)
	}
	return merged
}

// updateState persists a turn's outcome into the conversation. Unknown
// intents leave the stored draft alone so a garbled extraction cannot
// clobber progress.
func (a *IssueAgent) updateState(state *conversation.State, resp *models.AgentResponse) {
	if resp.Intent != models.IntentUnknown {
		state.CurrentIntent = resp.Intent
		if resp.ExtractedData != nil {
			state.Draft = resp.ExtractedData
		}
	}

	if len(resp.MissingFields) > 0 {
		state.AwaitingField = resp.MissingFields[0]
	} else if resp.ReadyForJira {
		state.AwaitingField = ""
	}
	// otherwise keep the current awaiting field while still collecting
}

func isSkip(input string) bool {
	switch strings.ToLower(input) {
	case "", "skip", "none":
		return true
	}
	return false
}
