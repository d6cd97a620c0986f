package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tuannvm/jira-assistant/internal/common"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
)

// Context carries the conversation tail the extractor sees. History is the
// bounded tail of turn summaries; AwaitingField hints which field the
// engine last asked for.
type Context struct {
	History       []string
	Draft         *models.IssueDraft
	AwaitingField string
}

// Extractor turns a raw user message plus conversation context into a
// structured intent guess. A transport or provider failure is returned as
// an error; a malformed model reply is NOT an error - it degrades to an
// unknown-intent response so the conversation turn can complete.
type Extractor interface {
	Extract(ctx context.Context, message string, conv Context) (*models.AgentResponse, error)
}

// IntentExtractor implements Extractor on top of an LLMClient.
type IntentExtractor struct {
	llm LLMClient
}

// NewIntentExtractor creates an extractor backed by the given LLM client.
func NewIntentExtractor(client LLMClient) *IntentExtractor {
	return &IntentExtractor{llm: client}
}

// Extract builds the prompt, calls the model and decodes the reply into
// the response contract.
func (e *IntentExtractor) Extract(ctx context.Context, message string, conv Context) (*models.AgentResponse, error) {
	prompt := buildPrompt(message, conv)

	completion, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}

	resp, err := decodeResponse(completion)
	if err != nil {
		log.Warnf("Failed to parse LLM response: %v", err)
		return &models.AgentResponse{
			Intent:          models.IntentUnknown,
			Confidence:      0.0,
			ExtractedData:   &models.IssueDraft{},
			ResponseMessage: clarificationMessage,
			Error:           fmt.Sprintf("JSON parsing error: %v", err),
		}, nil
	}

	normalize(resp)
	return resp, nil
}

func buildPrompt(message string, conv Context) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if len(conv.History) > 0 {
		draftJSON := "{}"
		if conv.Draft != nil {
			if b, err := json.MarshalIndent(conv.Draft, "", "  "); err == nil {
				draftJSON = string(b)
			}
		}
		awaiting := conv.AwaitingField
		if awaiting == "" {
			awaiting = "nothing specific"
		}
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(contextPromptTemplate,
			strings.Join(conv.History, "\n"), draftJSON, awaiting))
	}

	sb.WriteString("\n\nUser message: ")
	sb.WriteString(message)
	return sb.String()
}

// decodeResponse rips the JSON object out of the model's reply and decodes
// it into the response contract.
func decodeResponse(completion string) (*models.AgentResponse, error) {
	jsonStr, err := common.ExtractJSON(completion)
	if err != nil {
		return nil, err
	}

	var resp models.AgentResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// normalize defends against model output that is parseable but off
// contract: missing draft, out-of-range confidence, blank intent, or a
// claimed-ready response that still lists missing fields.
func normalize(resp *models.AgentResponse) {
	if resp.ExtractedData == nil {
		resp.ExtractedData = &models.IssueDraft{}
	}
	if resp.Confidence < 0 {
		resp.Confidence = 0
	}
	if resp.Confidence > 1 {
		resp.Confidence = 1
	}
	switch resp.Intent {
	case models.IntentCreateIssue, models.IntentUpdateIssue, models.IntentQueryIssue,
		models.IntentSearchIssues, models.IntentHelp, models.IntentUnknown:
	default:
		resp.Intent = models.IntentUnknown
	}
	if resp.ReadyForJira && len(resp.MissingFields) > 0 {
		resp.ReadyForJira = false
	}
	if resp.ReadyForJira {
		resp.NextQuestion = ""
	}
}
