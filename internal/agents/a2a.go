package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tuannvm/jira-assistant/internal/common"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"github.com/tuannvm/jira-assistant/internal/models"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"
)

// Processor adapts the IssueAgent to the TaskProcessor interface from
// trpc-a2a-go. Each task carries either a ChatMessage (conversational
// turn) or a fully-formed IssueDraft (direct validation path); the
// completed task's message holds the serialized AgentResponse.
type Processor struct {
	agent      *IssueAgent
	dispatcher *Dispatcher
}

// NewProcessor wires the agent and dispatcher into an A2A task processor.
func NewProcessor(agent *IssueAgent, dispatcher *Dispatcher) *Processor {
	return &Processor{agent: agent, dispatcher: dispatcher}
}

// Process implements the TaskProcessor interface from trpc-a2a-go
func (p *Processor) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Infof("Received task with ID: %s", taskID)

	if err := handle.UpdateStatus(protocol.TaskState("processing"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	var resp *models.AgentResponse

	var chat models.ChatMessage
	if err := common.ExtractChatMessage(message, &chat); err == nil {
		log.Infof("Processing chat turn for user %s", chat.UserID)
		resp = p.agent.ProcessMessage(ctx, chat.UserID, chat.Text)
	} else {
		// Not a chat turn; try the direct validation path.
		var draft models.IssueDraft
		if err := common.ExtractIssueDraft(message, &draft); err != nil {
			return fmt.Errorf("no chat message or issue draft found in task: %w", err)
		}
		log.Infof("Processing direct issue validation for summary %q", common.Truncate(draft.Summary, 80))
		resp = p.agent.ProcessDirect(&draft)
	}

	// Execute ready drafts against the tracker; the outcome replaces the
	// engine's canned "creating now" message. Lookup and help intents
	// dispatch regardless of the readiness flag.
	if resp.ReadyForJira || dispatchAlways(resp.Intent) {
		outcome, dispatchErr := p.dispatcher.Dispatch(ctx, resp)
		resp.ResponseMessage = outcome
		if dispatchErr != "" {
			resp.Error = dispatchErr
		}
	}

	resultJSON, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal agent response: %w", err)
	}

	textPart := protocol.NewTextPart(string(resultJSON))
	responseMsg := &protocol.Message{
		Parts: []protocol.Part{textPart},
	}

	if err := handle.UpdateStatus(protocol.TaskState("completed"), responseMsg); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Infof("Task %s completed successfully", taskID)
	return nil
}

func dispatchAlways(intent models.Intent) bool {
	switch intent {
	case models.IntentQueryIssue, models.IntentSearchIssues, models.IntentHelp:
		return true
	}
	return false
}
