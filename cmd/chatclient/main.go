package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tuannvm/jira-assistant/internal/common"
	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/models"
	"trpc.group/trpc-go/trpc-a2a-go/client"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// Interactive chat client for the issue agent. Each line typed is sent
// as one conversational turn and the agent's reply is printed along
// with any fields it is still waiting for.
func main() {
	// An explicit agent URL on the command line overrides the AGENT_URL
	// environment setting.
	if len(os.Args) > 1 {
		config.GetViper().Set("AGENT_URL", os.Args[1])
	}
	cfg := config.NewConfig()

	userID := os.Getenv("CHAT_USER_ID")
	if userID == "" {
		userID = "local-user"
	}

	a2aClient, err := common.SetupA2AClient(cfg, cfg.AgentURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create A2A client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Connected to %s as %s. Type a message, or 'quit' to exit.\n", cfg.AgentURL, userID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		resp, err := sendTurn(a2aClient, userID, text)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Println(resp.ResponseMessage)
		if resp.Error != "" {
			fmt.Printf("(error: %s)\n", resp.Error)
		}
		if len(resp.MissingFields) > 0 && !resp.ReadyForJira {
			fmt.Printf("(still needed: %s)\n", strings.Join(resp.MissingFields, ", "))
		}
	}
}

func sendTurn(a2aClient *client.A2AClient, userID, text string) (*models.AgentResponse, error) {
	chat := models.ChatMessage{
		UserID: userID,
		Text:   text,
	}

	chatJSON, err := json.Marshal(chat)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	textPart := protocol.NewTextPart(string(chatJSON))
	message := protocol.Message{
		Parts: []protocol.Part{textPart},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := a2aClient.SendTasks(ctx, protocol.SendTaskParams{
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send task: %w", err)
	}

	// Poll until the agent finishes the turn.
	for {
		time.Sleep(500 * time.Millisecond)

		taskResult, err := a2aClient.GetTasks(ctx, protocol.TaskQueryParams{
			ID: resp.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}

		switch taskResult.Status.State {
		case "completed":
			if taskResult.Status.Message == nil {
				return nil, fmt.Errorf("task %s completed without a result message", resp.ID)
			}
			for _, part := range taskResult.Status.Message.Parts {
				if textPart, ok := part.(*protocol.TextPart); ok {
					var result models.AgentResponse
					if err := json.Unmarshal([]byte(textPart.Text), &result); err != nil {
						return nil, fmt.Errorf("failed to parse agent response: %w", err)
					}
					return &result, nil
				}
			}
			return nil, fmt.Errorf("task %s completed without a text part", resp.ID)
		case "failed":
			return nil, fmt.Errorf("task %s failed", resp.ID)
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("timed out waiting for task %s", resp.ID)
		}
	}
}
