package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannvm/jira-assistant/internal/agents"
	"github.com/tuannvm/jira-assistant/internal/common"
	"github.com/tuannvm/jira-assistant/internal/config"
	"github.com/tuannvm/jira-assistant/internal/jira"
	"github.com/tuannvm/jira-assistant/internal/llm"
	log "github.com/tuannvm/jira-assistant/internal/logging"
	"trpc.group/trpc-go/trpc-a2a-go/server"
)

func main() {
	defer log.Sync()

	cfg := config.NewConfig()
	cfg.AgentURL = fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	extractor := llm.NewIntentExtractor(llmClient)
	agent := agents.NewIssueAgent(cfg, extractor)
	service := jira.NewService(cfg)
	dispatcher := agents.NewDispatcher(cfg, service)
	processor := agents.NewProcessor(agent, dispatcher)

	skills := []server.AgentSkill{
		{
			ID:          "jira-issue-assistant",
			Name:        "Jira Issue Assistant",
			Description: common.StringPtr("Collects issue details through conversation and creates, updates, and looks up Jira issues"),
			Tags:        []string{"jira", "issues", "conversation"},
			Examples:    []string{"create a task for the login bug", "what's the status of TJ-123?"},
			InputModes:  []string{"text", "data"},
			OutputModes: []string{"text"},
		},
	}

	srv, err := common.SetupServer(common.SetupServerOptions{
		AgentName:        cfg.AgentName,
		AgentDescription: "Conversational agent that turns chat messages into Jira issues",
		AgentVersion:     cfg.AgentVersion,
		AgentURL:         cfg.AgentURL,
		AuthType:         cfg.AuthType,
		JWTSecret:        cfg.JWTSecret,
		APIKey:           cfg.APIKey,
		Processor:        processor,
		Skills:           skills,
	})
	if err != nil {
		log.Fatalf("Failed to set up server: %v", err)
	}

	log.Infof("%s configured on %s:%d (project %s)", cfg.AgentName, cfg.ServerHost, cfg.ServerPort, cfg.JiraProjectKey)
	if !cfg.HasJiraCredentials() {
		log.Warnf("No Jira credentials configured; issue operations run in mock mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := common.StartServer(ctx, srv, cfg.ServerHost, cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Infof("Server shutdown complete")
}
