package config

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.ServerPort != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.ServerPort)
	}
	if cfg.JiraProjectKey != "TJ" {
		t.Errorf("Expected default project key TJ, got %s", cfg.JiraProjectKey)
	}
	if cfg.JiraPriorityTaskOnly {
		t.Error("Expected priority restriction to default off")
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("Expected default provider openai, got %s", cfg.LLMProvider)
	}
}

func TestGetViperOverride(t *testing.T) {
	GetViper().Set("AGENT_URL", "http://agent.internal:9090")
	defer GetViper().Set("AGENT_URL", "http://localhost:8080")

	cfg := NewConfig()
	if cfg.AgentURL != "http://agent.internal:9090" {
		t.Errorf("Expected override to take effect, got %s", cfg.AgentURL)
	}
}

func TestHasJiraCredentials(t *testing.T) {
	cfg := &Config{JiraBaseURL: "https://example.atlassian.net"}
	if cfg.HasJiraCredentials() {
		t.Error("Expected base URL alone to be insufficient")
	}

	cfg.JiraEmail = "bot@example.com"
	cfg.JiraAPIToken = "token"
	if !cfg.HasJiraCredentials() {
		t.Error("Expected URL, email and token to be sufficient")
	}
}
