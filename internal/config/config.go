package config

import (
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerPort int
	ServerHost string

	// Agent configuration
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication
	AuthType  string // "jwt" or "apikey"
	JWTSecret string
	APIKey    string

	// Jira configuration
	JiraBaseURL          string
	JiraEmail            string
	JiraAPIToken         string
	JiraProjectKey       string // default project for new issues
	JiraStartDateFieldID string // custom field ID carrying the start date, e.g. customfield_10015
	JiraPriorityTaskOnly bool   // some schemes reject priority on Story/Epic; enable to send it for Tasks only

	// LLM configuration
	LLMProvider    string // "openai" or "azure"
	LLMModel       string
	LLMAPIKey      string
	LLMServiceURL  string
	LLMMaxTokens   int
	LLMTimeout     int // in seconds
	LLMTemperature float64
}

var v = viper.New()

func init() {
	v.AutomaticEnv()

	// Server
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "localhost")

	// Agent
	v.SetDefault("AGENT_NAME", "JiraAssistant")
	v.SetDefault("AGENT_VERSION", "1.0.0")
	v.SetDefault("AGENT_URL", "http://localhost:8080")

	// Authentication
	v.SetDefault("AUTH_TYPE", "apikey")
	v.SetDefault("JWT_SECRET", "your-jwt-secret")
	v.SetDefault("API_KEY", "your-api-key")

	// Jira
	v.SetDefault("JIRA_BASE_URL", "https://your-jira-instance.atlassian.net")
	v.SetDefault("JIRA_EMAIL", "")
	v.SetDefault("JIRA_API_TOKEN", "")
	v.SetDefault("JIRA_PROJECT_KEY", "TJ")
	v.SetDefault("JIRA_START_DATE_FIELD_ID", "")
	v.SetDefault("JIRA_PRIORITY_TASK_ONLY", false)

	// LLM
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_SERVICE_URL", "")
	v.SetDefault("LLM_MAX_TOKENS", 4000)
	v.SetDefault("LLM_TIMEOUT", 30)
	v.SetDefault("LLM_TEMPERATURE", 0.1)
}

// GetViper exposes the underlying viper instance so binaries can override
// settings before calling NewConfig.
func GetViper() *viper.Viper {
	return v
}

// NewConfig creates a new configuration with values from environment variables
func NewConfig() *Config {
	return &Config{
		ServerPort: v.GetInt("SERVER_PORT"),
		ServerHost: v.GetString("SERVER_HOST"),

		AgentName:    v.GetString("AGENT_NAME"),
		AgentVersion: v.GetString("AGENT_VERSION"),
		AgentURL:     v.GetString("AGENT_URL"),

		AuthType:  v.GetString("AUTH_TYPE"),
		JWTSecret: v.GetString("JWT_SECRET"),
		APIKey:    v.GetString("API_KEY"),

		JiraBaseURL:          v.GetString("JIRA_BASE_URL"),
		JiraEmail:            v.GetString("JIRA_EMAIL"),
		JiraAPIToken:         v.GetString("JIRA_API_TOKEN"),
		JiraProjectKey:       v.GetString("JIRA_PROJECT_KEY"),
		JiraStartDateFieldID: v.GetString("JIRA_START_DATE_FIELD_ID"),
		JiraPriorityTaskOnly: v.GetBool("JIRA_PRIORITY_TASK_ONLY"),

		LLMProvider:    v.GetString("LLM_PROVIDER"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMAPIKey:      v.GetString("LLM_API_KEY"),
		LLMServiceURL:  v.GetString("LLM_SERVICE_URL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:     v.GetInt("LLM_TIMEOUT"),
		LLMTemperature: v.GetFloat64("LLM_TEMPERATURE"),
	}
}

// HasJiraCredentials reports whether enough Jira settings are present to
// talk to a real instance; without them the service runs in mock mode.
func (c *Config) HasJiraCredentials() bool {
	return c.JiraBaseURL != "" && c.JiraEmail != "" && c.JiraAPIToken != ""
}
