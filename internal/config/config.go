package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Jira
	JiraURL      string
	JiraProject  string
	JiraUsername string
	JiraAPIToken string

	// Fetch range
	StartIssue int
	EndIssue   int // 0 means unbounded

	// Storage
	StorageType string // "csv", "sqlite" or "postgres"
	DatasetPath string
	StatePath   string
	SQLitePath  string
	PostgresURL string

	// Model
	ModelPath string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	// Logging
	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		JiraURL:      getEnv("JIRA_URL", ""),
		JiraProject:  getEnv("JIRA_PROJECT", ""),
		JiraUsername: getEnv("JIRA_USERNAME", ""),
		JiraAPIToken: getEnv("JIRA_API_TOKEN", ""),
		StartIssue:   getEnvInt("START_ISSUE", 1),
		EndIssue:     getEnvInt("END_ISSUE", 0),
		StorageType:  getEnv("STORAGE_TYPE", "csv"),
		DatasetPath:  getEnv("DATASET_PATH", "issues.csv"),
		StatePath:    getEnv("STATE_PATH", "state.json"),
		SQLitePath:   getEnv("SQLITE_PATH", "./issues.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		ModelPath:    getEnv("MODEL_PATH", "time_spent.model"),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "localhost"),
		APIEndpoint:  getEnv("API_ENDPOINT", "http://localhost:8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the value of an environment variable parsed as an
// integer, or a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JiraURL == "" {
		return &ConfigError{Field: "JIRA_URL", Message: "Jira base URL is required"}
	}
	if c.JiraProject == "" {
		return &ConfigError{Field: "JIRA_PROJECT", Message: "Jira project key is required"}
	}
	if c.JiraUsername == "" || c.JiraAPIToken == "" {
		return &ConfigError{Field: "JIRA_USERNAME", Message: "Jira basic-auth credentials are required"}
	}
	if c.StartIssue < 1 {
		return &ConfigError{Field: "START_ISSUE", Message: "must be >= 1"}
	}
	if c.EndIssue != 0 && c.EndIssue < c.StartIssue {
		return &ConfigError{Field: "END_ISSUE", Message: "must be 0 (unbounded) or >= START_ISSUE"}
	}
	switch c.StorageType {
	case "csv", "sqlite", "postgres":
	default:
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'csv', 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
