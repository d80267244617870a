package store

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModels is the model selector offered when the config does not list one.
var DefaultModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-flash-preview",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

type Config struct {
	Data struct {
		Source      string `yaml:"source"`
		NewsPath    string `yaml:"news_path"`
		WeeklyPath  string `yaml:"weekly_path"`
		SQLiteDSN   string `yaml:"sqlite_dsn"`
		NewsTable   string `yaml:"news_table"`
		WeeklyTable string `yaml:"weekly_table"`
	} `yaml:"data"`
	LLM struct {
		Provider        string   `yaml:"provider"`
		Model           string   `yaml:"model"`
		Models          []string `yaml:"models"`
		APIKeyEnv       string   `yaml:"api_key_env"`
		Endpoint        string   `yaml:"endpoint"`
		TimeoutSeconds  int      `yaml:"timeout_seconds"`
		MaxTokens       int      `yaml:"max_tokens"`
		Temperature     float32  `yaml:"temperature"`
		MaxHistoryTurns int      `yaml:"max_history_turns"`
		ReportLanguage  string   `yaml:"report_language"`
	} `yaml:"llm"`
}

// Timeout is the per-call deadline for the text-generation provider.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// APIKey reads the provider credential from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

func (c *Config) Validate() error {
	if c.Data.Source != "CSV" && c.Data.Source != "SQLITE" {
		return fmt.Errorf("invalid data.source '%s': must be 'CSV' or 'SQLITE'", c.Data.Source)
	}
	if c.Data.Source == "CSV" && (c.Data.NewsPath == "" || c.Data.WeeklyPath == "") {
		return errors.New("data.news_path and data.weekly_path are required for CSV source")
	}
	if c.Data.Source == "SQLITE" && c.Data.SQLiteDSN == "" {
		return errors.New("data.sqlite_dsn is required for SQLITE source")
	}
	switch c.LLM.Provider {
	case "GEMINI", "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("llm.provider must be 'GEMINI', 'OPENAI', 'CLAUDE' or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if !slices.Contains(c.LLM.Models, c.LLM.Model) {
		return fmt.Errorf("llm.model '%s' is not in llm.models %v", c.LLM.Model, c.LLM.Models)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	return nil
}

// Default returns a config with every default applied and no file read.
func Default() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Data.Source == "" {
		c.Data.Source = "CSV"
	}
	if c.Data.NewsPath == "" {
		c.Data.NewsPath = "classified_news_matrix.csv"
	}
	if c.Data.WeeklyPath == "" {
		c.Data.WeeklyPath = "weekly_pmi_stats_matrix.csv"
	}
	if c.Data.NewsTable == "" {
		c.Data.NewsTable = "classified_news"
	}
	if c.Data.WeeklyTable == "" {
		c.Data.WeeklyTable = "weekly_pmi_stats"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "GEMINI"
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = slices.Clone(DefaultModels)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = c.LLM.Models[0]
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "GOOGLE_API_KEY"
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.LLM.MaxHistoryTurns == 0 {
		c.LLM.MaxHistoryTurns = 10
	}
	if c.LLM.ReportLanguage == "" {
		c.LLM.ReportLanguage = "Bahasa Indonesia"
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
