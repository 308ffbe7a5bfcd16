package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultLinearURL      = "https://api.linear.app/graphql"
	defaultFastModel      = "claude-3-5-haiku-20241022"
	defaultLargeModel     = "claude-3-7-sonnet-20250219"
	defaultPort           = "3000"
	defaultContextTTL     = 5 * time.Minute
	defaultHistoryLimit   = 20
	defaultPromptHistory  = 5
	defaultStaleAfter     = 7 * 24 * time.Hour
	defaultMaxTasks       = 16
	defaultShutdownWindow = 10 * time.Second
)

// Config holds the application configuration
type Config struct {
	Linear    LinearConfig    `yaml:"linear"`
	GitHub    GitHubConfig    `yaml:"github"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Server    ServerConfig    `yaml:"server"`
	Bot       BotConfig       `yaml:"bot"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LinearConfig configures the issue tracker client
type LinearConfig struct {
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// GitHubConfig configures the source host client
type GitHubConfig struct {
	Token string `yaml:"token"`
	// Repo is the "owner/repo" pair used by the repo and commit reports
	Repo string `yaml:"repo"`
}

// AnthropicConfig configures the LLM client
type AnthropicConfig struct {
	Token      string `yaml:"token"`
	FastModel  string `yaml:"fast_model"`
	LargeModel string `yaml:"large_model"`
}

// ServerConfig configures the webhook listener
type ServerConfig struct {
	Port            string        `yaml:"port"`
	PublicURL       string        `yaml:"public_url"`
	ShutdownTimeout time.Duration `yaml:"-"`
	RawShutdown     string        `yaml:"shutdown_timeout"`
}

// BotConfig holds the tunables of the command dispatcher
type BotConfig struct {
	ContextTTL    time.Duration `yaml:"-"`
	RawContextTTL string        `yaml:"context_ttl"`
	HistoryLimit  int           `yaml:"history_limit"`
	PromptHistory int           `yaml:"prompt_history"`
	StaleAfter    time.Duration `yaml:"-"`
	RawStaleAfter string        `yaml:"stale_after"`
	MaxTasks      int           `yaml:"max_tasks"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Load reads the optional YAML file at path, applies environment overrides
// and defaults, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = os.Getenv("CODESCRIBE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnv lets environment variables override values from the config file
func (c *Config) applyEnv() error {
	setString(&c.Linear.Token, "LINEAR_API_KEY")
	setString(&c.Linear.APIURL, "LINEAR_API_URL")
	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.GitHub.Repo, "CODESCRIBE_REPO")
	setString(&c.Anthropic.Token, "ANTHROPIC_API_KEY")
	setString(&c.Anthropic.FastModel, "CODESCRIBE_FAST_MODEL")
	setString(&c.Anthropic.LargeModel, "CODESCRIBE_LARGE_MODEL")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.PublicURL, "NGROK_URL")
	setString(&c.Server.PublicURL, "PUBLIC_URL")
	setString(&c.Server.RawShutdown, "SHUTDOWN_TIMEOUT")
	setString(&c.Bot.RawContextTTL, "CODESCRIBE_CONTEXT_TTL")
	setString(&c.Bot.RawStaleAfter, "CODESCRIBE_STALE_AFTER")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.File, "LOG_FILE")

	if err := setInt(&c.Bot.HistoryLimit, "CODESCRIBE_HISTORY_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&c.Bot.PromptHistory, "CODESCRIBE_PROMPT_HISTORY"); err != nil {
		return err
	}
	return setInt(&c.Bot.MaxTasks, "CODESCRIBE_MAX_TASKS")
}

func (c *Config) setDefaults() error {
	if c.Linear.APIURL == "" {
		c.Linear.APIURL = defaultLinearURL
	}
	if c.Anthropic.FastModel == "" {
		c.Anthropic.FastModel = defaultFastModel
	}
	if c.Anthropic.LargeModel == "" {
		c.Anthropic.LargeModel = defaultLargeModel
	}
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Bot.HistoryLimit == 0 {
		c.Bot.HistoryLimit = defaultHistoryLimit
	}
	if c.Bot.PromptHistory == 0 {
		c.Bot.PromptHistory = defaultPromptHistory
	}
	if c.Bot.MaxTasks == 0 {
		c.Bot.MaxTasks = defaultMaxTasks
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	var err error
	if c.Server.ShutdownTimeout, err = parseDuration("shutdown_timeout", c.Server.RawShutdown, defaultShutdownWindow); err != nil {
		return err
	}
	if c.Bot.ContextTTL, err = parseDuration("context_ttl", c.Bot.RawContextTTL, defaultContextTTL); err != nil {
		return err
	}
	if c.Bot.StaleAfter, err = parseDuration("stale_after", c.Bot.RawStaleAfter, defaultStaleAfter); err != nil {
		return err
	}
	return nil
}

// validateConfig checks if the required configuration is present
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.Linear.Token == "" {
		errs = append(errs, errors.New("linear token is required (LINEAR_API_KEY)"))
	}
	if cfg.GitHub.Token == "" {
		errs = append(errs, errors.New("github token is required (GITHUB_TOKEN)"))
	}
	if cfg.Anthropic.Token == "" {
		errs = append(errs, errors.New("anthropic token is required (ANTHROPIC_API_KEY)"))
	}
	if cfg.GitHub.Repo != "" {
		if _, _, err := cfg.GitHub.OwnerRepo(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q", cfg.Server.Port))
	}
	if cfg.Bot.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", cfg.Bot.HistoryLimit))
	}
	if cfg.Bot.PromptHistory < 1 {
		errs = append(errs, fmt.Errorf("prompt_history must be positive, got %d", cfg.Bot.PromptHistory))
	}
	if cfg.Bot.MaxTasks < 1 {
		errs = append(errs, fmt.Errorf("max_tasks must be positive, got %d", cfg.Bot.MaxTasks))
	}

	return errors.Join(errs...)
}

// OwnerRepo splits the configured "owner/repo" pair
func (g GitHubConfig) OwnerRepo() (string, string, error) {
	parts := strings.Split(g.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo %q, expected 'owner/repo'", g.Repo)
	}
	return parts[0], parts[1], nil
}

// WebhookURL returns the public webhook endpoint, or "" when no tunnel is configured
func (s ServerConfig) WebhookURL() string {
	if s.PublicURL == "" {
		return ""
	}
	return strings.TrimSuffix(s.PublicURL, "/") + "/api/webhook"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

func parseDuration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return d, nil
}
