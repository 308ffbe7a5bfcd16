package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so host settings cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CODESCRIBE_CONFIG", "LINEAR_API_KEY", "LINEAR_API_URL", "GITHUB_TOKEN",
		"CODESCRIBE_REPO", "ANTHROPIC_API_KEY", "CODESCRIBE_FAST_MODEL",
		"CODESCRIBE_LARGE_MODEL", "PORT", "NGROK_URL", "PUBLIC_URL",
		"SHUTDOWN_TIMEOUT", "CODESCRIBE_CONTEXT_TTL", "CODESCRIBE_STALE_AFTER",
		"LOG_LEVEL", "LOG_FILE", "CODESCRIBE_HISTORY_LIMIT",
		"CODESCRIBE_PROMPT_HISTORY", "CODESCRIBE_MAX_TASKS",
	} {
		t.Setenv(key, "")
	}
}

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("LINEAR_API_KEY", "lin_api_test")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Linear.Token = "lin_api_test"
	cfg.GitHub.Token = "ghp_test"
	cfg.Anthropic.Token = "sk-ant-test"
	cfg.Server.Port = "3000"
	cfg.Bot.HistoryLimit = 20
	cfg.Bot.PromptHistory = 5
	cfg.Bot.MaxTasks = 4
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "valid repo", mutate: func(c *Config) { c.GitHub.Repo = "ManagementMO/CodeScribe" }},
		{name: "missing linear token", mutate: func(c *Config) { c.Linear.Token = "" }, expectErr: true},
		{name: "missing github token", mutate: func(c *Config) { c.GitHub.Token = "" }, expectErr: true},
		{name: "missing anthropic token", mutate: func(c *Config) { c.Anthropic.Token = "" }, expectErr: true},
		{name: "malformed repo", mutate: func(c *Config) { c.GitHub.Repo = "CodeScribe" }, expectErr: true},
		{name: "non numeric port", mutate: func(c *Config) { c.Server.Port = "http" }, expectErr: true},
		{name: "zero history", mutate: func(c *Config) { c.Bot.HistoryLimit = 0 }, expectErr: true},
		{name: "negative tasks", mutate: func(c *Config) { c.Bot.MaxTasks = -1 }, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if (err != nil) != tt.expectErr {
				t.Errorf("validateConfig() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setSecrets(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %s, want 3000", cfg.Server.Port)
	}
	if cfg.Bot.ContextTTL != 5*time.Minute {
		t.Errorf("ContextTTL = %s, want 5m", cfg.Bot.ContextTTL)
	}
	if cfg.Bot.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.Bot.HistoryLimit)
	}
	if cfg.Bot.PromptHistory != 5 {
		t.Errorf("PromptHistory = %d, want 5", cfg.Bot.PromptHistory)
	}
	if cfg.Bot.StaleAfter != 7*24*time.Hour {
		t.Errorf("StaleAfter = %s, want 168h", cfg.Bot.StaleAfter)
	}
	if cfg.Linear.APIURL != defaultLinearURL {
		t.Errorf("Linear.APIURL = %s, want %s", cfg.Linear.APIURL, defaultLinearURL)
	}
	if cfg.GitHub.Repo != "" {
		t.Errorf("GitHub.Repo = %q, want empty", cfg.GitHub.Repo)
	}
	if cfg.Server.WebhookURL() != "" {
		t.Errorf("WebhookURL = %q, want empty", cfg.Server.WebhookURL())
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	clearEnv(t)

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when secrets are missing")
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	setSecrets(t)
	t.Setenv("PORT", "8081")

	path := filepath.Join(t.TempDir(), "codescribe.yaml")
	content := `
github:
  repo: ManagementMO/CodeScribe
server:
  port: "4000"
  public_url: https://example.ngrok.app/
bot:
  context_ttl: 90s
  history_limit: 10
  stale_after: 72h
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8081" {
		t.Errorf("Port = %s, want env override 8081", cfg.Server.Port)
	}
	if cfg.Bot.ContextTTL != 90*time.Second {
		t.Errorf("ContextTTL = %s, want 90s", cfg.Bot.ContextTTL)
	}
	if cfg.Bot.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.Bot.HistoryLimit)
	}
	if cfg.Bot.StaleAfter != 72*time.Hour {
		t.Errorf("StaleAfter = %s, want 72h", cfg.Bot.StaleAfter)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if got := cfg.Server.WebhookURL(); got != "https://example.ngrok.app/api/webhook" {
		t.Errorf("WebhookURL = %s", got)
	}

	owner, repo, err := cfg.GitHub.OwnerRepo()
	if err != nil {
		t.Fatalf("OwnerRepo returned error: %v", err)
	}
	if owner != "ManagementMO" || repo != "CodeScribe" {
		t.Errorf("OwnerRepo = %s/%s", owner, repo)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	clearEnv(t)
	setSecrets(t)
	t.Setenv("CODESCRIBE_CONTEXT_TTL", "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
