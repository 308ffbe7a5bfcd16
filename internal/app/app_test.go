package app

import (
	"context"
	"testing"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Linear.Token = "lin_api_test"
	cfg.Linear.APIURL = "http://127.0.0.1:1/graphql"
	cfg.GitHub.Token = "ghp_test"
	cfg.GitHub.Repo = "ManagementMO/CodeScribe"
	cfg.Anthropic.Token = "sk-ant-test"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Bot.ContextTTL = time.Minute
	cfg.Bot.HistoryLimit = 20
	cfg.Bot.PromptHistory = 5
	cfg.Bot.StaleAfter = 7 * 24 * time.Hour
	cfg.Bot.MaxTasks = 2
	return cfg
}

func TestNewRejectsMalformedRepo(t *testing.T) {
	cfg := testConfig()
	cfg.GitHub.Repo = "not-a-pair"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for malformed repo")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	application, err := New(testConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
