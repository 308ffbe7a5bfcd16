// Package app wires the bot's components together and runs them
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/hellausefulsoftware/codescribe/internal/anthropic"
	"github.com/hellausefulsoftware/codescribe/internal/config"
	"github.com/hellausefulsoftware/codescribe/internal/contextcache"
	"github.com/hellausefulsoftware/codescribe/internal/github"
	"github.com/hellausefulsoftware/codescribe/internal/httpserver"
	"github.com/hellausefulsoftware/codescribe/internal/linear"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/memory"
	"github.com/hellausefulsoftware/codescribe/internal/tasks"
	"github.com/hellausefulsoftware/codescribe/internal/webhook"
	"github.com/hellausefulsoftware/codescribe/internal/workflow"
)

// App owns the long-running server and its background tasks
type App struct {
	cfg        *config.Config
	httpServer *httpserver.Server
	tasks      *tasks.Set
}

// New builds every component from cfg
func New(cfg *config.Config) (*App, error) {
	settings := workflow.Settings{
		PromptHistory: cfg.Bot.PromptHistory,
		StaleAfter:    cfg.Bot.StaleAfter,
	}
	if cfg.GitHub.Repo != "" {
		owner, repo, err := cfg.GitHub.OwnerRepo()
		if err != nil {
			return nil, err
		}
		settings.Owner, settings.Repo = owner, repo
	} else {
		logging.Warn("No repository configured, repo and commit reports are disabled")
	}

	source, err := github.NewAdapter(cfg.GitHub.Token)
	if err != nil {
		return nil, fmt.Errorf("create github adapter: %w", err)
	}

	tracker := linear.NewClient(cfg.Linear.Token, cfg.Linear.APIURL)
	generator := anthropic.NewClient(cfg.Anthropic.Token, cfg.Anthropic.FastModel, cfg.Anthropic.LargeModel)

	cache := contextcache.New(tracker, cfg.Bot.ContextTTL)
	mem := memory.New(cache, cfg.Bot.HistoryLimit)
	dispatcher := workflow.NewDispatcher(tracker, source, generator, cache, mem, settings)

	taskSet := tasks.New(cfg.Bot.MaxTasks)
	intake := webhook.NewIntake(taskSet, dispatcher)

	return &App{
		cfg:        cfg,
		httpServer: httpserver.New(cfg.Server.Port, intake, taskSet),
		tasks:      taskSet,
	}, nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops the listener and drains background tasks
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if url := a.cfg.Server.WebhookURL(); url != "" {
		logging.Info("Webhook endpoint", "url", url)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutting down", "timeout", a.cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("stop http server: %w", err)
		}
		if err := a.tasks.Drain(shutdownCtx); err != nil {
			logging.Warn("Background tasks did not finish in time", "error", err)
		}
		return <-errCh
	case err := <-errCh:
		drainCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = a.tasks.Drain(drainCtx)
		return err
	}
}
