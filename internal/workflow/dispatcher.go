// Package workflow turns classified mentions into tracker comments
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/command"
	"github.com/hellausefulsoftware/codescribe/internal/common/llm"
	"github.com/hellausefulsoftware/codescribe/internal/common/tracker"
	"github.com/hellausefulsoftware/codescribe/internal/common/vcs"
	"github.com/hellausefulsoftware/codescribe/internal/contextcache"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/memory"
	"github.com/hellausefulsoftware/codescribe/internal/models"
)

const defaultPromptHistory = 5

// Settings holds the dispatcher tunables
type Settings struct {
	// Owner and Repo select the repository used by the repo and commit
	// reports; both empty means none is configured
	Owner string
	Repo  string
	// PromptHistory is how many past exchanges the chat prompt carries
	PromptHistory int
	StaleAfter    time.Duration
}

// Dispatcher runs the command handlers against the external services
type Dispatcher struct {
	tracker  tracker.Service
	source   vcs.Service
	llm      llm.Generator
	cache    *contextcache.Cache
	memory   *memory.Store
	settings Settings
	now      func() time.Time
}

// Option customizes a Dispatcher
type Option func(*Dispatcher)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a dispatcher
func NewDispatcher(tr tracker.Service, source vcs.Service, gen llm.Generator, cache *contextcache.Cache, mem *memory.Store, settings Settings, opts ...Option) *Dispatcher {
	if settings.PromptHistory < 1 {
		settings.PromptHistory = defaultPromptHistory
	}
	d := &Dispatcher{
		tracker:  tr,
		source:   source,
		llm:      gen,
		cache:    cache,
		memory:   mem,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process handles one mention: acknowledge, run the command, post the
// response. A failed acknowledgement stops processing.
func (d *Dispatcher) Process(ctx context.Context, mention models.Mention) error {
	cmd := command.Parse(mention.Body)
	log := logging.WithFields(map[string]any{
		"issue_id": mention.IssueID,
		"user_id":  mention.UserID,
		"command":  cmd.Kind.String(),
	})

	log.Info("Processing mention")

	if err := d.tracker.CreateComment(ctx, mention.IssueID, acknowledgement(cmd.Kind)); err != nil {
		return fmt.Errorf("post acknowledgement: %w", err)
	}

	start := d.now()
	response := d.handle(ctx, mention, cmd)

	if err := d.tracker.CreateComment(ctx, mention.IssueID, response); err != nil {
		return fmt.Errorf("post %s response: %w", cmd.Kind, err)
	}

	log.Info("Response posted", "elapsed", d.now().Sub(start))
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, mention models.Mention, cmd command.Command) string {
	switch cmd.Kind {
	case command.Status:
		return d.status()
	case command.RepoReport:
		return d.repoReport(ctx)
	case command.CommitAnalysis:
		return d.commitAnalysis(ctx)
	case command.ProgressAnalysis:
		return d.progressAnalysis(ctx, mention.IssueID)
	case command.TeamInsights:
		return d.teamInsights(ctx, mention.IssueID)
	case command.Chat:
		return d.chat(ctx, mention, cmd.Text)
	case command.PullRequestReview:
		return d.reviewPullRequest(ctx, cmd.URL)
	default:
		return helpText
	}
}

func acknowledgement(kind command.Kind) string {
	switch kind {
	case command.Status:
		return "👋 Got it! Checking my systems..."
	case command.RepoReport:
		return "📊 Starting repository report..."
	case command.CommitAnalysis:
		return "🔎 Starting analysis of the latest commit..."
	case command.ProgressAnalysis:
		return "📈 Starting progress analysis for this issue..."
	case command.TeamInsights:
		return "👥 Starting team insights..."
	case command.Chat:
		return "💭 Thinking..."
	case command.PullRequestReview:
		return "🔍 Starting pull request review, this can take a minute..."
	default:
		return "👋 Hi! Here's what I can do..."
	}
}
