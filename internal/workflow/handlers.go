package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/hellausefulsoftware/codescribe/internal/analytics"
	"github.com/hellausefulsoftware/codescribe/internal/command"
	"github.com/hellausefulsoftware/codescribe/internal/common/llm"
	"github.com/hellausefulsoftware/codescribe/internal/common/vcs"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/models"
)

const (
	recentCommits = 5
	// maxDiffBytes keeps large diffs inside the model's context window
	maxDiffBytes = 60000
)

// Response headers
const (
	StatusHeader   = "### 🤖 CodeScribe Status Report"
	RepoHeader     = "### 📊 Repository Report"
	CommitHeader   = "### 🔎 Latest Commit Analysis"
	ProgressHeader = "### 📈 Progress Analysis"
	TeamHeader     = "### 👥 Team Insights"
	ReviewHeader   = "### 🔍 Enhanced CodeScribe PR Review"
	HelpHeader     = "### 🤖 CodeScribe Commands"
)

// ChatApology is posted when the model cannot answer a chat message
const ChatApology = "Sorry, I'm having trouble thinking right now. Please try again in a moment. 🤖"

func (d *Dispatcher) status() string {
	now := d.now().Local()
	var b strings.Builder
	b.WriteString(StatusHeader + "\n\n")
	b.WriteString("✅ **All systems operational**\n\n")
	b.WriteString("- **Tracker**: connected\n")
	b.WriteString("- **Source host**: connected\n")
	b.WriteString("- **AI models**: ready\n")
	b.WriteString("- **Memory**: active\n\n")
	fmt.Fprintf(&b, "_Checked at %s_", now.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func (d *Dispatcher) configured() bool {
	return d.settings.Owner != "" && d.settings.Repo != ""
}

func notConfigured(header string) string {
	return header + "\n\n⚠️ No repository is configured. Set `CODESCRIBE_REPO` to `owner/repo` to enable this command."
}

func failure(title string, err error) string {
	return fmt.Sprintf("### ❌ %s\n\n```\n%v\n```", title, err)
}

func (d *Dispatcher) repoReport(ctx context.Context) string {
	if !d.configured() {
		return notConfigured(RepoHeader)
	}
	owner, name := d.settings.Owner, d.settings.Repo

	repo, err := d.source.GetRepository(ctx, owner, name)
	if err != nil {
		logging.Warn("Repository report failed", "repo", owner+"/"+name, "error", err)
		return failure("Repository report failed", err)
	}
	commits, err := d.source.ListCommits(ctx, owner, name, recentCommits)
	if err != nil {
		logging.Warn("Listing commits failed", "repo", owner+"/"+name, "error", err)
		return failure("Repository report failed", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n", RepoHeader, repo.GetFullName())
	if desc := repo.GetDescription(); desc != "" {
		fmt.Fprintf(&b, "_%s_\n\n", desc)
	}
	fmt.Fprintf(&b, "- **Language**: %s\n", orDefault(repo.GetLanguage(), "n/a"))
	fmt.Fprintf(&b, "- **Stars**: %s ⭐ | **Forks**: %s\n", humanize.Comma(int64(repo.GetStargazersCount())), humanize.Comma(int64(repo.GetForksCount())))
	fmt.Fprintf(&b, "- **Open issues**: %d\n", repo.GetOpenIssuesCount())
	fmt.Fprintf(&b, "- **Default branch**: `%s`\n", repo.GetDefaultBranch())
	fmt.Fprintf(&b, "- **Size**: %s\n", humanize.IBytes(uint64(repo.GetSizeKB())*1024))
	if updated := repo.GetUpdatedAt(); !updated.IsZero() {
		fmt.Fprintf(&b, "- **Last updated**: %s (%s)\n", updated.Format("2006-01-02"), humanize.RelTime(updated, d.now(), "ago", "from now"))
	}

	b.WriteString("\n**Recent commits**\n")
	if len(commits) == 0 {
		b.WriteString("- none\n")
	}
	for i := range commits {
		fmt.Fprintf(&b, "- %s (%s)\n", commits[i].Headline(), commits[i].Author())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) commitAnalysis(ctx context.Context) string {
	if !d.configured() {
		return notConfigured(CommitHeader)
	}
	owner, name := d.settings.Owner, d.settings.Repo

	commits, err := d.source.ListCommits(ctx, owner, name, 1)
	if err != nil {
		return failure("Commit analysis failed", err)
	}
	if len(commits) == 0 {
		return CommitHeader + "\n\nThe repository has no commits yet."
	}

	commit, err := d.source.GetCommit(ctx, owner, name, commits[0].SHA)
	if err != nil {
		return failure("Commit analysis failed", err)
	}

	analysis, err := d.llm.Generate(ctx, llm.Request{
		Tier:            llm.TierFast,
		System:          commitSystemPrompt,
		Prompt:          commitPrompt(commit),
		MaxOutputTokens: 1024,
	})
	if err != nil {
		logging.Warn("Commit analysis generation failed", "sha", commit.ShortSHA(), "error", err)
		analysis = "_AI analysis is unavailable right now._"
	}

	var b strings.Builder
	b.WriteString(CommitHeader + "\n\n")
	if commit.URL != "" {
		fmt.Fprintf(&b, "**[`%s`](%s)** %s\n\n", commit.ShortSHA(), commit.URL, commit.Headline())
	} else {
		fmt.Fprintf(&b, "**`%s`** %s\n\n", commit.ShortSHA(), commit.Headline())
	}
	fmt.Fprintf(&b, "- **Author**: %s\n", commit.Author())
	fmt.Fprintf(&b, "- **Files changed**: %d (+%d / -%d)\n\n", len(commit.Files), commit.Additions, commit.Deletions)
	b.WriteString("**Analysis**\n\n")
	b.WriteString(analysis)
	return b.String()
}

func (d *Dispatcher) progressAnalysis(ctx context.Context, issueID string) string {
	issue, err := d.tracker.FetchIssue(ctx, issueID)
	if err != nil {
		logging.Warn("Progress analysis failed", "issue_id", issueID, "error", err)
		return failure("Progress analysis failed", err)
	}

	now := d.now()
	report := analytics.Progress(issue, now, d.settings.StaleAfter)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n", ProgressHeader, issue.Title)
	fmt.Fprintf(&b, "**%d%%** complete %s\n\n", report.ProgressPercent, progressBar(report.ProgressPercent))
	fmt.Fprintf(&b, "- **State**: %s\n", report.State)
	fmt.Fprintf(&b, "- **Age**: %d days\n", report.TotalDays)
	if report.LastActivityAt != nil {
		fmt.Fprintf(&b, "- **Last activity**: %s\n", humanize.RelTime(*report.LastActivityAt, now, "ago", "from now"))
	} else {
		b.WriteString("- **Last activity**: no comments yet\n")
	}
	if report.IsStale {
		b.WriteString("- ⚠️ **Stale**: no updates recently\n")
	}
	if len(report.Collaborators) > 0 {
		fmt.Fprintf(&b, "- **Collaborators**: %s\n", strings.Join(report.Collaborators, ", "))
	}

	if len(report.Blockers) > 0 {
		b.WriteString("\n**Possible blockers**\n")
		for _, c := range report.Blockers {
			fmt.Fprintf(&b, "- %s: %s\n", orDefault(c.UserName, "someone"), truncate(oneLine(c.Body), 200))
		}
	}

	if len(report.NextSteps) > 0 {
		b.WriteString("\n**Suggested next steps**\n")
		for _, step := range report.NextSteps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) teamInsights(ctx context.Context, issueID string) string {
	snapshot := d.cache.Get(ctx, issueID)
	if snapshot == nil || snapshot.TeamID == "" {
		return failure("Team insights failed", errors.New("could not resolve the team for this issue"))
	}

	issues, err := d.tracker.FetchTeamIssues(ctx, snapshot.TeamID)
	if err != nil {
		logging.Warn("Team insights failed", "team_id", snapshot.TeamID, "error", err)
		return failure("Team insights failed", err)
	}

	insights := analytics.Insights(issues)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n", TeamHeader, orDefault(snapshot.TeamName, snapshot.TeamID))
	fmt.Fprintf(&b, "- **Total issues**: %d\n", insights.TotalIssues)
	fmt.Fprintf(&b, "- **Average estimate**: %.1f points\n", insights.AvgEstimate)

	b.WriteString("\n**By state**\n")
	writeCounts(&b, insights.ByState)
	b.WriteString("\n**By priority**\n")
	writeCounts(&b, insights.ByPriority)

	if len(insights.TopContributors) > 0 {
		b.WriteString("\n**Top contributors**\n")
		for i, c := range insights.TopContributors {
			fmt.Fprintf(&b, "%d. %s (%d issues)\n", i+1, c.Name, c.Issues)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) chat(ctx context.Context, mention models.Mention, text string) string {
	history := d.memory.Recent(mention.IssueID, mention.UserID, d.settings.PromptHistory)
	snapshot := d.cache.Get(ctx, mention.IssueID)

	answer, err := d.llm.Generate(ctx, llm.Request{
		Tier:            llm.TierLarge,
		System:          chatSystemPrompt(mention.DisplayName(), snapshot, history),
		Prompt:          text,
		Temperature:     0.7,
		TopP:            0.8,
		MaxOutputTokens: 2048,
	})
	if err != nil {
		logging.Warn("Chat generation failed", "issue_id", mention.IssueID, "user_id", mention.UserID, "error", err)
		return ChatApology
	}

	d.memory.Append(ctx, mention.IssueID, mention.UserID, text, answer)
	return answer
}

func (d *Dispatcher) reviewPullRequest(ctx context.Context, url string) string {
	owner, repo, number, err := command.ParsePullRequestURL(url)
	if err != nil {
		return failure("PR review failed", err)
	}

	var (
		pr   vcs.PullRequest
		diff string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pr, err = d.source.GetPullRequest(gctx, owner, repo, number)
		return err
	})
	g.Go(func() error {
		var err error
		diff, err = d.source.GetPullRequestDiff(gctx, owner, repo, number)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Warn("PR review fetch failed", "url", url, "error", err)
		return failure("PR review failed", err)
	}

	review, err := d.llm.Generate(ctx, llm.Request{
		Tier:            llm.TierLarge,
		System:          reviewSystemPrompt,
		Prompt:          reviewPrompt(pr, truncate(diff, maxDiffBytes)),
		MaxOutputTokens: 4096,
	})
	if err != nil {
		logging.Warn("PR review generation failed", "url", url, "error", err)
		review = "_AI review is unavailable right now. Please try again later._"
	}

	var b strings.Builder
	b.WriteString(ReviewHeader + "\n\n")
	fmt.Fprintf(&b, "**[#%d %s](%s)** by @%s", pr.GetNumber(), pr.GetTitle(), orDefault(pr.GetURL(), url), pr.GetUser())
	if pr.GetIsDraft() {
		b.WriteString(" · 📝 draft")
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📁 %d files changed | ➕ %d additions | ➖ %d deletions | 🔀 %d commits\n\n",
		pr.GetChangedFiles(), pr.GetAdditions(), pr.GetDeletions(), pr.GetCommits())
	b.WriteString("---\n\n")
	b.WriteString(review)
	return b.String()
}

func progressBar(percent int) string {
	filled := percent / 10
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}

func writeCounts(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sortByCount(keys, counts)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %d\n", k, counts[k])
	}
}

func sortByCount(keys []string, counts map[string]int) {
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "\n... (truncated)"
}
