package workflow

import (
	"fmt"
	"strings"

	"github.com/hellausefulsoftware/codescribe/internal/common/vcs"
	"github.com/hellausefulsoftware/codescribe/internal/memory"
	"github.com/hellausefulsoftware/codescribe/internal/models"
)

const commitSystemPrompt = `You are CodeScribe, a senior engineer reviewing commits for a software team.
Be concise: a short summary of what changed, notable risks, and one or two suggestions.
Answer in markdown without a top-level heading.`

const chatPreamble = `You are CodeScribe, an AI teammate living inside the team's issue tracker.
You can report on repositories, analyze commits, track issue progress, summarize team workload and review GitHub pull requests.
You are friendly, direct and practical. Keep answers short unless asked for detail, use markdown, and ground your answers in the issue context below when it is relevant.`

const reviewSystemPrompt = `You are CodeScribe, an expert code reviewer.
Review the pull request and answer in markdown with exactly these sections:
#### Code Quality
#### Potential Bugs
#### Security
#### Performance
#### Suggestions
#### Overall Assessment
Reference files and lines from the diff where possible. Be specific and constructive.`

const helpText = HelpHeader + `

Mention me in a comment followed by one of these commands:

| Command | What it does |
|---|---|
| ` + "`status`" + ` / ` + "`health`" + ` | Check that I'm up and running |
| ` + "`repo`" + ` / ` + "`repository`" + ` | Report on the configured repository and its recent commits |
| ` + "`commit`" + ` / ` + "`diff`" + ` | Analyze the latest commit |
| ` + "`progress`" + ` / ` + "`analyze`" + ` | Analyze the progress of this issue |
| ` + "`team`" + ` / ` + "`insights`" + ` | Summarize the workload of this issue's team |
| ` + "`chat`" + ` / ` + "`talk`" + ` / ` + "`help me`" + ` | Have a conversation; I remember our recent messages on this issue |
| a GitHub pull request URL | Review the pull request |

**Examples**
- ` + "`@codescribe progress`" + `
- ` + "`@codescribe chat how should I split this issue?`" + `
- ` + "`@codescribe https://github.com/owner/repo/pull/42`"

func commitPrompt(c *vcs.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Commit %s by %s\n", c.ShortSHA(), c.Author())
	fmt.Fprintf(&b, "Message:\n%s\n\n", strings.TrimSpace(c.Message))
	fmt.Fprintf(&b, "Files changed: %d (+%d / -%d)\n", len(c.Files), c.Additions, c.Deletions)
	for _, f := range c.Files {
		fmt.Fprintf(&b, "- %s [%s] +%d -%d\n", f.Filename, f.Status, f.Additions, f.Deletions)
	}
	b.WriteString("\nAnalyze this commit.")
	return b.String()
}

func chatSystemPrompt(userName string, issue *models.IssueContext, history []memory.Exchange) string {
	var b strings.Builder
	b.WriteString(chatPreamble)
	b.WriteString("\n\n")

	if issue != nil {
		b.WriteString("## Issue context\n")
		fmt.Fprintf(&b, "- Title: %s\n", issue.Title)
		fmt.Fprintf(&b, "- State: %s\n", issue.State)
		fmt.Fprintf(&b, "- Priority: %s\n", models.PriorityLabel(issue.Priority))
		fmt.Fprintf(&b, "- Assignee: %s\n", models.Deref(issue.Assignee, "unassigned"))
		fmt.Fprintf(&b, "- Team: %s\n", issue.TeamName)
		if len(issue.Labels) > 0 {
			fmt.Fprintf(&b, "- Labels: %s\n", strings.Join(issue.Labels, ", "))
		}
		if issue.Project != nil {
			fmt.Fprintf(&b, "- Project: %s\n", *issue.Project)
		}
		if issue.Cycle != nil {
			fmt.Fprintf(&b, "- Cycle: %s\n", *issue.Cycle)
		}
		if issue.Estimate != nil {
			fmt.Fprintf(&b, "- Estimate: %g points\n", *issue.Estimate)
		}
		if desc := strings.TrimSpace(issue.Description); desc != "" {
			fmt.Fprintf(&b, "- Description:\n%s\n", truncate(desc, 2000))
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("## Recent conversation\n")
		for _, ex := range history {
			fmt.Fprintf(&b, "User: %s\nYou: %s\n", ex.UserMessage, ex.BotResponse)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "You are talking to %s. Reply to their next message.", userName)
	return b.String()
}

func reviewPrompt(pr vcs.PullRequest, diff string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pull request #%d: %s\n", pr.GetNumber(), pr.GetTitle())
	fmt.Fprintf(&b, "Author: %s\n", pr.GetUser())
	fmt.Fprintf(&b, "State: %s\n", orDefault(pr.GetState(), "unknown"))
	if pr.GetIsDraft() {
		b.WriteString("Draft: yes, review for direction rather than polish\n")
	}
	fmt.Fprintf(&b, "Branches: %s -> %s\n", pr.GetHeadBranch(), pr.GetBaseBranch())
	fmt.Fprintf(&b, "Commits: %d\n", pr.GetCommits())
	fmt.Fprintf(&b, "Changes: %d files, +%d / -%d\n\n", pr.GetChangedFiles(), pr.GetAdditions(), pr.GetDeletions())
	if body := strings.TrimSpace(pr.GetBody()); body != "" {
		fmt.Fprintf(&b, "Description:\n%s\n\n", body)
	}
	b.WriteString("Diff:\n```diff\n")
	b.WriteString(diff)
	b.WriteString("\n```")
	return b.String()
}
