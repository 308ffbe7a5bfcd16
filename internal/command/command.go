// Package command classifies mention text into bot commands
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind enumerates the commands the bot understands
type Kind int

const (
	// Help prints the command cheatsheet
	Help Kind = iota
	// Status reports bot health
	Status
	// RepoReport summarizes the configured repository
	RepoReport
	// CommitAnalysis reviews the latest commit
	CommitAnalysis
	// ProgressAnalysis reports on the originating issue
	ProgressAnalysis
	// TeamInsights aggregates the issue's team
	TeamInsights
	// Chat is a free-form conversation turn
	Chat
	// PullRequestReview reviews a GitHub pull request
	PullRequestReview
)

var kindNames = map[Kind]string{
	Help:              "help",
	Status:            "status",
	RepoReport:        "repo",
	CommitAnalysis:    "commit",
	ProgressAnalysis:  "progress",
	TeamInsights:      "team-insights",
	Chat:              "chat",
	PullRequestReview: "pr-review",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is the classified form of a mention
type Command struct {
	Kind Kind
	// Text is the trimmed original body, set for Chat
	Text string
	// URL is the matched pull request URL, set for PullRequestReview
	URL string
}

// PullRequestURL matches GitHub pull request links
var PullRequestURL = regexp.MustCompile(`https://github\.com/[\w-]+/[\w-]+/pull/\d+`)

var pullRequestParts = regexp.MustCompile(`^https://github\.com/([\w-]+)/([\w-]+)/pull/(\d+)$`)

type rule struct {
	kind     Kind
	keywords []string
}

// rules are checked in order; the first match wins
var rules = []rule{
	{Status, []string{"status", "health"}},
	{RepoReport, []string{"repo", "repository"}},
	{CommitAnalysis, []string{"commit", "diff"}},
	{ProgressAnalysis, []string{"progress", "analyze"}},
	{TeamInsights, []string{"team", "insights"}},
	{Chat, []string{"chat", "talk", "help me"}},
}

// Parse maps a comment body to exactly one Command
func Parse(body string) Command {
	original := strings.TrimSpace(body)
	lower := strings.ToLower(original)

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				cmd := Command{Kind: r.kind}
				if r.kind == Chat {
					cmd.Text = original
				}
				return cmd
			}
		}
	}

	if url := PullRequestURL.FindString(original); url != "" {
		return Command{Kind: PullRequestReview, URL: url}
	}

	return Command{Kind: Help}
}

// ParsePullRequestURL extracts owner, repository and number from a URL
// matched by PullRequestURL
func ParsePullRequestURL(url string) (owner, repo string, number int, err error) {
	m := pullRequestParts.FindStringSubmatch(url)
	if m == nil {
		return "", "", 0, fmt.Errorf("not a pull request url: %q", url)
	}
	number, err = strconv.Atoi(m[3])
	if err != nil || number < 1 {
		return "", "", 0, fmt.Errorf("invalid pull request number in %q", url)
	}
	return m[1], m[2], number, nil
}
