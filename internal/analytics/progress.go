// Package analytics computes issue progress and team reports from tracker data
package analytics

import (
	"strings"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/common/tracker"
)

// DefaultStaleAfter is how long an issue may go without updates before it is stale
const DefaultStaleAfter = 7 * 24 * time.Hour

const (
	maxBlockers  = 3
	activeBonus  = 5
	busyComments = 5
)

// Suggested next steps
const (
	StepStart     = "Move to In Progress when you start working"
	StepBreakDown = "Break down into smaller subtasks if complex"
	StepAssign    = "Assign someone to this issue"
	StepEstimate  = "Add story point estimate for better planning"
	StepComment   = "Add initial comment with approach or questions"
	StepStale     = "Issue seems stale - consider updating status or adding progress comment"
)

var stateProgress = map[string]int{
	"Backlog":     0,
	"Todo":        10,
	"In Progress": 50,
	"In Review":   80,
	"Done":        100,
}

var blockerKeywords = []string{"blocked", "blocker", "stuck", "waiting", "issue", "problem", "dependency"}

// ProgressReport summarizes where a single issue stands
type ProgressReport struct {
	State           string
	ProgressPercent int
	TotalDays       int
	LastActivityAt  *time.Time
	IsStale         bool
	Collaborators   []string
	Blockers        []tracker.Comment
	NextSteps       []string
}

// Progress builds the report for issue as of now
func Progress(issue *tracker.Issue, now time.Time, staleAfter time.Duration) ProgressReport {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	report := ProgressReport{
		State:           issue.State,
		ProgressPercent: progressPercent(issue),
		TotalDays:       int(now.Sub(issue.CreatedAt) / (24 * time.Hour)),
		IsStale:         now.Sub(issue.UpdatedAt) > staleAfter,
		Collaborators:   collaborators(issue.Comments),
		Blockers:        blockers(issue.Comments),
	}

	if n := len(issue.Comments); n > 0 {
		last := issue.Comments[n-1].CreatedAt
		report.LastActivityAt = &last
	}

	report.NextSteps = nextSteps(issue, report.IsStale)
	return report
}

func progressPercent(issue *tracker.Issue) int {
	percent := stateProgress[issue.State]
	if len(issue.Comments) > busyComments {
		percent += activeBonus
	}
	if hasEstimate(issue) {
		percent += activeBonus
	}
	if issue.Assignee != nil {
		percent += activeBonus
	}
	return min(percent, 100)
}

func hasEstimate(issue *tracker.Issue) bool {
	return issue.Estimate != nil && *issue.Estimate > 0
}

func collaborators(comments []tracker.Comment) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range comments {
		if c.UserName == "" || seen[c.UserName] {
			continue
		}
		seen[c.UserName] = true
		names = append(names, c.UserName)
	}
	return names
}

func blockers(comments []tracker.Comment) []tracker.Comment {
	var matched []tracker.Comment
	for _, c := range comments {
		body := strings.ToLower(c.Body)
		for _, kw := range blockerKeywords {
			if strings.Contains(body, kw) {
				matched = append(matched, c)
				break
			}
		}
	}
	if len(matched) > maxBlockers {
		matched = matched[len(matched)-maxBlockers:]
	}
	return matched
}

func nextSteps(issue *tracker.Issue, stale bool) []string {
	var steps []string
	if issue.State == "Todo" {
		steps = append(steps, StepStart, StepBreakDown)
	}
	if issue.State == "In Progress" && issue.Assignee == nil {
		steps = append(steps, StepAssign)
	}
	if !hasEstimate(issue) {
		steps = append(steps, StepEstimate)
	}
	if len(issue.Comments) == 0 {
		steps = append(steps, StepComment)
	}
	if issue.State == "In Progress" && stale {
		steps = append(steps, StepStale)
	}
	return steps
}
