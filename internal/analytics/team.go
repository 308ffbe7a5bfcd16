package analytics

import (
	"math"
	"sort"

	"github.com/hellausefulsoftware/codescribe/internal/common/tracker"
	"github.com/hellausefulsoftware/codescribe/internal/models"
)

const maxContributors = 5

// Contributor counts the issues assigned to one person
type Contributor struct {
	Name   string
	Issues int
}

// TeamInsights aggregates a team's issues
type TeamInsights struct {
	TotalIssues     int
	ByState         map[string]int
	ByPriority      map[string]int
	AvgEstimate     float64
	TopContributors []Contributor
}

// Insights groups issues by state and priority and ranks assignees
func Insights(issues []tracker.Issue) TeamInsights {
	insights := TeamInsights{
		TotalIssues: len(issues),
		ByState:     make(map[string]int),
		ByPriority:  make(map[string]int),
	}

	var (
		estimateSum   float64
		estimateCount int
		contributors  []Contributor
		index         = make(map[string]int)
	)

	for i := range issues {
		issue := &issues[i]
		insights.ByState[issue.State]++
		insights.ByPriority[models.PriorityLabel(issue.Priority)]++

		if hasEstimate(issue) {
			estimateSum += *issue.Estimate
			estimateCount++
		}

		if issue.Assignee == nil || *issue.Assignee == "" {
			continue
		}
		name := *issue.Assignee
		if pos, ok := index[name]; ok {
			contributors[pos].Issues++
			continue
		}
		index[name] = len(contributors)
		contributors = append(contributors, Contributor{Name: name, Issues: 1})
	}

	if estimateCount > 0 {
		insights.AvgEstimate = math.Round(estimateSum/float64(estimateCount)*10) / 10
	}

	sort.SliceStable(contributors, func(a, b int) bool {
		return contributors[a].Issues > contributors[b].Issues
	})
	if len(contributors) > maxContributors {
		contributors = contributors[:maxContributors]
	}
	insights.TopContributors = contributors

	return insights
}
