// Package tracker defines the issue tracker contract consumed by the bot
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/models"
)

// ErrTracker marks failures of tracker reads or comment creation
var ErrTracker = errors.New("tracker request failed")

// Comment represents a comment on a tracker issue
type Comment struct {
	Body      string
	UserName  string
	CreatedAt time.Time
}

// Issue represents a tracker issue together with its comments
type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	State       string
	Priority    int
	Labels      []string
	Assignee    *string
	TeamID      string
	TeamName    string
	Project     *string
	Cycle       *string
	Estimate    *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Comments    []Comment
}

// Context projects the issue onto the snapshot cached by the bot
func (i *Issue) Context() models.IssueContext {
	labels := make([]string, len(i.Labels))
	copy(labels, i.Labels)

	return models.IssueContext{
		IssueID:     i.ID,
		Title:       i.Title,
		Description: i.Description,
		State:       i.State,
		Priority:    i.Priority,
		Labels:      labels,
		Assignee:    i.Assignee,
		TeamName:    i.TeamName,
		TeamID:      i.TeamID,
		Project:     i.Project,
		Cycle:       i.Cycle,
		Estimate:    i.Estimate,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// Service defines the tracker operations the bot depends on
type Service interface {
	// FetchIssue loads an issue including its comments
	FetchIssue(ctx context.Context, issueID string) (*Issue, error)
	// FetchTeamIssues loads every issue of a team
	FetchTeamIssues(ctx context.Context, teamID string) ([]Issue, error)
	// CreateComment appends a markdown comment to an issue
	CreateComment(ctx context.Context, issueID, body string) error
}
