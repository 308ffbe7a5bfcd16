package models

import (
	"time"
)

// IssueContext is a frozen snapshot of tracker issue state
type IssueContext struct {
	IssueID     string
	Title       string
	Description string
	State       string
	Priority    int
	Labels      []string
	Assignee    *string
	TeamName    string
	TeamID      string
	Project     *string
	Cycle       *string
	Estimate    *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Mention is the payload extracted from an issue comment mention
type Mention struct {
	IssueID   string
	CommentID string
	UserID    string
	UserName  string
	Body      string
}

// DisplayName returns the user's name, falling back to the id
func (m Mention) DisplayName() string {
	if m.UserName != "" {
		return m.UserName
	}
	return m.UserID
}

// PriorityLabel maps the tracker priority integer to its label
func PriorityLabel(priority int) string {
	switch priority {
	case 1:
		return "Low"
	case 2:
		return "Medium"
	case 3:
		return "High"
	case 4:
		return "Urgent"
	default:
		return "None"
	}
}

// Deref returns the pointed-to string or fallback when nil
func Deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
