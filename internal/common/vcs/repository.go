// Package vcs provides interfaces for source host interactions
package vcs

import "time"

// Repository represents a generic repository across VCS platforms
type Repository interface {
	GetOwner() string
	GetName() string
	GetFullName() string
	GetDescription() string
	GetLanguage() string
	GetDefaultBranch() string
	GetURL() string
	GetStargazersCount() int
	GetForksCount() int
	GetOpenIssuesCount() int
	GetSizeKB() int
	GetUpdatedAt() time.Time
}

// BaseRepository provides a common implementation of Repository
type BaseRepository struct {
	Owner           string
	Name            string
	FullName        string
	Description     string
	Language        string
	DefaultBranch   string
	URL             string
	StargazersCount int
	ForksCount      int
	OpenIssuesCount int
	SizeKB          int
	UpdatedAt       time.Time
}

// GetOwner returns the repository owner
func (r *BaseRepository) GetOwner() string { return r.Owner }

// GetName returns the repository name
func (r *BaseRepository) GetName() string { return r.Name }

// GetFullName returns "owner/name"
func (r *BaseRepository) GetFullName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner + "/" + r.Name
}

// GetDescription returns the repository description
func (r *BaseRepository) GetDescription() string { return r.Description }

// GetLanguage returns the primary language
func (r *BaseRepository) GetLanguage() string { return r.Language }

// GetDefaultBranch returns the default branch name
func (r *BaseRepository) GetDefaultBranch() string { return r.DefaultBranch }

// GetURL returns the repository URL
func (r *BaseRepository) GetURL() string { return r.URL }

// GetStargazersCount returns the number of stars
func (r *BaseRepository) GetStargazersCount() int { return r.StargazersCount }

// GetForksCount returns the number of forks
func (r *BaseRepository) GetForksCount() int { return r.ForksCount }

// GetOpenIssuesCount returns the number of open issues
func (r *BaseRepository) GetOpenIssuesCount() int { return r.OpenIssuesCount }

// GetSizeKB returns the repository size in kilobytes
func (r *BaseRepository) GetSizeKB() int { return r.SizeKB }

// GetUpdatedAt returns when the repository was last updated
func (r *BaseRepository) GetUpdatedAt() time.Time { return r.UpdatedAt }
