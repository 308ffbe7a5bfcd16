// Package vcs provides interfaces for source host interactions
package vcs

import (
	"context"
	"errors"
)

// ErrSourceHost marks failures of source host requests
var ErrSourceHost = errors.New("source host request failed")

// Service defines the source host operations used by the bot
type Service interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (Repository, error)
	ListCommits(ctx context.Context, owner, repo string, limit int) ([]Commit, error)
	GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error)

	// PR operations
	GetPullRequest(ctx context.Context, owner, repo string, number int) (PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
}
