// Package github provides the GitHub implementation of the vcs.Service interface
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v45/github"
	"github.com/hellausefulsoftware/codescribe/internal/common/vcs"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"golang.org/x/oauth2"
)

// Adapter provides a GitHub implementation of the vcs.Service interface
type Adapter struct {
	client *github.Client
}

var _ vcs.Service = (*Adapter)(nil)

// NewAdapter creates a new GitHub adapter authenticated with token
func NewAdapter(token string) (*Adapter, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Adapter{
		client: github.NewClient(tc),
	}, nil
}

// GetRepository retrieves repository metadata
func (a *Adapter) GetRepository(ctx context.Context, owner, repo string) (vcs.Repository, error) {
	info, resp, err := a.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		logResponseError("get repository", resp)
		return nil, fmt.Errorf("failed to get repository %s/%s: %w: %w", owner, repo, vcs.ErrSourceHost, err)
	}

	return &vcs.BaseRepository{
		Owner:           owner,
		Name:            repo,
		FullName:        info.GetFullName(),
		Description:     info.GetDescription(),
		Language:        info.GetLanguage(),
		DefaultBranch:   info.GetDefaultBranch(),
		URL:             info.GetHTMLURL(),
		StargazersCount: info.GetStargazersCount(),
		ForksCount:      info.GetForksCount(),
		OpenIssuesCount: info.GetOpenIssuesCount(),
		SizeKB:          info.GetSize(),
		UpdatedAt:       info.GetUpdatedAt().Time,
	}, nil
}

// ListCommits returns the most recent commits on the default branch
func (a *Adapter) ListCommits(ctx context.Context, owner, repo string, limit int) ([]vcs.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{
			PerPage: limit,
		},
	}

	commits, resp, err := a.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		logResponseError("list commits", resp)
		return nil, fmt.Errorf("failed to list commits for %s/%s: %w: %w", owner, repo, vcs.ErrSourceHost, err)
	}

	if len(commits) > limit {
		commits = commits[:limit]
	}

	result := make([]vcs.Commit, 0, len(commits))
	for _, c := range commits {
		result = append(result, convertCommit(c))
	}
	return result, nil
}

// GetCommit retrieves a single commit including its file-change summary
func (a *Adapter) GetCommit(ctx context.Context, owner, repo, sha string) (*vcs.Commit, error) {
	c, resp, err := a.client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		logResponseError("get commit", resp)
		return nil, fmt.Errorf("failed to get commit %s: %w: %w", sha, vcs.ErrSourceHost, err)
	}

	commit := convertCommit(c)
	for _, f := range c.Files {
		commit.Files = append(commit.Files, vcs.CommitFile{
			Filename:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return &commit, nil
}

// GetPullRequest retrieves pull request metadata
func (a *Adapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (vcs.PullRequest, error) {
	pr, resp, err := a.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		logResponseError("get pull request", resp)
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w: %w", owner, repo, number, vcs.ErrSourceHost, err)
	}

	return &vcs.BasePullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        pr.GetState(),
		IsDraft:      pr.GetDraft(),
		User:         pr.GetUser().GetLogin(),
		HeadBranch:   pr.GetHead().GetRef(),
		BaseBranch:   pr.GetBase().GetRef(),
		URL:          pr.GetHTMLURL(),
		ChangedFiles: pr.GetChangedFiles(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		Commits:      pr.GetCommits(),
	}, nil
}

// GetPullRequestDiff retrieves the unified diff of a pull request
func (a *Adapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, resp, err := a.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		logResponseError("get pull request diff", resp)
		return "", fmt.Errorf("failed to get diff for %s/%s#%d: %w: %w", owner, repo, number, vcs.ErrSourceHost, err)
	}
	return diff, nil
}

func convertCommit(c *github.RepositoryCommit) vcs.Commit {
	return vcs.Commit{
		SHA:         c.GetSHA(),
		Message:     c.GetCommit().GetMessage(),
		AuthorName:  c.GetCommit().GetAuthor().GetName(),
		AuthorLogin: c.GetAuthor().GetLogin(),
		URL:         c.GetHTMLURL(),
		Additions:   c.GetStats().GetAdditions(),
		Deletions:   c.GetStats().GetDeletions(),
	}
}

// logResponseError logs rate limit details when GitHub returned a response
func logResponseError(op string, resp *github.Response) {
	if resp == nil {
		return
	}
	logging.Error("GitHub API error details",
		"op", op,
		"status", resp.Status,
		"rate_limit", resp.Rate.Limit,
		"rate_remaining", resp.Rate.Remaining)
}
