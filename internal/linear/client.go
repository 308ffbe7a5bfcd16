// Package linear provides the Linear implementation of the tracker.Service interface
package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"
	"golang.org/x/oauth2"

	"github.com/hellausefulsoftware/codescribe/internal/common/tracker"
	"github.com/hellausefulsoftware/codescribe/internal/logging"
)

// DefaultEndpoint is the Linear GraphQL API
const DefaultEndpoint = "https://api.linear.app/graphql"

const pageSize = 100

// Client talks to the Linear GraphQL API
type Client struct {
	gql *graphql.Client
}

var _ tracker.Service = (*Client)(nil)

// NewClient creates a Linear client. Personal API keys ("lin_api_...") are
// sent verbatim; anything else is treated as an OAuth access token.
func NewClient(token, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	if strings.HasPrefix(token, "lin_api_") {
		httpClient := &http.Client{Timeout: 30 * time.Second}
		gql := graphql.NewClient(endpoint, httpClient).WithRequestModifier(func(r *http.Request) {
			r.Header.Set("Authorization", token)
		})
		return &Client{gql: gql}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 30 * time.Second
	return &Client{gql: graphql.NewClient(endpoint, httpClient)}
}

// do executes a GraphQL operation and decodes its data into out
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	data, err := c.gql.ExecRaw(ctx, query, vars)
	if err != nil {
		logging.Debug("Linear request failed", "error", err)
		return fmt.Errorf("%w: %w", tracker.ErrTracker, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode data: %w", tracker.ErrTracker, err)
	}
	return nil
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

func (p pageInfo) next() (string, bool) {
	if !p.HasNextPage || p.EndCursor == "" {
		return "", false
	}
	return p.EndCursor, true
}

// FetchIssue loads an issue with its full comment thread
func (c *Client) FetchIssue(ctx context.Context, issueID string) (*tracker.Issue, error) {
	var data struct {
		Issue *issueNode `json:"issue"`
	}
	if err := c.do(ctx, issueQuery, map[string]any{"id": issueID, "first": pageSize}, &data); err != nil {
		return nil, fmt.Errorf("fetch issue %s: %w", issueID, err)
	}
	if data.Issue == nil {
		return nil, fmt.Errorf("fetch issue %s: %w: not found", issueID, tracker.ErrTracker)
	}

	node := data.Issue
	cursor, more := node.Comments.PageInfo.next()
	for more {
		var page struct {
			Issue *struct {
				Comments commentConnection `json:"comments"`
			} `json:"issue"`
		}
		vars := map[string]any{"id": issueID, "first": pageSize, "after": cursor}
		if err := c.do(ctx, issueCommentsQuery, vars, &page); err != nil {
			return nil, fmt.Errorf("fetch issue %s comments: %w", issueID, err)
		}
		if page.Issue == nil {
			break
		}
		node.Comments.Nodes = append(node.Comments.Nodes, page.Issue.Comments.Nodes...)
		cursor, more = page.Issue.Comments.PageInfo.next()
	}

	issue := node.convert()
	return &issue, nil
}

// FetchTeamIssues loads every issue belonging to a team, following pagination
func (c *Client) FetchTeamIssues(ctx context.Context, teamID string) ([]tracker.Issue, error) {
	var (
		issues []tracker.Issue
		cursor *string
	)

	for {
		var data struct {
			Team *struct {
				Issues struct {
					Nodes    []issueNode `json:"nodes"`
					PageInfo pageInfo    `json:"pageInfo"`
				} `json:"issues"`
			} `json:"team"`
		}

		vars := map[string]any{"id": teamID, "first": pageSize}
		if cursor != nil {
			vars["after"] = *cursor
		}
		if err := c.do(ctx, teamIssuesQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("fetch team %s issues: %w", teamID, err)
		}
		if data.Team == nil {
			return nil, fmt.Errorf("fetch team %s issues: %w: team not found", teamID, tracker.ErrTracker)
		}

		for _, n := range data.Team.Issues.Nodes {
			issues = append(issues, n.convert())
		}

		next, more := data.Team.Issues.PageInfo.next()
		if !more {
			break
		}
		cursor = &next
	}

	logging.Debug("Fetched team issues", "team_id", teamID, "count", len(issues))
	return issues, nil
}

// CreateComment appends a markdown comment to an issue
func (c *Client) CreateComment(ctx context.Context, issueID, body string) error {
	var data struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}

	vars := map[string]any{
		"input": map[string]any{
			"issueId": issueID,
			"body":    body,
		},
	}
	if err := c.do(ctx, commentCreateMutation, vars, &data); err != nil {
		return fmt.Errorf("create comment on %s: %w", issueID, err)
	}
	if !data.CommentCreate.Success {
		return fmt.Errorf("create comment on %s: %w: mutation reported failure", issueID, tracker.ErrTracker)
	}
	return nil
}

type named struct {
	Name string `json:"name"`
}

type issueNode struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    float64   `json:"priority"`
	Estimate    *float64  `json:"estimate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	State       *named    `json:"state"`
	Assignee    *named    `json:"assignee"`
	Project     *named    `json:"project"`
	Cycle       *named    `json:"cycle"`
	Team        *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Labels struct {
		Nodes []named `json:"nodes"`
	} `json:"labels"`
	Comments commentConnection `json:"comments"`
}

type commentConnection struct {
	Nodes []struct {
		Body      string    `json:"body"`
		CreatedAt time.Time `json:"createdAt"`
		User      *named    `json:"user"`
	} `json:"nodes"`
	PageInfo pageInfo `json:"pageInfo"`
}

func (n *issueNode) convert() tracker.Issue {
	issue := tracker.Issue{
		ID:         n.ID,
		Identifier: n.Identifier,
		Title:      n.Title,
		Priority:   int(n.Priority),
		Estimate:   n.Estimate,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	if n.Description != nil {
		issue.Description = *n.Description
	}
	if n.State != nil {
		issue.State = n.State.Name
	}
	issue.Assignee = optionalName(n.Assignee)
	issue.Project = optionalName(n.Project)
	issue.Cycle = optionalName(n.Cycle)
	if n.Team != nil {
		issue.TeamID = n.Team.ID
		issue.TeamName = n.Team.Name
	}
	for _, l := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, l.Name)
	}
	for _, c := range n.Comments.Nodes {
		comment := tracker.Comment{Body: c.Body, CreatedAt: c.CreatedAt}
		if c.User != nil {
			comment.UserName = c.User.Name
		}
		issue.Comments = append(issue.Comments, comment)
	}
	sort.SliceStable(issue.Comments, func(i, j int) bool {
		return issue.Comments[i].CreatedAt.Before(issue.Comments[j].CreatedAt)
	})
	return issue
}

func optionalName(n *named) *string {
	if n == nil || n.Name == "" {
		return nil
	}
	name := n.Name
	return &name
}
