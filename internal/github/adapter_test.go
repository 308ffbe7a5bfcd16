package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hellausefulsoftware/codescribe/internal/common/vcs"
)

// mockGitHubServer creates a mock GitHub server and an adapter pointed at it
func mockGitHubServer(t *testing.T, handler http.Handler) (*httptest.Server, *Adapter) {
	t.Helper()

	server := httptest.NewServer(handler)

	adapter, err := NewAdapter("test-token")
	if err != nil {
		t.Fatalf("NewAdapter returned error: %v", err)
	}

	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("Failed to parse server URL: %v", err)
	}
	adapter.client.BaseURL = baseURL
	adapter.client.UploadURL = baseURL

	return server, adapter
}

func writeBody(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("Error writing response in mock server: %v", err)
	}
}

func TestNewAdapterRequiresToken(t *testing.T) {
	if _, err := NewAdapter(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestGetRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/ManagementMO/CodeScribe", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q", got)
		}
		writeBody(t, w, `{
			"full_name": "ManagementMO/CodeScribe",
			"description": "Linear bot",
			"language": "Go",
			"stargazers_count": 1200,
			"forks_count": 7,
			"open_issues_count": 3,
			"default_branch": "main",
			"size": 2048,
			"html_url": "https://github.com/ManagementMO/CodeScribe",
			"updated_at": "2025-01-02T03:04:05Z"
		}`)
	})

	server, adapter := mockGitHubServer(t, mux)
	defer server.Close()

	repo, err := adapter.GetRepository(context.Background(), "ManagementMO", "CodeScribe")
	if err != nil {
		t.Fatalf("GetRepository returned error: %v", err)
	}
	if repo.GetFullName() != "ManagementMO/CodeScribe" {
		t.Errorf("FullName = %s", repo.GetFullName())
	}
	if repo.GetStargazersCount() != 1200 || repo.GetForksCount() != 7 || repo.GetOpenIssuesCount() != 3 {
		t.Errorf("unexpected counts: stars=%d forks=%d issues=%d",
			repo.GetStargazersCount(), repo.GetForksCount(), repo.GetOpenIssuesCount())
	}
	if repo.GetSizeKB() != 2048 {
		t.Errorf("SizeKB = %d, want 2048", repo.GetSizeKB())
	}
	if repo.GetUpdatedAt().Year() != 2025 {
		t.Errorf("UpdatedAt = %s", repo.GetUpdatedAt())
	}
}

func TestListCommits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "5" {
			t.Errorf("per_page = %q, want 5", got)
		}
		writeBody(t, w, `[
			{"sha": "aaaaaaaaaa", "commit": {"message": "Add router\n\ndetails", "author": {"name": "Ada"}}, "author": {"login": "ada"}},
			{"sha": "bbbbbbbbbb", "commit": {"message": "Fix cache", "author": {"name": "Grace"}}}
		]`)
	})

	server, adapter := mockGitHubServer(t, mux)
	defer server.Close()

	commits, err := adapter.ListCommits(context.Background(), "o", "r", 5)
	if err != nil {
		t.Fatalf("ListCommits returned error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("got %d commits, want 2", len(commits))
	}
	if commits[0].Headline() != "Add router" || commits[0].Author() != "Ada" || commits[0].AuthorLogin != "ada" {
		t.Errorf("unexpected first commit: %+v", commits[0])
	}
}

func TestGetCommitWithFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/commits/abc123", func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `{
			"sha": "abc123",
			"commit": {"message": "Refactor intake", "author": {"name": "Ada"}},
			"stats": {"additions": 12, "deletions": 4},
			"files": [
				{"filename": "intake.go", "status": "modified", "additions": 10, "deletions": 4},
				{"filename": "intake_test.go", "status": "added", "additions": 2, "deletions": 0}
			]
		}`)
	})

	server, adapter := mockGitHubServer(t, mux)
	defer server.Close()

	commit, err := adapter.GetCommit(context.Background(), "o", "r", "abc123")
	if err != nil {
		t.Fatalf("GetCommit returned error: %v", err)
	}
	if len(commit.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(commit.Files))
	}
	if commit.Files[0].Filename != "intake.go" || commit.Files[0].Additions != 10 || commit.Files[0].Deletions != 4 {
		t.Errorf("unexpected file: %+v", commit.Files[0])
	}
	if commit.Additions != 12 || commit.Deletions != 4 {
		t.Errorf("stats = +%d/-%d", commit.Additions, commit.Deletions)
	}
}

func TestGetPullRequestAndDiff(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/ManagementMO/CodeScribe/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/vnd.github.v3.diff" {
			writeBody(t, w, "diff --git a/x b/x\n+added\n")
			return
		}
		writeBody(t, w, `{
			"number": 7,
			"title": "Add chat memory",
			"state": "open",
			"user": {"login": "ada"},
			"head": {"ref": "feature/chat"},
			"base": {"ref": "main"},
			"changed_files": 3,
			"additions": 120,
			"deletions": 8,
			"commits": 2
		}`)
	})

	server, adapter := mockGitHubServer(t, mux)
	defer server.Close()

	pr, err := adapter.GetPullRequest(context.Background(), "ManagementMO", "CodeScribe", 7)
	if err != nil {
		t.Fatalf("GetPullRequest returned error: %v", err)
	}
	if pr.GetTitle() != "Add chat memory" || pr.GetUser() != "ada" || pr.GetChangedFiles() != 3 {
		t.Errorf("unexpected PR: %+v", pr)
	}
	if pr.GetHeadBranch() != "feature/chat" || pr.GetBaseBranch() != "main" {
		t.Errorf("branches = %s -> %s", pr.GetHeadBranch(), pr.GetBaseBranch())
	}

	diff, err := adapter.GetPullRequestDiff(context.Background(), "ManagementMO", "CodeScribe", 7)
	if err != nil {
		t.Fatalf("GetPullRequestDiff returned error: %v", err)
	}
	if diff != "diff --git a/x b/x\n+added\n" {
		t.Errorf("diff = %q", diff)
	}
}

func TestSourceHostErrorKind(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeBody(t, w, `{"message": "Not Found"}`)
	})

	server, adapter := mockGitHubServer(t, mux)
	defer server.Close()

	_, err := adapter.GetRepository(context.Background(), "o", "missing")
	if err == nil {
		t.Fatal("expected error for missing repository")
	}
	if !errors.Is(err, vcs.ErrSourceHost) {
		t.Errorf("error %v is not ErrSourceHost", err)
	}
}
