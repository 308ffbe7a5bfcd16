// Package vcs provides interfaces for source host interactions
package vcs

import "strings"

// CommitFile summarizes the change to one file in a commit
type CommitFile struct {
	Filename  string
	Status    string
	Additions int
	Deletions int
}

// Commit represents a commit with its optional file-change summary
type Commit struct {
	SHA         string
	Message     string
	AuthorName  string
	AuthorLogin string
	URL         string
	Additions   int
	Deletions   int
	Files       []CommitFile
}

// Headline returns the first line of the commit message
func (c *Commit) Headline() string {
	headline, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(headline)
}

// ShortSHA returns the abbreviated commit hash
func (c *Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Author returns the best available author name
func (c *Commit) Author() string {
	if c.AuthorName != "" {
		return c.AuthorName
	}
	if c.AuthorLogin != "" {
		return c.AuthorLogin
	}
	return "unknown"
}
