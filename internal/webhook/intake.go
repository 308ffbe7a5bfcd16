// Package webhook classifies inbound tracker events and schedules mention
// processing without waiting for it
package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hellausefulsoftware/codescribe/internal/logging"
	"github.com/hellausefulsoftware/codescribe/internal/models"
	"github.com/hellausefulsoftware/codescribe/internal/tasks"
)

// Recognized event types and actions
const (
	TypeChallenge    = "WebhookChallenge"
	TypeNotification = "AppUserNotification"
	ActionMention    = "issueCommentMention"
)

// ErrMalformedEvent is returned when a mention lacks required fields
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is the decoded webhook body
type Event struct {
	Type         string        `json:"type"`
	Action       string        `json:"action,omitempty"`
	Challenge    string        `json:"challenge,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Notification carries the mention details
type Notification struct {
	IssueID   string `json:"issueId"`
	CommentID string `json:"commentId"`
	Comment   struct {
		// Body is nil when the field is absent; an empty body is valid
		Body *string `json:"body"`
	} `json:"comment"`
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
}

// Outcome is the intake decision for an event
type Outcome int

const (
	// Ignored events are acknowledged with 200 and dropped
	Ignored Outcome = iota
	// Handshake echoes the challenge token back
	Handshake
	// Accepted mentions have been scheduled for processing
	Accepted
)

func (o Outcome) String() string {
	switch o {
	case Handshake:
		return "handshake"
	case Accepted:
		return "accepted"
	default:
		return "ignored"
	}
}

// Result describes how an event was handled
type Result struct {
	Outcome   Outcome
	Challenge string
	Reason    string
	TaskID    string
}

// Submitter schedules detached work, normally a *tasks.Set
type Submitter interface {
	Submit(name string, fn tasks.Func) (string, error)
}

// Processor handles one mention end to end, normally a *workflow.Dispatcher
type Processor interface {
	Process(ctx context.Context, mention models.Mention) error
}

// Intake is the webhook entry point
type Intake struct {
	tasks     Submitter
	processor Processor
}

// NewIntake creates an intake scheduling work on submitter
func NewIntake(submitter Submitter, processor Processor) *Intake {
	return &Intake{tasks: submitter, processor: processor}
}

// Handle classifies ev. Mentions are submitted as background tasks; Handle
// itself performs no downstream I/O.
func (i *Intake) Handle(ev Event) (Result, error) {
	switch {
	case ev.Type == TypeChallenge:
		return Result{Outcome: Handshake, Challenge: ev.Challenge}, nil
	case ev.Type == TypeNotification && ev.Action == ActionMention:
		return i.accept(ev.Notification)
	case ev.Type == TypeNotification:
		return Result{Outcome: Ignored, Reason: fmt.Sprintf("unhandled action %q", ev.Action)}, nil
	default:
		return Result{Outcome: Ignored, Reason: fmt.Sprintf("unhandled event type %q", ev.Type)}, nil
	}
}

func (i *Intake) accept(n *Notification) (Result, error) {
	mention, err := extractMention(n)
	if err != nil {
		return Result{Outcome: Ignored, Reason: err.Error()}, err
	}

	id, err := i.tasks.Submit("mention:"+mention.IssueID, func(ctx context.Context) error {
		return i.processor.Process(ctx, mention)
	})
	if err != nil {
		logging.Warn("Mention not scheduled", "issue_id", mention.IssueID, "error", err)
		return Result{Outcome: Ignored, Reason: err.Error()}, nil
	}

	logging.Info("Mention accepted",
		"task_id", id,
		"issue_id", mention.IssueID,
		"comment_id", mention.CommentID,
		"user_id", mention.UserID)

	return Result{Outcome: Accepted, TaskID: id}, nil
}

func extractMention(n *Notification) (models.Mention, error) {
	if n == nil {
		return models.Mention{}, fmt.Errorf("%w: missing notification", ErrMalformedEvent)
	}

	var missing []string
	if n.IssueID == "" {
		missing = append(missing, "issueId")
	}
	if n.User.ID == "" {
		missing = append(missing, "user.id")
	}
	if n.Comment.Body == nil {
		missing = append(missing, "comment.body")
	}
	if len(missing) > 0 {
		return models.Mention{}, fmt.Errorf("%w: missing %s", ErrMalformedEvent, strings.Join(missing, ", "))
	}

	return models.Mention{
		IssueID:   n.IssueID,
		CommentID: n.CommentID,
		UserID:    n.User.ID,
		UserName:  n.User.Name,
		Body:      *n.Comment.Body,
	}, nil
}
