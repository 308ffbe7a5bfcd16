package webhook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hellausefulsoftware/codescribe/internal/command"
	"github.com/hellausefulsoftware/codescribe/internal/models"
	"github.com/hellausefulsoftware/codescribe/internal/tasks"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	funcs []tasks.Func
	err   error
}

func (r *recordingSubmitter) Submit(_ string, fn tasks.Func) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs = append(r.funcs, fn)
	return "task-1", nil
}

type recordingProcessor struct {
	mentions []models.Mention
}

func (r *recordingProcessor) Process(_ context.Context, m models.Mention) error {
	r.mentions = append(r.mentions, m)
	return nil
}

func mentionEvent() Event {
	n := &Notification{IssueID: "ISS-1", CommentID: "c-1"}
	body := "@codescribe status"
	n.Comment.Body = &body
	n.User.ID = "u-1"
	n.User.Name = "Ana"
	return Event{Type: TypeNotification, Action: ActionMention, Notification: n}
}

func TestHandshakeIsIdempotent(t *testing.T) {
	submitter := &recordingSubmitter{}
	intake := NewIntake(submitter, &recordingProcessor{})

	for i := 0; i < 2; i++ {
		res, err := intake.Handle(Event{Type: TypeChallenge, Challenge: "abc123"})
		if err != nil {
			t.Fatalf("Handle returned error: %v", err)
		}
		if res.Outcome != Handshake || res.Challenge != "abc123" {
			t.Errorf("result = %+v, want handshake abc123", res)
		}
	}
	if len(submitter.funcs) != 0 {
		t.Errorf("handshake scheduled %d tasks", len(submitter.funcs))
	}
}

func TestMentionIsScheduled(t *testing.T) {
	submitter := &recordingSubmitter{}
	processor := &recordingProcessor{}
	intake := NewIntake(submitter, processor)

	res, err := intake.Handle(mentionEvent())
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if res.Outcome != Accepted || res.TaskID != "task-1" {
		t.Fatalf("result = %+v, want accepted", res)
	}
	if len(processor.mentions) != 0 {
		t.Fatal("processing ran inside Handle")
	}

	if len(submitter.funcs) != 1 {
		t.Fatalf("scheduled %d tasks, want 1", len(submitter.funcs))
	}
	if err := submitter.funcs[0](context.Background()); err != nil {
		t.Fatalf("task returned error: %v", err)
	}

	want := models.Mention{IssueID: "ISS-1", CommentID: "c-1", UserID: "u-1", UserName: "Ana", Body: "@codescribe status"}
	if len(processor.mentions) != 1 || processor.mentions[0] != want {
		t.Errorf("processed %+v, want %+v", processor.mentions, want)
	}
}

func TestIgnoredEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{name: "other type", ev: Event{Type: "Issue", Action: "create"}},
		{name: "other action", ev: Event{Type: TypeNotification, Action: "issueAssignedToYou"}},
		{name: "empty", ev: Event{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &recordingSubmitter{}
			res, err := NewIntake(submitter, &recordingProcessor{}).Handle(tt.ev)
			if err != nil {
				t.Fatalf("Handle returned error: %v", err)
			}
			if res.Outcome != Ignored || res.Reason == "" {
				t.Errorf("result = %+v, want ignored with reason", res)
			}
			if len(submitter.funcs) != 0 {
				t.Error("ignored event scheduled work")
			}
		})
	}
}

func TestMalformedMention(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{name: "no notification", mutate: func(e *Event) { e.Notification = nil }},
		{name: "no issue id", mutate: func(e *Event) { e.Notification.IssueID = "" }},
		{name: "no user id", mutate: func(e *Event) { e.Notification.User.ID = "" }},
		{name: "no body", mutate: func(e *Event) { e.Notification.Comment.Body = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := mentionEvent()
			tt.mutate(&ev)
			submitter := &recordingSubmitter{}

			res, err := NewIntake(submitter, &recordingProcessor{}).Handle(ev)
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("error = %v, want ErrMalformedEvent", err)
			}
			if res.Outcome != Ignored {
				t.Errorf("outcome = %s, want ignored", res.Outcome)
			}
			if len(submitter.funcs) != 0 {
				t.Error("malformed event scheduled work")
			}
		})
	}
}

func TestOptionalFields(t *testing.T) {
	ev := mentionEvent()
	ev.Notification.CommentID = ""
	ev.Notification.User.Name = ""

	submitter := &recordingSubmitter{}
	processor := &recordingProcessor{}
	res, err := NewIntake(submitter, processor).Handle(ev)
	if err != nil || res.Outcome != Accepted {
		t.Fatalf("Handle = %+v, %v; want accepted", res, err)
	}
	_ = submitter.funcs[0](context.Background())
	if got := processor.mentions[0].DisplayName(); got != "u-1" {
		t.Errorf("DisplayName = %q, want user id fallback", got)
	}
}

func TestSubmitFailureIsIgnored(t *testing.T) {
	submitter := &recordingSubmitter{err: tasks.ErrClosed}

	res, err := NewIntake(submitter, &recordingProcessor{}).Handle(mentionEvent())
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if res.Outcome != Ignored {
		t.Errorf("outcome = %s, want ignored while draining", res.Outcome)
	}
}

func TestBlankBodyRoutesToHelp(t *testing.T) {
	ev := mentionEvent()
	blank := "   "
	ev.Notification.Comment.Body = &blank
	submitter := &recordingSubmitter{}
	processor := &recordingProcessor{}

	res, err := NewIntake(submitter, processor).Handle(ev)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if res.Outcome != Accepted {
		t.Fatalf("outcome = %v, want Accepted", res.Outcome)
	}
	if err := submitter.funcs[0](context.Background()); err != nil {
		t.Fatalf("task returned error: %v", err)
	}

	if len(processor.mentions) != 1 {
		t.Fatalf("processed %d mentions, want 1", len(processor.mentions))
	}
	if cmd := command.Parse(processor.mentions[0].Body); cmd.Kind != command.Help {
		t.Errorf("blank body parsed as %s, want help", cmd.Kind)
	}
}
