package httpserver

import "github.com/hellausefulsoftware/codescribe/internal/webhook"

// Intake classifies decoded webhook events
type Intake interface {
	Handle(ev webhook.Event) (webhook.Result, error)
}

// TaskCounter reports background work still running
type TaskCounter interface {
	InFlight() int
}
