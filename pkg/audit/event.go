// Package audit records router configuration changes to a JSON-lines
// log and supports querying them back.
package audit

import (
	"fmt"
	"time"
)

// Event is one auditable change on a router.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Router    string    `json:"router"`
	Module    string    `json:"module"`
	Operation string    `json:"operation"`
	Target    string    `json:"target,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Router      string
	User        string
	Module      string // one module, or a comma-separated set
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, router, module, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Router:    router,
		Module:    module,
		Operation: operation,
	}
}

// WithTarget sets the entry the operation acted on
func (e *Event) WithTarget(target string) *Event {
	e.Target = target
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithResult marks the event from an operation's error result
func (e *Event) WithResult(err error) *Event {
	if err != nil {
		return e.WithError(err)
	}
	return e.WithSuccess()
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
