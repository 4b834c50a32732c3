// Package service implements the bridge between the interpreter and
// a ServiceBackend capability (spec.md §4.3/§6), plus the event bus a
// `when` subscription dispatches against.
package service

import (
	"context"

	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/value"
)

// EventHandler runs a `when` block's body against one published
// event, in a fresh child context. A returned error goes back to the
// backend that invoked the handler (dockerbackend logs it); it does
// not tear down the subscription.
type EventHandler func(ctx context.Context, event Event) error

// Backend is the capability the bridge calls into: a container
// orchestrator. spec.md documents it as an external collaborator
// ("out of scope... specified only by the interfaces the core
// consumes"); dockerbackend provides the reference implementation.
type Backend interface {
	// Execute dispatches a single command against line.Service and returns its
	// result value. May raise any §4.1 error (ServiceNotFound,
	// ActionNotFound, ArgumentNotFoundError, ...).
	Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error)

	// StartContainer brings up a long-lived service and returns its
	// handle. The handler caller is responsible for storing it under
	// line.Output in the story's context.
	StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error)

	// When subscribes handler to events on svc and returns
	// immediately -- event dispatch happens asynchronously, driven by
	// the backend. Per spec.md §4.4, each subscription is serialized
	// (the backend must not invoke handler re-entrantly for the same
	// subscription); different subscriptions may interleave freely.
	When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler EventHandler) error
}
