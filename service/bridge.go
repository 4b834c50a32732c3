package service

import (
	"context"
	"time"

	"github.com/jayvdb/platform-engine/metrics"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/value"
)

// Bridge wraps a Backend with the timing spec.md §4.3 requires:
// container_exec_seconds_total and container_start_seconds_total,
// labeled {app_id, story_name, service}.
type Bridge struct {
	Backend Backend
	Metrics metrics.Sink
}

// NewBridge builds a Bridge. A nil sink is replaced with
// metrics.NoopSink so callers that don't care about observability
// don't have to construct one.
func NewBridge(backend Backend, sink metrics.Sink) *Bridge {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Bridge{Backend: backend, Metrics: sink}
}

// Execute times and delegates to Backend.Execute.
func (b *Bridge) Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error) {
	start := time.Now()
	v, err := b.Backend.Execute(ctx, s, line, args)
	b.Metrics.ObserveContainerExec(s.App.AppID(), s.Name, line.Service, time.Since(start).Seconds())
	return v, err
}

// StartContainer times and delegates to Backend.StartContainer.
func (b *Bridge) StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error) {
	start := time.Now()
	svc, err := b.Backend.StartContainer(ctx, s, line, args)
	b.Metrics.ObserveContainerStart(s.App.AppID(), s.Name, line.Service, time.Since(start).Seconds())
	return svc, err
}

// When is a thin passthrough -- subscription setup is not a
// container-timing event spec.md asks to be measured.
func (b *Bridge) When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler EventHandler) error {
	return b.Backend.When(ctx, svc, s, line, handler)
}
