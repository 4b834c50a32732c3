package lexicon

import (
	"context"

	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// handleWhen subscribes line.Enter's block to events on the streaming
// service bound in line.Service, then returns immediately --
// subscription dispatch is driven by the backend, not by this call.
func (it *Interpreter) handleWhen(ctx context.Context, s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	svcVal, ok := s.Get(line.Service)
	if !ok || svcVal.Kind() != value.KindStream {
		return nil, nil, &storyerr.StoryscriptError{
			Attribution: attr(s, line),
			Message:     line.Service + " is not bound to a running streaming service",
		}
	}
	svc, ok := svcVal.Stream().(story.StreamingService)
	if !ok {
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "streaming service handle has an unexpected type",
		}
	}

	handler := func(ctx context.Context, event service.Event) error {
		return it.runWhenBody(ctx, s, line, event)
	}

	if err := it.Bridge.When(ctx, svc, s, line, handler); err != nil {
		return nil, nil, err
	}

	return s.NextBlock(line), nil, nil
}

// runWhenBody swaps in a fresh child context seeded with one event's
// named outputs, runs the subscribed block against it, and restores
// the enclosing frame afterward -- the same isolation handleCall gives
// a function body, so two interleaving subscriptions never race on a
// shared map and a body's own assignments don't leak out. A RETURN
// sentinel is absorbed here, same as call; any other escaping sentinel
// is a runtime error.
func (it *Interpreter) runWhenBody(ctx context.Context, s *story.Story, line *story.Line, event service.Event) error {
	newCtx := make(map[string]value.Value, len(event.Data))
	for name, v := range event.Data {
		newCtx[name] = v
	}
	restore := s.SwapContext(newCtx)
	defer restore()

	sentinel, err := it.RunBlock(ctx, s, nextLineOrNil(s, line.Enter))
	if err != nil {
		return err
	}
	if sentinel != nil {
		if _, ok := storyerr.AsReturn(sentinel); !ok {
			return &storyerr.StoryscriptRuntimeError{
				Attribution: attr(s, line),
				Message:     "a sentinel other than RETURN escaped a when block",
			}
		}
	}
	return nil
}
