package lexicon

import (
	"context"

	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// handleFor resolves the iterable, runs the child block once per
// element with the loop variable bound under line.Output[0], and
// guarantees the binding never leaks past the loop on any exit path
// (success, BREAK, error). A BREAK sentinel stops iteration early and
// is absorbed here; any other sentinel bubbles up unchanged.
func (it *Interpreter) handleFor(ctx context.Context, s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	if len(line.Args) == 0 {
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "for requires an iterable argument",
		}
	}
	if len(line.Output) != 1 {
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "for requires exactly one loop variable name",
		}
	}

	iterable, err := s.Resolve(line.Args[0], false)
	if err != nil {
		return nil, nil, err
	}

	for _, item := range iterable.List() {
		sentinel, err := it.runForIteration(ctx, s, line, item)
		if err != nil {
			return nil, nil, err
		}
		if sentinel != nil {
			if storyerr.IsBreak(sentinel) {
				return s.NextBlock(line), nil, nil
			}
			return nil, sentinel, nil
		}
	}

	return s.NextBlock(line), nil, nil
}

// runForIteration binds one element to the loop variable and runs the
// child block, restoring the binding on every exit path.
func (it *Interpreter) runForIteration(ctx context.Context, s *story.Story, line *story.Line, item value.Value) (storyerr.Sentinel, error) {
	restore := s.BindLoopVar(line.Output[0], item)
	defer restore()

	return it.RunBlock(ctx, s, nextLineOrNil(s, line.Enter))
}
