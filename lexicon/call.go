package lexicon

import (
	"context"

	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// handleCall binds the callee's context frame, runs its body, and
// restores the caller's frame on every exit path -- success, error,
// or an escaping sentinel other than RETURN.
func (it *Interpreter) handleCall(ctx context.Context, s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	funcLine := s.FunctionLineByName(line.Function)
	if funcLine == nil {
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "call to undeclared function " + line.Function,
		}
	}

	newCtx, err := s.ContextForFunctionCall(line, funcLine)
	if err != nil {
		return nil, nil, err
	}

	restore := s.SwapContext(newCtx)
	sentinel, err := it.RunBlock(ctx, s, nextLineOrNil(s, funcLine.Enter))
	restore()

	if err != nil {
		return nil, nil, err
	}

	result := value.Null()
	if sentinel != nil {
		v, ok := storyerr.AsReturn(sentinel)
		if !ok {
			return nil, nil, &storyerr.StoryscriptRuntimeError{
				Attribution: attr(s, line),
				Message:     "a sentinel other than RETURN escaped a function body",
			}
		}
		result = v
	}

	if len(line.Name) > 0 {
		if err := s.SetPath(line.Name, result); err != nil {
			return nil, nil, err
		}
	}

	return nextLineOrNil(s, line.Next), nil, nil
}
