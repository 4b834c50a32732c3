// Package lexicon implements the tree-walking interpreter: one
// handler per story.Method, dispatched in a loop by RunBlock. See
// spec.md §4.4 for each handler's exact contract.
package lexicon

import (
	"context"

	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// Bridge is the subset of *service.Bridge the interpreter calls
// against. Declared narrowly here (rather than importing the
// concrete type directly into every signature) so tests can supply a
// fake without going through the metrics-wrapped bridge.
type Bridge interface {
	Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error)
	StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error)
	When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler service.EventHandler) error
}

// Interpreter walks a story's line tree against a Bridge.
type Interpreter struct {
	Bridge Bridge
}

// New builds an Interpreter.
func New(bridge Bridge) *Interpreter {
	return &Interpreter{Bridge: bridge}
}

// RunBlock executes lines starting at start, following each handler's
// returned next line, until a handler returns no next line (Completed
// with no continuation), a sentinel escapes the block (Suspended), or
// a handler errors (Errored). A nil start line is a no-op completion.
func (it *Interpreter) RunBlock(ctx context.Context, s *story.Story, start *story.Line) (storyerr.Sentinel, error) {
	line := start
	for line != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, sentinel, err := it.dispatch(ctx, s, line)
		if err != nil {
			return nil, err
		}
		if sentinel != nil {
			return sentinel, nil
		}
		line = next
	}
	return nil, nil
}

func (it *Interpreter) dispatch(ctx context.Context, s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	switch line.Method {
	case story.MethodExecute:
		return it.handleExecute(ctx, s, line)
	case story.MethodSet:
		return it.handleSet(s, line)
	case story.MethodIf, story.MethodElif, story.MethodElse:
		return it.handleIf(s, line)
	case story.MethodUnless:
		return it.handleUnless(s, line)
	case story.MethodFor:
		return it.handleFor(ctx, s, line)
	case story.MethodFunction:
		return it.handleFunction(s, line)
	case story.MethodCall:
		return it.handleCall(ctx, s, line)
	case story.MethodWhen:
		return it.handleWhen(ctx, s, line)
	case story.MethodReturn:
		return it.handleReturn(s, line)
	case story.MethodBreak:
		return it.handleBreak(s, line)
	case story.MethodExpression:
		return it.handleExpression(s, line)
	default:
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "unknown line method " + string(line.Method),
		}
	}
}

func attr(s *story.Story, line *story.Line) storyerr.Attribution {
	return storyerr.Attribution{Story: s.Name, Line: line.LN}
}

func resolveArgs(s *story.Story, args []*story.Expr, encode bool) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := s.Resolve(a, encode)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func nextLineOrNil(s *story.Story, ln *string) *story.Line {
	if ln == nil {
		return nil
	}
	return s.Line(*ln)
}
