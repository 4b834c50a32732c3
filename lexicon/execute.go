package lexicon

import (
	"context"

	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// handleExecute dispatches a single line to a service. If line.Enter
// is set, the line brings up a streaming service instead of calling a
// one-shot action; its body (under Enter) is reached later, via a
// `when` subscription, not from here.
func (it *Interpreter) handleExecute(ctx context.Context, s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	args, err := resolveArgs(s, line.Args, true)
	if err != nil {
		return nil, nil, err
	}

	if line.Enter != nil {
		svc, err := it.Bridge.StartContainer(ctx, s, line, args)
		if err != nil {
			return nil, nil, err
		}
		if len(line.Output) != 1 {
			return nil, nil, &storyerr.StoryscriptRuntimeError{
				Attribution: attr(s, line),
				Message:     "a streaming service execute must bind exactly one output name",
			}
		}
		s.Set(line.Output[0], value.Stream(svc))
		return nextLineOrNil(s, line.Next), nil, nil
	}

	result, err := it.Bridge.Execute(ctx, s, line, args)
	if err != nil {
		return nil, nil, err
	}

	if len(line.Name) == 1 {
		if err := s.SetPath(line.Name, result); err != nil {
			return nil, nil, err
		}
	} else {
		bindOutputs(s, line.Output, result)
	}

	return nextLineOrNil(s, line.Next), nil, nil
}

// bindOutputs spreads result across names: a single name gets the
// whole value; multiple names destructure a list result positionally,
// matching the pattern "a, b = service.cmd()".
func bindOutputs(s *story.Story, names []string, result value.Value) {
	if len(names) == 0 {
		return
	}
	if len(names) == 1 {
		s.Set(names[0], result)
		return
	}
	items := result.List()
	for i, name := range names {
		if i < len(items) {
			s.Set(name, items[i])
		} else {
			s.Set(name, value.Null())
		}
	}
}
