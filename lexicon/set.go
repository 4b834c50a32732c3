package lexicon

import (
	"github.com/jayvdb/platform-engine/mutations"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
)

// handleSet resolves args[0], optionally applies the mutation
// described by args[1], and assigns the result to line.Name.
func (it *Interpreter) handleSet(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	if len(line.Args) == 0 {
		return nil, nil, &storyerr.StoryscriptRuntimeError{
			Attribution: attr(s, line),
			Message:     "set requires at least one argument",
		}
	}

	base, err := s.Resolve(line.Args[0], false)
	if err != nil {
		return nil, nil, err
	}

	result := base
	if len(line.Args) > 1 {
		m := line.Args[1]
		if m.Kind != story.ExprMutation {
			return nil, nil, &storyerr.StoryscriptError{
				Attribution: attr(s, line),
				Message:     "set's second argument must be a mutation",
			}
		}
		margs, err := resolveArgs(s, m.Args, false)
		if err != nil {
			return nil, nil, err
		}
		result, err = mutations.Apply(attr(s, line), base, m.Operator, margs)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.SetPath(line.Name, result); err != nil {
		return nil, nil, err
	}

	return nextLineOrNil(s, line.Next), nil, nil
}
