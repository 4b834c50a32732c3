package lexicon

import (
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// handleReturn walks up line.Parent looking for the nearest when or
// function ancestor and produces the RETURN sentinel appropriate to
// it. Outside both, return is a keyword misuse.
func (it *Interpreter) handleReturn(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	cur := line
	for cur.Parent != nil {
		parent := s.Line(*cur.Parent)
		if parent == nil {
			break
		}

		switch parent.Method {
		case story.MethodWhen:
			if len(line.Args) != 0 {
				return nil, nil, &storyerr.StoryscriptError{
					Attribution: attr(s, line),
					Message:     "return inside a when block takes no arguments",
				}
			}
			return nil, storyerr.Return(value.Null()), nil

		case story.MethodFunction:
			if len(line.Args) > 1 {
				return nil, nil, &storyerr.StoryscriptError{
					Attribution: attr(s, line),
					Message:     "return takes at most one argument",
				}
			}
			v := value.Null()
			if len(line.Args) == 1 {
				var err error
				v, err = s.Resolve(line.Args[0], false)
				if err != nil {
					return nil, nil, err
				}
			}
			return nil, storyerr.Return(v), nil
		}

		cur = parent
	}

	return nil, nil, &storyerr.InvalidKeywordUsage{
		Attribution: attr(s, line),
		Keyword:     "return",
	}
}

// handleBreak requires an enclosing for loop.
func (it *Interpreter) handleBreak(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	if _, ok := s.AncestorWithMethod(line, story.MethodFor); !ok {
		return nil, nil, &storyerr.InvalidKeywordUsage{
			Attribution: attr(s, line),
			Keyword:     "break",
		}
	}
	return nil, storyerr.Break, nil
}
