package lexicon

import (
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
)

// handleExpression evaluates a bare expression statement for its
// side effects (a mutation chain, typically) and discards the result.
func (it *Interpreter) handleExpression(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	for _, a := range line.Args {
		if _, err := s.Resolve(a, false); err != nil {
			return nil, nil, err
		}
	}
	return nextLineOrNil(s, line.Next), nil, nil
}
