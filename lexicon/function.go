package lexicon

import (
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
)

// handleFunction skips the declared body when encountered inline --
// function bodies only execute via call.
func (it *Interpreter) handleFunction(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	return s.NextBlock(line), nil, nil
}
