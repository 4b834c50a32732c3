package lexicon

import (
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
)

// handleIf evaluates an if/elif/else chain in a single pass, per
// spec.md §4.4. Invoking it directly on an elif/else line means the
// chain has already been resolved by a prior if/elif that fell
// through to it as its next_block -- in that case there is nothing
// left to evaluate, so it just continues past the whole chain.
func (it *Interpreter) handleIf(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	if line.Method == story.MethodElif || line.Method == story.MethodElse {
		return s.NextBlock(line), nil, nil
	}

	head := line
	for {
		truthy := true
		if head.Method != story.MethodElse {
			if len(head.Args) != 1 {
				return nil, nil, &storyerr.StoryscriptError{
					Attribution: attr(s, head),
					Message:     "if/elif requires exactly one condition argument",
				}
			}
			cond, err := s.Resolve(head.Args[0], false)
			if err != nil {
				return nil, nil, err
			}
			truthy = cond.Truthy()
		}

		if truthy {
			return nextLineOrNil(s, head.Enter), nil, nil
		}

		next := s.NextBlock(head)
		if next == nil {
			return nil, nil, nil
		}
		if samePtr(next.Parent, head.Parent) &&
			(next.Method == story.MethodElif || next.Method == story.MethodElse) {
			head = next
			continue
		}
		return next, nil, nil
	}
}

// samePtr reports whether two optional string pointers refer to the
// same value, treating two nils as equal (both "no enclosing block").
func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// handleUnless is the inverse of a single-branch if: the body under
// Enter runs when the condition is false.
func (it *Interpreter) handleUnless(s *story.Story, line *story.Line) (*story.Line, storyerr.Sentinel, error) {
	if len(line.Args) != 1 {
		return nil, nil, &storyerr.StoryscriptError{
			Attribution: attr(s, line),
			Message:     "unless requires exactly one condition argument",
		}
	}
	cond, err := s.Resolve(line.Args[0], false)
	if err != nil {
		return nil, nil, err
	}
	if cond.Truthy() {
		return s.NextBlock(line), nil, nil
	}
	return nextLineOrNil(s, line.Enter), nil, nil
}
