package story

import (
	"sync"

	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// Tree maps a line's ln to the Line itself. Insertion order is
// irrelevant; keys are unique by construction (decode.go rejects a
// wire document with duplicate ln keys before it collapses silently
// into a Go map).
type Tree map[string]*Line

// AppRef is the subset of App (see package app) that the interpreter
// needs for attribution and environment lookups, kept narrow here to
// avoid story depending on the app package.
type AppRef interface {
	AppID() string
	AppName() string
}

// StreamingService is a handle to a long-lived service brought up by
// start_container, stored in context and subscribed to by when. See
// spec.md §3's Context frame variant list.
type StreamingService struct {
	Name          string
	Command       string
	ContainerName string
	Hostname      string
}

// Story is a runtime instance of a parsed workflow script.
type Story struct {
	App         AppRef
	Name        string
	Tree        Tree
	Environment map[string]string

	mu      sync.Mutex
	context map[string]value.Value
}

// New builds a Story with an empty root context frame.
func New(app AppRef, name string, tree Tree, env map[string]string) *Story {
	return &Story{
		App:         app,
		Name:        name,
		Tree:        tree,
		Environment: env,
		context:     make(map[string]value.Value),
	}
}

// Line looks up a line by ln. Returns nil if ln is empty or unknown --
// treat ln as opaque per spec.md §3.
func (s *Story) Line(ln string) *Line {
	if ln == "" {
		return nil
	}
	return s.Tree[ln]
}

// NextBlock returns the line following the block that line begins: its
// own next sibling if it has one, otherwise the next block of its
// enclosing parent, recursively. This is the only reliable way to find
// "what comes after this construct" -- line.Exit is a hint that may be
// stale (see the for/unless Open Question resolved in DESIGN.md).
func (s *Story) NextBlock(line *Line) *Line {
	if line == nil {
		return nil
	}
	if line.Next != nil {
		return s.Line(*line.Next)
	}
	if line.Parent != nil {
		return s.NextBlock(s.Line(*line.Parent))
	}
	return nil
}

// AncestorWithMethod walks line.Parent upward looking for a line whose
// method is want. Used by break/return to validate they appear inside
// a matching enclosing construct.
func (s *Story) AncestorWithMethod(line *Line, want Method) (*Line, bool) {
	cur := line
	for cur != nil {
		if cur.Parent == nil {
			return nil, false
		}
		parent := s.Line(*cur.Parent)
		if parent == nil {
			return nil, false
		}
		if parent.Method == want {
			return parent, true
		}
		cur = parent
	}
	return nil, false
}

// FunctionLineByName scans the tree for a function line declared under
// the given name.
func (s *Story) FunctionLineByName(name string) *Line {
	for _, l := range s.Tree {
		if l.Method == MethodFunction && l.FuncName == name {
			return l
		}
	}
	return nil
}

// Get reads a name from the current context frame.
func (s *Story) Get(name string) (value.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.context[name]
	return v, ok
}

// Set writes a name into the current context frame.
func (s *Story) Set(name string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[name] = v
}

// SetPath assigns into a (possibly multi-segment) assignment target,
// as used by set/execute/call's line.Name. A single-segment target is
// a plain variable assignment; multi-segment targets index into an
// existing map value, creating intermediate maps as needed.
func (s *Story) SetPath(path []string, v value.Value) error {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 {
		s.Set(path[0], v)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := s.context[path[0]]
	if !ok || root.Kind() != value.KindMap {
		root = value.Map(nil)
	}
	m := root.Map()
	setNested(m, path[1:], v)
	s.context[path[0]] = value.Map(m)
	return nil
}

func setNested(m map[string]value.Value, path []string, v value.Value) {
	if len(path) == 1 {
		m[path[0]] = v
		return
	}
	child, ok := m[path[0]]
	if !ok || child.Kind() != value.KindMap {
		child = value.Map(nil)
	}
	cm := child.Map()
	setNested(cm, path[1:], v)
	m[path[0]] = value.Map(cm)
}

// SwapContext replaces the current context frame with newCtx and
// returns a restore function that puts the previous frame back. The
// caller must invoke restore on every exit path (success, error,
// cancellation) -- see the call handler in package lexicon.
func (s *Story) SwapContext(newCtx map[string]value.Value) (restore func()) {
	s.mu.Lock()
	old := s.context
	s.context = newCtx
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.context = old
		s.mu.Unlock()
	}
}

// BindLoopVar sets name to v in the current frame and returns a
// restore function that either puts back whatever value name held
// before (if any) or deletes it -- guaranteeing the for loop handler's
// invariant that the loop-output name never leaks into the outer
// scope.
func (s *Story) BindLoopVar(name string, v value.Value) (restore func()) {
	s.mu.Lock()
	prev, had := s.context[name]
	s.context[name] = v
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		if had {
			s.context[name] = prev
		} else {
			delete(s.context, name)
		}
		s.mu.Unlock()
	}
}

// ContextForFunctionCall builds the callee's context frame from the
// caller's resolved named arguments and the function's declared
// parameters. Every declared parameter must be supplied by the call;
// a call argument with no matching declared parameter is ignored (the
// function simply never sees it), matching the permissive binding a
// dynamically-typed story language allows.
func (s *Story) ContextForFunctionCall(callLine, funcLine *Line) (map[string]value.Value, error) {
	newCtx := make(map[string]value.Value, len(funcLine.Params))
	for _, param := range funcLine.Params {
		var arg *NamedArg
		for i := range callLine.NamedArgs {
			if callLine.NamedArgs[i].Name == param {
				arg = &callLine.NamedArgs[i]
				break
			}
		}
		if arg == nil {
			return nil, &storyerr.ArgumentNotFoundError{
				Attribution: storyerr.Attribution{Story: s.Name, Line: callLine.LN},
				Name:        param,
			}
		}
		v, err := s.Resolve(arg.Value, false)
		if err != nil {
			return nil, err
		}
		newCtx[param] = v
	}
	return newCtx, nil
}
