package lexicon_test

import (
	"context"
	"testing"

	"github.com/jayvdb/platform-engine/lexicon"
	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

type fakeApp struct{}

func (fakeApp) AppID() string   { return "app-1" }
func (fakeApp) AppName() string { return "app" }

type fakeBridge struct {
	executeReturn value.Value
	executeErr    error
	execCalls     int

	whenHandler *service.EventHandler
	whenErr     error
}

func (f *fakeBridge) Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error) {
	f.execCalls++
	return f.executeReturn, f.executeErr
}

func (f *fakeBridge) StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error) {
	return story.StreamingService{}, nil
}

func (f *fakeBridge) When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler service.EventHandler) error {
	if f.whenHandler != nil {
		*f.whenHandler = handler
	}
	return f.whenErr
}

func strp(s string) *string { return &s }

// Scenario 1: simple execute.
func TestSimpleExecute(t *testing.T) {
	tree := story.Tree{
		"1": {LN: "1", Method: story.MethodExecute, Service: "alpine", Command: "echo",
			Args: []*story.Expr{story.Lit(value.String("hi"))},
			Name: []string{"x"}, Next: strp("2")},
		"2": {LN: "2", Method: story.MethodExpression},
	}
	s := story.New(fakeApp{}, "s", tree, nil)
	bridge := &fakeBridge{executeReturn: value.String("hi")}
	it := lexicon.New(bridge)

	sentinel, err := it.RunBlock(context.Background(), s, s.Line("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentinel != nil {
		t.Fatalf("expected no sentinel, got %v", sentinel)
	}
	x, ok := s.Get("x")
	if !ok || x.String() != "hi" {
		t.Fatalf("expected x=\"hi\", got %v ok=%v", x, ok)
	}
	if bridge.execCalls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", bridge.execCalls)
	}
}

// Scenario 2: if/elif/else chain -- only the third branch's body runs.
func TestIfElifElseChainRunsOnlyTheMatchingBranch(t *testing.T) {
	// The if/elif/else headers are siblings sharing the same enclosing
	// block (nil here, since this chain sits at the top level); only
	// each branch's body line is parented to its own header.
	tree := story.Tree{
		"if":    {LN: "if", Method: story.MethodIf, Enter: strp("if-body"), Next: strp("elif1")},
		"elif1": {LN: "elif1", Method: story.MethodElif, Enter: strp("elif1-body"), Next: strp("elif2")},
		"elif2": {LN: "elif2", Method: story.MethodElif, Enter: strp("elif2-body"), Next: strp("else")},
		"else":  {LN: "else", Method: story.MethodElse, Enter: strp("else-body")},

		"if-body":    {LN: "if-body", Method: story.MethodSet, Parent: strp("if"), Name: []string{"ran"}, Args: []*story.Expr{story.Lit(value.String("if"))}},
		"elif1-body": {LN: "elif1-body", Method: story.MethodSet, Parent: strp("elif1"), Name: []string{"ran"}, Args: []*story.Expr{story.Lit(value.String("elif1"))}},
		"elif2-body": {LN: "elif2-body", Method: story.MethodSet, Parent: strp("elif2"), Name: []string{"ran"}, Args: []*story.Expr{story.Lit(value.String("elif2"))}},
		"else-body":  {LN: "else-body", Method: story.MethodSet, Parent: strp("else"), Name: []string{"ran"}, Args: []*story.Expr{story.Lit(value.String("else"))}},
	}
	tree["if"].Args = []*story.Expr{story.Lit(value.Bool(false))}
	tree["elif1"].Args = []*story.Expr{story.Lit(value.Bool(false))}
	tree["elif2"].Args = []*story.Expr{story.Lit(value.Bool(true))}

	s := story.New(fakeApp{}, "s", tree, nil)
	it := lexicon.New(&fakeBridge{})

	sentinel, err := it.RunBlock(context.Background(), s, s.Line("if"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentinel != nil {
		t.Fatalf("expected no sentinel, got %v", sentinel)
	}
	ran, ok := s.Get("ran")
	if !ok || ran.String() != "elif2" {
		t.Fatalf("expected only elif2's body to run, got ran=%v ok=%v", ran, ok)
	}
}

// Scenario 3: for with break -- body runs exactly once, the loop
// variable never leaks, and execution proceeds to next_block(for).
func TestForWithBreakRunsOnceAndLeavesNoBinding(t *testing.T) {
	tree := story.Tree{
		"for":  {LN: "for", Method: story.MethodFor, Output: []string{"item"}, Enter: strp("body"), Next: strp("after")},
		"body": {LN: "body", Method: story.MethodBreak, Parent: strp("for")},

		"after": {LN: "after", Method: story.MethodExpression},
	}
	tree["for"].Args = []*story.Expr{{Kind: story.ExprList, Items: []*story.Expr{
		story.Lit(value.String("a")), story.Lit(value.String("b")), story.Lit(value.String("c")),
	}}}

	s := story.New(fakeApp{}, "s", tree, nil)
	it := lexicon.New(&fakeBridge{})

	sentinel, err := it.RunBlock(context.Background(), s, s.Line("for"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentinel != nil {
		t.Fatalf("expected no sentinel to escape the for, got %v", sentinel)
	}
	if _, ok := s.Get("item"); ok {
		t.Fatal("expected the loop variable to be absent from the outer scope")
	}
}

// Scenario 4: function call with return.
func TestFunctionCallWithReturn(t *testing.T) {
	tree := story.Tree{
		"call": {LN: "call", Method: story.MethodCall, Function: "f", Name: []string{"result"}, Next: strp("after")},
		"func": {LN: "func", Method: story.MethodFunction, FuncName: "f", Enter: strp("ret")},
		"ret":  {LN: "ret", Method: story.MethodReturn, Parent: strp("func")},

		"after": {LN: "after", Method: story.MethodExpression},
	}
	tree["ret"].Args = []*story.Expr{story.Lit(value.Int(42))}

	s := story.New(fakeApp{}, "s", tree, nil)
	s.Set("outer", value.String("untouched"))
	it := lexicon.New(&fakeBridge{})

	sentinel, err := it.RunBlock(context.Background(), s, s.Line("call"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentinel != nil {
		t.Fatalf("expected no sentinel, got %v", sentinel)
	}
	result, ok := s.Get("result")
	if !ok || result.Int() != 42 {
		t.Fatalf("expected result=42, got %v ok=%v", result, ok)
	}
	outer, ok := s.Get("outer")
	if !ok || outer.String() != "untouched" {
		t.Fatalf("expected the caller's context to be restored, got %v ok=%v", outer, ok)
	}
}

// Scenario 5: return outside when/function.
func TestReturnOutsideWhenOrFunctionIsInvalidKeywordUsage(t *testing.T) {
	tree := story.Tree{
		"ret": {LN: "ret", Method: story.MethodReturn},
	}
	s := story.New(fakeApp{}, "s", tree, nil)
	it := lexicon.New(&fakeBridge{})

	_, err := it.RunBlock(context.Background(), s, s.Line("ret"))
	if err == nil {
		t.Fatal("expected an error")
	}
	kwErr, ok := err.(*storyerr.InvalidKeywordUsage)
	if !ok {
		t.Fatalf("expected *storyerr.InvalidKeywordUsage, got %T: %v", err, err)
	}
	if kwErr.Keyword != "return" {
		t.Fatalf("expected keyword \"return\", got %q", kwErr.Keyword)
	}
}

func TestBreakOutsideForIsInvalidKeywordUsage(t *testing.T) {
	tree := story.Tree{
		"brk": {LN: "brk", Method: story.MethodBreak},
	}
	s := story.New(fakeApp{}, "s", tree, nil)
	it := lexicon.New(&fakeBridge{})

	_, err := it.RunBlock(context.Background(), s, s.Line("brk"))
	kwErr, ok := err.(*storyerr.InvalidKeywordUsage)
	if !ok {
		t.Fatalf("expected *storyerr.InvalidKeywordUsage, got %T: %v", err, err)
	}
	if kwErr.Keyword != "break" {
		t.Fatalf("expected keyword \"break\", got %q", kwErr.Keyword)
	}
}

// Scenario 7: a when body runs in its own fresh context -- it sees
// the firing event's named outputs, but any other assignment it makes
// does not leak into the enclosing story context once the handler
// returns.
func TestWhenBodyRunsInAFreshContextAndDoesNotLeakAssignments(t *testing.T) {
	tree := story.Tree{
		"when": {LN: "when", Method: story.MethodWhen, Service: "svc", Enter: strp("body")},
		"body": {LN: "body", Method: story.MethodSet, Name: []string{"scratch"}, Args: []*story.Expr{story.Var("line")}},
	}

	s := story.New(fakeApp{}, "s", tree, nil)
	s.Set("scratch", value.String("untouched"))
	var handler service.EventHandler
	bridge := &fakeBridge{whenHandler: &handler}
	it := lexicon.New(bridge)

	s.Set("svc", value.Stream(story.StreamingService{Name: "svc", ContainerName: "c-1"}))

	_, err := it.RunBlock(context.Background(), s, s.Line("when"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler == nil {
		t.Fatal("expected the bridge to receive a handler")
	}

	if err := handler(context.Background(), service.Event{Name: "log", Data: map[string]value.Value{"line": value.String("hello")}}); err != nil {
		t.Fatalf("unexpected error from handler: %v", err)
	}

	scratch, ok := s.Get("scratch")
	if !ok || scratch.String() != "untouched" {
		t.Fatalf("expected the outer scratch binding to survive untouched, got %v ok=%v", scratch, ok)
	}
}

// Scenario 8: two overlapping when invocations must not see each
// other's bindings -- each gets its own isolated context frame.
func TestWhenBodyDoesNotSeeAnotherInvocationsBinding(t *testing.T) {
	tree := story.Tree{
		"when": {LN: "when", Method: story.MethodWhen, Service: "svc", Enter: strp("body")},
		"body": {LN: "body", Method: story.MethodExpression},
	}

	s := story.New(fakeApp{}, "s", tree, nil)
	var handler service.EventHandler
	bridge := &fakeBridge{whenHandler: &handler}
	it := lexicon.New(bridge)
	s.Set("svc", value.Stream(story.StreamingService{Name: "svc", ContainerName: "c-1"}))

	if _, err := it.RunBlock(context.Background(), s, s.Line("when")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := handler(context.Background(), service.Event{Name: "log", Data: map[string]value.Value{"first": value.Int(1)}}); err != nil {
		t.Fatalf("unexpected error from first event: %v", err)
	}
	if err := handler(context.Background(), service.Event{Name: "log", Data: map[string]value.Value{"second": value.Int(2)}}); err != nil {
		t.Fatalf("unexpected error from second event: %v", err)
	}

	if _, ok := s.Get("first"); ok {
		t.Fatal("expected the first event's binding not to leak into the outer scope")
	}
	if _, ok := s.Get("second"); ok {
		t.Fatal("expected the second event's binding not to leak into the outer scope")
	}
}

func TestUnlessRunsBodyOnlyWhenFalse(t *testing.T) {
	tree := story.Tree{
		"unless": {LN: "unless", Method: story.MethodUnless, Enter: strp("body"), Next: strp("after")},
		"body":   {LN: "body", Method: story.MethodSet, Name: []string{"ran"}, Args: []*story.Expr{story.Lit(value.Bool(true))}},
		"after":  {LN: "after", Method: story.MethodExpression},
	}
	tree["unless"].Args = []*story.Expr{story.Lit(value.Bool(false))}

	s := story.New(fakeApp{}, "s", tree, nil)
	it := lexicon.New(&fakeBridge{})

	_, err := it.RunBlock(context.Background(), s, s.Line("unless"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Get("ran"); !ok {
		t.Fatal("expected the unless body to run when the condition is false")
	}
}
