// Package story implements the runtime line tree, context frames, and
// expression resolution that the Lexicon interpreter walks.
package story

// Method identifies the dispatch kind of a Line.
type Method string

const (
	MethodExecute    Method = "execute"
	MethodSet        Method = "set"
	MethodIf         Method = "if"
	MethodElif       Method = "elif"
	MethodElse       Method = "else"
	MethodUnless     Method = "unless"
	MethodFor        Method = "for"
	MethodFunction   Method = "function"
	MethodCall       Method = "call"
	MethodWhen       Method = "when"
	MethodReturn     Method = "return"
	MethodBreak      Method = "break"
	MethodExpression Method = "expression"
)

// NamedArg is a call argument matched against a function's declared
// parameters by name, not by position.
type NamedArg struct {
	Name  string
	Value *Expr
}

// Line is a node in the pre-parsed tree, identified by an opaque
// string ln. See SPEC_FULL.md §3 for the field-by-field rationale of
// the attributes beyond spec.md's own list (FuncName, Params).
type Line struct {
	LN      string
	Method  Method
	Service string
	Command string

	// Args holds positional expressions: execute/service call
	// arguments, the set mutation chain, if/unless/for conditions or
	// iterables, and the optional return value expression.
	Args []*Expr

	// NamedArgs holds call arguments, matched against the callee
	// function's declared Params by name.
	NamedArgs []NamedArg

	Output []string // names bound to this line's result (execute/start_container)
	Name   []string // assignment target path (set/execute/call)

	Enter  *string // first line of the nested block, if any
	Exit   *string // first line after the block; a hint, may be stale
	Next   *string // next sibling line
	Parent *string // enclosing block's opening line

	Function string // callee name, for call lines
	FuncName string // this function's own declared name, for function lines
	Params   []string // declared parameter names, for function lines
}

// LineNumberOrNone returns a pointer to line's ln, or nil if line is
// nil. Mirrors spec.md §4.4's line_number_or_none utility, whose only
// testable property is that it never panics on a nil line and always
// round-trips a non-nil line's ln.
func LineNumberOrNone(line *Line) *string {
	if line == nil {
		return nil
	}
	ln := line.LN
	return &ln
}
