package story

import "github.com/jayvdb/platform-engine/value"

// ExprKind identifies the shape of a pre-parsed expression node.
// Parsing/compiling a story into this tree is out of scope (see
// spec.md §1); this package only resolves an already-parsed Expr
// against a context.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprPath
	ExprMutation
	ExprString
	ExprList
	ExprMap
)

// PathSegment is one step of a path expression: a static attribute
// name, or a dynamic index/key expression when Index is non-nil.
type PathSegment struct {
	Name  string
	Index *Expr
}

// StringFragment is one piece of a string template: either literal
// text (Expr nil) or an embedded expression to interpolate.
type StringFragment struct {
	Literal string
	Expr    *Expr
}

// MapEntry is one key/value pair of a map literal expression.
type MapEntry struct {
	Key   *Expr
	Value *Expr
}

// Expr is a node in a pre-parsed argument expression tree.
type Expr struct {
	Kind ExprKind

	Literal value.Value // ExprLiteral

	Path []PathSegment // ExprPath; Path[0].Name is the base variable name

	Base     *Expr  // ExprMutation: the value being mutated
	Operator string // ExprMutation: operator name
	Args     []*Expr // ExprMutation: operator arguments

	Fragments []StringFragment // ExprString

	Items []*Expr // ExprList

	Entries []MapEntry // ExprMap
}

// Lit is a convenience constructor for a literal expression.
func Lit(v value.Value) *Expr { return &Expr{Kind: ExprLiteral, Literal: v} }

// Var is a convenience constructor for a single-segment path
// expression (a bare variable reference).
func Var(name string) *Expr {
	return &Expr{Kind: ExprPath, Path: []PathSegment{{Name: name}}}
}
