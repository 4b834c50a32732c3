// Package value implements the dynamic value model shared by story
// context, the mutation engine, and the service bridge.
package value

import "fmt"

// Kind identifies the dynamic type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the value kinds a story context can
// hold. Zero value is Null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	list   []Value
	m      map[string]Value
	stream any // story.StreamingService; untyped here to avoid an import cycle
}

func Null() Value          { return Value{kind: KindNull} }
func Bool(b bool) Value    { return Value{kind: KindBool, b: b} }
func Int(i int64) Value    { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }

// List constructs a list value. The input slice is copied so that the
// resulting Value is never mutated by later changes to the caller's
// slice (mutations must never mutate their input).
func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Map constructs a map value, copying the input map.
func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// Stream wraps an opaque streaming-service handle (a
// story.StreamingService value in practice).
func Stream(s any) Value { return Value{kind: KindStream, stream: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) String() string { return v.s }

// List returns a defensive copy of the underlying list.
func (v Value) List() []Value {
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp
}

// Map returns a defensive copy of the underlying map.
func (v Value) Map() map[string]Value {
	cp := make(map[string]Value, len(v.m))
	for k, val := range v.m {
		cp[k] = val
	}
	return cp
}

func (v Value) Stream() any { return v.stream }

// AsFloat64 widens integer or float values to float64, for mutations
// and comparisons that operate across both numeric kinds.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Truthy implements the language's notion of a condition value: null
// and false are falsy, zero numbers and empty strings/lists/maps are
// falsy, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return len(v.m) > 0
	case KindStream:
		return v.stream != nil
	default:
		return false
	}
}

// Equal reports whether two values are deeply equal. Lists and maps
// compare element-wise; streams compare by identity of the wrapped
// handle.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindStream:
		return a.stream == b.stream
	default:
		return false
	}
}

// GoString renders the value the way it should appear when encoded
// as a command argument (see story.Resolve's encode parameter).
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	default:
		return fmt.Sprintf("%v", v.Native())
	}
}

// Native returns a plain Go representation suitable for JSON encoding
// or debugging (not for mutation dispatch, which switches on Kind).
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Native()
		}
		return out
	case KindStream:
		return v.stream
	default:
		return nil
	}
}
