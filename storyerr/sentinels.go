package storyerr

import "github.com/jayvdb/platform-engine/value"

// Sentinel is an internal control-flow marker that is never
// user-observable: it propagates up block execution until consumed by
// the matching enclosing construct.
type Sentinel interface {
	sentinel()
}

// breakSentinel is the singleton BREAK sentinel, absorbed only by an
// enclosing for loop.
type breakSentinel struct{}

func (breakSentinel) sentinel() {}

// Break is the singleton BREAK sentinel.
var Break Sentinel = breakSentinel{}

// IsBreak reports whether s is the BREAK sentinel.
func IsBreak(s Sentinel) bool {
	_, ok := s.(breakSentinel)
	return ok
}

// ReturnSentinel carries a return value out of a function or when
// block, absorbed only by the enclosing call/when.
type ReturnSentinel struct {
	Value value.Value
}

func (ReturnSentinel) sentinel() {}

// Return constructs a RETURN sentinel carrying v (which may be Null).
func Return(v value.Value) Sentinel {
	return ReturnSentinel{Value: v}
}

// AsReturn reports whether s is a RETURN sentinel and returns its value.
func AsReturn(s Sentinel) (value.Value, bool) {
	r, ok := s.(ReturnSentinel)
	if !ok {
		return value.Value{}, false
	}
	return r.Value, true
}
