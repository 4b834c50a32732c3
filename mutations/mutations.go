// Package mutations implements the pure value-transformation engine:
// a dispatch from (value kind, operator name) to a function
// (value, args) -> value. See spec.md §4.2.
//
// Every mutation is pure: it never mutates its receiver (value.Value
// already copies defensively on construction and read) and performs
// no I/O. An unknown operator on a known kind is a
// storyerr.StoryscriptError, matching the "set" handler's own
// behavior for an unrecognized second argument.
package mutations

import (
	"fmt"

	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// Func is the shape of a single mutation operator.
type Func func(v value.Value, args []value.Value) (value.Value, error)

var table = map[value.Kind]map[string]Func{
	value.KindInt:    integerMutations,
	value.KindFloat:  floatMutations,
	value.KindString: stringMutations,
	value.KindList:   listMutations,
	value.KindMap:    mapMutations,
	value.KindBool:   booleanMutations,
}

// Apply dispatches operator against v, attributing any error to attr.
func Apply(attr storyerr.Attribution, v value.Value, operator string, args []value.Value) (value.Value, error) {
	kindTable, ok := table[v.Kind()]
	if !ok {
		return value.Value{}, &storyerr.StoryscriptError{
			Attribution: attr,
			Message:     fmt.Sprintf("values of type %s do not support mutations", v.Kind()),
		}
	}
	fn, ok := kindTable[operator]
	if !ok {
		return value.Value{}, &storyerr.StoryscriptError{
			Attribution: attr,
			Message:     fmt.Sprintf("%s is not a valid mutation for type %s", operator, v.Kind()),
		}
	}
	return fn(v, args)
}

func argOr(args []value.Value, i int, fallback value.Value) value.Value {
	if i < len(args) {
		return args[i]
	}
	return fallback
}
