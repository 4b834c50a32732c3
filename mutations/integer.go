package mutations

import "github.com/jayvdb/platform-engine/value"

// integerMutations also carries the "time" operator set from spec.md
// §4.2: the value model has no dedicated time kind (spec.md §3's
// Context frame variant list does not list one), so a time is
// represented as an integer epoch-seconds value and its operators
// live in this same table -- the operator names themselves never
// collide (is_odd/is_even/... vs epoch/add_seconds/...).
var integerMutations = map[string]Func{
	"is_odd":     func(v value.Value, _ []value.Value) (value.Value, error) { return value.Bool(floorMod2(v.Int()) == 1), nil },
	"is_even":    func(v value.Value, _ []value.Value) (value.Value, error) { return value.Bool(floorMod2(v.Int()) == 0), nil },
	"absolute":   func(v value.Value, _ []value.Value) (value.Value, error) { return value.Int(absInt64(v.Int())), nil },
	"decrement":  func(v value.Value, _ []value.Value) (value.Value, error) { return value.Int(v.Int() - 1), nil },
	"increment":  func(v value.Value, _ []value.Value) (value.Value, error) { return value.Int(v.Int() + 1), nil },

	"epoch": func(v value.Value, _ []value.Value) (value.Value, error) { return v, nil },
	"add_seconds": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.Int(v.Int() + argOr(args, 0, value.Int(0)).Int()), nil
	},
	"iso8601": timeISO8601,
	"weekday": timeWeekday,
}

func absInt64(i int64) int64 {
	if i < 0 {
		return -i
	}
	return i
}

// floorMod2 is i mod 2 using floored (Python-style) division, so
// negative odd values still come out 1, not -1 as Go's truncating %
// would give.
func floorMod2(i int64) int64 {
	return ((i % 2) + 2) % 2
}
