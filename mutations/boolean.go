package mutations

import "github.com/jayvdb/platform-engine/value"

var booleanMutations = map[string]Func{
	"is_true": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(v.Bool()), nil
	},
	"is_false": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(!v.Bool()), nil
	},
	"to_string": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(v.GoString()), nil
	},
}
