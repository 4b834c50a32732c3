package mutations

import (
	"sort"

	"github.com/jayvdb/platform-engine/value"
)

var mapMutations = map[string]Func{
	"length": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(int64(len(v.Map()))), nil
	},
	"keys": func(v value.Value, _ []value.Value) (value.Value, error) {
		m := v.Map()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.String(k)
		}
		return value.List(out), nil
	},
	"values": func(v value.Value, _ []value.Value) (value.Value, error) {
		m := v.Map()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = m[k]
		}
		return value.List(out), nil
	},
	"contains": func(v value.Value, args []value.Value) (value.Value, error) {
		_, ok := v.Map()[argOr(args, 0, value.String("")).String()]
		return value.Bool(ok), nil
	},
	"get": func(v value.Value, args []value.Value) (value.Value, error) {
		key := argOr(args, 0, value.String("")).String()
		if val, ok := v.Map()[key]; ok {
			return val, nil
		}
		return argOr(args, 1, value.Null()), nil
	},
	"pop": func(v value.Value, args []value.Value) (value.Value, error) {
		key := argOr(args, 0, value.String("")).String()
		m := v.Map()
		val, ok := m[key]
		if !ok {
			return argOr(args, 1, value.Null()), nil
		}
		return val, nil
	},
	"set": func(v value.Value, args []value.Value) (value.Value, error) {
		key := argOr(args, 0, value.String("")).String()
		val := argOr(args, 1, value.Null())
		out := map[string]value.Value{}
		for k, existing := range v.Map() {
			out[k] = existing
		}
		out[key] = val
		return value.Map(out), nil
	},
	"is_empty": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(len(v.Map()) == 0), nil
	},
}
