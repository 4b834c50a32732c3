package mutations

import (
	"strings"

	"github.com/jayvdb/platform-engine/value"
)

var stringMutations = map[string]Func{
	"length": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(int64(len([]rune(v.String())))), nil
	},
	"upper": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.ToUpper(v.String())), nil
	},
	"lower": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.ToLower(v.String())), nil
	},
	"capitalize": func(v value.Value, _ []value.Value) (value.Value, error) {
		s := v.String()
		if s == "" {
			return value.String(s), nil
		}
		r := []rune(s)
		return value.String(strings.ToUpper(string(r[0])) + string(r[1:])), nil
	},
	"trim": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.TrimSpace(v.String())), nil
	},
	"replace": func(v value.Value, args []value.Value) (value.Value, error) {
		old := argOr(args, 0, value.String("")).String()
		new := argOr(args, 1, value.String("")).String()
		return value.String(strings.ReplaceAll(v.String(), old, new)), nil
	},
	"contains": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.Contains(v.String(), argOr(args, 0, value.String("")).String())), nil
	},
	"starts_with": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasPrefix(v.String(), argOr(args, 0, value.String("")).String())), nil
	},
	"ends_with": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasSuffix(v.String(), argOr(args, 0, value.String("")).String())), nil
	},
	"split": func(v value.Value, args []value.Value) (value.Value, error) {
		sep := argOr(args, 0, value.String(" ")).String()
		parts := strings.Split(v.String(), sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return value.List(out), nil
	},
	"substring": func(v value.Value, args []value.Value) (value.Value, error) {
		r := []rune(v.String())
		start := int(argOr(args, 0, value.Int(0)).Int())
		end := int(argOr(args, 1, value.Int(int64(len(r)))).Int())
		if start < 0 {
			start = 0
		}
		if end > len(r) {
			end = len(r)
		}
		if start >= end {
			return value.String(""), nil
		}
		return value.String(string(r[start:end])), nil
	},
	"index_of": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.Int(int64(strings.Index(v.String(), argOr(args, 0, value.String("")).String()))), nil
	},
	"is_empty": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(v.String() == ""), nil
	},
	"concat": func(v value.Value, args []value.Value) (value.Value, error) {
		return value.String(v.String() + argOr(args, 0, value.String("")).String()), nil
	},
}
