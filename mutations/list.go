package mutations

import (
	"sort"

	"github.com/jayvdb/platform-engine/value"
)

var listMutations = map[string]Func{
	"length": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Int(int64(len(v.List()))), nil
	},
	"index": func(v value.Value, args []value.Value) (value.Value, error) {
		i := int(argOr(args, 0, value.Int(0)).Int())
		list := v.List()
		if i < 0 || i >= len(list) {
			return value.Null(), nil
		}
		return list[i], nil
	},
	"contains": func(v value.Value, args []value.Value) (value.Value, error) {
		target := argOr(args, 0, value.Null())
		for _, item := range v.List() {
			if value.Equal(item, target) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	},
	"append": func(v value.Value, args []value.Value) (value.Value, error) {
		list := append([]value.Value{}, v.List()...)
		list = append(list, argOr(args, 0, value.Null()))
		return value.List(list), nil
	},
	"prepend": func(v value.Value, args []value.Value) (value.Value, error) {
		list := append([]value.Value{argOr(args, 0, value.Null())}, v.List()...)
		return value.List(list), nil
	},
	"reverse": func(v value.Value, _ []value.Value) (value.Value, error) {
		src := v.List()
		out := make([]value.Value, len(src))
		for i, item := range src {
			out[len(src)-1-i] = item
		}
		return value.List(out), nil
	},
	"sort": func(v value.Value, _ []value.Value) (value.Value, error) {
		src := v.List()
		out := make([]value.Value, len(src))
		copy(out, src)
		sort.SliceStable(out, func(i, j int) bool { return lessValue(out[i], out[j]) })
		return value.List(out), nil
	},
	"unique": func(v value.Value, _ []value.Value) (value.Value, error) {
		var out []value.Value
		for _, item := range v.List() {
			dup := false
			for _, seen := range out {
				if value.Equal(item, seen) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, item)
			}
		}
		return value.List(out), nil
	},
	"flatten": func(v value.Value, _ []value.Value) (value.Value, error) {
		var out []value.Value
		for _, item := range v.List() {
			if item.Kind() == value.KindList {
				out = append(out, item.List()...)
			} else {
				out = append(out, item)
			}
		}
		return value.List(out), nil
	},
	"join": func(v value.Value, args []value.Value) (value.Value, error) {
		sep := argOr(args, 0, value.String("")).String()
		var sb []byte
		for i, item := range v.List() {
			if i > 0 {
				sb = append(sb, sep...)
			}
			sb = append(sb, item.GoString()...)
		}
		return value.String(string(sb)), nil
	},
	"min": func(v value.Value, _ []value.Value) (value.Value, error) {
		list := v.List()
		if len(list) == 0 {
			return value.Null(), nil
		}
		m := list[0]
		for _, item := range list[1:] {
			if lessValue(item, m) {
				m = item
			}
		}
		return m, nil
	},
	"max": func(v value.Value, _ []value.Value) (value.Value, error) {
		list := v.List()
		if len(list) == 0 {
			return value.Null(), nil
		}
		m := list[0]
		for _, item := range list[1:] {
			if lessValue(m, item) {
				m = item
			}
		}
		return m, nil
	},
	"sum": func(v value.Value, _ []value.Value) (value.Value, error) {
		var sum float64
		allInt := true
		for _, item := range v.List() {
			if item.Kind() != value.KindInt {
				allInt = false
			}
			f, _ := item.AsFloat64()
			sum += f
		}
		if allInt {
			return value.Int(int64(sum)), nil
		}
		return value.Float(sum), nil
	},
	"slice": func(v value.Value, args []value.Value) (value.Value, error) {
		list := v.List()
		start := int(argOr(args, 0, value.Int(0)).Int())
		end := int(argOr(args, 1, value.Int(int64(len(list)))).Int())
		if start < 0 {
			start = 0
		}
		if end > len(list) {
			end = len(list)
		}
		if start >= end {
			return value.List(nil), nil
		}
		return value.List(list[start:end]), nil
	},
}

// lessValue orders values for sort/min/max: numeric by magnitude,
// strings lexicographically, anything else falls back to its
// GoString encoding.
func lessValue(a, b value.Value) bool {
	if isNumeric(a) && isNumeric(b) {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af < bf
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		return a.String() < b.String()
	}
	return a.GoString() < b.GoString()
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.KindInt || v.Kind() == value.KindFloat
}
