package story

import (
	"encoding/json"
	"strings"

	"github.com/jayvdb/platform-engine/mutations"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// Resolve evaluates a pre-parsed expression against the current
// context frame.
//
// When encode is true, a resulting list or map is additionally encoded
// to a JSON string -- the form the service bridge needs when an
// argument is destined for a container command line. When encode is
// false (used by if/unless/for conditions and iterables, and by
// function-call argument binding), native values are returned
// untouched. This mirrors the distinction the Lexicon handlers in
// spec.md §4.4 draw between "resolve for a condition/iterable" and
// "resolve for a service argument".
func (s *Story) Resolve(e *Expr, encode bool) (value.Value, error) {
	v, err := s.resolve(e, encode)
	if err != nil {
		return value.Value{}, err
	}
	if encode && (v.Kind() == value.KindList || v.Kind() == value.KindMap) {
		b, err := json.Marshal(v.Native())
		if err != nil {
			return value.Value{}, err
		}
		return value.String(string(b)), nil
	}
	return v, nil
}

func (s *Story) resolve(e *Expr, encode bool) (value.Value, error) {
	if e == nil {
		return value.Null(), nil
	}
	switch e.Kind {
	case ExprLiteral:
		return e.Literal, nil

	case ExprPath:
		return s.resolvePath(e.Path)

	case ExprMutation:
		base, err := s.resolve(e.Base, false)
		if err != nil {
			return value.Value{}, err
		}
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			av, err := s.resolve(a, false)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = av
		}
		return mutations.Apply(storyerr.Attribution{Story: s.Name}, base, e.Operator, args)

	case ExprString:
		var b strings.Builder
		for _, frag := range e.Fragments {
			if frag.Expr == nil {
				b.WriteString(frag.Literal)
				continue
			}
			v, err := s.resolve(frag.Expr, false)
			if err != nil {
				return value.Value{}, err
			}
			b.WriteString(v.GoString())
		}
		return value.String(b.String()), nil

	case ExprList:
		items := make([]value.Value, len(e.Items))
		for i, it := range e.Items {
			v, err := s.resolve(it, encode)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items), nil

	case ExprMap:
		m := make(map[string]value.Value, len(e.Entries))
		for _, entry := range e.Entries {
			kv, err := s.resolve(entry.Key, false)
			if err != nil {
				return value.Value{}, err
			}
			vv, err := s.resolve(entry.Value, encode)
			if err != nil {
				return value.Value{}, err
			}
			m[kv.GoString()] = vv
		}
		return value.Map(m), nil

	default:
		return value.Value{}, &storyerr.StoryscriptRuntimeError{Message: "unknown expression kind"}
	}
}

func (s *Story) resolvePath(segs []PathSegment) (value.Value, error) {
	if len(segs) == 0 {
		return value.Null(), nil
	}
	cur, ok := s.Get(segs[0].Name)
	if !ok {
		return value.Value{}, &storyerr.StoryscriptRuntimeError{
			Message: "undefined variable " + segs[0].Name,
		}
	}

	for _, seg := range segs[1:] {
		switch cur.Kind() {
		case value.KindMap:
			key := seg.Name
			if seg.Index != nil {
				kv, err := s.resolve(seg.Index, false)
				if err != nil {
					return value.Value{}, err
				}
				key = kv.GoString()
			}
			m := cur.Map()
			v, ok := m[key]
			if !ok {
				return value.Null(), nil
			}
			cur = v

		case value.KindList:
			var idx int64
			if seg.Index != nil {
				iv, err := s.resolve(seg.Index, false)
				if err != nil {
					return value.Value{}, err
				}
				idx = iv.Int()
			}
			list := cur.List()
			if idx < 0 || int(idx) >= len(list) {
				return value.Null(), nil
			}
			cur = list[idx]

		default:
			return value.Value{}, &storyerr.TypeAssertionRuntimeError{
				Expected: "map or list",
				Received: cur.Kind().String(),
			}
		}
	}
	return cur, nil
}
