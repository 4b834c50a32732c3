package story

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jayvdb/platform-engine/value"
)

// DecodeTree unmarshals a pre-compiled line tree from JSON, the same
// wire shape a Storyscript compiler front end would hand the engine:
// a JSON object keyed by line number. encoding/json silently keeps
// the last occurrence of a duplicate object key, which would make two
// distinct compiled lines collapse into one without any error -- so
// the top-level object is walked token-by-token first to reject
// duplicate line numbers before the convenience Unmarshal below ever
// runs.
func DecodeTree(data []byte) (Tree, error) {
	if err := checkDuplicateKeys(data); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}

	var wire map[string]lineWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}

	tree := make(Tree, len(wire))
	for ln, lw := range wire {
		line, err := lw.toLine(ln)
		if err != nil {
			return nil, fmt.Errorf("tree: line %q: %w", ln, err)
		}
		tree[ln] = line
	}
	return tree, nil
}

// checkDuplicateKeys walks the top-level JSON object's tokens looking
// for a repeated key, the pattern the teacher's spec/decode.go uses
// for duplicate service names.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := t.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}

	seen := make(map[string]bool)
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("expected a string key")
		}
		if seen[key] {
			return fmt.Errorf("duplicate line number: %q", key)
		}
		seen[key] = true

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return err
		}
	}
	return nil
}

type lineWire struct {
	Method    Method         `json:"method"`
	Service   string         `json:"service"`
	Command   string         `json:"command"`
	Args      []exprWire     `json:"args"`
	NamedArgs []namedArgWire `json:"named_args"`
	Output    []string       `json:"output"`
	Name      []string       `json:"name"`
	Enter     *string        `json:"enter"`
	Exit      *string        `json:"exit"`
	Next      *string        `json:"next"`
	Parent    *string        `json:"parent"`
	Function  string         `json:"function"`
	FuncName  string         `json:"func_name"`
	Params    []string       `json:"params"`
}

type namedArgWire struct {
	Name  string   `json:"name"`
	Value exprWire `json:"value"`
}

func (lw lineWire) toLine(ln string) (*Line, error) {
	args, err := decodeExprs(lw.Args)
	if err != nil {
		return nil, err
	}

	namedArgs := make([]NamedArg, len(lw.NamedArgs))
	for i, na := range lw.NamedArgs {
		v, err := na.Value.toExpr()
		if err != nil {
			return nil, fmt.Errorf("named arg %q: %w", na.Name, err)
		}
		namedArgs[i] = NamedArg{Name: na.Name, Value: v}
	}

	return &Line{
		LN:        ln,
		Method:    lw.Method,
		Service:   lw.Service,
		Command:   lw.Command,
		Args:      args,
		NamedArgs: namedArgs,
		Output:    lw.Output,
		Name:      lw.Name,
		Enter:     lw.Enter,
		Exit:      lw.Exit,
		Next:      lw.Next,
		Parent:    lw.Parent,
		Function:  lw.Function,
		FuncName:  lw.FuncName,
		Params:    lw.Params,
	}, nil
}

// exprWire is the discriminated-union wire shape for Expr.
type exprWire struct {
	Kind string `json:"kind"`

	Value json.RawMessage `json:"value"` // literal

	Path []pathSegmentWire `json:"path"` // path

	Base     *exprWire  `json:"base"`     // mutation
	Operator string     `json:"operator"` // mutation
	Args     []exprWire `json:"args"`     // mutation

	Fragments []stringFragmentWire `json:"fragments"` // string

	Items []exprWire `json:"items"` // list

	Entries []mapEntryWire `json:"entries"` // map
}

type pathSegmentWire struct {
	Name  string    `json:"name"`
	Index *exprWire `json:"index"`
}

type stringFragmentWire struct {
	Literal string    `json:"literal"`
	Expr    *exprWire `json:"expr"`
}

type mapEntryWire struct {
	Key   exprWire `json:"key"`
	Value exprWire `json:"value"`
}

func decodeExprs(wires []exprWire) ([]*Expr, error) {
	out := make([]*Expr, len(wires))
	for i, w := range wires {
		e, err := w.toExpr()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (w exprWire) toExpr() (*Expr, error) {
	switch w.Kind {
	case "literal":
		v, err := valueFromJSON(w.Value)
		if err != nil {
			return nil, err
		}
		return Lit(v), nil

	case "path":
		segs := make([]PathSegment, len(w.Path))
		for i, s := range w.Path {
			var idx *Expr
			if s.Index != nil {
				var err error
				idx, err = s.Index.toExpr()
				if err != nil {
					return nil, err
				}
			}
			segs[i] = PathSegment{Name: s.Name, Index: idx}
		}
		return &Expr{Kind: ExprPath, Path: segs}, nil

	case "mutation":
		if w.Base == nil {
			return nil, fmt.Errorf("mutation expression missing base")
		}
		base, err := w.Base.toExpr()
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprMutation, Base: base, Operator: w.Operator, Args: args}, nil

	case "string":
		frags := make([]StringFragment, len(w.Fragments))
		for i, f := range w.Fragments {
			var e *Expr
			if f.Expr != nil {
				var err error
				e, err = f.Expr.toExpr()
				if err != nil {
					return nil, err
				}
			}
			frags[i] = StringFragment{Literal: f.Literal, Expr: e}
		}
		return &Expr{Kind: ExprString, Fragments: frags}, nil

	case "list":
		items, err := decodeExprs(w.Items)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprList, Items: items}, nil

	case "map":
		entries := make([]MapEntry, len(w.Entries))
		for i, e := range w.Entries {
			k, err := e.Key.toExpr()
			if err != nil {
				return nil, err
			}
			v, err := e.Value.toExpr()
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: k, Value: v}
		}
		return &Expr{Kind: ExprMap, Entries: entries}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", w.Kind)
	}
}

// valueFromJSON converts a decoded JSON literal into a value.Value.
// JSON has no int/float distinction, so a number without a fractional
// part or exponent decodes as KindInt.
func valueFromJSON(raw json.RawMessage) (value.Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return value.Null(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var anyVal any
	if err := dec.Decode(&anyVal); err != nil {
		return value.Value{}, err
	}

	switch t := anyVal.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case []any:
		items := make([]value.Value, len(t))
		for i, item := range t {
			b, err := json.Marshal(item)
			if err != nil {
				return value.Value{}, err
			}
			v, err := valueFromJSON(b)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items), nil
	case map[string]any:
		m := make(map[string]value.Value, len(t))
		for k, item := range t {
			b, err := json.Marshal(item)
			if err != nil {
				return value.Value{}, err
			}
			v, err := valueFromJSON(b)
			if err != nil {
				return value.Value{}, err
			}
			m[k] = v
		}
		return value.Map(m), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return value.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	}

	return value.Value{}, fmt.Errorf("unsupported literal value: %s", raw)
}
