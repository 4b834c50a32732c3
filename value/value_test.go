package value_test

import (
	"testing"

	"github.com/jayvdb/platform-engine/value"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null", value.Null(), false},
		{"false", value.Bool(false), false},
		{"true", value.Bool(true), true},
		{"zero int", value.Int(0), false},
		{"nonzero int", value.Int(1), true},
		{"empty string", value.String(""), false},
		{"nonempty string", value.String("x"), true},
		{"empty list", value.List(nil), false},
		{"nonempty list", value.List([]value.Value{value.Int(1)}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestListIsCopiedOnConstructionAndRead(t *testing.T) {
	items := []value.Value{value.Int(1), value.Int(2)}
	v := value.List(items)

	items[0] = value.Int(99)
	if got := v.List()[0]; !value.Equal(got, value.Int(1)) {
		t.Errorf("List value mutated via backing slice: got %v", got)
	}

	out := v.List()
	out[0] = value.Int(99)
	if got := v.List()[0]; !value.Equal(got, value.Int(1)) {
		t.Errorf("List() returned a non-defensive copy: got %v", got)
	}
}

func TestEqual(t *testing.T) {
	a := value.Map(map[string]value.Value{"x": value.Int(1)})
	b := value.Map(map[string]value.Value{"x": value.Int(1)})
	c := value.Map(map[string]value.Value{"x": value.Int(2)})

	if !value.Equal(a, b) {
		t.Error("expected equal maps to compare equal")
	}
	if value.Equal(a, c) {
		t.Error("expected differing maps to compare unequal")
	}
	if value.Equal(value.Int(1), value.Float(1)) {
		t.Error("expected differing kinds to never compare equal")
	}
}
