package mutations

import (
	"math"

	"github.com/jayvdb/platform-engine/value"
)

// floatMutations is grounded directly on
// original_source/asyncy/processing/mutations/FloatMutations.py --
// same operator set, same math.* function per operator.
var floatMutations = map[string]Func{
	"round": fn1(math.Round),
	"ceil":  fn1(math.Ceil),
	"floor": fn1(math.Floor),
	"sin":   fn1(math.Sin),
	"cos":   fn1(math.Cos),
	"tan":   fn1(math.Tan),
	"asin":  fn1(math.Asin),
	"acos":  fn1(math.Acos),
	"atan":  fn1(math.Atan),
	"log":   fn1(math.Log),
	"log2":  fn1(math.Log2),
	"log10": fn1(math.Log10),
	"exp":   fn1(math.Exp),
	"abs":   fn1(math.Abs),
	"sqrt":  fn1(math.Sqrt),
	"is_nan": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(math.IsNaN(v.Float())), nil
	},
	"is_infinity": func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(math.IsInf(v.Float(), 0)), nil
	},
}

// fn1 adapts a float64 -> float64 math function into a Func.
func fn1(f func(float64) float64) Func {
	return func(v value.Value, _ []value.Value) (value.Value, error) {
		return value.Float(f(v.Float())), nil
	}
}
