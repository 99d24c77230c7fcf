package formula

import (
	"fmt"
	"math"
)

// Callendar-Van Dusen coefficients for platinum RTDs with alpha = 0.00385,
// valid over 0 °C < T < 850 °C.
const (
	rtdA = 3.9083e-3 // 1/°C
	rtdB = -5.775e-7 // 1/°C²
)

// RTD converts a platinum resistance thermometer reading to °C using the
// quadratic approximation T = (-A + sqrt(A² - 4B(1 - R/R0))) / (2B).
// r0 is the nominal resistance at 0 °C, e.g. 1000 for a PT1000.
func RTD(r, r0 float64) (float64, error) {
	if r0 == 0 {
		return 0, ErrZeroDivision
	}
	disc := rtdA*rtdA - 4*rtdB*(1-r/r0)
	if disc < 0 {
		return 0, ErrDomain
	}
	return (-rtdA + math.Sqrt(disc)) / (2 * rtdB), nil
}

func defaultConstants() map[string]Value {
	return map[string]Value{
		"pi":       Float(math.Pi),
		"e":        Float(math.E),
		"tau":      Float(2 * math.Pi),
		"math.inf": Float(math.Inf(1)),
		"math.nan": Float(math.NaN()),
	}
}

func defaultFunctions() map[string]Func {
	return map[string]Func{
		"RTD": func(args []Value) (Value, error) {
			if err := arity(args, 2); err != nil {
				return Value{}, err
			}
			t, err := RTD(args[0].Float64(), args[1].Float64())
			if err != nil {
				return Value{}, err
			}
			return Float(t), nil
		},
		"abs": func(args []Value) (Value, error) {
			if err := arity(args, 1); err != nil {
				return Value{}, err
			}
			x := args[0]
			if x.integral() {
				if x.i < 0 {
					return negate(x), nil
				}
				return Int(x.i), nil
			}
			return Float(math.Abs(x.f)), nil
		},
		"sqrt":    unary(math.Sqrt, func(x float64) bool { return x >= 0 }),
		"exp":     checkedUnary(math.Exp),
		"log10":   unary(math.Log10, positive),
		"log2":    unary(math.Log2, positive),
		"sin":     unary(math.Sin, nil),
		"cos":     unary(math.Cos, nil),
		"tan":     unary(math.Tan, nil),
		"asin":    unary(math.Asin, unitRange),
		"acos":    unary(math.Acos, unitRange),
		"atan":    unary(math.Atan, nil),
		"sinh":    checkedUnary(math.Sinh),
		"cosh":    checkedUnary(math.Cosh),
		"tanh":    unary(math.Tanh, nil),
		"fabs":    unary(math.Abs, nil),
		"degrees": unary(func(x float64) float64 { return x * 180 / math.Pi }, nil),
		"radians": unary(func(x float64) float64 { return x * math.Pi / 180 }, nil),
		"atan2":   binary(math.Atan2),
		"hypot":   binary(math.Hypot),
		"log": func(args []Value) (Value, error) {
			if len(args) != 1 && len(args) != 2 {
				return Value{}, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
			}
			x := args[0].Float64()
			if x <= 0 {
				return Value{}, ErrDomain
			}
			if len(args) == 1 {
				return Float(math.Log(x)), nil
			}
			b := args[1].Float64()
			if b <= 0 {
				return Value{}, ErrDomain
			}
			if b == 1 {
				return Value{}, ErrZeroDivision
			}
			return Float(math.Log(x) / math.Log(b)), nil
		},
		"pow": func(args []Value) (Value, error) {
			if err := arity(args, 2); err != nil {
				return Value{}, err
			}
			v, err := power(Float(args[0].Float64()), Float(args[1].Float64()))
			if err != nil {
				return Value{}, err
			}
			return Float(v.Float64()), nil
		},
		"floor": toInt(math.Floor),
		"ceil":  toInt(math.Ceil),
		"trunc": toInt(math.Trunc),
		"int":   toInt(math.Trunc),
		"float": func(args []Value) (Value, error) {
			if err := arity(args, 1); err != nil {
				return Value{}, err
			}
			return Float(args[0].Float64()), nil
		},
		"round": func(args []Value) (Value, error) {
			if len(args) != 1 && len(args) != 2 {
				return Value{}, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
			}
			x := args[0]
			if len(args) == 1 {
				return toInt(math.RoundToEven)(args)
			}
			if !args[1].integral() {
				return Value{}, fmt.Errorf("ndigits must be an integer")
			}
			p := math.Pow10(int(args[1].i))
			if x.integral() {
				if args[1].i >= 0 {
					return Int(x.i), nil
				}
				return Int(int64(math.RoundToEven(float64(x.i)/p) * p)), nil
			}
			return Float(math.RoundToEven(x.f*p) / p), nil
		},
		"min": extreme(func(a, b Value) bool { ok, _ := compare("<", a, b); return ok }),
		"max": extreme(func(a, b Value) bool { ok, _ := compare(">", a, b); return ok }),
	}
}

func arity(args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

func positive(x float64) bool  { return x > 0 }
func unitRange(x float64) bool { return x >= -1 && x <= 1 }

// unary wraps a float function; domain, when set, rejects arguments with ErrDomain.
func unary(fn func(float64) float64, domain func(float64) bool) Func {
	return func(args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Value{}, err
		}
		x := args[0].Float64()
		if domain != nil && !domain(x) {
			return Value{}, ErrDomain
		}
		return Float(fn(x)), nil
	}
}

// checkedUnary reports ErrRange when a finite argument overflows.
func checkedUnary(fn func(float64) float64) Func {
	return func(args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Value{}, err
		}
		x := args[0].Float64()
		r := fn(x)
		if math.IsInf(r, 0) && !math.IsInf(x, 0) {
			return Value{}, ErrRange
		}
		return Float(r), nil
	}
}

func binary(fn func(float64, float64) float64) Func {
	return func(args []Value) (Value, error) {
		if err := arity(args, 2); err != nil {
			return Value{}, err
		}
		return Float(fn(args[0].Float64(), args[1].Float64())), nil
	}
}

// toInt applies a rounding function and returns an integer result.
func toInt(fn func(float64) float64) Func {
	return func(args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Value{}, err
		}
		x := args[0]
		if x.integral() {
			return Int(x.i), nil
		}
		r := fn(x.f)
		if math.IsNaN(r) {
			return Value{}, ErrDomain
		}
		if r >= math.MaxInt64 || r < math.MinInt64 {
			return Value{}, ErrRange
		}
		return Int(int64(r)), nil
	}
}

func extreme(better func(a, b Value) bool) Func {
	return func(args []Value) (Value, error) {
		if len(args) < 2 {
			return Value{}, fmt.Errorf("expected at least 2 arguments, got %d", len(args))
		}
		best := args[0]
		for _, a := range args[1:] {
			if better(a, best) {
				best = a
			}
		}
		return best, nil
	}
}
