package formula

import (
	"fmt"
	"math"
)

func arith(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		if a.integral() && b.integral() {
			s := a.i + b.i
			if (b.i > 0 && s < a.i) || (b.i < 0 && s > a.i) {
				return Float(float64(a.i) + float64(b.i)), nil
			}
			return Int(s), nil
		}
		return Float(a.Float64() + b.Float64()), nil
	case "-":
		if a.integral() && b.integral() {
			s := a.i - b.i
			if (b.i > 0 && s > a.i) || (b.i < 0 && s < a.i) {
				return Float(float64(a.i) - float64(b.i)), nil
			}
			return Int(s), nil
		}
		return Float(a.Float64() - b.Float64()), nil
	case "*":
		if a.integral() && b.integral() {
			if p, ok := mulInt(a.i, b.i); ok {
				return Int(p), nil
			}
			return Float(float64(a.i) * float64(b.i)), nil
		}
		return Float(a.Float64() * b.Float64()), nil
	case "/":
		if b.Float64() == 0 {
			return Value{}, ErrZeroDivision
		}
		return Float(a.Float64() / b.Float64()), nil
	case "//":
		if b.Float64() == 0 {
			return Value{}, ErrZeroDivision
		}
		if a.integral() && b.integral() {
			if a.i == math.MinInt64 && b.i == -1 {
				return Float(-float64(a.i)), nil
			}
			q := a.i / b.i
			if a.i%b.i != 0 && (a.i < 0) != (b.i < 0) {
				q--
			}
			return Int(q), nil
		}
		return Float(math.Floor(a.Float64() / b.Float64())), nil
	case "%":
		if b.Float64() == 0 {
			return Value{}, ErrZeroDivision
		}
		if a.integral() && b.integral() {
			if b.i == -1 {
				return Int(0), nil
			}
			r := a.i % b.i
			if r != 0 && (r < 0) != (b.i < 0) {
				r += b.i
			}
			return Int(r), nil
		}
		x, y := a.Float64(), b.Float64()
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return Float(r), nil
	case "**":
		return power(a, b)
	}
	return Value{}, fmt.Errorf("unknown operator %q", op)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func power(a, b Value) (Value, error) {
	if a.integral() && b.integral() && b.i >= 0 {
		result, base, exp := int64(1), a.i, b.i
		ok := true
		for exp > 0 && ok {
			if exp&1 == 1 {
				result, ok = mulInt(result, base)
			}
			exp >>= 1
			if exp > 0 && ok {
				base, ok = mulInt(base, base)
			}
		}
		if ok {
			return Int(result), nil
		}
	}
	x, y := a.Float64(), b.Float64()
	if x == 0 && y < 0 {
		return Value{}, ErrZeroDivision
	}
	if x < 0 && y != math.Trunc(y) {
		return Value{}, ErrDomain
	}
	r := math.Pow(x, y)
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return Value{}, ErrRange
	}
	return Float(r), nil
}

func negate(v Value) Value {
	if v.integral() {
		if v.i == math.MinInt64 {
			return Float(-float64(v.i))
		}
		return Int(-v.i)
	}
	return Float(-v.f)
}

func compare(op string, a, b Value) (bool, error) {
	if a.integral() && b.integral() {
		x, y := a.i, b.i
		switch op {
		case "==":
			return x == y, nil
		case "!=":
			return x != y, nil
		case "<":
			return x < y, nil
		case "<=":
			return x <= y, nil
		case ">":
			return x > y, nil
		case ">=":
			return x >= y, nil
		}
		return false, fmt.Errorf("unknown comparison %q", op)
	}
	x, y := a.Float64(), b.Float64()
	switch op {
	case "==":
		return x == y, nil
	case "!=":
		return x != y, nil
	case "<":
		return x < y, nil
	case "<=":
		return x <= y, nil
	case ">":
		return x > y, nil
	case ">=":
		return x >= y, nil
	}
	return false, fmt.Errorf("unknown comparison %q", op)
}
