package formula

import (
	"math"
	"strconv"
	"strings"
)

type kind uint8

const (
	kindInt kind = iota
	kindFloat
	kindBool
)

// Value is a typed expression result: an integer, a float or a boolean.
// Booleans take part in arithmetic as 0 and 1.
type Value struct {
	k kind
	i int64
	f float64
}

// Int returns an integer value.
func Int(i int64) Value { return Value{k: kindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{k: kindFloat, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{k: kindBool, i: 1}
	}
	return Value{k: kindBool}
}

// IsFloat reports whether v holds a float.
func (v Value) IsFloat() bool { return v.k == kindFloat }

// IsBool reports whether v holds a boolean.
func (v Value) IsBool() bool { return v.k == kindBool }

// integral reports whether v uses integer arithmetic (ints and bools).
func (v Value) integral() bool { return v.k != kindFloat }

// Float64 returns v converted to float64.
func (v Value) Float64() float64 {
	if v.k == kindFloat {
		return v.f
	}
	return float64(v.i)
}

// Truthy reports whether v counts as true in a boolean context.
func (v Value) Truthy() bool {
	if v.k == kindFloat {
		return v.f != 0
	}
	return v.i != 0
}

// String renders v the way result cells are written.
func (v Value) String() string {
	switch v.k {
	case kindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	case kindFloat:
		return FormatFloat(v.f)
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// FormatFloat renders f with the shortest representation that round-trips.
// Integral values keep a trailing ".0"; magnitudes below 1e-4 or from 1e16
// upward use exponent notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	if idx := strings.IndexByte(e, 'e'); idx >= 0 {
		if exp, err := strconv.Atoi(e[idx+1:]); err == nil && (exp < -4 || exp >= 16) {
			return e
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
