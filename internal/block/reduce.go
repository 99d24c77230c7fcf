package block

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/formula"
	"github.com/KaramelBytes/logcompose/internal/rule"
)

var (
	// ErrEmpty is returned when a column has no buffered values to reduce.
	ErrEmpty = errors.New("no values in block")
	// ErrTooFew is returned by stddev for fewer than two values.
	ErrTooFew = errors.New("need at least two values")
)

// Reduce collapses one column's buffered values with op.
func Reduce(op rule.Operator, values []string) (string, error) {
	switch op {
	case rule.OpList:
		return "[" + strings.Join(values, "; ") + "]", nil
	case rule.OpNone, rule.OpFirst, rule.OpOnce:
		if len(values) == 0 {
			return "", ErrEmpty
		}
		return values[0], nil
	}
	if len(values) == 0 {
		return "", ErrEmpty
	}
	switch op {
	case rule.OpSum:
		return sum(values)
	case rule.OpAverage:
		nums, err := numbers(values)
		if err != nil {
			return "", err
		}
		return formula.FormatFloat(mean(nums)), nil
	case rule.OpMin:
		return extreme(values, func(a, b float64) bool { return a < b })
	case rule.OpMax:
		return extreme(values, func(a, b float64) bool { return a > b })
	case rule.OpMedian:
		return median(values)
	case rule.OpStddev:
		nums, err := numbers(values)
		if err != nil {
			return "", err
		}
		if len(nums) < 2 {
			return "", ErrTooFew
		}
		return formula.FormatFloat(stddev(nums)), nil
	}
	return "", fmt.Errorf("unknown operator %q", op)
}

func number(s string) (float64, error) {
	f, err := strconv.ParseFloat(formula.Normalize(s), 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	return f, nil
}

func numbers(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := number(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// sum keeps integer arithmetic while every value is an integer literal.
func sum(values []string) (string, error) {
	var total int64
	ints := true
	for _, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ints = false
			break
		}
		s := total + n
		if (n > 0 && s < total) || (n < 0 && s > total) {
			ints = false
			break
		}
		total = s
	}
	if ints {
		return strconv.FormatInt(total, 10), nil
	}
	nums, err := numbers(values)
	if err != nil {
		return "", err
	}
	var f float64
	for _, n := range nums {
		f += n
	}
	return formula.FormatFloat(f), nil
}

func mean(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s / float64(len(nums))
}

// stddev is the sample standard deviation (Welford's method).
func stddev(nums []float64) float64 {
	var m, m2 float64
	for i, x := range nums {
		d := x - m
		m += d / float64(i+1)
		m2 += d * (x - m)
	}
	return math.Sqrt(m2 / float64(len(nums)-1))
}

// extreme returns the buffered text of the first value that wins better.
func extreme(values []string, better func(a, b float64) bool) (string, error) {
	nums, err := numbers(values)
	if err != nil {
		return "", err
	}
	best := 0
	for i := 1; i < len(nums); i++ {
		if better(nums[i], nums[best]) {
			best = i
		}
	}
	return values[best], nil
}

func median(values []string) (string, error) {
	nums, err := numbers(values)
	if err != nil {
		return "", err
	}
	idx := make([]int, len(nums))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return nums[idx[a]] < nums[idx[b]] })
	mid := len(idx) / 2
	if len(idx)%2 == 1 {
		return values[idx[mid]], nil
	}
	return formula.FormatFloat((nums[idx[mid-1]] + nums[idx[mid]]) / 2), nil
}
