// Package numeric holds the rounding policy and the lenient coercion rules
// shared by every analytics computation.
package numeric

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero to the given number of decimal places.
// NaN and ±Inf are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Round2 applies the monetary/percentage policy.
func Round2(v float64) float64 { return Round(v, 2) }

// Round3 applies the insight score policy.
func Round3(v float64) float64 { return Round(v, 3) }

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 { return &v }

// RoundPtr rounds through a nullable value, keeping nil as nil.
func RoundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	return Ptr(Round(*v, places))
}

// Deref coerces a missing value to 0.
func Deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Div returns a/b, or nil when b is zero.
func Div(a, b float64) *float64 {
	if b == 0 {
		return nil
	}
	return Ptr(a / b)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ParseFloat reads an imported cell. Blank, malformed or non-finite input is 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseOptionalFloat is ParseFloat that keeps blank cells as nil.
func ParseOptionalFloat(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Ptr(ParseFloat(s))
}

// ParseInt reads an integer cell, accepting "12.0". Malformed input is 0.
func ParseInt(s string) int {
	return int(ParseFloat(s))
}
