// Package row defines the unit of data flowing through a rowgraph pipeline:
// an ordered, string-keyed mapping of dynamically typed values.
package row

import "fmt"

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindInt marks a Value holding an int64.
	KindInt Kind = iota
	// KindFloat marks a Value holding a float64.
	KindFloat
	// KindString marks a Value holding a string.
	KindString
	// KindPair marks a Value holding a pair of float64 (e.g. lat/lon).
	KindPair
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindPair:
		return "pair"
	default:
		return "unknown"
	}
}

// Value is the closed set of dynamic types a Row column may hold: an
// integer, a double, a string, or a fixed pair of doubles. It is a tagged
// struct rather than an open interface hierarchy, so the kernels in package
// ops can exhaustively switch on Kind().
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	pair [2]float64
}

// Int constructs an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float constructs a floating-point Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str constructs a string Value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Geo constructs a pair-of-doubles Value (e.g. latitude/longitude).
func Geo(a, b float64) Value { return Value{kind: KindPair, pair: [2]float64{a, b}} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Int returns v's integer value and true if v holds KindInt.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns v's float value and true if v holds KindFloat.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// String returns v's string value and true if v holds KindString.
func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Pair returns v's pair value and true if v holds KindPair.
func (v Value) Pair() ([2]float64, bool) {
	if v.kind != KindPair {
		return [2]float64{}, false
	}
	return v.pair, true
}

// GoString renders v for debugging/log output.
func (v Value) GoString() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%g)", v.f)
	case KindString:
		return fmt.Sprintf("Str(%q)", v.s)
	case KindPair:
		return fmt.Sprintf("Geo(%g, %g)", v.pair[0], v.pair[1])
	default:
		return "Value(invalid)"
	}
}

// AsFloat coerces an Int or Float value to float64, for arithmetic kernels
// such as Idf and Average. It returns a type-mismatch error for String and
// Pair.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	default:
		return 0, fmt.Errorf("row: cannot use %s value as a number", v.kind)
	}
}

// IsNumeric reports whether v holds KindInt or KindFloat.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}
