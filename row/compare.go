package row

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// compareOrdered compares two values of any ordered primitive type,
// following the same three-way convention as strings.Compare. Grounded on
// SnellerInc-sneller's use of golang.org/x/exp/constraints for its own
// comparator and sort helpers (internal/sort, vm/sort.go).
func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare returns -1, 0, or 1 according to whether a sorts before, equal
// to, or after b. Int and Float values compare numerically against each
// other (promoted to float64); String values compare lexicographically;
// any other combination — including either side holding a Pair, which has
// no natural order — is a type mismatch.
func Compare(a, b Value) (int, error) {
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return compareOrdered(af, bf), nil
	}
	if a.kind == KindString && b.kind == KindString {
		return compareOrdered(a.s, b.s), nil
	}
	return 0, fmt.Errorf("row: cannot compare %s with %s", a.kind, b.kind)
}

// CompareKeys compares two rows lexicographically over the tuple of values
// named by keys, in order, short-circuiting at the first non-zero column
// comparison. This is the comparator behind Sort (and so behind the sort
// step Join applies to each side). Reduce's grouping uses KeyTuple and
// KeysEqual instead.
func CompareKeys(keys []string, a, b Row) (int, error) {
	for _, k := range keys {
		av, err := a.MustGet(k)
		if err != nil {
			return 0, err
		}
		bv, err := b.MustGet(k)
		if err != nil {
			return 0, err
		}
		c, err := Compare(av, bv)
		if err != nil {
			return 0, fmt.Errorf("row: comparing column %q: %w", k, err)
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// KeyTuple extracts the values of keys from row, in order, for use as a
// group-key in Reduce/Join.
func KeyTuple(keys []string, r Row) ([]Value, error) {
	tuple := make([]Value, len(keys))
	for i, k := range keys {
		v, err := r.MustGet(k)
		if err != nil {
			return nil, err
		}
		tuple[i] = v
	}
	return tuple, nil
}

// KeysEqual reports whether two key tuples of equal length hold equal
// values column-by-column. Tuples of differing length are never equal.
func KeysEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	if a.kind != b.kind {
		if a.IsNumeric() && b.IsNumeric() {
			af, _ := a.AsFloat()
			bf, _ := b.AsFloat()
			return af == bf
		}
		return false
	}
	switch a.kind {
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindPair:
		return a.pair == b.pair
	default:
		return false
	}
}
