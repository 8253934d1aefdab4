package ops

import (
	"fmt"
	"sort"

	"github.com/danlunin/rowgraph/row"
)

// Reducer receives a grouping key tuple (the grouping column names) and a
// finite group of rows sharing those key values, and emits zero or more
// output rows.
type Reducer interface {
	Apply(keys []string, group []row.Row) ([]row.Row, error)
}

// ReducerFunc adapts an ordinary function to the Reducer interface.
type ReducerFunc func(keys []string, group []row.Row) ([]row.Row, error)

// Apply calls f, satisfying the Reducer interface.
func (f ReducerFunc) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	return f(keys, group)
}

// FirstReducer yields only the first row of the group.
type FirstReducer struct{}

// Apply implements Reducer.
func (FirstReducer) Apply(_ []string, group []row.Row) ([]row.Row, error) {
	if len(group) == 0 {
		return nil, nil
	}
	return group[:1], nil
}

// TopN yields up to N rows of the group, sorted by Column descending; ties
// keep their input (stable) order.
type TopN struct {
	Column string
	N      int
}

// Apply implements Reducer.
func (m TopN) Apply(_ []string, group []row.Row) ([]row.Row, error) {
	sorted := append([]row.Row(nil), group...)
	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		vi, err := sorted[i].MustGet(m.Column)
		if err != nil {
			sortErr = err
			return false
		}
		vj, err := sorted[j].MustGet(m.Column)
		if err != nil {
			sortErr = err
			return false
		}
		c, err := row.Compare(vi, vj)
		if err != nil {
			sortErr = err
			return false
		}
		return c > 0 // descending
	})
	if sortErr != nil {
		return nil, sortErr
	}
	if m.N < len(sorted) {
		sorted = sorted[:m.N]
	}
	return sorted, nil
}

// TermFrequency partitions the group by WordsColumn; for each sub-group it
// emits one row containing the group-key columns, the word, and
// count-of-word-in-group / size-of-whole-group as a Float in
// ResultColumn. The denominator is the size of the *entire* incoming
// group, not the sum of per-word counts — preserved from the Python
// source.
type TermFrequency struct {
	WordsColumn  string
	ResultColumn string
}

// Apply implements Reducer.
func (m TermFrequency) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	total := len(group)
	if total == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	sample := make(map[string]row.Row)

	for _, r := range group {
		v, err := r.MustGet(m.WordsColumn)
		if err != nil {
			return nil, err
		}
		word, ok := v.String()
		if !ok {
			return nil, fmt.Errorf("ops: TermFrequency: column %q is not a string", m.WordsColumn)
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
			sample[word] = r
		}
		counts[word]++
	}

	out := make([]row.Row, 0, len(order))
	for _, word := range order {
		nr := row.New()
		for _, k := range keys {
			v, err := sample[word].MustGet(k)
			if err != nil {
				return nil, err
			}
			nr.Set(k, v)
		}
		nr.Set(m.WordsColumn, row.Str(word))
		nr.Set(m.ResultColumn, row.Float(float64(counts[word])/float64(total)))
		out = append(out, nr)
	}
	return out, nil
}

// Count counts the rows in the group and emits one row holding the
// grouping-key columns (copied from any row of the group — they are equal
// by the Reduce driver's pre-sorted-input precondition) plus the count in
// Column. One row per group.
type Count struct {
	Column string
}

// Apply implements Reducer.
func (m Count) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	if len(group) == 0 {
		return nil, nil
	}
	out := row.New()
	for _, k := range keys {
		v, err := group[0].MustGet(k)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	out.Set(m.Column, row.Int(int64(len(group))))
	return []row.Row{out}, nil
}

// RowsCounter is like Count, but broadcasts the group size across one
// output row per input row, instead of collapsing the group to a single
// row.
type RowsCounter struct {
	Column string
}

// Apply implements Reducer.
func (m RowsCounter) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	out := make([]row.Row, 0, len(group))
	for _, r := range group {
		nr := row.New()
		for _, k := range keys {
			v, err := r.MustGet(k)
			if err != nil {
				return nil, err
			}
			nr.Set(k, v)
		}
		nr.Set(m.Column, row.Int(int64(len(group))))
		out = append(out, nr)
	}
	return out, nil
}

// Sum sums the numeric Column across the group and emits one row with the
// group-key columns (from the first row of the group) and Column replaced
// by the total. The total is a Float if any row's value is a Float,
// otherwise an Int.
type Sum struct {
	Column string
}

// Apply implements Reducer.
func (m Sum) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	if len(group) == 0 {
		return nil, nil
	}
	var fTotal float64
	var iTotal int64
	anyFloat := false

	for _, r := range group {
		v, err := r.MustGet(m.Column)
		if err != nil {
			return nil, err
		}
		switch v.Kind() {
		case row.KindFloat:
			f, _ := v.Float()
			fTotal += f
			anyFloat = true
		case row.KindInt:
			i, _ := v.Int()
			iTotal += i
			fTotal += float64(i)
		default:
			return nil, fmt.Errorf("ops: Sum: column %q is not numeric", m.Column)
		}
	}

	out := row.New()
	for _, k := range keys {
		v, err := group[0].MustGet(k)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	if anyFloat {
		out.Set(m.Column, row.Float(fTotal))
	} else {
		out.Set(m.Column, row.Int(iTotal))
	}
	return []row.Row{out}, nil
}

// Average computes the arithmetic mean of the numeric Column across the
// group and emits one row with the group-key columns and Column replaced
// by the mean, always as a Float (matching the Python source's explicit
// float() cast).
type Average struct {
	Column string
}

// Apply implements Reducer.
func (m Average) Apply(keys []string, group []row.Row) ([]row.Row, error) {
	if len(group) == 0 {
		return nil, nil
	}
	var total float64
	for _, r := range group {
		v, err := r.MustGet(m.Column)
		if err != nil {
			return nil, err
		}
		f, err := v.AsFloat()
		if err != nil {
			return nil, fmt.Errorf("ops: Average: column %q: %w", m.Column, err)
		}
		total += f
	}

	out := row.New()
	for _, k := range keys {
		v, err := group[0].MustGet(k)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	out.Set(m.Column, row.Float(total/float64(len(group))))
	return []row.Row{out}, nil
}
