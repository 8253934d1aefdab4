// Package ops implements the stateless operator kernels (mappers, reducers,
// joiners) and the operation drivers (Map, Reduce, CountAll, Sort, Join,
// Read, ReadFromFile) that transform lazy row sequences into lazy row
// sequences. Package ops has no knowledge of graphs; package graph hosts
// these drivers as DAG nodes and owns memoization.
package ops

import (
	"iter"

	"github.com/danlunin/rowgraph/row"
)

// Rows is a single-pass, forward-only stream of rows paired with an error
// slot. It is a range-over-func iterator (Go 1.23+), the same shape the
// teacher's patterns/graph/stream.go uses for its GraphEvent stream
// (iter.Seq2[GraphEvent, error]).
//
// A non-nil error from a yielded pair is terminal: consumers must stop
// pulling once they observe one, and producers must not yield again after
// yielding an error.
type Rows = iter.Seq2[row.Row, error]

// FromSlice adapts a materialized slice of rows into a Rows iterator,
// yielding each element in order with a nil error.
func FromSlice(rows []row.Row) Rows {
	return func(yield func(row.Row, error) bool) {
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Collect fully drains rows into a slice, stopping at and returning the
// first error encountered. Sort, Reduce, CountAll and Join materialize
// their whole input through it; Map and the readers stay lazy.
func Collect(rows Rows) ([]row.Row, error) {
	var out []row.Row
	var firstErr error
	rows(func(r row.Row, err error) bool {
		if err != nil {
			firstErr = err
			return false
		}
		out = append(out, r)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// failRows returns a Rows iterator that yields a single error and nothing
// else, for drivers that detect a failure before they can produce any rows.
func failRows(err error) Rows {
	return func(yield func(row.Row, error) bool) {
		yield(row.Row{}, err)
	}
}
