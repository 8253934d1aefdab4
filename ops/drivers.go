package ops

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/danlunin/rowgraph/row"
)

// Map returns a driver that applies m to every row of its input stream, in
// order, concatenating each call's output rows. It stays lazy: nothing
// downstream of the returned Rows pulls more than one upstream row ahead.
func Map(m Mapper) func(Rows) Rows {
	return func(in Rows) Rows {
		return func(yield func(row.Row, error) bool) {
			in(func(r row.Row, err error) bool {
				if err != nil {
					return yield(row.Row{}, err)
				}
				out, err := m.Apply(r)
				if err != nil {
					return yield(row.Row{}, err)
				}
				for _, o := range out {
					if !yield(o, nil) {
						return false
					}
				}
				return true
			})
		}
	}
}

// groupByKeys materializes in and partitions it into runs of consecutive
// rows sharing the same keys tuple, assuming in is already sorted by keys
// (the precondition Reduce shares with the Python source's
// itertools.groupby-based reducer; Join sorts each side before calling it).
func groupByKeys(in Rows, keys []string) ([][]row.Row, [][]row.Value, error) {
	rows, err := Collect(in)
	if err != nil {
		return nil, nil, err
	}

	var groups [][]row.Row
	var tuples [][]row.Value
	for _, r := range rows {
		tuple, err := row.KeyTuple(keys, r)
		if err != nil {
			return nil, nil, err
		}
		if len(groups) > 0 && row.KeysEqual(tuples[len(tuples)-1], tuple) {
			groups[len(groups)-1] = append(groups[len(groups)-1], r)
			continue
		}
		groups = append(groups, []row.Row{r})
		tuples = append(tuples, tuple)
	}
	return groups, tuples, nil
}

// Reduce returns a driver that groups its (pre-sorted) input by keys and
// applies red to each group, concatenating the results. Unlike Map, Reduce
// forces full materialization of its input, since a group cannot be known
// complete until the stream ends or the key changes.
func Reduce(red Reducer, keys []string) func(Rows) Rows {
	return func(in Rows) Rows {
		groups, _, err := groupByKeys(in, keys)
		if err != nil {
			return failRows(err)
		}
		return func(yield func(row.Row, error) bool) {
			for _, g := range groups {
				out, err := red.Apply(keys, g)
				if err != nil {
					yield(row.Row{}, err)
					return
				}
				for _, o := range out {
					if !yield(o, nil) {
						return
					}
				}
			}
		}
	}
}

// CountAll returns a driver like Reduce, except it invokes red exactly
// once over the whole input as a single group, with no grouping — the
// driver behind global aggregates (a bare row count across a whole
// corpus, for instance). keys is passed through to red unchanged; it
// names the columns red should treat as the group's key columns when
// assembling its output rows, even though no actual grouping occurs.
func CountAll(red Reducer, keys []string) func(Rows) Rows {
	return func(in Rows) Rows {
		rows, err := Collect(in)
		if err != nil {
			return failRows(err)
		}
		return func(yield func(row.Row, error) bool) {
			out, err := red.Apply(keys, rows)
			if err != nil {
				yield(row.Row{}, err)
				return
			}
			for _, o := range out {
				if !yield(o, nil) {
					return
				}
			}
		}
	}
}

// Sort returns a driver that materializes its input and yields it back in
// stable, ascending order of the keys tuple.
func Sort(keys []string) func(Rows) Rows {
	return func(in Rows) Rows {
		rows, err := Collect(in)
		if err != nil {
			return failRows(err)
		}
		var sortErr error
		sort.SliceStable(rows, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			c, err := row.CompareKeys(keys, rows[i], rows[j])
			if err != nil {
				sortErr = err
				return false
			}
			return c < 0
		})
		if sortErr != nil {
			return failRows(sortErr)
		}
		return FromSlice(rows)
	}
}

// Join returns a driver combining two row streams, left and right. Unlike
// Reduce, whose pre-sorted-input requirement is a documented precondition
// the caller must satisfy, Join sorts each side itself (stably, by keys)
// before grouping, per the sort-merge algorithm's own first step: both
// sides are grouped by key tuple, then the groups are advanced in
// lockstep, the side with the lexicographically smaller key advancing
// alone (calling j with an empty group on the other side) until the keys
// match, at which point both groups are consumed together.
func Join(j Joiner, keys []string) func(left, right Rows) Rows {
	return func(left, right Rows) Rows {
		lGroups, lTuples, err := groupByKeys(Sort(keys)(left), keys)
		if err != nil {
			return failRows(err)
		}
		rGroups, rTuples, err := groupByKeys(Sort(keys)(right), keys)
		if err != nil {
			return failRows(err)
		}

		return func(yield func(row.Row, error) bool) {
			li, ri := 0, 0
			for li < len(lGroups) && ri < len(rGroups) {
				c, err := compareValueTuples(lTuples[li], rTuples[ri])
				if err != nil {
					yield(row.Row{}, err)
					return
				}
				switch {
				case c < 0:
					out, err := j.Join(keys, lGroups[li], nil)
					if err != nil {
						yield(row.Row{}, err)
						return
					}
					if !emitAll(yield, out) {
						return
					}
					li++
				case c > 0:
					out, err := j.Join(keys, nil, rGroups[ri])
					if err != nil {
						yield(row.Row{}, err)
						return
					}
					if !emitAll(yield, out) {
						return
					}
					ri++
				default:
					out, err := j.Join(keys, lGroups[li], rGroups[ri])
					if err != nil {
						yield(row.Row{}, err)
						return
					}
					if !emitAll(yield, out) {
						return
					}
					li++
					ri++
				}
			}
			for ; li < len(lGroups); li++ {
				out, err := j.Join(keys, lGroups[li], nil)
				if err != nil {
					yield(row.Row{}, err)
					return
				}
				if !emitAll(yield, out) {
					return
				}
			}
			for ; ri < len(rGroups); ri++ {
				out, err := j.Join(keys, nil, rGroups[ri])
				if err != nil {
					yield(row.Row{}, err)
					return
				}
				if !emitAll(yield, out) {
					return
				}
			}
		}
	}
}

func emitAll(yield func(row.Row, error) bool, rows []row.Row) bool {
	for _, r := range rows {
		if !yield(r, nil) {
			return false
		}
	}
	return true
}

// compareValueTuples compares two key tuples lexicographically, the same
// way row.CompareKeys does for rows, but operating on already-extracted
// value tuples so the merge loop in Join need not re-fetch columns from a
// row on every comparison.
func compareValueTuples(a, b []row.Value) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := row.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return len(a) - len(b), nil
}

// Read adapts an in-memory slice of rows into a leaf Rows stream.
func Read(src []row.Row) Rows {
	return FromSlice(src)
}

// ParseLine turns one line of input (without its trailing newline) into a
// row, for use with ReadFromFile.
type ParseLine func(line string) (row.Row, error)

// ReadFromFile returns a driver producing the Rows obtained by opening
// path, reading it line by line, and applying parse to each line. The file
// is not opened until the returned Rows is actually pulled, and it is
// always closed before the iterator returns control for the last time,
// whether that is because the input was exhausted, an error occurred, or
// the consumer stopped pulling early.
func ReadFromFile(parse ParseLine) func(path string) Rows {
	return func(path string) Rows {
		return func(yield func(row.Row, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				yield(row.Row{}, fmt.Errorf("ops: ReadFromFile: %w", err))
				return
			}
			defer f.Close()

			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
			for scanner.Scan() {
				r, err := parse(scanner.Text())
				if err != nil {
					yield(row.Row{}, fmt.Errorf("ops: ReadFromFile: %w", err))
					return
				}
				if !yield(r, nil) {
					return
				}
			}
			if err := scanner.Err(); err != nil {
				yield(row.Row{}, fmt.Errorf("ops: ReadFromFile: %w", err))
			}
		}
	}
}
