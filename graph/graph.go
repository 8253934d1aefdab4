// Package graph provides the DAG construction API and the executor that
// evaluates it: a Graph is an immutable value describing one node of a
// directed acyclic graph of row operations, and Run walks that graph,
// materializing and memoizing each node's output exactly once per run.
package graph

import (
	"github.com/google/uuid"

	"github.com/danlunin/rowgraph/ops"
)

// operation identifies which driver a non-reader node applies and the
// arguments it was built with. Exactly one of the function fields is set,
// matching the node's kind.
type operation struct {
	mapFn    func(ops.Rows) ops.Rows
	reduceFn func(ops.Rows) ops.Rows
	sortFn   func(ops.Rows) ops.Rows
	joinFn   func(left, right ops.Rows) ops.Rows
}

// Graph is an immutable value representing one node of a computation DAG.
// Every constructor method returns a new Graph; none mutates the receiver,
// so a single Graph value may be the parent of any number of downstream
// graphs.
type Graph struct {
	id    uuid.UUID
	op    *operation
	a     *Graph
	b     *Graph
	src   string
	parse ops.ParseLine
}

// New returns an empty graph. It is not itself runnable; call one of the
// reader constructors to obtain a leaf, or chain an operation constructor
// off an existing graph.
func New() *Graph {
	return &Graph{id: newID()}
}

func newID() uuid.UUID {
	return uuid.New()
}

// ReadFromIter declares a reader leaf bound to name; at Run time, name must
// be bound to a []row.Row.
func ReadFromIter(name string) *Graph {
	return &Graph{id: newID(), src: name}
}

// ReadFromFile declares a reader leaf bound to name; at Run time, name must
// be bound to a file path, read line by line through parse.
func ReadFromFile(name string, parse ops.ParseLine) *Graph {
	return &Graph{id: newID(), src: name, parse: parse}
}

// Map returns a new graph applying m to every row of g.
func (g *Graph) Map(m ops.Mapper) *Graph {
	return &Graph{id: newID(), op: &operation{mapFn: ops.Map(m)}, a: g}
}

// Reduce returns a new graph grouping g by keys (g must already be sorted
// by keys) and applying red to each group.
func (g *Graph) Reduce(red ops.Reducer, keys []string) *Graph {
	return &Graph{id: newID(), op: &operation{reduceFn: ops.Reduce(red, keys)}, a: g}
}

// Count returns a new graph invoking red once over the whole stream
// produced by g, with no grouping.
func (g *Graph) Count(red ops.Reducer, keys []string) *Graph {
	return &Graph{id: newID(), op: &operation{reduceFn: ops.CountAll(red, keys)}, a: g}
}

// Sort returns a new graph yielding g's rows in stable ascending order of
// keys.
func (g *Graph) Sort(keys []string) *Graph {
	return &Graph{id: newID(), op: &operation{sortFn: ops.Sort(keys)}, a: g}
}

// Join returns a new graph combining g and other via the streaming
// sort-merge join driver, keyed on keys. Join is the only binary
// constructor: the returned graph has two parents.
func (g *Graph) Join(j ops.Joiner, other *Graph, keys []string) *Graph {
	return &Graph{id: newID(), op: &operation{joinFn: ops.Join(j, keys)}, a: g, b: other}
}
