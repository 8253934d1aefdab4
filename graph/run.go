package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danlunin/rowgraph/internal/jsonrow"
	"github.com/danlunin/rowgraph/ops"
	"github.com/danlunin/rowgraph/row"
)

// Run evaluates g against bindings and returns the fully materialized
// result. bindings maps a reader's declared source name to either a
// []row.Row (for ReadFromIter leaves) or a string file path (for
// ReadFromFile leaves).
//
// Evaluation is a depth-first post-order traversal memoized by node
// identity: a node reachable from more than one downstream consumer is
// evaluated once and its materialized rows are reused for every later
// visit. Reader leaves are never memoized — each visit reads its binding
// fresh, matching the source semantics where a binding may back multiple
// independent reader nodes.
func (g *Graph) Run(bindings map[string]any) ([]row.Row, error) {
	cache := make(map[uuid.UUID][]row.Row)
	return g.eval(bindings, cache)
}

func (g *Graph) eval(bindings map[string]any, cache map[uuid.UUID][]row.Row) ([]row.Row, error) {
	if g.op == nil {
		return g.evalReader(bindings)
	}

	if cached, ok := cache[g.id]; ok {
		slog.LogAttrs(context.Background(), slog.LevelDebug, "graph: cache hit",
			slog.String("node", g.id.String()))
		return cached, nil
	}

	var out []row.Row
	var err error
	switch {
	case g.op.joinFn != nil:
		out, err = g.evalJoin(bindings, cache)
	default:
		out, err = g.evalUnary(bindings, cache)
	}
	if err != nil {
		return nil, err
	}

	cache[g.id] = out
	slog.LogAttrs(context.Background(), slog.LevelDebug, "graph: node evaluated",
		slog.String("node", g.id.String()), slog.Int("rows", len(out)))
	return out, nil
}

func (g *Graph) evalUnary(bindings map[string]any, cache map[uuid.UUID][]row.Row) ([]row.Row, error) {
	parentRows, err := g.a.eval(bindings, cache)
	if err != nil {
		return nil, err
	}

	var driver func(ops.Rows) ops.Rows
	switch {
	case g.op.mapFn != nil:
		driver = g.op.mapFn
	case g.op.reduceFn != nil:
		driver = g.op.reduceFn
	case g.op.sortFn != nil:
		driver = g.op.sortFn
	default:
		return nil, fmt.Errorf("graph: node %s has no operation", g.id)
	}

	out, err := ops.Collect(driver(ops.FromSlice(parentRows)))
	if err != nil {
		return nil, fmt.Errorf("graph: node %s: %w", g.id, err)
	}
	return out, nil
}

func (g *Graph) evalJoin(bindings map[string]any, cache map[uuid.UUID][]row.Row) ([]row.Row, error) {
	leftRows, err := g.a.eval(bindings, cache)
	if err != nil {
		return nil, err
	}
	rightRows, err := g.b.eval(bindings, cache)
	if err != nil {
		return nil, err
	}

	out, err := ops.Collect(g.op.joinFn(ops.FromSlice(leftRows), ops.FromSlice(rightRows)))
	if err != nil {
		return nil, fmt.Errorf("graph: node %s: %w", g.id, err)
	}
	return out, nil
}

func (g *Graph) evalReader(bindings map[string]any) ([]row.Row, error) {
	binding, ok := bindings[g.src]
	if !ok {
		return nil, fmt.Errorf("graph: no binding supplied for source %q", g.src)
	}

	if g.parse == nil {
		src, ok := binding.([]row.Row)
		if !ok {
			return nil, fmt.Errorf("graph: source %q is bound to %T, want []row.Row", g.src, binding)
		}
		out, err := ops.Collect(ops.Read(src))
		if err != nil {
			return nil, fmt.Errorf("graph: source %q: %w", g.src, err)
		}
		return out, nil
	}

	path, ok := binding.(string)
	if !ok {
		return nil, fmt.Errorf("graph: source %q is bound to %T, want a file path string", g.src, binding)
	}
	out, err := ops.Collect(ops.ReadFromFile(g.parse)(path))
	if err != nil {
		return nil, fmt.Errorf("graph: source %q: %w", g.src, err)
	}
	return out, nil
}

// JSONLineParser is the reference ops.ParseLine implementation: one JSON
// object per line, repaired via jsonrepair on an initial decode failure.
// Graphs built with ReadFromFile(name, JSONLineParser) read the same file
// format the teacher's internal/utils.ParseStringAs repairs for malformed
// LLM output.
var JSONLineParser ops.ParseLine = jsonrow.Parse
