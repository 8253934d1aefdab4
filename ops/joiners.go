package ops

import (
	"fmt"

	"github.com/danlunin/rowgraph/row"
)

// Joiner combines a group of left rows and a group of right rows that
// share a common key tuple into the joined output rows. Join drivers call
// it once per matching key, and additionally with an empty side to
// implement the outer/left/right variants.
type Joiner interface {
	Join(keys []string, left, right []row.Row) ([]row.Row, error)
}

// joinerConfig holds the shared, configurable behavior of the four
// built-in joiners.
type joinerConfig struct {
	suffixLeft  string
	suffixRight string
}

func defaultJoinerConfig() joinerConfig {
	return joinerConfig{suffixLeft: "_1", suffixRight: "_2"}
}

// Option configures a joiner's non-key column collision suffixes.
type Option func(*joinerConfig)

// WithSuffixes overrides the suffixes appended to non-key columns that
// appear in both the left and right row under the same name. The default
// is "_1" for the left side and "_2" for the right side.
func WithSuffixes(left, right string) Option {
	return func(c *joinerConfig) {
		c.suffixLeft = left
		c.suffixRight = right
	}
}

// mergeRows combines one left row and one right row sharing keys into a
// single output row: key columns are taken once from whichever side is
// present, and any non-key column name present on both sides is emitted
// twice, suffixed per cfg.
func mergeRows(cfg joinerConfig, keys []string, left, right *row.Row) (row.Row, error) {
	isKey := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		isKey[k] = struct{}{}
	}

	out := row.New()
	for _, k := range keys {
		var v row.Value
		var err error
		switch {
		case left != nil:
			v, err = left.MustGet(k)
		case right != nil:
			v, err = right.MustGet(k)
		default:
			return row.Row{}, fmt.Errorf("ops: join: missing both sides for key %q", k)
		}
		if err != nil {
			return row.Row{}, err
		}
		out.Set(k, v)
	}

	var leftCols, rightCols []string
	if left != nil {
		leftCols = left.Keys()
	}
	if right != nil {
		rightCols = right.Keys()
	}

	leftHas := make(map[string]struct{}, len(leftCols))
	for _, c := range leftCols {
		if _, isK := isKey[c]; isK {
			continue
		}
		leftHas[c] = struct{}{}
	}
	rightHas := make(map[string]struct{}, len(rightCols))
	for _, c := range rightCols {
		if _, isK := isKey[c]; isK {
			continue
		}
		rightHas[c] = struct{}{}
	}

	for _, c := range leftCols {
		if _, isK := isKey[c]; isK {
			continue
		}
		v, err := left.MustGet(c)
		if err != nil {
			return row.Row{}, err
		}
		name := c
		if _, collide := rightHas[c]; collide {
			name = c + cfg.suffixLeft
		}
		out.Set(name, v)
	}
	for _, c := range rightCols {
		if _, isK := isKey[c]; isK {
			continue
		}
		v, err := right.MustGet(c)
		if err != nil {
			return row.Row{}, err
		}
		name := c
		if _, collide := leftHas[c]; collide {
			name = c + cfg.suffixRight
		}
		out.Set(name, v)
	}

	return out, nil
}

// InnerJoiner emits the cross product of left and right for a matching
// key; a side with no rows produces no output.
type InnerJoiner struct {
	cfg joinerConfig
}

// NewInnerJoiner constructs an InnerJoiner with the given options applied.
func NewInnerJoiner(opts ...Option) InnerJoiner {
	cfg := defaultJoinerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return InnerJoiner{cfg: cfg}
}

// Join implements Joiner.
func (j InnerJoiner) Join(keys []string, left, right []row.Row) ([]row.Row, error) {
	return crossJoin(j.cfg, keys, left, right)
}

// crossJoin emits the cross product of left and right merged pairwise,
// or nothing if either side is empty. It is the shared core of every
// matched-pair case across the four joiners.
func crossJoin(cfg joinerConfig, keys []string, left, right []row.Row) ([]row.Row, error) {
	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}
	out := make([]row.Row, 0, len(left)*len(right))
	for i := range left {
		for k := range right {
			merged, err := mergeRows(cfg, keys, &left[i], &right[k])
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
		}
	}
	return out, nil
}

// OuterJoiner emits the cross product of left and right when both sides
// have rows for the key, and otherwise passes the non-empty side through
// unmatched (the absent side's non-key columns are left unset).
type OuterJoiner struct {
	cfg joinerConfig
}

// NewOuterJoiner constructs an OuterJoiner with the given options applied.
func NewOuterJoiner(opts ...Option) OuterJoiner {
	cfg := defaultJoinerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return OuterJoiner{cfg: cfg}
}

// Join implements Joiner.
func (j OuterJoiner) Join(keys []string, left, right []row.Row) ([]row.Row, error) {
	switch {
	case len(left) > 0 && len(right) > 0:
		return crossJoin(j.cfg, keys, left, right)
	case len(left) > 0:
		out := make([]row.Row, 0, len(left))
		for i := range left {
			merged, err := mergeRows(j.cfg, keys, &left[i], nil)
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
		}
		return out, nil
	case len(right) > 0:
		out := make([]row.Row, 0, len(right))
		for i := range right {
			merged, err := mergeRows(j.cfg, keys, nil, &right[i])
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
		}
		return out, nil
	default:
		return nil, nil
	}
}

// LeftJoiner keeps every left row for a key, matched against right rows
// when present, or emitted alone (right columns unset) when the key has
// no right rows at all. A key with no left rows produces no output.
type LeftJoiner struct {
	cfg joinerConfig
}

// NewLeftJoiner constructs a LeftJoiner with the given options applied.
func NewLeftJoiner(opts ...Option) LeftJoiner {
	cfg := defaultJoinerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return LeftJoiner{cfg: cfg}
}

// Join implements Joiner.
func (j LeftJoiner) Join(keys []string, left, right []row.Row) ([]row.Row, error) {
	if len(left) == 0 {
		return nil, nil
	}
	if len(right) == 0 {
		out := make([]row.Row, 0, len(left))
		for i := range left {
			merged, err := mergeRows(j.cfg, keys, &left[i], nil)
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
		}
		return out, nil
	}
	return crossJoin(j.cfg, keys, left, right)
}

// RightJoiner is the mirror image of LeftJoiner: every right row for a key
// survives, matched when possible, alone otherwise.
type RightJoiner struct {
	cfg joinerConfig
}

// NewRightJoiner constructs a RightJoiner with the given options applied.
func NewRightJoiner(opts ...Option) RightJoiner {
	cfg := defaultJoinerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return RightJoiner{cfg: cfg}
}

// Join implements Joiner.
func (j RightJoiner) Join(keys []string, left, right []row.Row) ([]row.Row, error) {
	if len(right) == 0 {
		return nil, nil
	}
	if len(left) == 0 {
		out := make([]row.Row, 0, len(right))
		for i := range right {
			merged, err := mergeRows(j.cfg, keys, nil, &right[i])
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
		}
		return out, nil
	}
	return NewInnerJoiner(func(c *joinerConfig) { *c = j.cfg }).Join(keys, left, right)
}
