// Package jsonrow turns a line of JSON text into a row.Row, for use as the
// ParseLine callback of ops.ReadFromFile when the source file holds one
// JSON object per line.
package jsonrow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/danlunin/rowgraph/row"
)

// Parse decodes line as a single flat JSON object and converts it to a
// Row. Numbers decode as Int when they carry no fractional part and no
// exponent, Float otherwise; strings decode as String; nested
// objects/arrays are rejected, since Row has no container value kind.
//
// If the initial decode fails, line is run through jsonrepair and decoding
// is retried once, the same two-step strategy the teacher's
// internal/utils.ParseStringAs uses for malformed LLM output.
func Parse(line string) (row.Row, error) {
	r, err := decode(line)
	if err == nil {
		return r, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(line)
	if repairErr != nil {
		return row.Row{}, fmt.Errorf("jsonrow: decode failed (%w) and repair failed: %v", err, repairErr)
	}
	r, err = decode(repaired)
	if err != nil {
		return row.Row{}, fmt.Errorf("jsonrow: decode of repaired line failed: %w", err)
	}
	return r, nil
}

// decode parses line token-by-token, rather than into a map[string]any,
// so the resulting Row's column order matches the order keys appeared in
// the JSON text instead of Go's randomized map iteration order — the
// deterministic ordering Row's design relies on (see package row).
func decode(line string) (row.Row, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	open, err := dec.Token()
	if err != nil {
		return row.Row{}, err
	}
	if d, ok := open.(json.Delim); !ok || d != '{' {
		return row.Row{}, fmt.Errorf("jsonrow: expected a JSON object, got %v", open)
	}

	out := row.New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return row.Row{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return row.Row{}, fmt.Errorf("jsonrow: expected a string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return row.Row{}, err
		}
		if d, isDelim := valTok.(json.Delim); isDelim {
			return row.Row{}, fmt.Errorf("jsonrow: column %q: nested %v values are not representable", key, d)
		}
		val, err := toValue(valTok)
		if err != nil {
			return row.Row{}, fmt.Errorf("jsonrow: column %q: %w", key, err)
		}
		out.Set(key, val)
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return row.Row{}, err
	}
	return out, nil
}

func toValue(v any) (row.Value, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return row.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return row.Value{}, fmt.Errorf("not a number: %w", err)
		}
		return row.Float(f), nil
	case string:
		return row.Str(t), nil
	case bool:
		if t {
			return row.Int(1), nil
		}
		return row.Int(0), nil
	case nil:
		return row.Value{}, fmt.Errorf("null values are not representable")
	default:
		return row.Value{}, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}
