package jsonrow

import "testing"

func TestParseWellFormed(t *testing.T) {
	r, err := Parse(`{"word": "hello", "count": 3, "score": 1.5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wordVal, err := r.MustGet("word")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if word, ok := wordVal.String(); !ok || word != "hello" {
		t.Fatalf("word = %v, want string hello", wordVal)
	}

	countVal, err := r.MustGet("count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count, ok := countVal.Int(); !ok || count != 3 {
		t.Fatalf("count = %v, want int 3", countVal)
	}

	scoreVal, err := r.MustGet("score")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score, ok := scoreVal.Float(); !ok || score != 1.5 {
		t.Fatalf("score = %v, want float 1.5", scoreVal)
	}
}

func TestParseRepairsMalformedJSON(t *testing.T) {
	// Single quotes and an unquoted key are not valid JSON but are the kind
	// of thing jsonrepair fixes up before the retry decode.
	r, err := Parse(`{word: 'hello', count: 3}`)
	if err != nil {
		t.Fatalf("expected repaired parse to succeed, got: %v", err)
	}
	if !r.Has("word") || !r.Has("count") {
		t.Fatalf("expected both columns present after repair, got keys %v", r.Keys())
	}
}

func TestParseRejectsNestedValues(t *testing.T) {
	if _, err := Parse(`{"nested": {"a": 1}}`); err == nil {
		t.Fatal("expected an error for a nested object value")
	}
}

func TestParsePreservesJSONKeyOrder(t *testing.T) {
	r, err := Parse(`{"z": 1, "a": 2, "m": 3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"z", "a", "m"}
	got := r.Keys()
	if len(got) != len(want) {
		t.Fatalf("unexpected key count: %v", got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("column order = %v, want %v (JSON text order)", got, want)
		}
	}
}
