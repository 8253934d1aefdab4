package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/danlunin/rowgraph/row"
)

func TestMapDummyIsIdentity(t *testing.T) {
	src := []row.Row{mustRow(t, "a", 1), mustRow(t, "a", 2)}
	out, err := Collect(Map(DummyMapper{})(FromSlice(src)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(src) {
		t.Fatalf("expected %d rows, got %d", len(src), len(out))
	}
	for i := range out {
		v1, _ := out[i].MustGet("a")
		v2, _ := src[i].MustGet("a")
		if mustInt(t, v1) != mustInt(t, v2) {
			t.Fatalf("row %d mismatched", i)
		}
	}
}

func TestMapPropagatesErrors(t *testing.T) {
	in := FromSlice([]row.Row{mustRow(t, "a", 1)})
	out := Map(FilterPunctuation{Column: "missing"})(in)
	_, err := Collect(out)
	if err == nil {
		t.Fatal("expected an error for a missing column")
	}
}

func TestSortIsStableAndOrdersByKeys(t *testing.T) {
	src := []row.Row{
		mustRow(t, "k", 3, "tag", "c"),
		mustRow(t, "k", 1, "tag", "a1"),
		mustRow(t, "k", 1, "tag", "a2"),
		mustRow(t, "k", 2, "tag", "b"),
	}
	out, err := Collect(Sort([]string{"k"})(FromSlice(src)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTags := []string{"a1", "a2", "b", "c"}
	for i, want := range wantTags {
		tag, _ := out[i].MustGet("tag")
		s, _ := tag.String()
		if s != want {
			t.Fatalf("position %d: got tag %q, want %q", i, s, want)
		}
	}
}

func TestReduceGroupsPreSortedInput(t *testing.T) {
	src := []row.Row{
		mustRow(t, "k", 1, "v", 10),
		mustRow(t, "k", 1, "v", 20),
		mustRow(t, "k", 2, "v", 5),
	}
	out, err := Collect(Reduce(Sum{Column: "v"}, []string{"k"})(FromSlice(src)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(out))
	}
	totals := map[int64]int64{}
	for _, r := range out {
		k, _ := r.MustGet("k")
		v, _ := r.MustGet("v")
		totals[mustInt(t, k)] = mustInt(t, v)
	}
	if totals[1] != 30 || totals[2] != 5 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

func TestCountAllTreatsWholeStreamAsOneGroup(t *testing.T) {
	src := []row.Row{
		mustRow(t, "doc", "d1"),
		mustRow(t, "doc", "d1"),
		mustRow(t, "doc", "d2"),
	}
	out, err := Collect(CountAll(RowsCounter{Column: "rows_count"}, []string{"doc"})(FromSlice(src)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected every input row broadcast, got %d", len(out))
	}
	for _, r := range out {
		n, _ := r.MustGet("rows_count")
		if mustInt(t, n) != 3 {
			t.Fatalf("rows_count = %d, want 3 (whole stream, no grouping)", mustInt(t, n))
		}
	}
}

func TestJoinSortMergeInner(t *testing.T) {
	left := []row.Row{
		mustRow(t, "id", 2, "a", "x2"),
		mustRow(t, "id", 1, "a", "x1"),
	}
	right := []row.Row{
		mustRow(t, "id", 1, "b", "y1"),
		mustRow(t, "id", 3, "b", "y3"),
	}
	out, err := Collect(Join(NewInnerJoiner(), []string{"id"})(FromSlice(left), FromSlice(right)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 matching row (id=1), got %d", len(out))
	}
	id, _ := out[0].MustGet("id")
	if mustInt(t, id) != 1 {
		t.Fatalf("expected matched id=1, got %d", mustInt(t, id))
	}
}

func TestJoinSortMergeOuterKeepsBothSidesUnmatched(t *testing.T) {
	left := []row.Row{mustRow(t, "id", 1, "a", "x")}
	right := []row.Row{mustRow(t, "id", 2, "b", "y")}

	out, err := Collect(Join(NewOuterJoiner(), []string{"id"})(FromSlice(left), FromSlice(right)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected both unmatched rows to survive an outer join, got %d", len(out))
	}
}

func TestReadIsIdentity(t *testing.T) {
	src := []row.Row{mustRow(t, "a", 1)}
	out, err := Collect(Read(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
}

// csvLineParser is a minimal ParseLine for ReadFromFile tests: each line is
// "id,text"; anything else is a parse failure.
func csvLineParser(line string) (row.Row, error) {
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return row.Row{}, fmt.Errorf("malformed line %q: want \"id,text\"", line)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return row.Row{}, fmt.Errorf("bad id in line %q: %w", line, err)
	}
	r := row.New()
	r.Set("id", row.Int(id))
	r.Set("text", row.Str(parts[1]))
	return r, nil
}

func TestReadFromFileParsesEachLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	content := "1,alpha\n2,beta\n3,gamma\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	out, err := Collect(ReadFromFile(csvLineParser)(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	wantTexts := []string{"alpha", "beta", "gamma"}
	for i, want := range wantTexts {
		v, err := out[i].MustGet("text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s, _ := v.String()
		if s != want {
			t.Fatalf("row %d text = %q, want %q", i, s, want)
		}
	}
}

func TestReadFromFileSurfacesParseErrorOnABadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	content := "1,alpha\nnot-a-valid-line\n3,gamma\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Collect(ReadFromFile(csvLineParser)(path))
	if err == nil {
		t.Fatal("expected an error from a malformed line")
	}
}

func TestReadFromFileErrorsOnMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.csv")
	_, err := Collect(ReadFromFile(csvLineParser)(missing))
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}
