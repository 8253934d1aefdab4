package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danlunin/rowgraph/ops"
)

func TestReadFromFileHappyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := `{"id": 1, "text": "ABc"}
{"id": 2, "text": "XyZ"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	g := ReadFromFile("docs", JSONLineParser).Map(ops.LowerCase{Column: "text"})
	out, err := g.Run(map[string]any{"docs": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || str(out[0], "text") != "abc" || str(out[1], "text") != "xyz" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestReadFromFileSurfacesParseFailureThroughRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	// A bare array is valid JSON but not the flat object ReadFromFile's
	// parser expects, and jsonrepair has nothing to fix here, so the
	// parse failure on this line must fail the whole run.
	content := "[1, 2, 3]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	g := ReadFromFile("docs", JSONLineParser)
	if _, err := g.Run(map[string]any{"docs": path}); err == nil {
		t.Fatal("expected a parse failure to surface from Run")
	}
}

func TestReadFromFileErrorsOnMissingFile(t *testing.T) {
	g := ReadFromFile("docs", JSONLineParser)
	missing := filepath.Join(t.TempDir(), "does-not-exist.jsonl")
	if _, err := g.Run(map[string]any{"docs": missing}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
