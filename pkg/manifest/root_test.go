package manifest

import (
	"errors"
	"testing"

	"github.com/easydep/easydep/pkg/tomledit"
)

func parseDoc(t *testing.T, src string) *tomledit.Document {
	t.Helper()
	doc, err := tomledit.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func TestRewriteRootCreatesWorkspaceDependencies(t *testing.T) {
	doc := parseDoc(t, `[workspace]
members = ["a", "b"]
`)
	modified, err := RewriteRoot(doc, "Cargo.toml", map[string]string{
		"serde": "1.0",
		"log":   "0.4",
	})
	if err != nil {
		t.Fatalf("RewriteRoot() error: %v", err)
	}
	if !modified {
		t.Error("modified = false, want true")
	}

	want := `[workspace]
members = ["a", "b"]
[workspace.dependencies]
log = "0.4"
serde = "1.0"
`
	if got := string(doc.Bytes()); got != want {
		t.Errorf("Bytes() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteRootNeverOverwritesExistingPin(t *testing.T) {
	src := `[workspace]
members = ["a"]

[workspace.dependencies]
serde = "0.9" # deliberately held back
`
	doc := parseDoc(t, src)
	modified, err := RewriteRoot(doc, "Cargo.toml", map[string]string{"serde": "1.0"})
	if err != nil {
		t.Fatalf("RewriteRoot() error: %v", err)
	}
	if modified {
		t.Error("modified = true, want false")
	}
	if got := string(doc.Bytes()); got != src {
		t.Errorf("existing pin changed:\n%s", got)
	}
}

func TestRewriteRootInsertsOnlyMissing(t *testing.T) {
	doc := parseDoc(t, `[workspace]
members = ["a"]

[workspace.dependencies]
serde = "0.9"
`)
	modified, err := RewriteRoot(doc, "Cargo.toml", map[string]string{
		"serde": "1.0",
		"log":   "0.4",
	})
	if err != nil {
		t.Fatalf("RewriteRoot() error: %v", err)
	}
	if !modified {
		t.Error("modified = false, want true")
	}
	want := `[workspace]
members = ["a"]

[workspace.dependencies]
serde = "0.9"
log = "0.4"
`
	if got := string(doc.Bytes()); got != want {
		t.Errorf("Bytes() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteRootSchemaViolation(t *testing.T) {
	doc := parseDoc(t, "workspace = \"oops\"\n")
	_, err := RewriteRoot(doc, "Cargo.toml", map[string]string{"serde": "1.0"})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("RewriteRoot() error = %T (%v), want *SchemaError", err, err)
	}
	if se.Path != "Cargo.toml" {
		t.Errorf("SchemaError.Path = %q, want Cargo.toml", se.Path)
	}
}
