package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRunConsolidateEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[workspace]\nmembers = [\"a\", \"b\"]\n")
	writeManifest(t, filepath.Join(root, "a"), "[package]\nname = \"a\"\n\n[dependencies]\nserde = \"1.0\"\n")
	writeManifest(t, filepath.Join(root, "b"), "[package]\nname = \"b\"\n\n[dependencies]\nserde = \"1.0\"\n")

	opts := consolidateOpts{
		minOccurrences: 2,
		workspaceRoot:  root,
		quiet:          true,
	}
	if err := runConsolidate(context.Background(), opts); err != nil {
		t.Fatalf("runConsolidate() error: %v", err)
	}

	rootManifest, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(rootManifest), "[workspace.dependencies]\nserde = \"1.0\"") {
		t.Errorf("root manifest not consolidated:\n%s", rootManifest)
	}

	member, err := os.ReadFile(filepath.Join(root, "a", "Cargo.toml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(member), "serde = { workspace = true }") {
		t.Errorf("member manifest not delegating:\n%s", member)
	}
}

func TestRunConsolidateRejectsZeroThreshold(t *testing.T) {
	opts := consolidateOpts{minOccurrences: 0, workspaceRoot: ".", quiet: true}
	if err := runConsolidate(context.Background(), opts); err == nil {
		t.Fatal("runConsolidate() expected error for zero threshold, got nil")
	}
}

func TestRunConsolidateDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	rootSrc := "[workspace]\nmembers = [\"a\", \"b\"]\n"
	writeManifest(t, root, rootSrc)
	writeManifest(t, filepath.Join(root, "a"), "[package]\nname = \"a\"\n\n[dependencies]\nserde = \"1.0\"\n")
	writeManifest(t, filepath.Join(root, "b"), "[package]\nname = \"b\"\n\n[dependencies]\nserde = \"1.0\"\n")

	opts := consolidateOpts{
		minOccurrences: 2,
		workspaceRoot:  root,
		quiet:          true,
		dryRun:         true,
	}
	if err := runConsolidate(context.Background(), opts); err != nil {
		t.Fatalf("runConsolidate() error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != rootSrc {
		t.Errorf("dry run wrote to root manifest:\n%s", got)
	}
}
