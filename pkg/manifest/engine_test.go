package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/easydep/easydep/pkg/workspace"
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

// fixtureWorkspace lays out a root and two members where serde qualifies
// at the default threshold and rare does not.
func fixtureWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "Cargo.toml"), `[workspace]
members = ["api", "core"]
`)
	writeFixture(t, filepath.Join(root, "api", "Cargo.toml"), `[package]
name = "api"

[dependencies]
serde = "1.0"
rare = "0.1"
`)
	writeFixture(t, filepath.Join(root, "core", "Cargo.toml"), `[package]
name = "core"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`)
	return root
}

func TestRunConsolidatesWorkspace(t *testing.T) {
	root := fixtureWorkspace(t)
	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	report, err := Run(project, Options{MinOccurrences: 2})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !reflect.DeepEqual(report.Common, map[string]string{"serde": "1.0"}) {
		t.Errorf("Common = %v, want serde only", report.Common)
	}
	if !report.RootModified {
		t.Error("RootModified = false, want true")
	}
	wantMembers := []string{
		filepath.Join(root, "api", "Cargo.toml"),
		filepath.Join(root, "core", "Cargo.toml"),
	}
	if !reflect.DeepEqual(report.UpdatedMembers, wantMembers) {
		t.Errorf("UpdatedMembers = %v, want %v", report.UpdatedMembers, wantMembers)
	}

	wantRoot := `[workspace]
members = ["api", "core"]
[workspace.dependencies]
serde = "1.0"
`
	if got := readFile(t, filepath.Join(root, "Cargo.toml")); got != wantRoot {
		t.Errorf("root manifest =\n%s\nwant:\n%s", got, wantRoot)
	}

	wantAPI := `[package]
name = "api"

[dependencies]
serde = { workspace = true }
rare = "0.1"
`
	if got := readFile(t, filepath.Join(root, "api", "Cargo.toml")); got != wantAPI {
		t.Errorf("api manifest =\n%s\nwant:\n%s", got, wantAPI)
	}

	wantCore := `[package]
name = "core"

[dependencies]
serde = { features = ["derive"], workspace = true }
`
	if got := readFile(t, filepath.Join(root, "core", "Cargo.toml")); got != wantCore {
		t.Errorf("core manifest =\n%s\nwant:\n%s", got, wantCore)
	}
}

func TestRunIsIdempotentOnDisk(t *testing.T) {
	root := fixtureWorkspace(t)
	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if _, err := Run(project, Options{MinOccurrences: 2}); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	first := map[string]string{}
	for _, m := range project.Modules {
		first[m.ManifestPath] = readFile(t, m.ManifestPath)
	}
	firstRoot := readFile(t, project.RootManifest)

	// rediscover: the second run sees the rewritten manifests
	project, err = workspace.Discover(root)
	if err != nil {
		t.Fatalf("rediscover error: %v", err)
	}
	report, err := Run(project, Options{MinOccurrences: 2})
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if report.RootModified || len(report.UpdatedMembers) != 0 {
		t.Errorf("second run reported changes: root=%v members=%v", report.RootModified, report.UpdatedMembers)
	}
	if got := readFile(t, project.RootManifest); got != firstRoot {
		t.Errorf("root manifest changed on second run:\n%s", got)
	}
	for path, want := range first {
		if got := readFile(t, path); got != want {
			t.Errorf("%s changed on second run:\n%s", path, got)
		}
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	root := fixtureWorkspace(t)
	before := map[string]string{}
	for _, rel := range []string{"Cargo.toml", "api/Cargo.toml", "core/Cargo.toml"} {
		before[rel] = readFile(t, filepath.Join(root, rel))
	}

	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	report, err := Run(project, Options{MinOccurrences: 2, DryRun: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !report.RootModified || len(report.UpdatedMembers) != 2 {
		t.Errorf("dry run should still report changes: root=%v members=%v", report.RootModified, report.UpdatedMembers)
	}
	for rel, want := range before {
		if got := readFile(t, filepath.Join(root, rel)); got != want {
			t.Errorf("dry run wrote to %s:\n%s", rel, got)
		}
	}
}

func TestRunNoCommonDependenciesIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"only\"]\n")
	writeFixture(t, filepath.Join(root, "only", "Cargo.toml"), `[package]
name = "only"

[dependencies]
serde = "1.0"
`)
	before := readFile(t, filepath.Join(root, "Cargo.toml"))

	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	report, err := Run(project, Options{MinOccurrences: 2})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Common) != 0 || report.RootModified || len(report.UpdatedMembers) != 0 {
		t.Errorf("no-op run reported changes: %+v", report)
	}
	if got := readFile(t, filepath.Join(root, "Cargo.toml")); got != before {
		t.Errorf("root manifest touched on no-op run:\n%s", got)
	}
}

func TestRunWarnsOnConflicts(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"a\", \"b\"]\n")
	writeFixture(t, filepath.Join(root, "a", "Cargo.toml"), "[package]\nname = \"a\"\n\n[dependencies]\nserde = \"1.0\"\n")
	writeFixture(t, filepath.Join(root, "b", "Cargo.toml"), "[package]\nname = \"b\"\n\n[dependencies]\nserde = \"2.0\"\n")

	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	var warnings []string
	report, err := Run(project, Options{
		MinOccurrences: 2,
		Warnf: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("Conflicts = %v, want one", report.Conflicts)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one", warnings)
	}
	// consolidation still proceeds with the representative
	if report.Common["serde"] != "2.0" {
		t.Errorf("Common[serde] = %q, want 2.0", report.Common["serde"])
	}
}

func TestRunFailsFastOnBrokenMember(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"a\", \"b\"]\n")
	writeFixture(t, filepath.Join(root, "a", "Cargo.toml"), "[package]\nname = \"a\"\n\n[dependencies]\nserde = \"1.0\"\n")
	writeFixture(t, filepath.Join(root, "b", "Cargo.toml"), "[package]\nname = \"b\"\n\n[dependencies]\nserde = \"1.0\"\n")

	project, err := workspace.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	// corrupt the first member after discovery so the rewrite stage hits it
	writeFixture(t, filepath.Join(root, "a", "Cargo.toml"), "[dependencies\nserde = \"1.0\"\n")
	bBefore := readFile(t, filepath.Join(root, "b", "Cargo.toml"))

	_, err = Run(project, Options{MinOccurrences: 2})
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if got := readFile(t, filepath.Join(root, "b", "Cargo.toml")); got != bBefore {
		t.Errorf("later member rewritten after earlier failure:\n%s", got)
	}
}
