package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// manifestName is the file each module must carry.
const manifestName = "Cargo.toml"

// rawManifest is the decoded shape of a Cargo.toml, limited to the fields
// discovery needs. Dependency values stay untyped: a declaration may be a
// bare version string or an attribute table.
type rawManifest struct {
	Package   *rawPackage                `toml:"package"`
	Workspace *rawWorkspace              `toml:"workspace"`
	Deps      map[string]any             `toml:"dependencies"`
	DevDeps   map[string]any             `toml:"dev-dependencies"`
	BuildDeps map[string]any             `toml:"build-dependencies"`
	Target    map[string]rawTargetTables `toml:"target"`
}

type rawPackage struct {
	Name string `toml:"name"`
}

type rawWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type rawTargetTables struct {
	Deps      map[string]any `toml:"dependencies"`
	DevDeps   map[string]any `toml:"dev-dependencies"`
	BuildDeps map[string]any `toml:"build-dependencies"`
}

// Discover builds the workspace inventory rooted at rootDir. The root
// manifest must declare a [workspace] table, a [package], or both; a lone
// [package] is treated as a single-module workspace of itself.
func Discover(rootDir string) (*Project, error) {
	rootManifest := filepath.Join(rootDir, manifestName)
	raw, err := readManifest(rootManifest)
	if err != nil {
		return nil, err
	}
	if raw.Workspace == nil && raw.Package == nil {
		return nil, &DiscoveryError{Path: rootManifest, Err: errors.New("manifest declares neither [workspace] nor [package]")}
	}

	project := &Project{RootDir: rootDir, RootManifest: rootManifest}

	if raw.Package != nil {
		project.Modules = append(project.Modules, buildModule(rootDir, rootManifest, raw))
	}
	if raw.Workspace == nil {
		return project, nil
	}

	excluded, err := excludeSet(rootDir, raw.Workspace.Exclude)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{abs(rootDir): true}
	for _, pattern := range raw.Workspace.Members {
		dirs, err := expandMember(rootDir, pattern)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			key := abs(dir)
			if seen[key] || excluded[key] {
				continue
			}
			seen[key] = true
			manifest := filepath.Join(dir, manifestName)
			memberRaw, err := readManifest(manifest)
			if err != nil {
				return nil, err
			}
			project.Modules = append(project.Modules, buildModule(dir, manifest, memberRaw))
		}
	}
	return project, nil
}

func readManifest(path string) (*rawManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DiscoveryError{Path: path, Err: err}
	}
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &DiscoveryError{Path: path, Err: err}
	}
	return &raw, nil
}

// expandMember resolves one [workspace.members] entry to module
// directories. Glob patterns silently skip matches that are not crate
// directories; a literal entry must exist and carry a manifest.
func expandMember(rootDir, pattern string) ([]string, error) {
	full := filepath.Join(rootDir, pattern)
	if !strings.ContainsAny(pattern, "*?[") {
		if _, err := os.Stat(filepath.Join(full, manifestName)); err != nil {
			return nil, &DiscoveryError{Path: full, Err: fmt.Errorf("workspace member %q has no %s", pattern, manifestName)}
		}
		return []string{full}, nil
	}
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, &DiscoveryError{Path: full, Err: err}
	}
	var dirs []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(m, manifestName)); err != nil {
			continue
		}
		dirs = append(dirs, m)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func excludeSet(rootDir string, patterns []string) (map[string]bool, error) {
	set := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		set[abs(filepath.Join(rootDir, p))] = true
	}
	return set, nil
}

func abs(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return a
}

// buildModule flattens one decoded manifest into a Module. Table order is
// fixed (dependencies, dev, build, then targets sorted by name) and names
// are sorted within each table, since Go map iteration would otherwise
// destroy first-occurrence determinism.
func buildModule(dir, manifestPath string, raw *rawManifest) Module {
	name := filepath.Base(dir)
	if raw.Package != nil && raw.Package.Name != "" {
		name = raw.Package.Name
	}
	m := Module{Name: name, ManifestPath: manifestPath}
	m.Dependencies = append(m.Dependencies, flattenDeps(raw.Deps)...)
	m.Dependencies = append(m.Dependencies, flattenDeps(raw.DevDeps)...)
	m.Dependencies = append(m.Dependencies, flattenDeps(raw.BuildDeps)...)
	targets := make([]string, 0, len(raw.Target))
	for t := range raw.Target {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		tables := raw.Target[t]
		m.Dependencies = append(m.Dependencies, flattenDeps(tables.Deps)...)
		m.Dependencies = append(m.Dependencies, flattenDeps(tables.DevDeps)...)
		m.Dependencies = append(m.Dependencies, flattenDeps(tables.BuildDeps)...)
	}
	return m
}

func flattenDeps(table map[string]any) []Dependency {
	if len(table) == 0 {
		return nil
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	deps := make([]Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, classifyDependency(name, table[name]))
	}
	return deps
}

// classifyDependency maps a raw declaration value to its source kind.
// Unexpected shapes default to registry with no requirement; the rewrite
// stage reports them precisely if they turn out to qualify.
func classifyDependency(name string, value any) Dependency {
	switch v := value.(type) {
	case string:
		return Dependency{Name: name, Req: v, Source: SourceRegistry}
	case map[string]any:
		if _, ok := v["path"]; ok {
			return Dependency{Name: name, Source: SourcePath}
		}
		if _, ok := v["git"]; ok {
			return Dependency{Name: name, Source: SourceGit}
		}
		req, _ := v["version"].(string)
		return Dependency{Name: name, Req: req, Source: SourceRegistry}
	default:
		return Dependency{Name: name, Source: SourceRegistry}
	}
}
