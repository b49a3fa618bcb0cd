package manifest

import (
	"os"

	"github.com/easydep/easydep/pkg/tomledit"
	"github.com/easydep/easydep/pkg/workspace"
)

// Options configures a consolidation run.
type Options struct {
	// MinOccurrences is the number of modules a dependency must appear in
	// to qualify for consolidation. Must be at least 1.
	MinOccurrences int
	// DryRun performs the full analysis and in-memory rewrite but writes
	// nothing to disk.
	DryRun bool
	// Warnf receives requirement-conflict warnings. Optional.
	Warnf func(format string, args ...any)
}

// Report summarizes what a run found and changed.
type Report struct {
	Common         map[string]string // qualifying dependencies and their representatives
	Conflicts      []Conflict
	RootModified   bool
	UpdatedMembers []string // manifest paths of members that changed
}

// Run consolidates the project's common dependencies: it analyzes the
// inventory, rewrites the root manifest first, then rewrites each member.
// An empty qualifying set is a successful no-op. The run is fail-fast: a
// root error aborts before any member is touched, and the first member
// error aborts the rest. Only modified files are written, so file
// modification times reliably indicate what the run touched.
func Run(project *workspace.Project, opts Options) (*Report, error) {
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	common, conflicts := FindCommon(project.Modules, opts.MinOccurrences)
	report := &Report{Common: common, Conflicts: conflicts}
	for _, c := range conflicts {
		opts.Warnf("conflicting requirements for %q: keeping %q, also declared as %v", c.Name, c.Representative, c.Others)
	}
	if len(common) == 0 {
		return report, nil
	}

	modified, err := rewriteFile(project.RootManifest, opts.DryRun, func(doc *tomledit.Document) (bool, error) {
		return RewriteRoot(doc, project.RootManifest, common)
	})
	if err != nil {
		return report, err
	}
	report.RootModified = modified

	for _, m := range project.Modules {
		modified, err := rewriteFile(m.ManifestPath, opts.DryRun, func(doc *tomledit.Document) (bool, error) {
			return RewriteMember(doc, m.ManifestPath, common)
		})
		if err != nil {
			return report, err
		}
		if modified {
			report.UpdatedMembers = append(report.UpdatedMembers, m.ManifestPath)
		}
	}
	return report, nil
}

// rewriteFile runs one parse → mutate → serialize → write cycle. The file
// is rewritten in place only when the mutation changed the document and
// the run is not a dry run.
func rewriteFile(path string, dryRun bool, mutate func(*tomledit.Document) (bool, error)) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, &IOError{Path: path, Err: err}
	}
	doc, err := tomledit.Parse(data)
	if err != nil {
		return false, &ParseError{Path: path, Err: err}
	}
	modified, err := mutate(doc)
	if err != nil {
		return false, err
	}
	if !modified || dryRun {
		return modified, nil
	}
	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return false, &IOError{Path: path, Err: err}
	}
	return true, nil
}
