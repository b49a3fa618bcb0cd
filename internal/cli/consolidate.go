package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/easydep/easydep/pkg/manifest"
	"github.com/easydep/easydep/pkg/workspace"
)

// consolidateOpts holds the settings for a consolidation run.
type consolidateOpts struct {
	minOccurrences int
	workspaceRoot  string
	quiet          bool
	dryRun         bool
}

// runConsolidate discovers the workspace under the configured root,
// consolidates the qualifying dependencies, and reports what changed.
func runConsolidate(ctx context.Context, opts consolidateOpts) error {
	logger := loggerFromContext(ctx)

	if opts.minOccurrences < 1 {
		return fmt.Errorf("min-occurrences must be at least 1, got %d", opts.minOccurrences)
	}

	rootDir, err := filepath.Abs(opts.workspaceRoot)
	if err != nil {
		return fmt.Errorf("resolving workspace root: %w", err)
	}
	logger.Debugf("discovering workspace under %s", rootDir)

	var spinner *Spinner
	if !opts.quiet {
		spinner = newSpinner(ctx, "Scanning workspace manifests...")
		spinner.Start()
	}

	prog := newProgress(logger)
	project, err := workspace.Discover(rootDir)
	if err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return err
	}
	prog.done("workspace discovery")
	logger.Debugf("found %d module(s)", len(project.Modules))

	report, err := manifest.Run(project, manifest.Options{
		MinOccurrences: opts.minOccurrences,
		DryRun:         opts.dryRun,
		Warnf:          logger.Warnf,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if opts.quiet {
		return nil
	}
	printReport(project, report, opts.dryRun)
	return nil
}

// printReport renders the run outcome to stdout.
func printReport(project *workspace.Project, report *manifest.Report, dryRun bool) {
	if len(report.Common) == 0 {
		printInfo("No common dependencies found across workspace members.")
		return
	}

	names := make([]string, 0, len(report.Common))
	for name := range report.Common {
		names = append(names, name)
	}
	sort.Strings(names)

	printSuccess("Consolidated %d common %s", len(names), pluralize("dependency", "dependencies", len(names)))
	for _, name := range names {
		printDetail("%s %s", StyleHighlight.Render(name), report.Common[name])
	}

	for _, c := range report.Conflicts {
		printWarning("%s has conflicting requirements: kept %q, also declared as %v", c.Name, c.Representative, c.Others)
	}

	qualifier := ""
	if dryRun {
		qualifier = " (dry run, nothing written)"
	}
	if report.RootModified {
		printInfo("Updated root manifest%s", qualifier)
		printFile(relToRoot(project.RootDir, project.RootManifest))
	} else {
		printInfo("Root manifest already up to date")
	}
	if len(report.UpdatedMembers) > 0 {
		printInfo("Updated %d member %s%s", len(report.UpdatedMembers), pluralize("manifest", "manifests", len(report.UpdatedMembers)), qualifier)
		for _, path := range report.UpdatedMembers {
			printFile(relToRoot(project.RootDir, path))
		}
	}
}

// relToRoot shortens path relative to the workspace root for display,
// falling back to the absolute path when it cannot be made relative.
func relToRoot(rootDir, path string) string {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil {
		return path
	}
	return rel
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}
