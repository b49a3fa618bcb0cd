package cli

import (
	"context"
	"os"
	"strconv"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/easydep/easydep/pkg/buildinfo"
)

// Environment variables honored as flag defaults. Flags given explicitly
// on the command line always win.
const (
	envMinOccurrences = "EASYDEP_MIN_OCCURRENCES"
	envWorkspaceRoot  = "EASYDEP_WORKSPACE_ROOT"
	envQuiet          = "EASYDEP_QUIET"
)

// Execute runs the easydep CLI and returns an error if the run fails.
//
// The root command performs the consolidation itself; the only subcommand
// is completion. Logging goes to stderr at info level, debug with
// --verbose, errors only with --quiet. The logger is attached to the
// context and retrieved by the command via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := consolidateOpts{
		minOccurrences: envInt(envMinOccurrences, 2),
		workspaceRoot:  envStr(envWorkspaceRoot, "."),
		quiet:          envBool(envQuiet),
	}

	root := &cobra.Command{
		Use:   "easydep",
		Short: "Easydep consolidates duplicated workspace dependencies",
		Long: `Easydep scans a Cargo workspace for dependencies declared by several
members, promotes them into the root manifest's [workspace.dependencies]
table, and rewrites each member declaration to delegate with
workspace = true. Comments, formatting, and unrelated attributes are
preserved; only the version pins move.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			if opts.quiet {
				level = charmlog.ErrorLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(cmd.Context(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().IntVarP(&opts.minOccurrences, "min-occurrences", "m", opts.minOccurrences, "minimum number of members a dependency must appear in")
	root.Flags().StringVarP(&opts.workspaceRoot, "workspace-root", "w", opts.workspaceRoot, "path to the workspace root")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", opts.quiet, "suppress all output")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "analyze and report without writing any file")

	root.AddCommand(completionCommand())

	return root.ExecuteContext(ctx)
}

// envStr returns the environment value for key, or fallback when unset.
func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt returns the environment value for key parsed as an integer, or
// fallback when unset or unparseable.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBool reports whether key is set to a truthy value.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
