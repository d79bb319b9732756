package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dux/internal/logging"
	"github.com/idelchi/dux/internal/usage"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options configures the commands.
type Options struct {
	// Path is the directory or filesystem to inspect.
	Path string
	// Detail lists every file and directory instead of the direct children.
	Detail bool
	// All lists every mounted physical filesystem.
	All bool
	// Output represents output format (table or json).
	Output string
	// Top limits the number of listed entries (0=all).
	Top int
	// MinSize hides entries smaller than this many bytes.
	MinSize uint64
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Pseudo contains the top-level directory names that are never traversed.
	Pseudo []string
	// Debug indicates whether debug output is enabled.
	Debug bool
	// NoColor disables colored output.
	NoColor bool
	// Log configures diagnostics.
	Log logging.Config
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json"}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command with its subcommands.
func (c CLI) Command() *cobra.Command {
	options := Options{Log: logging.Default()}

	root := &cobra.Command{
		Use:   "dux",
		Short: "Report filesystem and directory usage",
		Long: heredoc.Doc(`
			dux reports storage usage.

			'disk' shows capacity, used and free space of the filesystem holding a path.
			'folder' ranks the contents of a directory by size.

			Pseudo-filesystems directly below the root (/proc, /sys, /dev, /run) are never traversed.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobal(root.PersistentFlags(), &options)

	root.AddCommand(diskCommand(&options), folderCommand(&options))

	return root
}

// bindGlobal registers the flags shared by all subcommands.
func bindGlobal(flags *pflag.FlagSet, options *Options) {
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.StringVar(&options.Log.Level, "log-level", options.Log.Level,
		"Diagnostic level: trace, debug, info, warn, error")
	flags.StringVar(&options.Log.File, "log-file", "", "Write diagnostics as JSON to this file (rotated)")
	flags.StringSliceVar(&options.Pseudo, "pseudo", usage.DefaultPseudoFilesystems,
		"Top-level directories that are never traversed")
	flags.BoolVar(&options.NoColor, "no-color", false, "Disable colored output")
	flags.SortFlags = false
}

func diskCommand(options *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disk [path]",
		Short: "Show capacity, used and free space of a filesystem",
		Long: heredoc.Doc(`
			Show total, free and used space of the filesystem containing path,
			together with a usage bar.

			Use --all to list every mounted physical filesystem instead.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				options.Path = args[0]
			}

			if options.Path == "" && !options.All {
				return errors.New("path is required unless --all is set")
			}

			if err := validateOutput(options.Output); err != nil {
				return err
			}

			return runDisk(cmd, *options)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&options.All, "all", "a", false, "List every mounted physical filesystem")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	flags.SortFlags = false

	return cmd
}

func folderCommand(options *Options) *cobra.Command {
	var minSizeStr string

	cmd := &cobra.Command{
		Use:   "folder <path>",
		Short: "Rank the contents of a directory by size",
		Long: heredoc.Doc(`
			Without --detail, list the direct children of path with their total size
			and a bar relative to the largest one, preceded by the size of path itself.

			With --detail, walk the whole tree and list every file and directory
			with its own size, largest first.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Path = args[0]

			if err := validateOutput(options.Output); err != nil {
				return err
			}

			if options.Top < 0 {
				return errors.New("top cannot be negative")
			}

			// Parse minSize string to bytes
			if minSizeStr != "" {
				size, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = size
			}

			return runFolder(cmd, *options)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&options.Detail, "detail", "d", false, "List every file and directory below path")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	flags.IntVarP(&options.Top, "top", "t", 0, "Number of entries to display (0=all)")
	flags.StringVar(&minSizeStr, "min-size", "", "Hide entries smaller than this (e.g., 1MB)")
	flags.StringSliceVarP(&options.Excludes, "exclude", "e", nil, "Regex patterns to exclude")
	flags.SortFlags = false

	return cmd
}

func validateOutput(output string) error {
	if !slices.Contains(allowedOutputs, output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
	}

	return nil
}
