package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idelchi/dux/internal/logging"
	"github.com/idelchi/dux/internal/mount"
	"github.com/idelchi/dux/internal/usage"
)

const (
	// FolderBarWidth is the width of the bars in the folder listing.
	FolderBarWidth = 30
	// DiskBarWidth is the width of the usage bar of the disk report.
	DiskBarWidth = 40
)

//nolint:gochecknoglobals // Spinner frames
var spinner = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// session carries what a command needs to produce output.
type session struct {
	out     io.Writer
	errOut  io.Writer
	log     zerolog.Logger
	palette palette
	// progress is true when a status line may be drawn on errOut.
	progress bool
}

func newSession(cmd *cobra.Command, options Options) session {
	if options.Debug {
		options.Log.Level = "debug"
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	return session{
		out:      out,
		errOut:   errOut,
		log:      logging.New(options.Log, errOut),
		palette:  palette{enabled: colorEnabled(out, options.NoColor)},
		progress: options.Output != "json" && !options.Debug && isTerminal(errOut),
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// watch draws a spinner with the running file and byte counts until the returned
// function is called, which also clears the status line.
func (r session) watch(ctx context.Context, agg *usage.Aggregator, label string) func() {
	if !r.progress {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	// Hide cursor for in-place updates; restore on exit.
	fmt.Fprint(r.errOut, "\033[?25l")

	frame := 0

	done := agg.Watch(ctx, func(files, bytes int64) {
		msg := fmt.Sprintf("%c %s… %d files, %s",
			spinner[frame%len(spinner)], label, files,
			humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
		frame++

		fmt.Fprintf(r.errOut, "\r\033[2K%s\r", msg)
	}, usage.DefaultProgressInterval)

	return func() {
		cancel()
		<-done
		fmt.Fprint(r.errOut, "\r\033[2K\r\033[?25h")
	}
}

func runDisk(cmd *cobra.Command, options Options) error {
	r := newSession(cmd, options)
	ctx := cmd.Context()

	if options.All {
		classifier := usage.NewClassifier(string(filepath.Separator), options.Pseudo...)

		mounts, err := mount.List(ctx)
		if err != nil {
			return err
		}

		visible := visibleMounts(mounts, classifier, r.log)

		if options.Output == "json" {
			return PrintJSON(visible, r.out)
		}

		return PrintMounts(visible, r.out, r.palette)
	}

	stats, err := mount.Query(ctx, options.Path)
	if err != nil {
		return err
	}

	report := DiskReport{
		Path:        options.Path,
		Stats:       stats,
		UsedPercent: stats.UsedPercent(),
	}

	if options.Output == "json" {
		return PrintJSON(report, r.out)
	}

	return PrintDisk(report, r.out, r.palette)
}

func runFolder(cmd *cobra.Command, options Options) error {
	r := newSession(cmd, options)

	excludes := make([]*regexp.Regexp, 0, len(options.Excludes))

	for _, p := range options.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	classifier := usage.NewClassifier(string(filepath.Separator), options.Pseudo...)

	r.log.Debug().
		Strs("pseudo", classifier.Names()).
		Strs("exclude", options.Excludes).
		Bool("detail", options.Detail).
		Msg("scan settings")

	agg := usage.New(usage.Config{
		Classifier: classifier,
		Excludes:   excludes,
		Logger:     r.log.With().Str("component", "usage").Logger(),
	})

	report := FolderReport{
		Path:   options.Path,
		Detail: options.Detail,
	}

	start := time.Now()
	stop := r.watch(cmd.Context(), agg, "Scanning "+options.Path)

	if options.Detail {
		total, entries, err := agg.DetailedScan(options.Path)
		stop()

		if err != nil {
			return err
		}

		report.Total = total
		report.Entries = usage.Rank(entries)
	} else {
		entries, err := agg.Children(options.Path)
		if err != nil {
			stop()

			return err
		}

		report.Total = agg.ShallowSize(options.Path)
		report.Entries = usage.Rank(entries)

		stop()
	}

	report.Elapsed = time.Since(start)
	report.Entries = limit(report.Entries, options.MinSize, options.Top)

	files, bytes := agg.Progress()
	r.log.Info().
		Str("path", options.Path).
		Int64("files", files).
		Int64("bytes", bytes).
		Dur("elapsed", report.Elapsed).
		Msg("scan finished")

	if options.Output == "json" {
		return PrintJSON(report, r.out)
	}

	return PrintFolder(report, r.out, r.palette)
}

// visibleMounts leaves out mounts whose mountpoint is an excluded pseudo-filesystem root.
func visibleMounts(mounts []mount.Mount, classifier usage.Classifier, log zerolog.Logger) []mount.Mount {
	visible := make([]mount.Mount, 0, len(mounts))

	for _, m := range mounts {
		if classifier.Excluded(m.Mountpoint) {
			log.Debug().Str("mountpoint", m.Mountpoint).Msg("skipping pseudo-filesystem")

			continue
		}

		visible = append(visible, m)
	}

	return visible
}

// limit drops ranked entries below minSize and keeps at most top of them (0=all).
func limit(entries []usage.Entry, minSize uint64, top int) []usage.Entry {
	kept := make([]usage.Entry, 0, len(entries))

	for _, entry := range entries {
		if entry.Size < minSize {
			continue
		}

		kept = append(kept, entry)
	}

	if top > 0 && len(kept) > top {
		kept = kept[:top]
	}

	return kept
}
