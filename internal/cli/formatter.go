package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dux/internal/mount"
	"github.com/idelchi/dux/internal/usage"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// MountBarWidth is the width of the usage bars in the mount table.
	MountBarWidth = 20
)

// DiskReport is the usage of the filesystem holding Path.
type DiskReport struct {
	mount.Stats

	Path        string  `json:"path"`
	UsedPercent float64 `json:"used_percent"`
}

// FolderReport is the ranked content of a directory.
type FolderReport struct {
	// Path is the inspected directory.
	Path string `json:"path"`
	// Detail indicates whether Entries holds every visited entry with its full path.
	Detail bool `json:"detail"`
	// Total is the size of Path in bytes.
	Total uint64 `json:"total_bytes"`
	// Entries is ranked by size, largest first.
	Entries []usage.Entry `json:"entries"`
	// Elapsed is the time taken by the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// PrintJSON outputs v in JSON format.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintDisk outputs the filesystem usage with a usage bar.
//
//nolint:forbidigo // This function prints output to the console.
func PrintDisk(report DiskReport, writer io.Writer, colors palette) error {
	w := tabwriter.NewWriter(writer, 0, 4, 1, ' ', 0)

	fmt.Fprintf(w, "\n%s\n", colors.paint(styleTitle, "Disk Usage Analysis"))
	fmt.Fprintf(w, "%s\t%s\n", colors.paint(styleBold, "Path:"), report.Path)

	rows := []struct {
		label string
		style string
		bytes uint64
	}{
		{"Total:", styleBold, report.Total},
		{"Free:", styleGreen, report.Free},
		{"Used:", styleYellow, report.Used},
	}

	// Sizes are padded before painting: tabwriter would count the escape bytes.
	width := 0
	for _, row := range rows {
		width = max(width, len(usage.HumanSize(row.bytes)))
	}

	for _, row := range rows {
		size := fmt.Sprintf("%-*s", width, usage.HumanSize(row.bytes))
		fmt.Fprintf(w, "%s\t%s (%s bytes)\n", colors.paint(styleBold, row.label),
			colors.paint(row.style, size), humanize.Comma(int64(row.bytes))) //nolint:gosec // Fits
	}

	if err := w.Flush(); err != nil {
		return err
	}

	bar := usage.Bar(report.Stats.Ratio(), DiskBarWidth)
	fmt.Fprintf(writer, "\n%s  %.2f%%\n", colors.paint(usageStyle(report.UsedPercent), bar), report.UsedPercent)

	return nil
}

// PrintMounts outputs one row per mounted filesystem.
//
//nolint:forbidigo // This function prints output to the console.
func PrintMounts(mounts []mount.Mount, writer io.Writer, colors palette) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "MOUNTPOINT\tDEVICE\tTYPE\tTOTAL\tUSED\tFREE\tUSE%\t")

	for _, m := range mounts {
		pct := m.UsedPercent()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f%%\t%s\n",
			m.Mountpoint, m.Device, m.Fstype,
			usage.HumanSize(m.Total), usage.HumanSize(m.Used), usage.HumanSize(m.Free),
			pct, colors.paint(usageStyle(pct), usage.Bar(m.Ratio(), MountBarWidth)))
	}

	return w.Flush()
}

// PrintFolder outputs the ranked folder report.
//
//nolint:forbidigo // This function prints output to the console.
func PrintFolder(report FolderReport, writer io.Writer, colors palette) error {
	painter := entryPainter{palette: colors}

	if report.Detail {
		fmt.Fprintf(writer, "Scanning detailed tree for %q... Done\n", report.Path)
		fmt.Fprintf(writer, "\nTotal size: %s\n", colors.paint(styleBold, usage.HumanSize(report.Total)))

		for _, line := range usage.Render(report.Entries, painter, 0) {
			fmt.Fprintln(writer, line)
		}
	} else {
		bytes := float64(report.Total)
		kb := bytes / 1024.0
		mb := kb / 1024.0
		gb := mb / 1024.0

		fmt.Fprintf(writer, "%s: %q\n%s | %s | %s | %s\n",
			colors.paint(styleAccent, "Path"), report.Path,
			colors.paint(styleRedBold, fmt.Sprintf("%.2f GB", gb)),
			colors.paint(styleYellow, fmt.Sprintf("%.2f MB", mb)),
			colors.paint(styleCyan, fmt.Sprintf("%.2f KB", kb)),
			colors.paint(styleDim, fmt.Sprintf("%.2f B", bytes)),
		)

		for _, line := range usage.Render(report.Entries, painter, FolderBarWidth) {
			fmt.Fprintln(writer, line)
		}
	}

	fmt.Fprintf(writer, "\nTotal: %s (%s bytes), elapsed %v\n",
		usage.HumanSize(report.Total), humanize.Comma(int64(report.Total)), //nolint:gosec // Fits
		report.Elapsed.Round(time.Millisecond))

	return nil
}
