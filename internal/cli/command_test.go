package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dux/internal/mount"
	"github.com/idelchi/dux/internal/usage"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	stdout, _, err := executeWithStderr(t, args...)

	return stdout, err
}

// executeWithStderr runs the root command with args and returns stdout and stderr.
func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New("test").Command()
	cmd.SetArgs(append(args, "--no-color"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func scenario(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	for rel, size := range map[string]int{"a": 500, "b": 1500, "s/c": 1_048_576} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	}

	return dir
}

func TestFolderTable(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	out, err := execute(t, "folder", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Path: "+`"`+dir+`"`)
	assert.Contains(t, out, "0.00 GB | 1.00 MB | 1025.95 KB | 1050576.00 B")
	assert.Contains(t, out, "Total: 1.00 MB (1,050,576 bytes)")

	lines := strings.Split(out, "\n")

	var listing []string

	for _, line := range lines {
		if strings.Contains(line, "DIR ") || strings.Contains(line, "FILE") {
			listing = append(listing, line)
		}
	}

	require.Len(t, listing, 3)
	assert.True(t, strings.HasPrefix(listing[0], "   1.00 MB  DIR   "+strings.Repeat("█", FolderBarWidth)), listing[0])
	assert.True(t, strings.HasSuffix(listing[0], "  s"), listing[0])
	assert.True(t, strings.HasPrefix(listing[1], "   1.46 KB  FILE"), listing[1])
	assert.True(t, strings.HasSuffix(listing[2], "  a"), listing[2])
}

func TestFolderDetailJSON(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	out, err := execute(t, "folder", dir, "--detail", "-o", "json")
	require.NoError(t, err)

	var report FolderReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.True(t, report.Detail)
	assert.Equal(t, uint64(1_050_576), report.Total)
	assert.Equal(t, []usage.Entry{
		{Path: filepath.Join(dir, "s", "c"), Size: 1_048_576},
		{Path: filepath.Join(dir, "s"), Size: 1_048_576, IsDir: true},
		{Path: filepath.Join(dir, "b"), Size: 1500},
		{Path: filepath.Join(dir, "a"), Size: 500},
	}, report.Entries)
}

func TestFolderDetailTable(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	out, err := execute(t, "folder", dir, "-d")
	require.NoError(t, err)

	assert.Contains(t, out, "Total size: 1.00 MB")
	assert.Contains(t, out, "  500.00 B  FILE  "+filepath.Join(dir, "a"))
}

func TestFolderLimits(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	out, err := execute(t, "folder", dir, "-o", "json", "--top", "1", "--min-size", "1KB")
	require.NoError(t, err)

	var report FolderReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, []usage.Entry{{Path: "s", Size: 1_048_576, IsDir: true}}, report.Entries)
	assert.Equal(t, uint64(1_050_576), report.Total)
}

func TestFolderExclude(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	out, err := execute(t, "folder", dir, "-o", "json", "-e", `/s$`)
	require.NoError(t, err)

	var report FolderReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, uint64(2000), report.Total)
	assert.Len(t, report.Entries, 2)
}

func TestFolderErrors(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	_, err := execute(t, "folder", filepath.Join(dir, "missing"))
	require.Error(t, err)

	_, err = execute(t, "folder", dir, "-o", "xml")
	require.ErrorContains(t, err, "invalid output format")

	_, err = execute(t, "folder", dir, "--min-size", "lots")
	require.ErrorContains(t, err, "invalid min-size")

	_, err = execute(t, "folder", dir, "-e", "(")
	require.ErrorContains(t, err, "compiling exclusion pattern")

	_, err = execute(t, "folder", dir, "--top", "-1")
	require.Error(t, err)

	_, err = execute(t, "folder")
	require.Error(t, err)
}

func TestDiskJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := execute(t, "disk", dir, "-o", "json")
	require.NoError(t, err)

	var report DiskReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, dir, report.Path)
	assert.Positive(t, report.Total)
	assert.Equal(t, report.Total-report.Free, report.Used)
	assert.InDelta(t, report.Stats.UsedPercent(), report.UsedPercent, 1e-9)
}

func TestFolderDebugLogsSettings(t *testing.T) {
	t.Parallel()

	dir := scenario(t)

	_, stderr, err := executeWithStderr(t, "folder", dir, "--debug", "--pseudo", "proc,sys")
	require.NoError(t, err)

	assert.Contains(t, stderr, "scan settings")
	assert.Contains(t, stderr, "proc")
	assert.Contains(t, stderr, "sys")
}

func TestDiskAllJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "disk", "--all", "-o", "json")
	require.NoError(t, err)

	var mounts []mount.Mount
	require.NoError(t, json.Unmarshal([]byte(out), &mounts))

	for _, m := range mounts {
		assert.NotContains(t, []string{"/proc", "/sys", "/dev", "/run"}, m.Mountpoint)
		assert.Equal(t, m.Total-m.Free, m.Used, m.Mountpoint)
	}
}

func TestVisibleMounts(t *testing.T) {
	t.Parallel()

	mounts := []mount.Mount{
		{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Stats: mount.NewStats(1000, 300)},
		{Device: "proc", Mountpoint: "/proc", Fstype: "proc"},
		{Device: "tmpfs", Mountpoint: "/run", Fstype: "tmpfs"},
		{Device: "tmpfs", Mountpoint: "/run/user/1000", Fstype: "tmpfs"},
		{Device: "/dev/sdb1", Mountpoint: "/srv/sys", Fstype: "xfs"},
	}

	visible := visibleMounts(mounts, usage.DefaultClassifier(), zerolog.Nop())

	mountpoints := make([]string, 0, len(visible))
	for _, m := range visible {
		mountpoints = append(mountpoints, m.Mountpoint)
	}

	assert.Equal(t, []string{"/", "/run/user/1000", "/srv/sys"}, mountpoints)
	assert.Len(t, visibleMounts(mounts, usage.NewClassifier("/"), zerolog.Nop()), len(mounts))
	assert.Empty(t, visibleMounts(nil, usage.DefaultClassifier(), zerolog.Nop()))
}

func TestDiskErrors(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "disk", filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, mount.ErrStat)

	_, err = execute(t, "disk")
	require.ErrorContains(t, err, "path is required")
}

func TestPrintDisk(t *testing.T) {
	t.Parallel()

	stats := mount.NewStats(1000, 300)

	var buf bytes.Buffer
	require.NoError(t, PrintDisk(DiskReport{Path: "/data", Stats: stats, UsedPercent: stats.UsedPercent()},
		&buf, palette{}))

	out := buf.String()
	assert.Contains(t, out, "Disk Usage Analysis")
	assert.Contains(t, out, "1000.00 B")
	assert.Contains(t, out, "700.00 B")
	assert.Contains(t, out, strings.Repeat("█", 28)+strings.Repeat(" ", 12)+"  70.00%")
}

func TestPrintDiskAlignsColoredColumns(t *testing.T) {
	t.Parallel()

	stats := mount.NewStats(5<<30, 500)

	var buf bytes.Buffer
	require.NoError(t, PrintDisk(DiskReport{Path: "/data", Stats: stats, UsedPercent: stats.UsedPercent()},
		&buf, palette{enabled: true}))

	ansi := regexp.MustCompile("\x1b\\[[0-9;]*m")

	columns := map[string]int{}

	for _, line := range strings.Split(ansi.ReplaceAllString(buf.String(), ""), "\n") {
		for _, label := range []string{"Total:", "Free:", "Used:"} {
			if strings.HasPrefix(line, label) {
				columns[label] = strings.Index(line, "(")
			}
		}
	}

	require.Len(t, columns, 3)
	assert.Equal(t, columns["Total:"], columns["Free:"])
	assert.Equal(t, columns["Total:"], columns["Used:"])
}

func TestPrintMounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintMounts([]mount.Mount{
		{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Stats: mount.NewStats(0, 0)},
	}, &buf, palette{}))

	assert.Contains(t, buf.String(), "MOUNTPOINT")
	assert.Contains(t, buf.String(), "0.00%")
}

func TestLimit(t *testing.T) {
	t.Parallel()

	entries := []usage.Entry{{Path: "x", Size: 30}, {Path: "y", Size: 20}, {Path: "z", Size: 10}}

	assert.Equal(t, entries, limit(entries, 0, 0))
	assert.Equal(t, entries[:2], limit(entries, 15, 0))
	assert.Equal(t, entries[:1], limit(entries, 0, 1))
	assert.Empty(t, limit(entries, 100, 0))
}

func TestPalette(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", palette{}.paint(styleRed, "x"))
	assert.Equal(t, "\x1b[31mx\x1b[0m", palette{enabled: true}.paint(styleRed, "x"))
	assert.Equal(t, styleRed, usageStyle(90))
	assert.Equal(t, styleYellow, usageStyle(70))
	assert.Equal(t, styleGreen, usageStyle(10))
	assert.False(t, colorEnabled(&bytes.Buffer{}, true))
}
