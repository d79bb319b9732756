package usage

import (
	"cmp"
	"fmt"
	"slices"
)

// Entry is a single file or directory with its size in bytes.
// For directories the size is the sum of everything below them.
type Entry struct {
	// Path is the entry name (top-level listing) or its full path (detailed listing).
	Path string `json:"path"`
	// Size is the size in bytes.
	Size uint64 `json:"size"`
	// IsDir indicates whether the entry is a directory.
	IsDir bool `json:"is_dir"`
}

// Painter decorates the parts of a rendered line, e.g. with terminal colors.
type Painter interface {
	// Size decorates the right-aligned size column; bytes is the raw size.
	Size(text string, bytes uint64) string
	// Kind decorates the kind tag.
	Kind(text string, isDir bool) string
	// Bar decorates a proportion bar; bytes is the raw size.
	Bar(text string, bytes uint64) string
}

// Plain is a Painter that leaves text untouched.
type Plain struct{}

// Size returns text unchanged.
func (Plain) Size(text string, _ uint64) string { return text }

// Kind returns text unchanged.
func (Plain) Kind(text string, _ bool) string { return text }

// Bar returns text unchanged.
func (Plain) Bar(text string, _ uint64) string { return text }

// Rank returns a copy of entries sorted by size, largest first.
// Entries of equal size keep their input order.
func Rank(entries []Entry) []Entry {
	ranked := slices.Clone(entries)

	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return cmp.Compare(b.Size, a.Size)
	})

	return ranked
}

// Render formats entries one per line in their given order.
// When barWidth is positive each line carries a bar relative to the largest entry.
func Render(entries []Entry, painter Painter, barWidth int) []string {
	if painter == nil {
		painter = Plain{}
	}

	var largest uint64 = 1
	for _, entry := range entries {
		largest = max(largest, entry.Size)
	}

	lines := make([]string, 0, len(entries))

	for _, entry := range entries {
		size := painter.Size(fmt.Sprintf("%10s", HumanSize(entry.Size)), entry.Size)
		kind := painter.Kind(kindTag(entry.IsDir), entry.IsDir)

		if barWidth <= 0 {
			lines = append(lines, fmt.Sprintf("%s  %s  %s", size, kind, entry.Path))

			continue
		}

		bar := painter.Bar(Bar(float64(entry.Size)/float64(largest), barWidth), entry.Size)
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s", size, kind, bar, entry.Path))
	}

	return lines
}

// SortAndRender ranks entries and renders them.
func SortAndRender(entries []Entry, painter Painter, barWidth int) []string {
	return Render(Rank(entries), painter, barWidth)
}

func kindTag(isDir bool) string {
	if isDir {
		return "DIR "
	}

	return "FILE"
}
