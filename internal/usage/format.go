package usage

import (
	"fmt"
	"math"
	"strings"
)

//nolint:gochecknoglobals // Lookup tables
var (
	units  = [...]string{"B", "KB", "MB", "GB", "TB"}
	blocks = [...]string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉", "█"}
)

// HumanSize formats bytes with 1024-based units and two decimals, e.g. "1.46 KB".
// Values beyond the TB range stay in TB.
func HumanSize(bytes uint64) string {
	size := float64(bytes)
	unit := 0

	for size >= 1024.0 && unit < len(units)-1 {
		size /= 1024.0
		unit++
	}

	return fmt.Sprintf("%.2f %s", size, units[unit])
}

// Unit returns the unit symbol HumanSize would pick for bytes.
func Unit(bytes uint64) string {
	formatted := HumanSize(bytes)

	return formatted[strings.LastIndexByte(formatted, ' ')+1:]
}

// Bar draws ratio as a bar of width cells using eighth-block glyphs.
// The filled width is rounded to whole cells first; a partial cell is drawn
// only for a non-zero remainder and everything else is padded with blanks.
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}

	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}

	ratio = min(ratio, 1)

	filled := math.Round(ratio * float64(width))
	full := min(int(math.Floor(filled)), width)

	var bar strings.Builder

	bar.WriteString(strings.Repeat(blocks[len(blocks)-1], full))

	cells := full

	if full < width {
		remainder := filled - float64(full)
		bar.WriteString(blocks[int(math.Round(remainder*8))])

		cells++
	}

	bar.WriteString(strings.Repeat(blocks[0], width-cells))

	return bar.String()
}
