package cli

import (
	"io"
	"os"
	"strings"

	"github.com/idelchi/dux/internal/usage"
)

// ANSI styles.
const (
	styleTitle   = "1;4"
	styleBold    = "1"
	styleDim     = "2"
	styleAccent  = "1;34"
	styleRed     = "31"
	styleRedBold = "1;31"
	styleGreen   = "32"
	styleYellow  = "33"
	styleCyan    = "36"
	styleWhite   = "37"
)

// palette applies ANSI styles when enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(style, text string) string {
	if !p.enabled || style == "" {
		return text
	}

	return "\x1b[" + style + "m" + text + "\x1b[0m"
}

// colorEnabled decides whether output written to out is colored.
func colorEnabled(out io.Writer, disabled bool) bool {
	if disabled {
		return false
	}

	if v := strings.TrimSpace(os.Getenv("FORCE_COLOR")); v != "" && v != "0" {
		return true
	}

	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}

	return isTerminal(out)
}

// usageStyle colors a usage percentage: red above 85%, yellow above 60%.
func usageStyle(percent float64) string {
	switch {
	case percent > 85:
		return styleRed
	case percent > 60:
		return styleYellow
	default:
		return styleGreen
	}
}

// entryPainter colors listing lines by the unit of each size.
type entryPainter struct {
	palette palette
}

func (e entryPainter) Size(text string, bytes uint64) string {
	var style string

	switch usage.Unit(bytes) {
	case "TB":
		style = styleRedBold
	case "GB":
		style = styleRed
	case "MB":
		style = styleYellow
	case "KB":
		style = styleCyan
	default:
		style = styleWhite
	}

	return e.palette.paint(style, text)
}

func (e entryPainter) Kind(text string, isDir bool) string {
	if isDir {
		return e.palette.paint(styleAccent, text)
	}

	return e.palette.paint(styleWhite, text)
}

func (e entryPainter) Bar(text string, bytes uint64) string {
	switch usage.Unit(bytes) {
	case "TB", "GB":
		return e.palette.paint(styleRed, text)
	case "MB":
		return e.palette.paint(styleYellow, text)
	default:
		return e.palette.paint(styleCyan, text)
	}
}
