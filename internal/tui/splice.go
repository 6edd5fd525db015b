package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// canvas pads s to exactly h lines of width w so layers can be placed by cell.
func canvas(s string, w, h int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	for i, ln := range lines {
		if n := ansi.StringWidth(ln); n < w {
			lines[i] = ln + strings.Repeat(" ", w-n)
		} else if n > w {
			lines[i] = ansi.Cut(ln, 0, w)
		}
	}
	return lines
}

// placeAt writes fg over lines with its top left cell at (x, y). Cells past
// the canvas are clipped and ANSI styling on either side is preserved.
func placeAt(lines []string, fg string, w, x, y int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	fgLines := strings.Split(fg, "\n")
	fgW := 0
	for _, ln := range fgLines {
		fgW = max(fgW, ansi.StringWidth(ln))
	}
	fgW = min(fgW, w-x)
	if fgW <= 0 {
		return
	}
	for i := 0; i < len(fgLines) && y+i < len(lines); i++ {
		bg := lines[y+i]
		left := ansi.Cut(bg, 0, x)
		right := ansi.Cut(bg, x+fgW, w)

		ln := fgLines[i]
		if n := ansi.StringWidth(ln); n < fgW {
			ln += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			ln = ansi.Cut(ln, 0, fgW)
		}
		lines[y+i] = left + ln + right
	}
}
