package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// placeOverlay draws fg over bg with its top-left cell at (x, y). Styling
// of the background on either side of fg is kept, and a wide rune cut by
// the overlay edge is replaced by spaces so the right side stays aligned.
func placeOverlay(x, y int, fg, bg string) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	fgLines := strings.Split(fg, "\n")
	fgWidth := 0
	for _, line := range fgLines {
		fgWidth = maxInt(fgWidth, ansi.StringWidth(line))
	}
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < y+len(fgLines) {
		bgLines = append(bgLines, "")
	}
	for i, fgLine := range fgLines {
		row := y + i
		bgLine := bgLines[row]
		total := ansi.StringWidth(bgLine)

		left := ansi.Cut(bgLine, 0, x)
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		if w := ansi.StringWidth(fgLine); w < fgWidth {
			fgLine += strings.Repeat(" ", fgWidth-w)
		}
		bgLines[row] = left + ansiReset + fgLine + ansiReset + cellsFrom(bgLine, x+fgWidth, total)
	}
	return strings.Join(bgLines, "\n")
}

const ansiReset = "\x1b[0m"

// cellsFrom returns the cells of s in [from, total), padding on the left
// when a wide rune straddles from.
func cellsFrom(s string, from, total int) string {
	want := total - from
	if want <= 0 {
		return ""
	}
	right := ansi.Cut(s, from, total)
	if w := ansi.StringWidth(right); w > want {
		right = ansi.Cut(s, from+1, total)
	}
	if w := ansi.StringWidth(right); w < want {
		right = strings.Repeat(" ", want-w) + right
	}
	return right
}
