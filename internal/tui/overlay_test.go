package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPlaceOverlay(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		fg   string
		bg   string
		want string
	}{
		{"middle", 2, 1, "XX", "abcdef\nghijkl", "abcdef\nghXXkl"},
		{"pads short rows", 4, 0, "XY", "ab", "ab  XY"},
		{"extends below", 0, 1, "A\nB", "abc", "abc\nA\nB"},
		{"wide rune under right edge", 2, 0, "X", "漢字ab", "漢X ab"},
		{"wide rune split at right edge", 0, 0, "XXX", "ab中文字cdef", "XXX 文字cdef"},
		{"wide rune split at left edge", 1, 0, "X", "中ab", " Xab"},
		{"ragged foreground", 1, 0, "XX\nY", "abcd\nefgh", "aXXd\neY h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(placeOverlay(tt.x, tt.y, tt.fg, tt.bg))
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			bgRows := strings.Split(tt.bg, "\n")
			for i, row := range strings.Split(got, "\n") {
				if i < len(bgRows) && ansi.StringWidth(bgRows[i]) > ansi.StringWidth(row) {
					t.Fatalf("row %d shrank: %q", i, row)
				}
			}
		})
	}
}

func TestPlaceOverlayKeepsBackgroundStyling(t *testing.T) {
	got := placeOverlay(0, 0, "XX", "\x1b[1mbold\x1b[0m tail")
	if stripANSI(got) != "XXld tail" {
		t.Fatalf("unexpected text %q", stripANSI(got))
	}
	right := got[strings.Index(got, "XX"+ansiReset)+len("XX"+ansiReset):]
	if !strings.Contains(right, "\x1b[1m") {
		t.Fatalf("bold should carry over to the right side, got %q", right)
	}
}
