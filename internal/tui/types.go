package tui

import "time"

type stage int

const (
	stageStart stage = iota
	stageLoading
	stageReading
)

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeHighlight
)

const heroTagline = "Select any passage to have it explained."

const (
	headerHeight = 2
	footerHeight = 2

	defaultWidth   = 80
	defaultHeight  = 24
	minSurfaceRows = 3
	panelMinHeight = 6

	explainTimeout = 60 * time.Second
	loadTimeout    = 90 * time.Second
)

const (
	composerPlaceholder = "Path to a PDF, a dropped file, or an https:// URL…"
	composerCharLimit   = 2048
)

// cellPos is a position on the rendered surface: a content line and a
// terminal column within it.
type cellPos struct {
	line int
	col  int
}

func (p cellPos) before(o cellPos) bool {
	return p.line < o.line || (p.line == o.line && p.col < o.col)
}

// textRange is an inclusive range of surface cells.
type textRange struct {
	start cellPos
	end   cellPos
}

func newTextRange(a, b cellPos) textRange {
	if b.before(a) {
		a, b = b, a
	}
	return textRange{start: a, end: b}
}

// cols returns the inclusive column span of r on line, or ok=false when
// the line is outside r.
func (r textRange) cols(line, width int) (from, to int, ok bool) {
	if line < r.start.line || line > r.end.line {
		return 0, 0, false
	}
	from, to = 0, width-1
	if line == r.start.line {
		from = r.start.col
	}
	if line == r.end.line {
		to = r.end.col
	}
	if to >= width {
		to = width - 1
	}
	if from > to {
		return 0, 0, false
	}
	return from, to, true
}

type dragState struct {
	active bool
	origin cellPos
	cursor cellPos
}
