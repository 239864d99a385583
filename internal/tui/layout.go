package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/csheth/pagelens/internal/document"
)

// surfaceLine is one row of the reading surface. Only selectable rows carry
// document text; page rules and spacers are layout.
type surfaceLine struct {
	text       string
	page       int
	selectable bool
	rule       bool
}

// surface is the laid out document: every page wrapped to the reading
// column and centred in the terminal.
type surface struct {
	lines   []surfaceLine
	columns int
	margin  int
}

const emptyPageNotice = "(no extractable text on this page)"

func buildSurface(doc *document.Document, columns, width int) surface {
	s := surface{columns: columns}
	if width > columns {
		s.margin = (width - columns) / 2
	}
	if doc == nil {
		return s
	}
	total := doc.PageCount()
	for idx, page := range doc.Pages {
		if idx > 0 {
			s.lines = append(s.lines, surfaceLine{page: page.Number})
		}
		label := fmt.Sprintf(" Page %d of %d ", page.Number, total)
		s.lines = append(s.lines, surfaceLine{
			text: lipgloss.PlaceHorizontal(columns, lipgloss.Center, label, lipgloss.WithWhitespaceChars("─")),
			page: page.Number,
			rule: true,
		})
		if len(page.Lines) == 0 {
			s.lines = append(s.lines, surfaceLine{text: emptyPageNotice, page: page.Number})
			continue
		}
		for _, line := range page.Lines {
			if strings.TrimSpace(line) == "" {
				s.lines = append(s.lines, surfaceLine{page: page.Number})
				continue
			}
			for _, wrapped := range wrapLine(line, columns) {
				s.lines = append(s.lines, surfaceLine{text: wrapped, page: page.Number, selectable: true})
			}
		}
	}
	return s
}

// wrapLine breaks on words first and hard-wraps anything still too wide.
func wrapLine(line string, columns int) []string {
	wrapped := wrap.String(wordwrap.String(line, columns), columns)
	parts := strings.Split(wrapped, "\n")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimRight(part, " ")
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (s surface) lineCount() int {
	return len(s.lines)
}

// pageAt returns the page number shown on line.
func (s surface) pageAt(line int) int {
	if len(s.lines) == 0 {
		return 0
	}
	if line < 0 {
		line = 0
	}
	if line >= len(s.lines) {
		line = len(s.lines) - 1
	}
	return s.lines[line].page
}

// lineSpan returns the selected columns of line, clipped to its text.
func (s surface) lineSpan(r textRange, line int) (from, to int, ok bool) {
	if line < 0 || line >= len(s.lines) || !s.lines[line].selectable {
		return 0, 0, false
	}
	return r.cols(line, runewidth.StringWidth(s.lines[line].text))
}

// text returns the document text covered by r. Wrapped rows are joined
// with single spaces.
func (s surface) text(r textRange) string {
	var parts []string
	for line := r.start.line; line <= r.end.line; line++ {
		from, to, ok := s.lineSpan(r, line)
		if !ok {
			continue
		}
		_, mid, _ := splitCells(s.lines[line].text, from, to)
		if mid = strings.TrimSpace(mid); mid != "" {
			parts = append(parts, mid)
		}
	}
	return strings.Join(parts, " ")
}

// render draws the surface with r highlighted. cursor is styled as the
// current line when non-negative.
func (s surface) render(r textRange, hasRange bool, cursor int) string {
	if len(s.lines) == 0 {
		return ""
	}
	pad := strings.Repeat(" ", s.margin)
	out := make([]string, len(s.lines))
	for idx, line := range s.lines {
		var body string
		switch {
		case line.rule:
			body = pageRuleStyle.Render(line.text)
		case !line.selectable:
			body = helperStyle.Render(line.text)
		case idx == cursor:
			body = currentLineStyle.Render(line.text)
		default:
			body = line.text
			if hasRange {
				if from, to, ok := s.lineSpan(r, idx); ok {
					before, mid, after := splitCells(line.text, from, to)
					body = before + selectionStyle.Render(mid) + after
				}
			}
		}
		out[idx] = pad + body
	}
	return strings.Join(out, "\n")
}

// splitCells cuts s around the inclusive cell columns [from, to]. A wide
// rune belongs to the segment its first cell falls in.
func splitCells(s string, from, to int) (before, mid, after string) {
	var b, m, a strings.Builder
	col := 0
	for _, r := range s {
		switch {
		case col < from:
			b.WriteRune(r)
		case col <= to:
			m.WriteRune(r)
		default:
			a.WriteRune(r)
		}
		col += runewidth.RuneWidth(r)
	}
	return b.String(), m.String(), a.String()
}
