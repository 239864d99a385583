package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/session"
)

const (
	panelTitle = "Explanation"
	panelHint  = "esc close · m model"
)

// panelView is the explanation panel for one selection.
type panelView struct {
	selection session.Selection
	result    session.Result
	model     llm.ModelChoice
	spinner   string
}

// render lays the panel out at width cells, using at most maxRows rows. When
// the body does not fit it is cut and marked with an ellipsis.
func (p panelView) render(width, maxRows int) string {
	inner := width - panelBoxStyle.GetHorizontalFrameSize()
	if inner < 8 {
		inner = 8
	}
	fill := func(style lipgloss.Style, lines []string) []string {
		out := make([]string, len(lines))
		for i, line := range lines {
			out[i] = style.Copy().Width(inner).Render(line)
		}
		return out
	}

	header := fill(panelTitleStyle, []string{panelTitle + " · " + p.model.Label()})
	preview := fill(panelPreviewStyle, wrapText("“"+session.Preview(p.selection.Text, session.PreviewChars)+"”", inner))
	hint := fill(panelHintStyle, []string{panelHint})
	spacer := fill(panelHintStyle, []string{""})

	var body []string
	switch p.result.Status {
	case session.Pending:
		body = fill(panelHintStyle, []string{p.spinner + " Explaining…"})
	case session.Failed:
		body = fill(panelErrorStyle, wrapText(llm.UserMessage(p.result.Err), inner))
	default:
		body = fill(panelBodyStyle, wrapText(p.result.Text, inner))
	}

	fixed := len(header) + len(preview) + len(hint) + 2*len(spacer)
	room := maxRows - panelBoxStyle.GetVerticalFrameSize() - fixed
	if room < 1 {
		room = 1
	}
	if len(body) > room {
		body = append(body[:room-1:room-1], fill(panelHintStyle, []string{"…"})...)
	}

	rows := make([]string, 0, fixed+len(body))
	rows = append(rows, header...)
	rows = append(rows, preview...)
	rows = append(rows, spacer...)
	rows = append(rows, body...)
	rows = append(rows, spacer...)
	rows = append(rows, hint...)
	return panelBoxStyle.Render(strings.Join(rows, "\n"))
}

func wrapText(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{""}
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		wrapped := wrap.String(wordwrap.String(strings.TrimSpace(para), width), width)
		for _, line := range strings.Split(wrapped, "\n") {
			out = append(out, strings.TrimRight(line, " "))
		}
	}
	return out
}
