package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/pagelens/internal/session"
)

func (m *model) View() string {
	switch {
	case m.stage == stageReading, m.stage == stageLoading && m.session.Document() != nil:
		return m.viewReading()
	case m.stage == stageLoading:
		return m.frameWithHero(fmt.Sprintf("%s Opening %s…", m.spinner.View(), m.loadingInput))
	default:
		return m.viewStart()
	}
}

func (m *model) viewStart() string {
	form := strings.Builder{}
	form.WriteString(sectionHeaderStyle.Render("Open a document"))
	form.WriteRune('\n')
	form.WriteString(composerBoxStyle.Render(m.composer.View()))
	form.WriteRune('\n')
	form.WriteString(helperStyle.Render("Press Enter to open. Drop a file onto the terminal to paste its path."))
	if m.infoMessage != "" {
		form.WriteRune('\n')
		form.WriteString(helperStyle.Render(m.infoMessage))
	}
	if m.alert != "" {
		form.WriteRune('\n')
		form.WriteString(errorStyle.Render(m.alert))
	}
	return m.frameWithHero(form.String())
}

func (m *model) viewReading() string {
	m.refreshViewportIfDirty()
	screen := strings.Join([]string{
		m.titleLine(),
		m.statusLine(),
		m.viewport.View(),
		m.messageLine(),
		m.footerLine(),
	}, "\n")

	if sel, ok := m.session.Active(); ok {
		panel := m.panelView(sel).render(m.panelWidth(), m.panelMaxRows())
		rect := m.placePanel(sel, panel)
		screen = placeOverlay(rect.Left, rect.Top, panel, screen)
	}
	if m.helpVisible {
		box := helpBoxStyle.Render(sectionHeaderStyle.Render("Keys") + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()))
		x := maxInt((m.width-lipgloss.Width(box))/2, 0)
		y := maxInt((m.height-lipgloss.Height(box))/2, headerHeight)
		screen = placeOverlay(x, y, box, screen)
	}
	return screen
}

func (m *model) titleLine() string {
	doc := m.session.Document()
	title := titleStyle.Render("pagelens")
	if doc != nil {
		title += helperStyle.Render(fmt.Sprintf("  %s · %d pages", doc.Title(), doc.PageCount()))
	}
	return truncate.StringWithTail(title, uint(maxInt(m.width, 1)), "…")
}

func (m *model) statusLine() string {
	stats := []string{
		fmt.Sprintf("Zoom %s", m.zoom),
		fmt.Sprintf("Model %s", m.session.Model().Label()),
		m.modeLabel(),
	}
	if page := m.surface.pageAt(m.viewport.YOffset); page > 0 {
		stats = append(stats, fmt.Sprintf("Page %d/%d", page, m.session.Document().PageCount()))
	}
	if m.config.Backend != "" {
		stats = append(stats, m.config.Backend)
	}
	bar := statusBarStyle.Render(strings.Join(stats, "  •  "))
	return truncate.String(bar, uint(maxInt(m.width, 1)))
}

func (m *model) messageLine() string {
	switch {
	case m.composerOpen:
		return m.composer.View()
	case m.stage == stageLoading:
		return helperStyle.Render(fmt.Sprintf("%s Opening %s…", m.spinner.View(), m.loadingInput))
	case m.alert != "":
		return errorStyle.Render(truncate.StringWithTail(m.alert, uint(maxInt(m.width, 1)), "…"))
	default:
		return helperStyle.Render(truncate.StringWithTail(m.infoMessage, uint(maxInt(m.width, 1)), "…"))
	}
}

func (m *model) footerLine() string {
	if m.composerOpen {
		return helperStyle.Render("enter open · esc cancel")
	}
	return m.help.View(m.keys)
}

func (m *model) placePanel(sel session.Selection, panel string) session.Rect {
	return m.placeRendered(sel.Anchor, lipgloss.Height(panel))
}

func (m *model) modeLabel() string {
	if m.mode == modeHighlight {
		return "HIGHLIGHT"
	}
	return "NORMAL"
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("pagelens"),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) frameWithHero(body string) string {
	return joinNonEmpty([]string{m.heroView(), body})
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
