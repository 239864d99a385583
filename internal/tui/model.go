package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/csheth/pagelens/internal/config"
	"github.com/csheth/pagelens/internal/document"
	"github.com/csheth/pagelens/internal/llm"
	"github.com/csheth/pagelens/internal/session"
)

// Explainer turns a passage into an explanation. Both llm.Explainer and
// explainclient.Client satisfy it.
type Explainer interface {
	Explain(ctx context.Context, text string, model llm.ModelChoice) (string, error)
}

// Config wires runtime options into the TUI program.
type Config struct {
	Explainer       Explainer
	Model           llm.ModelChoice
	ReadingColumns  int
	DocumentOptions document.Options
	// InitialInput is opened on start when set.
	InitialInput string
	// Backend labels where explanations come from in the status bar.
	Backend string
	Logger  *zap.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	return newModel(cfg)
}

type model struct {
	config Config
	keys   keyMap
	logger *zap.Logger
	jobs   *jobBus

	stage   stage
	mode    interactionMode
	session *session.Session
	zoom    document.Zoom

	composer     textinput.Model
	composerOpen bool
	spinner      spinner.Model
	viewport     viewport.Model
	help         help.Model
	helpVisible  bool

	width  int
	height int

	surface       surface
	layoutDirty   bool
	viewportDirty bool

	cursorLine      int
	selectionAnchor int
	drag            dragState
	highlight       textRange
	hasHighlight    bool

	loadSeq      int
	loadingInput string
	alert        string
	infoMessage  string
}

func newModel(cfg Config) *model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ReadingColumns <= 0 {
		cfg.ReadingColumns = config.DefaultReadingColumns
	}

	composer := textinput.New()
	composer.Placeholder = composerPlaceholder
	composer.CharLimit = composerCharLimit
	composer.Width = 60
	composer.Prompt = "› "
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(defaultWidth, defaultHeight-headerHeight-footerHeight)
	vp.MouseWheelEnabled = true

	logger := cfg.Logger.With(zap.String("component", "tui"))
	m := &model{
		config:        cfg,
		keys:          defaultKeys,
		logger:        logger,
		jobs:          newJobBus(cfg.Logger),
		stage:         stageStart,
		session:       session.New(cfg.Model),
		zoom:          document.DefaultZoom,
		composer:      composer,
		composerOpen:  true,
		spinner:       spin,
		viewport:      vp,
		help:          help.New(),
		width:         defaultWidth,
		height:        defaultHeight,
		layoutDirty:   true,
		viewportDirty: true,
		cursorLine:    -1,
		infoMessage:   "Enter a PDF path or URL to begin.",
	}
	return m
}

func (m *model) Init() tea.Cmd {
	if input := strings.TrimSpace(m.config.InitialInput); input != "" {
		return m.startLoad(input)
	}
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case jobSignalMsg:
		m.logger.Debug("job started", zap.String("job", msg.Snapshot.ID))
		return m, nil

	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)

	case documentMsg:
		return m.handleDocument(msg)

	case selectionMsg:
		return m.handleSelection(msg)

	case explanationMsg:
		m.handleExplanation(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.composerOpen {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.help.Width = width
	m.composer.Width = clampInt(width-8, 10, 90)
	m.viewport.Width = width
	m.viewport.Height = clampInt(height-headerHeight-footerHeight, minSurfaceRows, height)
	m.hasHighlight = false
	m.layoutDirty = true
	m.markViewportDirty()
}

// busy reports whether something is animating the spinner.
func (m *model) busy() bool {
	if m.stage == stageLoading {
		return true
	}
	result, ok := m.session.Result()
	return ok && result.Status == session.Pending
}

func (m *model) startLoad(input string) tea.Cmd {
	m.loadSeq++
	m.loadingInput = input
	m.stage = stageLoading
	m.composerOpen = false
	m.composer.Blur()
	m.alert = ""
	m.infoMessage = ""
	m.logger.Info("opening document", zap.String("input", input), zap.Int("seq", m.loadSeq))
	return tea.Batch(
		m.jobs.Start(jobKindLoad, loadDocumentJob(m.loadSeq, input, m.config.DocumentOptions)),
		m.spinner.Tick,
	)
}

func (m *model) handleDocument(msg documentMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loadSeq {
		m.logger.Debug("dropping superseded load", zap.String("input", msg.input), zap.Int("seq", msg.seq))
		if msg.doc != nil {
			_ = msg.doc.Ref.Release()
		}
		return m, nil
	}
	m.loadingInput = ""
	if msg.err != nil {
		m.logger.Warn("document rejected", zap.String("input", msg.input), zap.Error(msg.err))
		m.alert = document.UserMessage(msg.err)
		if m.session.Document() != nil {
			m.stage = stageReading
			return m, nil
		}
		m.stage = stageStart
		m.openComposer()
		return m, textinput.Blink
	}

	m.jobs.Cancel(jobKindExplain)
	if err := m.session.Adopt(msg.doc); err != nil {
		m.logger.Warn("releasing previous document", zap.Error(err))
	}
	m.logger.Info("document loaded",
		zap.String("name", msg.doc.Title()),
		zap.Int("pages", msg.doc.PageCount()),
		zap.String("kind", msg.doc.Ref.Kind.String()),
		zap.Bool("download", msg.doc.Ref.Temporary()),
	)
	m.stage = stageReading
	m.mode = modeNormal
	m.cursorLine = -1
	m.clearSurfaceSelection()
	m.alert = ""
	m.infoMessage = "Select text with the mouse, or press v to select by line."
	m.composerOpen = false
	m.composer.Blur()
	m.composer.Reset()
	m.layoutDirty = true
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.viewport.GotoTop()
	return m, nil
}

func (m *model) handleSelection(msg selectionMsg) (tea.Model, tea.Cmd) {
	if !session.Qualifies(msg.text) {
		return m, nil
	}
	sel, ok := m.session.Select(msg.text, msg.anchor)
	if !ok {
		return m, nil
	}
	m.jobs.Cancel(jobKindExplain)
	choice := m.session.Model()
	if err := llm.ValidatePassage(sel.Text); err != nil {
		m.session.Resolve(sel.ID, "", err)
		m.logger.Info("selection rejected locally", zap.Uint64("selection", sel.ID), zap.Error(err))
		return m, nil
	}
	if m.config.Explainer == nil {
		m.session.Resolve(sel.ID, "", &llm.Error{Kind: llm.KindNotConfigured})
		return m, nil
	}
	m.logger.Info("explaining selection",
		zap.Uint64("selection", sel.ID),
		zap.Int("chars", len([]rune(sel.Text))),
		zap.String("model", string(choice)),
	)
	return m, tea.Batch(
		m.jobs.Start(jobKindExplain, explainJob(m.config.Explainer, sel, choice)),
		m.spinner.Tick,
	)
}

func (m *model) handleExplanation(msg explanationMsg) {
	if !m.session.Resolve(msg.selectionID, msg.text, msg.err) {
		m.logger.Debug("dropping stale explanation", zap.Uint64("selection", msg.selectionID))
		return
	}
	if msg.err != nil {
		m.logger.Warn("explanation failed",
			zap.Uint64("selection", msg.selectionID),
			zap.String("kind", llm.KindOf(msg.err).String()),
			zap.Error(msg.err),
		)
		return
	}
	m.logger.Info("explanation ready", zap.Uint64("selection", msg.selectionID), zap.String("model", string(msg.model)))
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.composerOpen {
		return m.handleComposerKey(msg)
	}
	if m.stage != stageReading {
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		// The previous document and its panel stay on screen while a new one loads.
		if key.Matches(msg, m.keys.Dismiss) {
			if _, ok := m.session.Active(); ok {
				m.dismiss(session.DismissEscape)
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Back) && m.stage == stageLoading {
			m.backToStart()
			return m, textinput.Blink
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Dismiss):
		m.escape()
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
	case key.Matches(msg, m.keys.Open):
		m.openComposer()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Back):
		m.backToStart()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Model):
		choice := m.session.CycleModel()
		m.infoMessage = "Model: " + choice.Label()
		m.logger.Debug("model changed", zap.String("model", string(choice)))
	case key.Matches(msg, m.keys.ZoomIn):
		m.setZoom(m.zoom.In())
	case key.Matches(msg, m.keys.ZoomOut):
		m.setZoom(m.zoom.Out())
	case key.Matches(msg, m.keys.ZoomReset):
		m.setZoom(document.DefaultZoom)
	case key.Matches(msg, m.keys.Highlight):
		m.toggleHighlightMode()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
	case key.Matches(msg, m.keys.Explain):
		return m, m.captureHighlight()
	}
	return m, nil
}

func (m *model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(m.composer.Value())
		if input == "" {
			m.alert = document.UserMessage(document.ErrEmptyInput)
			return m, nil
		}
		return m, m.startLoad(input)
	case tea.KeyEsc:
		if m.stage == stageReading {
			m.composerOpen = false
			m.composer.Blur()
			m.alert = ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// escape closes the innermost open layer. It never quits.
func (m *model) escape() {
	switch {
	case m.helpVisible:
		m.helpVisible = false
	case m.mode == modeHighlight:
		m.toggleHighlightMode()
	default:
		m.dismiss(session.DismissEscape)
	}
}

func (m *model) dismiss(reason session.DismissReason) {
	m.jobs.Cancel(jobKindExplain)
	if sel, ok := m.session.Active(); ok && m.session.Dismiss(reason) {
		m.logger.Debug("panel dismissed", zap.Uint64("selection", sel.ID), zap.Stringer("reason", reason))
	}
	m.clearSurfaceSelection()
}

func (m *model) openComposer() {
	m.composerOpen = true
	m.composer.Reset()
	m.composer.Focus()
}

func (m *model) backToStart() {
	m.jobs.CancelAll()
	if err := m.session.Unload(); err != nil {
		m.logger.Warn("releasing document", zap.Error(err))
	}
	m.loadSeq++
	m.loadingInput = ""
	m.stage = stageStart
	m.mode = modeNormal
	m.helpVisible = false
	m.zoom = document.DefaultZoom
	m.cursorLine = -1
	m.clearSurfaceSelection()
	m.alert = ""
	m.infoMessage = "Enter a PDF path or URL to begin."
	m.layoutDirty = true
	m.markViewportDirty()
	m.openComposer()
}

// Close releases the open document. The program calls it after Run returns
// so downloads are cleaned up however the reader exits.
func (m *model) Close() error {
	m.jobs.CancelAll()
	return m.session.Unload()
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.jobs.CancelAll()
	m.loadSeq++
	if err := m.session.Unload(); err != nil {
		m.logger.Warn("releasing document", zap.Error(err))
	}
	return m, tea.Quit
}

// setZoom relays the surface. Surface highlights refer to old cells and
// are cleared; an open panel keeps its place.
func (m *model) setZoom(z document.Zoom) {
	if z == m.zoom {
		m.infoMessage = "Zoom " + z.String()
		return
	}
	m.zoom = z
	m.infoMessage = "Zoom " + z.String()
	m.hasHighlight = false
	m.drag = dragState{}
	m.layoutDirty = true
	m.markViewportDirty()
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.composerOpen {
		return m, nil
	}
	if m.stage != stageReading {
		if msg.Type == tea.MouseLeft {
			if rect, ok := m.panelRect(); ok && !rect.Contains(msg.X, msg.Y) {
				m.dismiss(session.DismissOutsideClick)
			}
		}
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.MouseLeft:
		if rect, ok := m.panelRect(); ok && rect.Contains(msg.X, msg.Y) {
			return m, nil
		}
		if _, ok := m.session.Active(); ok {
			m.dismiss(session.DismissOutsideClick)
		}
		if m.mode == modeHighlight {
			m.toggleHighlightMode()
		}
		pos, ok := m.cellAt(msg.X, msg.Y, false)
		if !ok {
			return m, nil
		}
		m.hasHighlight = false
		m.drag = dragState{active: true, origin: pos, cursor: pos}
		m.markViewportDirty()

	case tea.MouseMotion:
		if !m.drag.active {
			return m, nil
		}
		pos, _ := m.cellAt(msg.X, msg.Y, true)
		if pos != m.drag.cursor {
			m.drag.cursor = pos
			m.markViewportDirty()
		}

	case tea.MouseRelease:
		if !m.drag.active {
			return m, nil
		}
		if pos, ok := m.cellAt(msg.X, msg.Y, true); ok {
			m.drag.cursor = pos
		}
		drag := m.drag
		m.drag = dragState{}
		m.markViewportDirty()
		if drag.origin == drag.cursor {
			return m, nil
		}
		return m, m.finishSelection(newTextRange(drag.origin, drag.cursor))
	}
	return m, nil
}

// finishSelection keeps r highlighted and reports its text.
func (m *model) finishSelection(r textRange) tea.Cmd {
	text := m.surface.text(r)
	if text == "" {
		return nil
	}
	m.highlight = r
	m.hasHighlight = true
	m.markViewportDirty()
	anchor := m.anchorRect(r)
	return func() tea.Msg {
		return selectionMsg{text: text, anchor: anchor}
	}
}

// cellAt maps a terminal cell to a surface position. With clamp set, cells
// outside the reading area snap to its nearest edge.
func (m *model) cellAt(x, y int, clamp bool) (cellPos, bool) {
	if m.surface.lineCount() == 0 {
		return cellPos{}, false
	}
	row := y - headerHeight
	if row < 0 || row >= m.viewport.Height {
		if !clamp {
			return cellPos{}, false
		}
		row = clampInt(row, 0, m.viewport.Height-1)
	}
	line := m.viewport.YOffset + row
	if line >= m.surface.lineCount() {
		if !clamp {
			return cellPos{}, false
		}
		line = m.surface.lineCount() - 1
	}
	col := x - m.surface.margin
	if col < 0 {
		col = 0
	}
	return cellPos{line: line, col: col}, true
}

// anchorRect is the on-screen bounding box of r, limited to visible rows.
func (m *model) anchorRect(r textRange) session.Rect {
	first := clampInt(r.start.line, m.viewport.YOffset, m.viewport.YOffset+m.viewport.Height-1)
	last := clampInt(r.end.line, m.viewport.YOffset, m.viewport.YOffset+m.viewport.Height-1)
	left, right := -1, -1
	for line := first; line <= last; line++ {
		from, to, ok := m.surface.lineSpan(r, line)
		if !ok {
			continue
		}
		if left < 0 || from < left {
			left = from
		}
		if to > right {
			right = to
		}
	}
	if left < 0 {
		left, right = 0, 0
	}
	return session.Rect{
		Left:   m.surface.margin + left,
		Top:    headerHeight + first - m.viewport.YOffset,
		Right:  m.surface.margin + right,
		Bottom: headerHeight + last - m.viewport.YOffset,
	}
}

func (m *model) clearSurfaceSelection() {
	m.drag = dragState{}
	if m.hasHighlight {
		m.hasHighlight = false
		m.markViewportDirty()
	}
}

func (m *model) toggleHighlightMode() {
	switch m.mode {
	case modeHighlight:
		m.mode = modeNormal
		m.cursorLine = -1
		m.infoMessage = "Highlight mode disabled."
	default:
		m.refreshViewportIfDirty()
		line, ok := m.firstSelectableFrom(m.viewport.YOffset)
		if !ok {
			return
		}
		m.mode = modeHighlight
		m.cursorLine = line
		m.selectionAnchor = line
		m.hasHighlight = false
		m.infoMessage = "Highlight mode: move with j/k, enter to explain."
	}
	m.markViewportDirty()
}

func (m *model) firstSelectableFrom(line int) (int, bool) {
	for i := clampInt(line, 0, m.surface.lineCount()); i < m.surface.lineCount(); i++ {
		if m.surface.lines[i].selectable {
			return i, true
		}
	}
	return 0, false
}

func (m *model) moveCursor(delta int) {
	if m.mode != modeHighlight {
		if delta < 0 {
			m.viewport.LineUp(-delta)
		} else {
			m.viewport.LineDown(delta)
		}
		return
	}
	target := clampInt(m.cursorLine+delta, 0, m.surface.lineCount()-1)
	if target == m.cursorLine {
		return
	}
	m.cursorLine = target
	m.markViewportDirty()
	m.ensureCursorVisible()
}

func (m *model) ensureCursorVisible() {
	if m.cursorLine < 0 {
		return
	}
	if m.cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursorLine)
		return
	}
	lowerBound := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursorLine > lowerBound {
		m.viewport.SetYOffset(m.cursorLine - m.viewport.Height + 1)
	}
}

// highlightRange is the line range picked in highlight mode.
func (m *model) highlightRange() textRange {
	r := newTextRange(cellPos{line: m.selectionAnchor}, cellPos{line: m.cursorLine})
	r.end.col = m.surface.columns
	return r
}

func (m *model) captureHighlight() tea.Cmd {
	if m.mode != modeHighlight {
		return nil
	}
	r := m.highlightRange()
	m.mode = modeNormal
	m.cursorLine = -1
	m.infoMessage = ""
	return m.finishSelection(r)
}

// surfaceRange is what the surface currently shows highlighted.
func (m *model) surfaceRange() (textRange, bool) {
	switch {
	case m.drag.active:
		return newTextRange(m.drag.origin, m.drag.cursor), true
	case m.mode == modeHighlight:
		return m.highlightRange(), true
	case m.hasHighlight:
		return m.highlight, true
	}
	return textRange{}, false
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	prevYOffset := m.viewport.YOffset
	if m.layoutDirty {
		columns := m.zoom.Columns(m.config.ReadingColumns, m.width-2)
		m.surface = buildSurface(m.session.Document(), columns, m.width)
		m.layoutDirty = false
	}
	r, ok := m.surfaceRange()
	cursor := -1
	if m.mode == modeHighlight {
		cursor = m.cursorLine
	}
	m.viewport.SetContent(m.surface.render(r, ok, cursor))
	m.viewport.SetYOffset(m.clampYOffset(prevYOffset))
}

func (m *model) clampYOffset(offset int) int {
	maxOffset := m.surface.lineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	return clampInt(offset, 0, maxOffset)
}

// panelRect places the explanation panel, when one is open.
func (m *model) panelRect() (session.Rect, bool) {
	sel, ok := m.session.Active()
	if !ok {
		return session.Rect{}, false
	}
	height := lipgloss.Height(m.panelView(sel).render(m.panelWidth(), m.panelMaxRows()))
	return m.placeRendered(sel.Anchor, height), true
}

func (m *model) placeRendered(anchor session.Rect, height int) session.Rect {
	return session.DefaultPlacement.Place(anchor, height, session.Size{Width: m.width, Height: m.height})
}

func (m *model) panelView(sel session.Selection) panelView {
	result, _ := m.session.Result()
	return panelView{
		selection: sel,
		result:    result,
		model:     m.session.Model(),
		spinner:   m.spinner.View(),
	}
}

func (m *model) panelWidth() int {
	return minInt(session.DefaultPlacement.Width, m.width)
}

func (m *model) panelMaxRows() int {
	p := session.DefaultPlacement
	return maxInt(m.height-p.HeaderBand-p.BottomPadding, panelMinHeight)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
