package session

// Rect is a bounding rectangle in terminal cells. Right and Bottom are
// inclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Height is the number of rows covered.
func (r Rect) Height() int {
	return r.Bottom - r.Top + 1
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// Size is a viewport size in cells.
type Size struct {
	Width, Height int
}

// Placement holds the panel layout constants.
type Placement struct {
	Width int
	// HeaderBand is the number of rows at the top the panel must not cover.
	HeaderBand int
	// BottomPadding is kept free below the panel.
	BottomPadding int
	// Gap separates the selection's right edge from the panel.
	Gap int
}

// DefaultPlacement matches the reader's header and footer.
var DefaultPlacement = Placement{Width: 44, HeaderBand: 2, BottomPadding: 2, Gap: 2}

// Place positions a panel of panelHeight rows next to anchor. The panel goes
// to the right of the selection, slides left when it would leave the
// viewport, and is vertically centred on the selection within the band
// between the header and the bottom padding.
func (p Placement) Place(anchor Rect, panelHeight int, viewport Size) Rect {
	width := p.Width
	if width > viewport.Width {
		width = viewport.Width
	}
	left := anchor.Right + 1 + p.Gap
	if left+width > viewport.Width {
		left = viewport.Width - width
	}
	if left < 0 {
		left = 0
	}

	maxBottom := viewport.Height - 1 - p.BottomPadding
	available := maxBottom - p.HeaderBand + 1
	if available < 1 {
		available = 1
	}
	if panelHeight > available {
		panelHeight = available
	}
	if panelHeight < 1 {
		panelHeight = 1
	}

	centre := anchor.Top + anchor.Height()/2
	top := centre - panelHeight/2
	if top+panelHeight-1 > maxBottom {
		top = maxBottom - panelHeight + 1
	}
	if top < p.HeaderBand {
		top = p.HeaderBand
	}
	return Rect{Left: left, Top: top, Right: left + width - 1, Bottom: top + panelHeight - 1}
}
