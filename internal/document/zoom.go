package document

import (
	"fmt"
	"math"
)

// Zoom is the reading scale. It is always rounded to one decimal so that
// repeated steps land exactly on the bounds.
type Zoom float64

const (
	MinZoom     Zoom = 0.5
	MaxZoom     Zoom = 3.0
	ZoomStep         = 0.2
	DefaultZoom Zoom = 1.0

	minColumns = 24
)

// In steps the zoom up, saturating at MaxZoom.
func (z Zoom) In() Zoom {
	return Zoom(float64(z) + ZoomStep).Clamp()
}

// Out steps the zoom down, saturating at MinZoom.
func (z Zoom) Out() Zoom {
	return Zoom(float64(z) - ZoomStep).Clamp()
}

// Clamp rounds z to one decimal and bounds it.
func (z Zoom) Clamp() Zoom {
	v := math.Round(float64(z)*10) / 10
	switch {
	case v < float64(MinZoom):
		return MinZoom
	case v > float64(MaxZoom):
		return MaxZoom
	}
	return Zoom(v)
}

func (z Zoom) String() string {
	return fmt.Sprintf("%d%%", int(math.Round(float64(z)*100)))
}

// Columns maps the zoom onto a reading column width: base columns at 100%,
// never narrower than a readable minimum nor wider than max.
func (z Zoom) Columns(base, max int) int {
	cols := int(math.Round(float64(base) * float64(z.Clamp())))
	if cols < minColumns {
		cols = minColumns
	}
	if max > 0 && cols > max {
		cols = max
	}
	return cols
}
