package window

// WorkArea is the usable region of the hosting terminal in cells,
// excluding the status line.
type WorkArea struct {
	Cols int
	Rows int
}

// Geometry positions the bubble inside the work area. X/Y address the
// top-left corner.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Default bubble dimensions, in cells.
const (
	DefaultWidth  = 72
	DefaultHeight = 22
	DefaultMargin = 2

	minWidth  = 24
	minHeight = 8
)

// Dimensions holds the requested bubble size. Zero values select the
// defaults.
type Dimensions struct {
	Width  int
	Height int
	Margin int
}

func (d Dimensions) normalized() Dimensions {
	if d.Width <= 0 {
		d.Width = DefaultWidth
	}
	if d.Height <= 0 {
		d.Height = DefaultHeight
	}
	if d.Margin < 0 {
		d.Margin = DefaultMargin
	}
	return d
}

// ComputeGeometry anchors the bubble to the bottom-right corner of the
// work area with the given margin, shrinking it when the work area is
// too small. It is recomputed on every show and on work-area change.
func ComputeGeometry(area WorkArea, dims Dimensions) Geometry {
	dims = dims.normalized()

	width := dims.Width
	if max := area.Cols - 2*dims.Margin; width > max {
		width = max
	}
	if width < minWidth {
		width = min(minWidth, area.Cols)
	}
	height := dims.Height
	if max := area.Rows - 2*dims.Margin; height > max {
		height = max
	}
	if height < minHeight {
		height = min(minHeight, area.Rows)
	}

	x := area.Cols - width - dims.Margin
	if x < 0 {
		x = 0
	}
	y := area.Rows - height - dims.Margin
	if y < 0 {
		y = 0
	}
	return Geometry{X: x, Y: y, Width: width, Height: height}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
