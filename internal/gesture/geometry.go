package gesture

import "math"

// Point is a screen position. Units are whatever the surface uses:
// CSS pixels in the browser, cells in the terminal.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// IsZero reports whether r has no area. Zero rects stand for slot elements
// that are not mounted.
func (r Rect) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Nearest returns the slot whose center is closest to p, considering only
// slots whose center is strictly closer than radius. Ties go to the lower
// index.
func Nearest(p Point, bounds []Rect, radius float64) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, r := range bounds {
		if r.IsZero() {
			continue
		}
		d := Distance(p, r.Center())
		if d < radius && d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, best >= 0
}

// Surface is the environment's view of the rendered slot elements.
type Surface interface {
	// HitTest returns the slot index of the topmost slot element under p.
	HitTest(p Point) (int, bool)

	// SlotBounds returns the bounding rectangle of each slot element,
	// indexed by slot.
	SlotBounds() []Rect
}

// RectSurface is a Surface backed by a list of slot rectangles. Later
// entries are considered on top of earlier ones.
type RectSurface []Rect

// HitTest implements Surface.
func (s RectSurface) HitTest(p Point) (int, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].IsZero() && s[i].Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// SlotBounds implements Surface.
func (s RectSurface) SlotBounds() []Rect {
	return s
}

// Layout describes a regular grid of equally sized slots laid out row by row.
type Layout struct {
	Origin  Point
	Columns int
	Slots   int
	CellW   float64
	CellH   float64
	GapX    float64
	GapY    float64
}

// Surface returns the slot rectangles of the layout.
func (l Layout) Surface() RectSurface {
	if l.Columns <= 0 {
		return nil
	}
	rects := make(RectSurface, l.Slots)
	for i := range rects {
		col := i % l.Columns
		row := i / l.Columns
		rects[i] = Rect{
			Left:   l.Origin.X + float64(col)*(l.CellW+l.GapX),
			Top:    l.Origin.Y + float64(row)*(l.CellH+l.GapY),
			Width:  l.CellW,
			Height: l.CellH,
		}
	}
	return rects
}

// Bounds returns the rectangle enclosing every slot of the layout.
func (l Layout) Bounds() Rect {
	if l.Columns <= 0 || l.Slots <= 0 {
		return Rect{Left: l.Origin.X, Top: l.Origin.Y}
	}
	cols := l.Columns
	if l.Slots < cols {
		cols = l.Slots
	}
	rows := (l.Slots + l.Columns - 1) / l.Columns
	return Rect{
		Left:   l.Origin.X,
		Top:    l.Origin.Y,
		Width:  float64(cols)*l.CellW + float64(cols-1)*l.GapX,
		Height: float64(rows)*l.CellH + float64(rows-1)*l.GapY,
	}
}
