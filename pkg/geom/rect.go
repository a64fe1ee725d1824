// Package geom provides the 2-D geometry primitives used by the shape
// placement engine. All coordinates live in page space: the unbounded
// coordinate system canvas shapes are positioned in, independent of the
// current zoom or pan. Y grows downward.
package geom

// Point is a position in page space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Max returns the larger of width and height.
func (s Size) Max() float64 {
	if s.W > s.H {
		return s.W
	}
	return s.H
}

// Rect is an axis-aligned rectangle defined by its top-left origin and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Expanded returns a rectangle grown by m on every side.
// A negative m shrinks the rectangle.
func (r Rect) Expanded(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Union returns the minimal rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.Right(), o.Right())
	maxY := max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Intersects reports whether r and o share any area.
// Rectangles that merely touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return Overlaps(r, o, 0)
}

// Overlaps reports whether two rectangles, each expanded by padding,
// intersect on both axes. Padding is symmetric: it does not matter which
// rectangle is the new one and which is existing. Edges that exactly touch
// after padding are not overlapping (strict comparison).
func Overlaps(a, b Rect, padding float64) bool {
	return !(a.Right()+padding <= b.X ||
		a.X-padding >= b.Right() ||
		a.Bottom()+padding <= b.Y ||
		a.Y-padding >= b.Bottom())
}

// BoundingBox returns the union of all rectangles.
// Returns a zero Rect when rects is empty.
func BoundingBox(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	box := rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	return box
}
