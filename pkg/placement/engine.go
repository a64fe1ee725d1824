// Package placement decides where a newly created floating panel (AI
// response, PDF viewer, embed, note frame) should be positioned on the
// unbounded canvas so that it does not overlap existing content and, when
// possible, stays inside the user's current viewport.
//
// The engine is pure and stateless: every call reads a fresh snapshot of
// occupied rectangles and the viewport supplied by the caller, performs no
// mutation, and always returns a finite position. Candidates are evaluated
// in a fixed priority order and the first collision-free one wins; ties are
// never broken by distance. Keep it that way: switching to a nearest-point
// search would change observable placement behavior.
package placement

import "github.com/boardstack/boardstack/pkg/geom"

// Request describes a placement query: the desired panel size and the
// minimum clearance to keep from any existing rectangle.
type Request struct {
	Size    geom.Size
	Padding float64
}

// FindPlacement returns the origin for a new Size-sized rectangle that does
// not collide with any rectangle in occupied, preferring positions inside or
// near viewport. Candidates are tried in strict priority order:
//
//  1. Empty canvas: the viewport-centered position.
//  2. Five viewport-relative candidates (centered, then shifted right,
//     below, left, above by one panel extent plus padding).
//  3. Immediately right of the rightmost existing rectangle, gated so the
//     panel does not drift more than two viewport widths past the right
//     viewport edge.
//  4. Below the bottommost, left of the leftmost, and above the topmost
//     rectangle, ungated. The missing gate on these three mirrors the
//     behavior this engine was modeled on; see DESIGN.md.
//  5. A row-major grid over the occupied bounding box expanded by twice the
//     larger panel dimension, visiting viewport-intersecting cells first.
//  6. Nine fixed offsets around the viewport center.
//  7. The viewport center, unconditionally.
//
// Step 7 means the result may overlap when the canvas is pathologically
// dense; callers must treat the position as advisory. FindPlacement never
// fails. Two calls racing before either created shape is reflected in the
// occupied snapshot can pick overlapping spots; there is no reservation
// step between choosing a position and the caller committing it.
func FindPlacement(occupied []geom.Rect, viewport geom.Rect, size geom.Size, padding float64) geom.Point {
	centered := centeredOrigin(viewport, size)

	// Empty-canvas shortcut.
	if len(occupied) == 0 {
		return centered
	}

	// Viewport-relative candidates keep new content visible without a pan.
	dx := size.W + padding
	dy := size.H + padding
	viewportCandidates := []geom.Point{
		centered,
		{X: centered.X + dx, Y: centered.Y},
		{X: centered.X, Y: centered.Y + dy},
		{X: centered.X - dx, Y: centered.Y},
		{X: centered.X, Y: centered.Y - dy},
	}
	for _, c := range viewportCandidates {
		if fits(c, size, occupied, padding) {
			return c
		}
	}

	// Right of the rightmost shape, but only if that keeps the panel within
	// two viewport widths of the visible area.
	rightmost := occupied[0]
	for _, r := range occupied[1:] {
		if r.Right() > rightmost.Right() {
			rightmost = r
		}
	}
	adjacent := geom.Point{X: rightmost.Right() + padding, Y: rightmost.Y}
	if adjacent.X-viewport.Right() < 2*viewport.W && fits(adjacent, size, occupied, padding) {
		return adjacent
	}

	// Below the bottommost, left of the leftmost, above the topmost.
	for _, c := range edgeCandidates(occupied, size, padding) {
		if fits(c, size, occupied, padding) {
			return c
		}
	}

	// Grid search over the expanded occupied bounding box.
	if p, ok := gridSearch(occupied, viewport, size, padding); ok {
		return p
	}

	// Spiral of fixed offsets around the viewport center.
	for _, c := range spiralCandidates(centered, dx, dy) {
		if fits(c, size, occupied, padding) {
			return c
		}
	}

	// Search space exhausted: accept overlap rather than fail.
	return centered
}

// Find is a convenience wrapper taking a Request.
func Find(occupied []geom.Rect, viewport geom.Rect, req Request) geom.Point {
	return FindPlacement(occupied, viewport, req.Size, req.Padding)
}

// centeredOrigin returns the origin that centers a size-sized rectangle in r.
func centeredOrigin(r geom.Rect, size geom.Size) geom.Point {
	c := r.Center()
	return geom.Point{X: c.X - size.W/2, Y: c.Y - size.H/2}
}

// fits reports whether a size-sized rectangle at origin keeps the required
// clearance from every occupied rectangle.
func fits(origin geom.Point, size geom.Size, occupied []geom.Rect, padding float64) bool {
	candidate := geom.Rect{X: origin.X, Y: origin.Y, W: size.W, H: size.H}
	for _, r := range occupied {
		if geom.Overlaps(candidate, r, padding) {
			return false
		}
	}
	return true
}

// edgeCandidates returns the below-bottommost, left-of-leftmost, and
// above-topmost candidates, in that order.
func edgeCandidates(occupied []geom.Rect, size geom.Size, padding float64) []geom.Point {
	bottommost, leftmost, topmost := occupied[0], occupied[0], occupied[0]
	for _, r := range occupied[1:] {
		if r.Bottom() > bottommost.Bottom() {
			bottommost = r
		}
		if r.X < leftmost.X {
			leftmost = r
		}
		if r.Y < topmost.Y {
			topmost = r
		}
	}
	return []geom.Point{
		{X: bottommost.X, Y: bottommost.Bottom() + padding},
		{X: leftmost.X - padding - size.W, Y: leftmost.Y},
		{X: topmost.X, Y: topmost.Y - padding - size.H},
	}
}

// spiralCandidates returns the nine fixed offsets around centered: the
// center itself, the four axis-aligned neighbors (right, below, left,
// above), then the four diagonals.
func spiralCandidates(centered geom.Point, dx, dy float64) []geom.Point {
	return []geom.Point{
		centered,
		{X: centered.X + dx, Y: centered.Y},
		{X: centered.X, Y: centered.Y + dy},
		{X: centered.X - dx, Y: centered.Y},
		{X: centered.X, Y: centered.Y - dy},
		{X: centered.X + dx, Y: centered.Y + dy},
		{X: centered.X - dx, Y: centered.Y + dy},
		{X: centered.X - dx, Y: centered.Y - dy},
		{X: centered.X + dx, Y: centered.Y - dy},
	}
}

// gridSearch lays a grid over the union of all occupied rectangles expanded
// outward by twice the larger panel dimension, with cell spacing of that
// dimension plus padding. Cells intersecting the viewport are visited first
// (row-major), then all remaining cells (row-major). Returns the first
// collision-free cell origin.
func gridSearch(occupied []geom.Rect, viewport geom.Rect, size geom.Size, padding float64) (geom.Point, bool) {
	margin := 2 * size.Max()
	box := geom.BoundingBox(occupied).Expanded(margin)
	step := size.Max() + padding
	if step <= 0 {
		return geom.Point{}, false
	}

	inViewport := func(origin geom.Point) bool {
		cell := geom.Rect{X: origin.X, Y: origin.Y, W: size.W, H: size.H}
		return cell.Intersects(viewport)
	}

	// First pass: visible cells. Second pass: everything else.
	for _, visibleOnly := range []bool{true, false} {
		for y := box.Y; y < box.Bottom(); y += step {
			for x := box.X; x < box.Right(); x += step {
				origin := geom.Point{X: x, Y: y}
				if inViewport(origin) != visibleOnly {
					continue
				}
				if fits(origin, size, occupied, padding) {
					return origin, true
				}
			}
		}
	}
	return geom.Point{}, false
}
