// Package canvas provides the document-side abstractions the placement
// engine and camera controller operate against.
//
// The engine never talks to a live canvas directly. It receives a [Host]:
// a snapshot-style view of the document (viewport bounds, occupied shape
// bounds, selection and camera commands). In production the host is backed
// by the synced canvas document; in tests and CLI tooling it is the
// in-memory [Document] defined here. Keeping the host injected rather than
// a package singleton is what keeps the engine unit-testable without a
// running canvas.
package canvas

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boardstack/boardstack/pkg/geom"
	"github.com/boardstack/boardstack/pkg/placement"
)

// FitOptions controls an animated viewport-fit-to-selection command.
type FitOptions struct {
	Duration time.Duration // animation length, 0 for instant
	Inset    float64       // margin kept around the selection
}

// Host is the canvas document interface consumed by the placement engine
// and the camera controller. All bounds are in page space.
type Host interface {
	// ViewportBounds returns the currently visible page-space region.
	ViewportBounds() geom.Rect

	// AllShapeBounds returns the flattened bounds of every shape on the
	// active page. The result is a snapshot; it is recomputed per call.
	AllShapeBounds() []geom.Rect

	// ShapeBounds returns the bounds of a single shape.
	// ok is false when the shape does not exist (yet).
	ShapeBounds(id string) (bounds geom.Rect, ok bool)

	// SelectShapes replaces the current selection.
	SelectShapes(ids []string)

	// FitViewportToSelection moves the camera so the given shapes fill the
	// viewport, keeping opts.Inset of margin.
	FitViewportToSelection(ids []string, opts FitOptions)
}

// Shape is a single element on the board.
type Shape struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Bounds geom.Rect      `json:"bounds"`
	Props  map[string]any `json:"props,omitempty"`
}

// Document is an in-memory canvas document implementing [Host].
//
// It stores shapes in insertion order so snapshot queries are
// deterministic, and applies camera commands instantly (animation is a
// front-end concern). Safe for concurrent use.
type Document struct {
	mu        sync.RWMutex
	viewport  geom.Rect
	order     []string
	shapes    map[string]Shape
	selection []string
}

// NewDocument creates an empty document with the given viewport.
func NewDocument(viewport geom.Rect) *Document {
	return &Document{
		viewport: viewport,
		shapes:   make(map[string]Shape),
	}
}

// ViewportBounds implements [Host].
func (d *Document) ViewportBounds() geom.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// SetViewport moves the viewport.
func (d *Document) SetViewport(r geom.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = r
}

// AllShapeBounds implements [Host].
func (d *Document) AllShapeBounds() []geom.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	bounds := make([]geom.Rect, 0, len(d.order))
	for _, id := range d.order {
		bounds = append(bounds, d.shapes[id].Bounds)
	}
	return bounds
}

// ShapeBounds implements [Host].
func (d *Document) ShapeBounds(id string) (geom.Rect, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.shapes[id]
	return s.Bounds, ok
}

// Shape returns a shape by ID.
func (d *Document) Shape(id string) (Shape, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.shapes[id]
	return s, ok
}

// Shapes returns all shapes in insertion order.
func (d *Document) Shapes() []Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Shape, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.shapes[id])
	}
	return out
}

// CreateShape adds a shape and returns it. An empty ID is replaced with a
// generated one.
func (d *Document) CreateShape(s Shape) Shape {
	if s.ID == "" {
		s.ID = "shape:" + uuid.NewString()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.shapes[s.ID]; !exists {
		d.order = append(d.order, s.ID)
	}
	d.shapes[s.ID] = s
	return s
}

// UpdateShapeBounds moves or resizes an existing shape.
// Returns false if the shape does not exist.
func (d *Document) UpdateShapeBounds(id string, bounds geom.Rect) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.shapes[id]
	if !ok {
		return false
	}
	s.Bounds = bounds
	d.shapes[id] = s
	return true
}

// DeleteShape removes a shape. Deleting a missing shape is a no-op.
func (d *Document) DeleteShape(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.shapes[id]; !ok {
		return
	}
	delete(d.shapes, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// SelectShapes implements [Host].
func (d *Document) SelectShapes(ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = append([]string(nil), ids...)
}

// Selection returns the currently selected shape IDs.
func (d *Document) Selection() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.selection...)
}

// FitViewportToSelection implements [Host]. The headless document applies
// the fit instantly regardless of opts.Duration.
func (d *Document) FitViewportToSelection(ids []string, opts FitOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var bounds []geom.Rect
	for _, id := range ids {
		if s, ok := d.shapes[id]; ok {
			bounds = append(bounds, s.Bounds)
		}
	}
	if len(bounds) == 0 {
		return
	}
	d.viewport = geom.BoundingBox(bounds).Expanded(opts.Inset)
}

// PlaceShape finds a non-overlapping position for a new shape of the given
// size, creates it, and returns it. The placement snapshot is taken and the
// shape committed under one lock, so sequential placements on the same
// document never overlap each other.
func (d *Document) PlaceShape(shapeType string, size geom.Size, padding float64, props map[string]any) Shape {
	d.mu.Lock()
	occupied := make([]geom.Rect, 0, len(d.order))
	for _, id := range d.order {
		occupied = append(occupied, d.shapes[id].Bounds)
	}
	origin := placement.FindPlacement(occupied, d.viewport, size, padding)

	s := Shape{
		ID:     "shape:" + uuid.NewString(),
		Type:   shapeType,
		Bounds: geom.Rect{X: origin.X, Y: origin.Y, W: size.W, H: size.H},
		Props:  props,
	}
	d.order = append(d.order, s.ID)
	d.shapes[s.ID] = s
	d.mu.Unlock()
	return s
}

// PlaceAndCenter places a shape and then centers cam on it, so the new
// shape is selected and visible. cam must be bound to this document; a nil
// cam degrades to PlaceShape.
func (d *Document) PlaceAndCenter(cam *Camera, shapeType string, size geom.Size, padding float64, props map[string]any) Shape {
	s := d.PlaceShape(shapeType, size, padding, props)
	if cam != nil {
		cam.CenterOn(s.ID)
	}
	return s
}

var _ Host = (*Document)(nil)
