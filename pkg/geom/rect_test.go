package geom

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Rect
		padding float64
		want    bool
	}{
		{
			name:    "gap equals padding is not overlapping",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 20, Y: 0, W: 10, H: 10},
			padding: 5,
			want:    false,
		},
		{
			name:    "gap smaller than combined padding overlaps",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 14, Y: 0, W: 10, H: 10},
			padding: 5,
			want:    true,
		},
		{
			name:    "touching edges without padding do not overlap",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 10, Y: 0, W: 10, H: 10},
			padding: 0,
			want:    false,
		},
		{
			name:    "proper intersection",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 5, Y: 5, W: 10, H: 10},
			padding: 0,
			want:    true,
		},
		{
			name:    "containment",
			a:       Rect{X: 0, Y: 0, W: 100, H: 100},
			b:       Rect{X: 40, Y: 40, W: 10, H: 10},
			padding: 0,
			want:    true,
		},
		{
			name:    "vertical gap consumed by padding",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 0, Y: 15, W: 10, H: 10},
			padding: 3,
			want:    true,
		},
		{
			name:    "distant rectangles",
			a:       Rect{X: 0, Y: 0, W: 10, H: 10},
			b:       Rect{X: 1000, Y: 1000, W: 10, H: 10},
			padding: 50,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b, tt.padding); got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.padding, got, tt.want)
			}
		})
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	pairs := []struct {
		a, b    Rect
		padding float64
	}{
		{Rect{0, 0, 10, 10}, Rect{14, 0, 10, 10}, 5},
		{Rect{0, 0, 10, 10}, Rect{20, 0, 10, 10}, 5},
		{Rect{-30, -30, 5, 5}, Rect{0, 0, 100, 100}, 12},
		{Rect{0, 0, 600, 300}, Rect{200, 250, 600, 300}, 50},
	}

	for _, p := range pairs {
		ab := Overlaps(p.a, p.b, p.padding)
		ba := Overlaps(p.b, p.a, p.padding)
		if ab != ba {
			t.Errorf("Overlaps not symmetric for %v, %v, padding %v: %v vs %v", p.a, p.b, p.padding, ab, ba)
		}
	}
}

func TestRectDerived(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}

	if got := r.Right(); got != 40 {
		t.Errorf("Right() = %v, want 40", got)
	}
	if got := r.Bottom(); got != 60 {
		t.Errorf("Bottom() = %v, want 60", got)
	}
	if got := r.Center(); got != (Point{X: 25, Y: 40}) {
		t.Errorf("Center() = %v, want {25 40}", got)
	}
}

func TestExpanded(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 20}

	grown := r.Expanded(5)
	if grown != (Rect{X: 5, Y: 5, W: 30, H: 30}) {
		t.Errorf("Expanded(5) = %v", grown)
	}

	shrunk := r.Expanded(-5)
	if shrunk != (Rect{X: 15, Y: 15, W: 10, H: 10}) {
		t.Errorf("Expanded(-5) = %v", shrunk)
	}
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{
			name: "disjoint",
			a:    Rect{X: 0, Y: 0, W: 10, H: 10},
			b:    Rect{X: 20, Y: 30, W: 10, H: 10},
			want: Rect{X: 0, Y: 0, W: 30, H: 40},
		},
		{
			name: "contained",
			a:    Rect{X: 0, Y: 0, W: 100, H: 100},
			b:    Rect{X: 10, Y: 10, W: 10, H: 10},
			want: Rect{X: 0, Y: 0, W: 100, H: 100},
		},
		{
			name: "negative coordinates",
			a:    Rect{X: -50, Y: -20, W: 10, H: 10},
			b:    Rect{X: 0, Y: 0, W: 10, H: 10},
			want: Rect{X: -50, Y: -20, W: 60, H: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	rects := []Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 100, Y: 50, W: 20, H: 20},
		{X: -30, Y: 5, W: 10, H: 10},
	}

	want := Rect{X: -30, Y: 0, W: 150, H: 70}
	if got := BoundingBox(rects); got != want {
		t.Errorf("BoundingBox() = %v, want %v", got, want)
	}

	if got := BoundingBox(nil); got != (Rect{}) {
		t.Errorf("BoundingBox(nil) = %v, want zero rect", got)
	}
}

func TestSizeMax(t *testing.T) {
	if got := (Size{W: 600, H: 300}).Max(); got != 600 {
		t.Errorf("Max() = %v, want 600", got)
	}
	if got := (Size{W: 90, H: 240}).Max(); got != 240 {
		t.Errorf("Max() = %v, want 240", got)
	}
}
