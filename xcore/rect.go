package xcore

// rect.go: the little rectangle algebra the damage tracker needs. A Rect
// with zero width or height is empty and unions away.

// Rect is an integer rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rectangle covers nothing.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x1, y1 := r.X, r.Y
	if o.X < x1 {
		x1 = o.X
	}
	if o.Y < y1 {
		y1 = o.Y
	}
	x2, y2 := r.X+r.Width, r.Y+r.Height
	if o.X+o.Width > x2 {
		x2 = o.X + o.Width
	}
	if o.Y+o.Height > y2 {
		y2 = o.Y + o.Height
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersect clips r to o.
func (r Rect) Intersect(o Rect) Rect {
	x1, y1 := r.X, r.Y
	if o.X > x1 {
		x1 = o.X
	}
	if o.Y > y1 {
		y1 = o.Y
	}
	x2, y2 := r.X+r.Width, r.Y+r.Height
	if o.X+o.Width < x2 {
		x2 = o.X + o.Width
	}
	if o.Y+o.Height < y2 {
		y2 = o.Y + o.Height
	}
	out := Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Contains reports whether the point is inside.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
