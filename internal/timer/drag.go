package timer

// Position is a cell coordinate in the terminal, origin top-left.
type Position struct {
	X, Y int
}

// Sub returns p - o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Drag tracks the floating widget's position and an in-progress drag
// gesture. The zero value sits at the origin with clamping disabled.
type Drag struct {
	pos      Position
	offset   Position
	dragging bool

	// size of the widget and the viewport it lives in; zero viewport
	// disables clamping.
	width, height   int
	viewW, viewH    int
	clampToViewport bool
}

// NewDrag returns a Drag resting at start.
func NewDrag(start Position, clampToViewport bool) Drag {
	return Drag{pos: start, clampToViewport: clampToViewport}
}

// Position returns the widget's current top-left corner.
func (d *Drag) Position() Position {
	return d.pos
}

// Dragging reports whether a gesture is in progress.
func (d *Drag) Dragging() bool {
	return d.dragging
}

// Grab starts a gesture, remembering where inside the widget the
// pointer went down.
func (d *Drag) Grab(pointer Position) {
	d.offset = pointer.Sub(d.pos)
	d.dragging = true
}

// Move follows the pointer while dragging. It reports whether the
// position changed.
func (d *Drag) Move(pointer Position) bool {
	if !d.dragging {
		return false
	}
	next := d.clamp(pointer.Sub(d.offset))
	if next == d.pos {
		return false
	}
	d.pos = next
	return true
}

// Release ends the gesture. The position stays where it was dropped.
func (d *Drag) Release() {
	d.dragging = false
	d.offset = Position{}
}

// Contains reports whether pointer falls on the widget.
func (d *Drag) Contains(pointer Position) bool {
	return pointer.X >= d.pos.X && pointer.X < d.pos.X+d.width &&
		pointer.Y >= d.pos.Y && pointer.Y < d.pos.Y+d.height
}

// SetSize records the rendered widget size used for hit-testing and
// clamping.
func (d *Drag) SetSize(width, height int) {
	d.width, d.height = width, height
	d.pos = d.clamp(d.pos)
}

// SetViewport records the terminal size. The widget is pulled back on
// screen if the terminal shrank underneath it.
func (d *Drag) SetViewport(width, height int) {
	d.viewW, d.viewH = width, height
	d.pos = d.clamp(d.pos)
}

func (d *Drag) clamp(p Position) Position {
	if !d.clampToViewport || d.viewW <= 0 || d.viewH <= 0 {
		return p
	}
	p.X = clampInt(p.X, 0, d.viewW-d.width)
	p.Y = clampInt(p.Y, 0, d.viewH-d.height)
	return p
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
