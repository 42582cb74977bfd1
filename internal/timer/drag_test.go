package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrag_FollowsPointerMinusOffset(t *testing.T) {
	d := NewDrag(Position{X: 20, Y: 20}, false)

	d.Grab(Position{X: 30, Y: 30})
	assert.True(t, d.Dragging())

	assert.True(t, d.Move(Position{X: 100, Y: 100}))
	assert.Equal(t, Position{X: 90, Y: 90}, d.Position())

	d.Release()
	assert.False(t, d.Dragging())
	assert.Equal(t, Position{X: 90, Y: 90}, d.Position())
}

func TestDrag_IgnoresMotionWhenNotDragging(t *testing.T) {
	d := NewDrag(Position{X: 5, Y: 5}, false)
	assert.False(t, d.Move(Position{X: 50, Y: 50}))
	assert.Equal(t, Position{X: 5, Y: 5}, d.Position())
}

func TestDrag_UnboundedWithoutViewport(t *testing.T) {
	d := NewDrag(Position{X: 0, Y: 0}, true)
	d.SetSize(10, 3)
	d.Grab(Position{X: 0, Y: 0})
	d.Move(Position{X: -4, Y: 500})
	assert.Equal(t, Position{X: -4, Y: 500}, d.Position())
}

func TestDrag_ClampsToViewport(t *testing.T) {
	d := NewDrag(Position{X: 2, Y: 2}, true)
	d.SetSize(10, 4)
	d.SetViewport(80, 24)

	d.Grab(Position{X: 3, Y: 3})
	d.Move(Position{X: 200, Y: 200})
	assert.Equal(t, Position{X: 70, Y: 20}, d.Position())

	d.Move(Position{X: -50, Y: -50})
	assert.Equal(t, Position{X: 0, Y: 0}, d.Position())
}

func TestDrag_ClampDisabled(t *testing.T) {
	d := NewDrag(Position{X: 2, Y: 2}, false)
	d.SetSize(10, 4)
	d.SetViewport(80, 24)
	d.Grab(Position{X: 2, Y: 2})
	d.Move(Position{X: 200, Y: 1})
	assert.Equal(t, Position{X: 200, Y: 1}, d.Position())
}

func TestDrag_ShrinkingViewportPullsWidgetBack(t *testing.T) {
	d := NewDrag(Position{X: 70, Y: 20}, true)
	d.SetSize(10, 4)
	d.SetViewport(40, 10)
	assert.Equal(t, Position{X: 30, Y: 6}, d.Position())
}

func TestDrag_Contains(t *testing.T) {
	d := NewDrag(Position{X: 10, Y: 5}, false)
	d.SetSize(4, 2)
	assert.True(t, d.Contains(Position{X: 10, Y: 5}))
	assert.True(t, d.Contains(Position{X: 13, Y: 6}))
	assert.False(t, d.Contains(Position{X: 14, Y: 6}))
	assert.False(t, d.Contains(Position{X: 10, Y: 7}))
}
