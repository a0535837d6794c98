package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteElbow(t *testing.T) {
	startRect := Rect{0, 0, nodeWidth, nodeHeight}
	endRect := Rect{300, 200, nodeWidth, nodeHeight}

	c := &Connection{}
	c.Route(startRect, endRect)

	// corner: end center x, start center y, both snapped
	assert.Equal(t, snapToGrid(endRect.Center().X), c.CornerPos.X)
	assert.Equal(t, snapToGrid(startRect.Center().Y), c.CornerPos.Y)
	assert.Zero(t, math.Mod(c.CornerPos.X, gridSize))
	assert.Zero(t, math.Mod(c.CornerPos.Y, gridSize))

	// start exits the right border, keeping the corner's y
	assert.Equal(t, c.CornerPos.Y, c.StartPos.Y)
	assert.Zero(t, math.Mod(c.StartPos.X, gridSize))
	assert.GreaterOrEqual(t, c.StartPos.X, nodeWidth-gridSize)

	// end enters through the top border, keeping the corner's x
	assert.Equal(t, c.CornerPos.X, c.EndPos.X)
	assert.Zero(t, math.Mod(c.EndPos.Y, gridSize))
	assert.InDelta(t, endRect.Y, c.EndPos.Y, gridSize)

	// the two runs are axis-aligned by construction
	assert.Equal(t, c.StartPos.Y, c.CornerPos.Y)
	assert.Equal(t, c.CornerPos.X, c.EndPos.X)
}

func TestRouteRecomputesOnMove(t *testing.T) {
	startRect := Rect{0, 0, nodeWidth, nodeHeight}
	c := &Connection{}
	c.Route(startRect, Rect{300, 200, nodeWidth, nodeHeight})
	before := c.CornerPos

	c.Route(startRect, Rect{300, 400, nodeWidth, nodeHeight})
	assert.Equal(t, before.X, c.CornerPos.X)
	assert.Equal(t, before.Y, c.CornerPos.Y) // corner y tracks the start node
	assert.NotEqual(t, before.Y, c.EndPos.Y)
}

func TestArrowheadGeometry(t *testing.T) {
	c := &Connection{
		CornerPos: Point{100, 0},
		EndPos:    Point{100, 80},
	}
	head := c.Arrowhead()
	assert.Equal(t, c.EndPos, head[0])
	for _, p := range head[1:] {
		dist := math.Hypot(p.X-head[0].X, p.Y-head[0].Y)
		assert.InDelta(t, arrowLength, dist, 1e-9)
		// wings trail behind the tip along the approach direction
		assert.Less(t, p.Y, head[0].Y)
	}
	// symmetric about the segment
	assert.InDelta(t, head[0].X, (head[1].X+head[2].X)/2, 1e-9)
}

func TestStylePriority(t *testing.T) {
	c := &Connection{}
	assert.Equal(t, StyleDefault, c.Style(false))

	c.Strong = true
	assert.Equal(t, StyleStrong, c.Style(false))

	c.Hovered = true
	assert.Equal(t, StyleHovered, c.Style(false))

	assert.Equal(t, StyleSelected, c.Style(true))

	c.Selected = true
	assert.Equal(t, StyleSelected, c.Style(false))

	c.Highlighted = true
	assert.Equal(t, StyleHighlighted, c.Style(true))

	// clearing the transient flags restores the base style
	c.Highlighted = false
	c.Selected = false
	c.Hovered = false
	assert.Equal(t, StyleStrong, c.Style(false))
	c.Strong = false
	assert.Equal(t, StyleDefault, c.Style(false))
}

func TestConnectionHitTest(t *testing.T) {
	c := &Connection{
		StartPos:  Point{0, 0},
		CornerPos: Point{100, 0},
		EndPos:    Point{100, 100},
	}
	assert.True(t, c.HitTest(Point{50, 5}, connectionHitTolerance))
	assert.True(t, c.HitTest(Point{95, 50}, connectionHitTolerance))
	assert.False(t, c.HitTest(Point{50, 50}, connectionHitTolerance))
}
