package main

import "math"

// ConnStyle is the computed visual state of a connection, highest
// priority first.
type ConnStyle int

const (
	StyleHighlighted ConnStyle = iota
	StyleSelected
	StyleHovered
	StyleStrong
	StyleDefault
)

// Connection is a directed parent->child edge. The elbow route is
// cached in StartPos/CornerPos/EndPos and recomputed whenever either
// endpoint moves.
type Connection struct {
	Start NodeID
	End   NodeID

	Strong bool

	StartPos  Point
	CornerPos Point
	EndPos    Point

	Selected    bool
	Hovered     bool
	Highlighted bool
}

// Route computes the two-segment elbow between the node rects: a
// horizontal run from the start border to the corner, then a vertical
// run from the corner to the end border. The corner sits at the end
// center's x and the start center's y, snapped to the grid; the border
// exit points keep the corner's coordinate on their shared axis so the
// segments stay axis-aligned.
func (c *Connection) Route(startRect, endRect Rect) {
	p1 := startRect.Center()
	p2 := endRect.Center()

	c.CornerPos = Point{snapToGrid(p2.X), snapToGrid(p1.Y)}

	start := edgePoint(startRect, p1, c.CornerPos)
	c.StartPos = Point{snapToGrid(start.X), c.CornerPos.Y}

	end := edgePoint(endRect, p2, c.CornerPos)
	c.EndPos = Point{c.CornerPos.X, snapToGrid(end.Y)}
}

// Style resolves the visual state. endpointSelected is true when either
// endpoint node is selected; a connection touching a selected node
// draws selected even if the edge itself was never clicked.
func (c *Connection) Style(endpointSelected bool) ConnStyle {
	switch {
	case c.Highlighted:
		return StyleHighlighted
	case c.Selected || endpointSelected:
		return StyleSelected
	case c.Hovered:
		return StyleHovered
	case c.Strong:
		return StyleStrong
	default:
		return StyleDefault
	}
}

// Arrowhead returns the three corners of the filled triangle drawn at
// the end point, oriented along the corner->end segment.
func (c *Connection) Arrowhead() [3]Point {
	angle := math.Atan2(c.EndPos.Y-c.CornerPos.Y, c.EndPos.X-c.CornerPos.X)
	const halfAngle = math.Pi / 6
	tip := c.EndPos
	left := Point{
		tip.X - arrowLength*math.Cos(angle-halfAngle),
		tip.Y - arrowLength*math.Sin(angle-halfAngle),
	}
	right := Point{
		tip.X - arrowLength*math.Cos(angle+halfAngle),
		tip.Y - arrowLength*math.Sin(angle+halfAngle),
	}
	return [3]Point{tip, left, right}
}

// HitTest reports whether p lies within tolerance of either elbow
// segment.
func (c *Connection) HitTest(p Point, tolerance float64) bool {
	if distToSegment(p, c.StartPos, c.CornerPos) <= tolerance {
		return true
	}
	return distToSegment(p, c.CornerPos, c.EndPos) <= tolerance
}

func (c *Connection) touches(id NodeID) bool {
	return c.Start == id || c.End == id
}
