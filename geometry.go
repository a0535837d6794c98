package main

import "math"

type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// snapToGrid rounds v to the nearest multiple of gridSize.
func snapToGrid(v float64) float64 {
	return math.Round(v/gridSize) * gridSize
}

// segmentIntersection returns the intersection of segments a1-a2 and
// b1-b2, or false when they are parallel or the crossing falls outside
// either segment.
func segmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	d := (a2.X-a1.X)*(b2.Y-b1.Y) - (a2.Y-a1.Y)*(b2.X-b1.X)
	if math.Abs(d) < 1e-9 {
		return Point{}, false
	}
	t := ((b1.X-a1.X)*(b2.Y-b1.Y) - (b1.Y-a1.Y)*(b2.X-b1.X)) / d
	u := ((b1.X-a1.X)*(a2.Y-a1.Y) - (b1.Y-a1.Y)*(a2.X-a1.X)) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{a1.X + t*(a2.X-a1.X), a1.Y + t*(a2.Y-a1.Y)}, true
}

// edgePoint finds where the segment from-to crosses the border of r.
// Edges are tested top, right, bottom, left; the first hit wins. When
// the segment never crosses the border (e.g. both endpoints inside),
// from is returned unchanged.
func edgePoint(r Rect, from, to Point) Point {
	tl := Point{r.X, r.Y}
	tr := Point{r.Right(), r.Y}
	br := Point{r.Right(), r.Bottom()}
	bl := Point{r.X, r.Bottom()}

	edges := [4][2]Point{
		{tl, tr},
		{tr, br},
		{br, bl},
		{bl, tl},
	}
	for _, e := range edges {
		if p, ok := segmentIntersection(from, to, e[0], e[1]); ok {
			return p
		}
	}
	return from
}

// distToSegment is the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
