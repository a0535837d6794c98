package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{8, 0},
		{12, 20},
		{20, 20},
		{30, 40},
		{-8, 0},
		{-12, -20},
		{147, 140},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, snapToGrid(tc.in), "snapToGrid(%v)", tc.in)
	}
}

func TestSegmentIntersection(t *testing.T) {
	p, ok := segmentIntersection(Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0})
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 5, p.Y, 1e-9)

	// parallel
	_, ok = segmentIntersection(Point{0, 0}, Point{10, 0}, Point{0, 5}, Point{10, 5})
	assert.False(t, ok)

	// lines cross but outside the segments
	_, ok = segmentIntersection(Point{0, 0}, Point{1, 1}, Point{0, 10}, Point{10, 0})
	assert.False(t, ok)
}

func TestEdgePoint(t *testing.T) {
	r := Rect{0, 0, nodeWidth, nodeHeight}
	center := r.Center()

	right := edgePoint(r, center, Point{400, center.Y})
	assert.InDelta(t, nodeWidth, right.X, 1e-9)
	assert.InDelta(t, center.Y, right.Y, 1e-9)

	top := edgePoint(r, center, Point{center.X, -200})
	assert.InDelta(t, center.X, top.X, 1e-9)
	assert.InDelta(t, 0, top.Y, 1e-9)

	// no border crossing: falls back to the from point
	inside := edgePoint(r, center, Point{center.X + 5, center.Y + 5})
	assert.Equal(t, center, inside)
}

func TestRectContainsAndIntersects(t *testing.T) {
	r := Rect{10, 10, 100, 50}
	assert.True(t, r.Contains(Point{10, 10}))
	assert.True(t, r.Contains(Point{60, 35}))
	assert.False(t, r.Contains(Point{9, 10}))
	assert.False(t, r.Contains(Point{60, 61}))

	assert.True(t, r.Intersects(Rect{100, 50, 100, 50}))
	assert.False(t, r.Intersects(Rect{110, 10, 10, 10}))
	assert.False(t, r.Intersects(Rect{10, 60, 100, 50}))
}

func TestDistToSegment(t *testing.T) {
	a := Point{0, 0}
	b := Point{10, 0}
	assert.InDelta(t, 5, distToSegment(Point{5, 5}, a, b), 1e-9)
	assert.InDelta(t, 0, distToSegment(Point{5, 0}, a, b), 1e-9)
	// beyond the end, distance is to the endpoint
	assert.InDelta(t, 5, distToSegment(Point{15, 0}, a, b), 1e-9)
	// degenerate segment
	assert.InDelta(t, 5, distToSegment(Point{3, 4}, a, a), 1e-9)
}
