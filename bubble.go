package main

import (
	"math"
	"sort"
	"time"
)

// ThoughtBubble is a free-floating ellipse attached to a node. Pos is
// the bubble's center; the fan layout owns it, the user never drags a
// bubble directly.
type ThoughtBubble struct {
	Text    string
	Radius  float64
	Created time.Time
	Seq     int // tie-break when two bubbles share a timestamp
	Pos     Point
	Z       float64

	// Unresolved marks a bubble whose overlap could not be pushed
	// apart within maxCollisionAttempts. Renderers may flag it; layout
	// keeps the fan position.
	Unresolved bool
}

// Bounds is the bubble's bounding box: the ellipse plus room for the
// tail circles below it.
func (b *ThoughtBubble) Bounds() Rect {
	r := b.Radius
	return Rect{b.Pos.X - 1.1*r, b.Pos.Y - 0.9*r, 2.2 * r, 1.8 * r}
}

func (b *ThoughtBubble) Intersects(o *ThoughtBubble) bool {
	return b.Bounds().Intersects(o.Bounds())
}

// layoutThoughts fans a node's bubbles over a 60 degree arc above the
// node, oldest first. Bubbles near the middle of the fan sit closest;
// the distance grows toward the ends so neighbors start staggered.
// A second pass pushes colliding bubbles radially away from the node
// in padding-sized steps, giving up (and reverting) after a bounded
// number of attempts.
func layoutThoughts(n *Node) {
	count := len(n.Thoughts)
	if count == 0 {
		return
	}

	sorted := make([]*ThoughtBubble, count)
	copy(sorted, n.Thoughts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Created.Equal(sorted[j].Created) {
			return sorted[i].Seq < sorted[j].Seq
		}
		return sorted[i].Created.Before(sorted[j].Created)
	})

	center := n.Rect().Center()
	halfSpread := thoughtAngleSpread / 2 * math.Pi / 180
	startAngle := -math.Pi/2 - halfSpread
	endAngle := -math.Pi/2 + halfSpread

	for i, b := range sorted {
		t := 0.0
		if count > 1 {
			t = float64(i) / float64(count-1)
		}
		angle := startAngle + (endAngle-startAngle)*t

		dist := nodeHeight/2 + b.Radius*0.8 + thoughtMinPadding
		if count > 1 {
			dist += math.Abs(float64(i)-float64(count-1)/2) * thoughtMinPadding * 1.5
		}

		b.Pos = Point{
			center.X + math.Cos(angle)*dist,
			center.Y + math.Sin(angle)*dist,
		}
		b.Unresolved = false
	}

	var placed []*ThoughtBubble
	for _, b := range sorted {
		resolveCollision(b, placed, center)
		placed = append(placed, b)
	}
}

func collidesWithAny(b *ThoughtBubble, placed []*ThoughtBubble) bool {
	for _, other := range placed {
		if b.Intersects(other) {
			return true
		}
	}
	return false
}

// resolveCollision pushes b outward along the ray from the node center
// through the bubble until it stops overlapping the bubbles already
// placed. Reverts to the fan position when the attempts run out.
func resolveCollision(b *ThoughtBubble, placed []*ThoughtBubble, nodeCenter Point) bool {
	if !collidesWithAny(b, placed) {
		return true
	}

	orig := b.Pos
	dx := b.Pos.X - nodeCenter.X
	dy := b.Pos.Y - nodeCenter.Y
	length := math.Hypot(dx, dy)
	if length > 0 {
		dx /= length
		dy /= length
	} else {
		dx, dy = 0, -1
	}

	for attempt := 1; attempt <= maxCollisionAttempts; attempt++ {
		step := thoughtMinPadding * float64(attempt)
		b.Pos = Point{orig.X + dx*step, orig.Y + dy*step}
		if !collidesWithAny(b, placed) {
			return true
		}
	}

	b.Pos = orig
	b.Unresolved = true
	return false
}
