package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

const exportPadding = 40.0

// exportPNG renders the whole scene (not just the viewport) to a PNG.
func exportPNG(s *Scene, filename string, scale float64) error {
	if scale <= 0 {
		scale = 1.0
	}

	minX, minY, maxX, maxY := sceneBounds(s)
	width := int(math.Ceil((maxX - minX) * scale))
	height := int(math.Ceil((maxY - minY) * scale))
	if width < 1 || height < 1 {
		return fmt.Errorf("nothing to export")
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-minX, -minY)

	parsed, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: 13})
	dc.SetFontFace(face)

	for _, c := range s.Connections() {
		if !s.ConnVisible(c) {
			continue
		}
		paintConnection(dc, c, s.ConnStyleOf(c))
	}

	nodes := s.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Z < nodes[j].Z })

	for _, node := range nodes {
		if !node.Visible() {
			continue
		}
		for _, bubble := range node.Thoughts {
			paintThought(dc, node, bubble)
		}
	}
	for _, node := range nodes {
		if !node.Visible() {
			continue
		}
		paintNode(dc, node)
		paintBadge(dc, s, node)
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	s.log.Info("exported png", "file", filename, "width", width, "height", height)
	return nil
}

func sceneBounds(s *Scene) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	include := func(r Rect) {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}

	for _, node := range s.Nodes() {
		if !node.Visible() {
			continue
		}
		include(node.Rect())
		for _, bubble := range node.Thoughts {
			include(bubble.Bounds())
		}
	}
	for _, c := range s.Connections() {
		if !s.ConnVisible(c) {
			continue
		}
		include(Rect{c.CornerPos.X, c.CornerPos.Y, 0, 0})
	}

	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX - exportPadding, minY - exportPadding, maxX + exportPadding, maxY + exportPadding
}

func paintConnection(dc *gg.Context, c *Connection, style ConnStyle) {
	dc.SetHexColor(connColor(style))
	width := 2.0
	if style == StyleStrong || style == StyleHighlighted {
		width = 3.0
	}
	dc.SetLineWidth(width)
	dc.MoveTo(c.StartPos.X, c.StartPos.Y)
	dc.LineTo(c.CornerPos.X, c.CornerPos.Y)
	dc.LineTo(c.EndPos.X, c.EndPos.Y)
	dc.Stroke()

	head := c.Arrowhead()
	dc.MoveTo(head[0].X, head[0].Y)
	dc.LineTo(head[1].X, head[1].Y)
	dc.LineTo(head[2].X, head[2].Y)
	dc.ClosePath()
	dc.Fill()
}

func paintNode(dc *gg.Context, node *Node) {
	r := node.Rect()

	dc.SetHexColor(colorNodeFill)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 8)
	dc.FillPreserve()
	if node.Selected {
		dc.SetHexColor(colorNodeSelected)
		dc.SetLineWidth(3)
	} else {
		dc.SetHexColor(colorNodeBorder)
		dc.SetLineWidth(2)
	}
	dc.Stroke()

	center := r.Center()
	dc.SetHexColor("#FFFFFF")
	dc.DrawStringAnchored(node.Text, center.X, center.Y, 0.5, 0.5)

	if tags := node.SortedTags(); len(tags) > 0 {
		dc.SetHexColor("#546E7A")
		x := r.X
		for _, tag := range tags {
			label := "[" + tag + "]"
			w, _ := dc.MeasureString(label)
			dc.DrawString(label, x, r.Bottom()+14)
			x += w + 6
		}
	}
}

func paintBadge(dc *gg.Context, s *Scene, node *Node) {
	g := s.Group(node.GroupID)
	if g == nil {
		return
	}
	if !g.Expanded && node.ID != g.Anchor {
		return
	}

	r := node.Rect()
	if node.ID == g.Anchor {
		fill := g.Color
		if !g.Expanded {
			fill = lighterHex(g.Color)
		}
		dc.SetHexColor(fill)
		dc.DrawCircle(r.X, r.Y, 12)
		dc.Fill()
		dc.SetHexColor("#FFFFFF")
		dc.DrawStringAnchored(g.ClusterBadgeLabel(), r.X, r.Y, 0.5, 0.5)
	} else {
		dc.SetHexColor(g.Color)
		dc.DrawCircle(r.X, r.Y, 8)
		dc.Fill()
		dc.SetHexColor("#FFFFFF")
		dc.DrawStringAnchored(g.MemberBadgeLabel(), r.X, r.Y, 0.5, 0.5)
	}
}

func paintThought(dc *gg.Context, node *Node, b *ThoughtBubble) {
	dc.SetHexColor(colorThoughtFill)
	dc.DrawEllipse(b.Pos.X, b.Pos.Y, b.Radius, b.Radius*0.7)
	dc.FillPreserve()
	dc.SetHexColor(colorThoughtOutline)
	dc.SetLineWidth(1.5)
	dc.Stroke()

	// tail: two shrinking circles toward the node
	nodeCenter := node.Rect().Center()
	dx := nodeCenter.X - b.Pos.X
	dy := nodeCenter.Y - b.Pos.Y
	length := math.Hypot(dx, dy)
	if length > 0 {
		dx /= length
		dy /= length
	}
	for i, size := range []float64{6, 3} {
		offset := b.Radius*0.8 + float64(i)*12
		dc.SetHexColor(colorThoughtFill)
		dc.DrawCircle(b.Pos.X+dx*offset, b.Pos.Y+dy*offset, size)
		dc.FillPreserve()
		dc.SetHexColor(colorThoughtOutline)
		dc.Stroke()
	}

	dc.SetHexColor("#424242")
	dc.DrawStringAnchored(b.Text, b.Pos.X, b.Pos.Y, 0.5, 0.5)
}

// lighterHex blends a #RRGGBB color halfway toward white.
func lighterHex(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	r = (r + 255) / 2
	g = (g + 255) / 2
	b = (b + 255) / 2
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// exportVisualTXT writes the current viewport as plain text, the same
// cell grid the terminal shows minus the colors.
func exportVisualTXT(s *Scene, filename string, width, height, panX, panY int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}

	cc := newCellCanvas(width, height)
	for _, c := range s.Connections() {
		if s.ConnVisible(c) {
			drawConnection(cc, c, StyleDefault, panX, panY)
		}
	}
	nodes := s.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Z < nodes[j].Z })
	for _, node := range nodes {
		if !node.Visible() {
			continue
		}
		for _, bubble := range node.Thoughts {
			drawThought(cc, bubble, panX, panY)
		}
	}
	for _, node := range nodes {
		if !node.Visible() {
			continue
		}
		drawNode(cc, node, false, panX, panY)
		drawBadge(cc, s, node, panX, panY)
	}

	for _, row := range cc.cells {
		if _, err := fmt.Fprintln(file, string(row)); err != nil {
			return err
		}
	}
	return nil
}
