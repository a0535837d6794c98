package main

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellCanvas is one rendered frame: a rune grid plus a parallel grid
// of foreground colors ("" = terminal default).
type cellCanvas struct {
	width  int
	height int
	cells  [][]rune
	colors [][]string
}

var styleCache = map[string]lipgloss.Style{}

func cachedStyle(color string) lipgloss.Style {
	if style, ok := styleCache[color]; ok {
		return style
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	styleCache[color] = style
	return style
}

func newCellCanvas(width, height int) *cellCanvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	cells := make([][]rune, height)
	colors := make([][]string, height)
	for i := range cells {
		cells[i] = make([]rune, width)
		colors[i] = make([]string, width)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	return &cellCanvas{width: width, height: height, cells: cells, colors: colors}
}

func (cc *cellCanvas) set(col, row int, r rune, color string) {
	if row < 0 || row >= cc.height || col < 0 || col >= cc.width {
		return
	}
	cc.cells[row][col] = r
	cc.colors[row][col] = color
}

func (cc *cellCanvas) text(col, row int, s string, color string) {
	for i, r := range s {
		cc.set(col+i, row, r, color)
	}
}

// lines flattens the grid, batching runs of equal color into one
// lipgloss render call per run.
func (cc *cellCanvas) lines() []string {
	result := make([]string, cc.height)
	for i := 0; i < cc.height; i++ {
		var line strings.Builder
		var run strings.Builder
		currentColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if currentColor == "" {
				line.WriteString(run.String())
			} else {
				line.WriteString(cachedStyle(currentColor).Render(run.String()))
			}
			run.Reset()
		}
		for j := 0; j < cc.width; j++ {
			if cc.colors[i][j] != currentColor {
				flush()
				currentColor = cc.colors[i][j]
			}
			run.WriteRune(cc.cells[i][j])
		}
		flush()
		result[i] = line.String()
	}
	return result
}

// worldToCell projects scene coordinates onto the terminal grid.
func worldToCell(p Point, panX, panY int) (int, int) {
	col := int(math.Floor(p.X/cellWidth)) - panX
	row := int(math.Floor(p.Y/cellHeight)) - panY
	return col, row
}

const (
	nodeCellWidth  = int(nodeWidth / cellWidth)
	nodeCellHeight = 3
)

// renderScene draws one frame: connections behind, then bubbles, then
// nodes bottom-z first, badges on top, cursor last.
func renderScene(s *Scene, width, height, panX, panY int, cursorX, cursorY int, showCursor, blinkOn bool) []string {
	cc := newCellCanvas(width, height)

	for _, c := range s.Connections() {
		if !s.ConnVisible(c) {
			continue
		}
		drawConnection(cc, c, s.ConnStyleOf(c), panX, panY)
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
		drawNode(cc, node, blinkOn, panX, panY)
		drawBadge(cc, s, node, panX, panY)
	}

	if showCursor {
		cc.set(cursorX, cursorY, '█', "")
	}

	return cc.lines()
}

func connColor(style ConnStyle) string {
	switch style {
	case StyleHighlighted:
		return colorConnHighlight
	case StyleSelected:
		return colorConnSelected
	case StyleHovered:
		return colorConnHovered
	case StyleStrong:
		return colorConnStrong
	default:
		return colorConnDefault
	}
}

func drawConnection(cc *cellCanvas, c *Connection, style ConnStyle, panX, panY int) {
	color := connColor(style)
	startCol, _ := worldToCell(c.StartPos, panX, panY)
	cornerCol, cornerRow := worldToCell(c.CornerPos, panX, panY)
	endCol, endRow := worldToCell(c.EndPos, panX, panY)

	horizontal := '─'
	if style == StyleStrong || style == StyleHighlighted {
		horizontal = '━'
	}

	for col := min(startCol, cornerCol) + 1; col < max(startCol, cornerCol); col++ {
		cc.set(col, cornerRow, horizontal, color)
	}
	for row := min(cornerRow, endRow) + 1; row < max(cornerRow, endRow); row++ {
		cc.set(cornerCol, row, '│', color)
	}

	if cornerCol != startCol && cornerRow != endRow {
		cc.set(cornerCol, cornerRow, cornerGlyph(startCol, cornerCol, cornerRow, endRow), color)
	}

	arrow := '▼'
	switch {
	case endRow < cornerRow:
		arrow = '▲'
	case endRow == cornerRow && endCol > cornerCol:
		arrow = '►'
	case endRow == cornerRow && endCol < cornerCol:
		arrow = '◄'
	case endRow == cornerRow && endCol == cornerCol:
		// flat route: corner and end coincide, point along the run
		if cornerCol >= startCol {
			arrow = '►'
		} else {
			arrow = '◄'
		}
	}
	cc.set(endCol, endRow, arrow, color)
}

func cornerGlyph(startCol, cornerCol, cornerRow, endRow int) rune {
	fromLeft := startCol < cornerCol
	goingDown := endRow > cornerRow
	switch {
	case fromLeft && goingDown:
		return '┐'
	case fromLeft && !goingDown:
		return '┘'
	case !fromLeft && goingDown:
		return '┌'
	default:
		return '└'
	}
}

func drawNode(cc *cellCanvas, node *Node, blinkOn bool, panX, panY int) {
	col, row := worldToCell(node.Pos, panX, panY)
	w := nodeCellWidth
	h := nodeCellHeight

	borderColor := colorNodeBorder
	corner, horizontal, vertical := '+', '-', '|'
	if node.Selected {
		corner, horizontal, vertical = '#', '#', '#'
		if blinkOn {
			borderColor = colorNodeSelected
		} else {
			borderColor = colorNodeBlinkAlt
		}
	}

	for y := row; y < row+h; y++ {
		for x := col; x < col+w; x++ {
			if y == row || y == row+h-1 {
				if x == col || x == col+w-1 {
					cc.set(x, y, corner, borderColor)
				} else {
					cc.set(x, y, horizontal, borderColor)
				}
			} else if x == col || x == col+w-1 {
				cc.set(x, y, vertical, borderColor)
			} else {
				cc.set(x, y, ' ', "")
			}
		}
	}

	text := node.Text
	maxLen := w - 2
	if maxLen < 0 {
		maxLen = 0
	}
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	textCol := col + (w-len(text))/2
	cc.text(textCol, row+1, text, colorNodeFill)

	if tags := node.SortedTags(); len(tags) > 0 {
		label := "[" + strings.Join(tags, ",") + "]"
		if len(label) > w-4 && w > 4 {
			label = label[:w-4]
		}
		cc.text(col+2, row+h-1, label, colorConnDefault)
	}
}

func drawBadge(cc *cellCanvas, s *Scene, node *Node, panX, panY int) {
	g := s.Group(node.GroupID)
	if g == nil {
		return
	}
	if !g.Expanded && node.ID != g.Anchor {
		return
	}
	col, row := worldToCell(node.Pos, panX, panY)
	if node.ID == g.Anchor {
		cc.text(col, row, "("+g.ClusterBadgeLabel()+")", g.Color)
	} else {
		cc.text(col, row, "("+g.MemberBadgeLabel()+")", g.Color)
	}
}

func drawThought(cc *cellCanvas, b *ThoughtBubble, panX, panY int) {
	col, row := worldToCell(b.Pos, panX, panY)

	text := b.Text
	maxLen := int(2*b.Radius/cellWidth) - 2
	if maxLen < 4 {
		maxLen = 4
	}
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	label := "( " + text + " )"
	startCol := col - len(label)/2
	cc.text(startCol, row, label, colorThoughtOutline)
	// tail toward the node below
	cc.set(col-1, row+1, 'o', colorThoughtOutline)
	cc.set(col-2, row+2, '°', colorThoughtOutline)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
