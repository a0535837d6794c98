package main

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrUnknownNode    = errors.New("unknown node")
	ErrCycle          = errors.New("connection would create a cycle")
	ErrSkipGeneration = errors.New("connection would skip a generation")
)

// Scene owns every node, connection and group. Nodes live in an arena
// keyed by NodeID and refer to each other only through handles; all
// mutation goes through the scene so adjacency sets, group membership
// and cached connector routes never drift apart.
type Scene struct {
	nodes      map[NodeID]*Node
	order      []NodeID // creation order, drives iteration and save layout
	conns      []*Connection
	groups     map[string]*Group
	groupOrder []string

	startNode NodeID // pending connect source / selection root
	nextID    NodeID
	topZ      float64
	bubbleSeq int

	hiddenTags   map[string]bool
	hiddenGroups map[string]bool

	log *log.Logger
}

func NewScene(logger *log.Logger) *Scene {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scene{
		nodes:        make(map[NodeID]*Node),
		order:        []NodeID{},
		conns:        []*Connection{},
		groups:       make(map[string]*Group),
		groupOrder:   []string{},
		nextID:       1,
		hiddenTags:   make(map[string]bool),
		hiddenGroups: make(map[string]bool),
		log:          logger,
	}
}

func (s *Scene) AddNode(text string, pos Point) *Node {
	node := NewNode(s.nextID, text, pos)
	s.nextID++
	s.topZ++
	node.Z = s.topZ
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	s.log.Debug("added node", "id", node.ID, "text", text)
	return node
}

// addNodeWithID re-inserts a node under a previous handle, used by
// undo to bring a deleted node back without renumbering.
func (s *Scene) addNodeWithID(id NodeID, text string, pos Point) *Node {
	node := NewNode(id, text, pos)
	s.topZ++
	node.Z = s.topZ
	s.nodes[id] = node
	s.order = append(s.order, id)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return node
}

func (s *Scene) Node(id NodeID) *Node {
	return s.nodes[id]
}

// Nodes returns all nodes in creation order.
func (s *Scene) Nodes() []*Node {
	result := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		if node := s.nodes[id]; node != nil {
			result = append(result, node)
		}
	}
	return result
}

func (s *Scene) NodeCount() int {
	return len(s.nodes)
}

// DeleteNode removes a node along with every connection touching it,
// its group membership and its thought bubbles.
func (s *Scene) DeleteNode(id NodeID) {
	node := s.nodes[id]
	if node == nil {
		return
	}

	kept := s.conns[:0]
	for _, c := range s.conns {
		if c.touches(id) {
			s.detachAdjacency(c)
			continue
		}
		kept = append(kept, c)
	}
	s.conns = kept

	if g := s.groups[node.GroupID]; g != nil {
		g.RemoveMember(id)
	}

	delete(s.nodes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.startNode == id {
		s.startNode = noNode
	}
	s.log.Debug("deleted node", "id", id)
}

func (s *Scene) detachAdjacency(c *Connection) {
	if start := s.nodes[c.Start]; start != nil {
		delete(start.Children, c.End)
	}
	if end := s.nodes[c.End]; end != nil {
		delete(end.Parents, c.Start)
	}
}

func (s *Scene) SetNodeText(id NodeID, text string) {
	if node := s.nodes[id]; node != nil {
		node.Text = text
	}
}

func (s *Scene) SetNodePos(id NodeID, pos Point) {
	node := s.nodes[id]
	if node == nil {
		return
	}
	node.Pos = pos
	s.rerouteFor(id)
	layoutThoughts(node)
}

func (s *Scene) MoveNode(id NodeID, dx, dy float64) {
	node := s.nodes[id]
	if node == nil {
		return
	}
	s.SetNodePos(id, Point{node.Pos.X + dx, node.Pos.Y + dy})
}

func (s *Scene) rerouteFor(id NodeID) {
	for _, c := range s.conns {
		if !c.touches(id) {
			continue
		}
		start := s.nodes[c.Start]
		end := s.nodes[c.End]
		if start == nil || end == nil {
			continue
		}
		c.Route(start.Rect(), end.Rect())
	}
}

// Connect draws a directed edge start->target. The graph stays a DAG:
// an edge that would point back into the start node's ancestry is a
// cycle, and an edge to a node already reachable further down is a
// skipped generation. Connecting an existing direct child again is a
// no-op. On success the target inherits the start node's group.
func (s *Scene) Connect(start, target NodeID) error {
	startNode := s.nodes[start]
	targetNode := s.nodes[target]
	if startNode == nil || targetNode == nil {
		return ErrUnknownNode
	}
	if start == target {
		return ErrCycle
	}
	if startNode.Children[target] {
		return nil
	}
	if s.Descendants(target)[start] {
		s.log.Warn("rejected connection: cycle", "start", start, "target", target)
		return ErrCycle
	}
	if s.Descendants(start)[target] {
		s.log.Warn("rejected connection: skips a generation", "start", start, "target", target)
		return ErrSkipGeneration
	}

	conn := &Connection{Start: start, End: target}
	conn.Route(startNode.Rect(), targetNode.Rect())
	s.conns = append(s.conns, conn)
	startNode.Children[target] = true
	targetNode.Parents[start] = true

	if g := s.groups[startNode.GroupID]; g != nil {
		targetNode.GroupID = g.ID
		g.AddMember(target)
	}

	s.log.Debug("connected nodes", "start", start, "target", target)
	return nil
}

// Descendants returns every node reachable from id by following
// connections forward. Connections with a dangling endpoint are
// skipped rather than trusted.
func (s *Scene) Descendants(id NodeID) map[NodeID]bool {
	return s.traverse(id, func(c *Connection) (NodeID, NodeID) { return c.Start, c.End })
}

// Ancestors returns every node that can reach id.
func (s *Scene) Ancestors(id NodeID) map[NodeID]bool {
	return s.traverse(id, func(c *Connection) (NodeID, NodeID) { return c.End, c.Start })
}

func (s *Scene) traverse(id NodeID, dir func(*Connection) (from, to NodeID)) map[NodeID]bool {
	visited := make(map[NodeID]bool)
	if s.nodes[id] == nil {
		return visited
	}
	queue := []NodeID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, c := range s.conns {
			from, to := dir(c)
			if from != current || visited[to] {
				continue
			}
			if s.nodes[to] == nil {
				continue
			}
			visited[to] = true
			queue = append(queue, to)
		}
	}
	delete(visited, id)
	return visited
}

// SelectStart makes id the selection root: the node is selected and
// raised, and every connection touching it or its descendant subtree
// is both selected and highlighted. Any previous selection clears
// first.
func (s *Scene) SelectStart(id NodeID) {
	node := s.nodes[id]
	if node == nil {
		return
	}
	s.ClearSelection()
	s.startNode = id
	node.Selected = true
	s.BringToFront(id)

	desc := s.Descendants(id)
	for _, c := range s.conns {
		c.Selected = s.inSubtree(c, id, desc)
	}
	s.HighlightConnections(id, true)
	s.log.Debug("selection root set", "id", id, "descendants", len(desc))
}

func (s *Scene) inSubtree(c *Connection, id NodeID, desc map[NodeID]bool) bool {
	return c.touches(id) || desc[c.Start] || desc[c.End]
}

// HighlightConnections applies or removes the glow on every connection
// touching id or its descendant subtree, returning how many changed.
func (s *Scene) HighlightConnections(id NodeID, on bool) int {
	if s.nodes[id] == nil {
		return 0
	}
	desc := s.Descendants(id)
	count := 0
	for _, c := range s.conns {
		if s.inSubtree(c, id, desc) {
			c.Highlighted = on
			count++
		}
	}
	return count
}

func (s *Scene) ClearSelection() {
	for _, node := range s.nodes {
		node.Selected = false
	}
	for _, c := range s.conns {
		c.Selected = false
		c.Highlighted = false
		c.Hovered = false
	}
	s.startNode = noNode
}

func (s *Scene) StartNode() NodeID {
	return s.startNode
}

func (s *Scene) SelectedNode() *Node {
	for _, node := range s.nodes {
		if node.Selected {
			return node
		}
	}
	return nil
}

func (s *Scene) BringToFront(id NodeID) {
	if node := s.nodes[id]; node != nil {
		s.topZ++
		node.Z = s.topZ
	}
}

func (s *Scene) Connections() []*Connection {
	return s.conns
}

func (s *Scene) ConnectionBetween(start, end NodeID) *Connection {
	for _, c := range s.conns {
		if c.Start == start && c.End == end {
			return c
		}
	}
	return nil
}

func (s *Scene) DeleteConnection(conn *Connection) {
	for i, c := range s.conns {
		if c == conn {
			s.detachAdjacency(c)
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			s.log.Debug("deleted connection", "start", c.Start, "end", c.End)
			return
		}
	}
}

// RestoreConnection puts back a previously deleted edge, rebuilding
// both adjacency sets. Used by undo.
func (s *Scene) RestoreConnection(start, end NodeID, strong bool) {
	startNode := s.nodes[start]
	endNode := s.nodes[end]
	if startNode == nil || endNode == nil {
		return
	}
	if startNode.Children[end] {
		return
	}
	conn := &Connection{Start: start, End: end, Strong: strong}
	conn.Route(startNode.Rect(), endNode.Rect())
	s.conns = append(s.conns, conn)
	startNode.Children[end] = true
	endNode.Parents[start] = true
}

// ConnVisible reports whether a connection should draw: both endpoints
// must exist and be visible. Collapsing a group hides its non-anchor
// members, which hides every edge touching them through this rule.
func (s *Scene) ConnVisible(c *Connection) bool {
	start := s.nodes[c.Start]
	end := s.nodes[c.End]
	if start == nil || end == nil {
		return false
	}
	return start.Visible() && end.Visible()
}

// endpointSelected reports whether either endpoint node is selected.
func (s *Scene) endpointSelected(c *Connection) bool {
	if start := s.nodes[c.Start]; start != nil && start.Selected {
		return true
	}
	if end := s.nodes[c.End]; end != nil && end.Selected {
		return true
	}
	return false
}

// ConnStyleOf resolves the full style priority for rendering.
func (s *Scene) ConnStyleOf(c *Connection) ConnStyle {
	return c.Style(s.endpointSelected(c))
}

// CreateGroup registers a new group. An empty color picks the next
// palette entry.
func (s *Scene) CreateGroup(name, color string, anchor NodeID) *Group {
	if color == "" {
		color = groupPalette[len(s.groups)%len(groupPalette)]
	}
	g := NewGroup(name, color, anchor)
	s.groups[g.ID] = g
	s.groupOrder = append(s.groupOrder, g.ID)
	if node := s.nodes[anchor]; node != nil {
		node.GroupID = g.ID
	}
	s.log.Debug("created group", "id", g.ID, "name", name, "color", color)
	return g
}

func (s *Scene) Group(id string) *Group {
	return s.groups[id]
}

// Groups returns all groups in creation order.
func (s *Scene) Groups() []*Group {
	result := make([]*Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		if g := s.groups[id]; g != nil {
			result = append(result, g)
		}
	}
	return result
}

// AssignGroup puts a node and its whole descendant subtree into the
// group. A missing group id is a no-op.
func (s *Scene) AssignGroup(id NodeID, groupID string) {
	g := s.groups[groupID]
	node := s.nodes[id]
	if g == nil || node == nil {
		s.log.Warn("assign group skipped", "node", id, "group", groupID)
		return
	}
	node.GroupID = g.ID
	g.AddMember(id)
	for desc := range s.Descendants(id) {
		if descNode := s.nodes[desc]; descNode != nil {
			descNode.GroupID = g.ID
			g.AddMember(desc)
		}
	}
	s.applyCollapse(g)
}

// RemoveFromGroup detaches a node from its group and restores its
// visibility.
func (s *Scene) RemoveFromGroup(id NodeID) {
	node := s.nodes[id]
	if node == nil || node.GroupID == "" {
		return
	}
	if g := s.groups[node.GroupID]; g != nil {
		g.RemoveMember(id)
	}
	node.GroupID = ""
	node.Hidden = false
}

// ToggleGroup flips the group's expanded state and applies the
// visibility contract: collapsed hides exactly the non-anchor members.
// Returns the new expanded state.
func (s *Scene) ToggleGroup(groupID string) bool {
	g := s.groups[groupID]
	if g == nil {
		return false
	}
	g.Expanded = !g.Expanded
	s.applyCollapse(g)
	s.log.Debug("toggled group", "id", g.ID, "expanded", g.Expanded)
	return g.Expanded
}

func (s *Scene) applyCollapse(g *Group) {
	for member := range g.Members {
		node := s.nodes[member]
		if node == nil || member == g.Anchor {
			continue
		}
		node.Hidden = !g.Expanded
	}
	if anchor := s.nodes[g.Anchor]; anchor != nil {
		anchor.Hidden = false
	}
}

// AddThought attaches a bubble to a node and re-fans the node's
// bubbles.
func (s *Scene) AddThought(id NodeID, text string) *ThoughtBubble {
	node := s.nodes[id]
	if node == nil {
		return nil
	}
	s.bubbleSeq++
	bubble := &ThoughtBubble{
		Text:    text,
		Radius:  thoughtRadius,
		Created: time.Now(),
		Seq:     s.bubbleSeq,
		Z:       node.Z - 0.5 + float64(s.bubbleSeq)*0.01,
	}
	node.Thoughts = append(node.Thoughts, bubble)
	layoutThoughts(node)
	s.log.Debug("added thought", "node", id, "count", len(node.Thoughts))
	return bubble
}

// ItemAt hit-tests a scene point: visible nodes first (topmost z
// wins), then connections within tolerance of their segments.
func (s *Scene) ItemAt(p Point) (*Node, *Connection) {
	var best *Node
	for _, node := range s.nodes {
		if !node.Visible() || !node.Rect().Contains(p) {
			continue
		}
		if best == nil || node.Z > best.Z {
			best = node
		}
	}
	if best != nil {
		return best, nil
	}
	for _, c := range s.conns {
		if s.ConnVisible(c) && c.HitTest(p, connectionHitTolerance) {
			return nil, c
		}
	}
	return nil, nil
}

// NodesInRect returns the visible nodes whose boxes intersect r, in
// creation order.
func (s *Scene) NodesInRect(r Rect) []*Node {
	var result []*Node
	for _, id := range s.order {
		node := s.nodes[id]
		if node != nil && node.Visible() && node.Rect().Intersects(r) {
			result = append(result, node)
		}
	}
	return result
}

// SnapToNeighbor resolves a drop that left the node overlapping
// another: it snaps to the nearest of eight anchor positions around
// the first overlapped neighbor. Returns true when a snap happened.
func (s *Scene) SnapToNeighbor(id NodeID) bool {
	node := s.nodes[id]
	if node == nil {
		return false
	}

	var neighbor *Node
	for _, oid := range s.order {
		other := s.nodes[oid]
		if other == nil || other.ID == id || !other.Visible() {
			continue
		}
		if node.Rect().Intersects(other.Rect()) {
			neighbor = other
			break
		}
	}
	if neighbor == nil {
		return false
	}

	o := neighbor.Rect()
	left := o.X - nodeWidth - gridSize
	right := o.Right() + gridSize
	top := o.Y - nodeHeight - gridSize
	bottom := o.Bottom() + gridSize

	candidates := []Point{
		{left, o.Y}, {right, o.Y},
		{o.X, top}, {o.X, bottom},
		{left, top}, {right, top},
		{left, bottom}, {right, bottom},
	}

	best := candidates[0]
	bestDist := -1.0
	for _, cand := range candidates {
		dx := cand.X - node.Pos.X
		dy := cand.Y - node.Pos.Y
		dist := dx*dx + dy*dy
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = cand
		}
	}
	s.SetNodePos(id, best)
	s.log.Debug("snapped node beside neighbor", "node", id, "neighbor", neighbor.ID)
	return true
}

// SetTagHidden hides or shows every node carrying the tag (a node
// survives as long as one of its tags is still visible).
func (s *Scene) SetTagHidden(tag string, hidden bool) {
	if hidden {
		s.hiddenTags[tag] = true
	} else {
		delete(s.hiddenTags, tag)
	}
	s.applyFilters()
}

// SetGroupHidden filters out a whole group regardless of collapse
// state.
func (s *Scene) SetGroupHidden(groupID string, hidden bool) {
	if hidden {
		s.hiddenGroups[groupID] = true
	} else {
		delete(s.hiddenGroups, groupID)
	}
	s.applyFilters()
}

func (s *Scene) applyFilters() {
	for _, node := range s.nodes {
		node.Filtered = s.filteredOut(node)
	}
}

func (s *Scene) filteredOut(n *Node) bool {
	if n.GroupID != "" && s.hiddenGroups[n.GroupID] {
		return true
	}
	if len(n.Tags) == 0 {
		return false
	}
	for tag := range n.Tags {
		if !s.hiddenTags[tag] {
			return false
		}
	}
	return true
}

// AllTags returns every tag in use, sorted.
func (s *Scene) AllTags() []string {
	seen := make(map[string]bool)
	for _, node := range s.nodes {
		for tag := range node.Tags {
			seen[tag] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Clear empties the scene for a new map.
func (s *Scene) Clear() {
	s.nodes = make(map[NodeID]*Node)
	s.order = []NodeID{}
	s.conns = []*Connection{}
	s.groups = make(map[string]*Group)
	s.groupOrder = []string{}
	s.startNode = noNode
	s.nextID = 1
	s.topZ = 0
	s.bubbleSeq = 0
	s.hiddenTags = make(map[string]bool)
	s.hiddenGroups = make(map[string]bool)
}
