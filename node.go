package main

import "sort"

// NodeID is an opaque handle into the scene's node arena.
type NodeID int

const noNode NodeID = 0

// Node is a single box on the canvas. All cross-references (parents,
// children, group) are held as handles, never as pointers; the scene
// keeps the adjacency sets of both endpoints consistent on every
// mutation.
type Node struct {
	ID      NodeID
	Text    string
	Pos     Point // top-left corner
	Tags    map[string]bool
	GroupID string // empty = ungrouped

	Parents  map[NodeID]bool
	Children map[NodeID]bool
	Thoughts []*ThoughtBubble

	Z        float64
	Selected bool

	// Hidden is set by group collapse, Filtered by the tag/group
	// visibility filters. Both must be clear for the node to show.
	Hidden   bool
	Filtered bool
}

func NewNode(id NodeID, text string, pos Point) *Node {
	return &Node{
		ID:       id,
		Text:     text,
		Pos:      pos,
		Tags:     make(map[string]bool),
		Parents:  make(map[NodeID]bool),
		Children: make(map[NodeID]bool),
		Thoughts: []*ThoughtBubble{},
	}
}

// Rect is the node's bounding box. Nodes have a fixed size.
func (n *Node) Rect() Rect {
	return Rect{n.Pos.X, n.Pos.Y, nodeWidth, nodeHeight}
}

func (n *Node) Visible() bool {
	return !n.Hidden && !n.Filtered
}

func (n *Node) AddTag(tag string) {
	if tag == "" {
		return
	}
	n.Tags[tag] = true
}

func (n *Node) RemoveTag(tag string) {
	delete(n.Tags, tag)
}

func (n *Node) HasTag(tag string) bool {
	return n.Tags[tag]
}

// SortedTags returns the tags in a stable order for rendering and
// persistence.
func (n *Node) SortedTags() []string {
	tags := make([]string, 0, len(n.Tags))
	for tag := range n.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
