package main

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Group clusters nodes under a name and color. The first member is the
// anchor: when the group is collapsed the anchor stays visible and
// stands in for the rest. Invariant: the anchor is always a member,
// and it is unset exactly when the group is empty.
type Group struct {
	ID       string
	Name     string
	Color    string
	Expanded bool
	Anchor   NodeID
	Members  map[NodeID]bool
}

func NewGroup(name, color string, anchor NodeID) *Group {
	g := &Group{
		ID:       uuid.NewString(),
		Name:     name,
		Color:    color,
		Expanded: true,
		Anchor:   noNode,
		Members:  make(map[NodeID]bool),
	}
	if anchor != noNode {
		g.Anchor = anchor
		g.Members[anchor] = true
	}
	return g
}

// AddMember adds a node to the group. The first member becomes the
// anchor. Idempotent.
func (g *Group) AddMember(id NodeID) {
	if id == noNode || g.Members[id] {
		return
	}
	g.Members[id] = true
	if g.Anchor == noNode {
		g.Anchor = id
	}
}

// RemoveMember removes a node. When the anchor leaves, another member
// takes over; when the last member leaves, the anchor clears.
func (g *Group) RemoveMember(id NodeID) {
	if !g.Members[id] {
		return
	}
	delete(g.Members, id)
	if g.Anchor != id {
		return
	}
	g.Anchor = noNode
	for member := range g.Members {
		g.Anchor = member
		break
	}
}

func (g *Group) MemberCount() int {
	return len(g.Members)
}

// ClusterBadgeLabel is the text on the anchor's badge: the member
// count while expanded, "+" while collapsed.
func (g *Group) ClusterBadgeLabel() string {
	if g.Expanded {
		return strconv.Itoa(len(g.Members))
	}
	return "+"
}

// MemberBadgeLabel is the single letter shown on non-anchor members.
func (g *Group) MemberBadgeLabel() string {
	if g.Name == "" {
		return "?"
	}
	runes := []rune(g.Name)
	return strings.ToUpper(string(runes[0]))
}
