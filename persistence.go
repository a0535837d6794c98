package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// The file format keeps node ids as small sequential ints local to the
// save, while group ids are the stable UUIDs. Groups persist a
// "collapsed" flag, the inverse of the in-memory expanded state.
type projectFile struct {
	Nodes       []nodeRecord  `json:"nodes"`
	Connections []connRecord  `json:"connections"`
	Groups      []groupRecord `json:"groups"`
}

type nodeRecord struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	PosX    float64  `json:"pos_x"`
	PosY    float64  `json:"pos_y"`
	Tags    []string `json:"tags"`
	GroupID *string  `json:"group_id"`
}

type connRecord struct {
	StartNodeID int `json:"start_node_id"`
	EndNodeID   int `json:"end_node_id"`
}

type groupRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Collapsed bool   `json:"collapsed"`
}

// SaveProject writes the scene as JSON. Node ids are renumbered to the
// creation order, so handles never leak into files.
func (s *Scene) SaveProject(filename string) error {
	indexOf := make(map[NodeID]int, len(s.order))
	for i, id := range s.order {
		indexOf[id] = i
	}

	project := projectFile{
		Nodes:       []nodeRecord{},
		Connections: []connRecord{},
		Groups:      []groupRecord{},
	}

	for _, node := range s.Nodes() {
		rec := nodeRecord{
			ID:   indexOf[node.ID],
			Text: node.Text,
			PosX: node.Pos.X,
			PosY: node.Pos.Y,
			Tags: node.SortedTags(),
		}
		if node.GroupID != "" {
			groupID := node.GroupID
			rec.GroupID = &groupID
		}
		project.Nodes = append(project.Nodes, rec)
	}

	for _, c := range s.conns {
		startIdx, startOK := indexOf[c.Start]
		endIdx, endOK := indexOf[c.End]
		if !startOK || !endOK {
			s.log.Warn("skipping connection with missing endpoint", "start", c.Start, "end", c.End)
			continue
		}
		project.Connections = append(project.Connections, connRecord{
			StartNodeID: startIdx,
			EndNodeID:   endIdx,
		})
	}

	for _, g := range s.Groups() {
		project.Groups = append(project.Groups, groupRecord{
			ID:        g.ID,
			Name:      g.Name,
			Color:     g.Color,
			Collapsed: !g.Expanded,
		})
	}

	data, err := json.MarshalIndent(project, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	s.log.Info("saved project", "file", filename, "nodes", len(project.Nodes))
	return nil
}

// LoadProject replaces the scene contents with the file's. The file is
// parsed and validated into a fresh entity set first; any structural
// error leaves the current scene untouched. A connection referencing
// an unknown node id is dropped with a warning, not a failure.
func (s *Scene) LoadProject(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading project: %w", err)
	}

	var project projectFile
	if err := json.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("parsing project: %w", err)
	}

	groups := make(map[string]*Group)
	groupOrder := []string{}
	for _, rec := range project.Groups {
		g := &Group{
			ID:       rec.ID,
			Name:     rec.Name,
			Color:    rec.Color,
			Expanded: !rec.Collapsed,
			Anchor:   noNode,
			Members:  make(map[NodeID]bool),
		}
		groups[g.ID] = g
		groupOrder = append(groupOrder, g.ID)
	}

	nodes := make(map[NodeID]*Node)
	order := []NodeID{}
	byFileID := make(map[int]NodeID)
	nextID := NodeID(1)
	topZ := 0.0

	for _, rec := range project.Nodes {
		if _, dup := byFileID[rec.ID]; dup {
			s.log.Warn("duplicate node id in project, skipping", "id", rec.ID)
			continue
		}
		node := NewNode(nextID, rec.Text, Point{rec.PosX, rec.PosY})
		topZ++
		node.Z = topZ
		for _, tag := range rec.Tags {
			node.AddTag(tag)
		}
		if rec.GroupID != nil {
			if g := groups[*rec.GroupID]; g != nil {
				node.GroupID = g.ID
				g.AddMember(node.ID)
			} else {
				s.log.Warn("node references unknown group", "node", rec.ID, "group", *rec.GroupID)
			}
		}
		nodes[node.ID] = node
		order = append(order, node.ID)
		byFileID[rec.ID] = node.ID
		nextID++
	}

	conns := []*Connection{}
	for _, rec := range project.Connections {
		startID, startOK := byFileID[rec.StartNodeID]
		endID, endOK := byFileID[rec.EndNodeID]
		if !startOK || !endOK {
			s.log.Warn("dropping connection with unknown endpoint",
				"start", rec.StartNodeID, "end", rec.EndNodeID)
			continue
		}
		start := nodes[startID]
		end := nodes[endID]
		if start.Children[endID] {
			continue
		}
		conn := &Connection{Start: startID, End: endID}
		conn.Route(start.Rect(), end.Rect())
		conns = append(conns, conn)
		start.Children[endID] = true
		end.Parents[startID] = true
	}

	s.nodes = nodes
	s.order = order
	s.conns = conns
	s.groups = groups
	s.groupOrder = groupOrder
	s.startNode = noNode
	s.nextID = nextID
	s.topZ = topZ
	s.bubbleSeq = 0
	s.hiddenTags = make(map[string]bool)
	s.hiddenGroups = make(map[string]bool)

	for _, g := range s.Groups() {
		s.applyCollapse(g)
	}

	s.log.Info("loaded project", "file", filename,
		"nodes", len(order), "connections", len(conns), "groups", len(groupOrder))
	return nil
}
