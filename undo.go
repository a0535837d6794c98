package main

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

type AddNodeData struct {
	ID   NodeID
	Text string
	Pos  Point
}

type DeleteNodeData struct {
	ID          NodeID
	Text        string
	Pos         Point
	Tags        []string
	GroupID     string
	Connections []ConnSnapshot
}

type ConnSnapshot struct {
	Start  NodeID
	End    NodeID
	Strong bool
}

type EditNodeData struct {
	ID      NodeID
	OldText string
	NewText string
}

type MoveNodeData struct {
	ID     NodeID
	OldPos Point
	NewPos Point
}

type ConnectionData struct {
	Start  NodeID
	End    NodeID
	Strong bool
}

type TagData struct {
	ID  NodeID
	Tag string
}

// snapshotNode captures everything needed to resurrect a node on undo.
func (m *model) snapshotNode(id NodeID) DeleteNodeData {
	node := m.scene.Node(id)
	if node == nil {
		return DeleteNodeData{ID: id}
	}
	data := DeleteNodeData{
		ID:      id,
		Text:    node.Text,
		Pos:     node.Pos,
		Tags:    node.SortedTags(),
		GroupID: node.GroupID,
	}
	for _, c := range m.scene.Connections() {
		if c.touches(id) {
			data.Connections = append(data.Connections, ConnSnapshot{c.Start, c.End, c.Strong})
		}
	}
	return data
}

func (m *model) restoreNode(data DeleteNodeData) {
	node := m.scene.addNodeWithID(data.ID, data.Text, data.Pos)
	for _, tag := range data.Tags {
		node.AddTag(tag)
	}
	if g := m.scene.Group(data.GroupID); g != nil {
		node.GroupID = g.ID
		g.AddMember(node.ID)
		if !g.Expanded && g.Anchor != node.ID {
			node.Hidden = true
		}
	}
	for _, snap := range data.Connections {
		m.scene.RestoreConnection(snap.Start, snap.End, snap.Strong)
	}
}

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	action := Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	}
	m.undoStack = append(m.undoStack, action)
	m.redoStack = m.redoStack[:0]
}

func (m *model) undo() {
	if len(m.undoStack) == 0 {
		return
	}

	lastIndex := len(m.undoStack) - 1
	action := m.undoStack[lastIndex]
	m.undoStack = m.undoStack[:lastIndex]

	switch action.Type {
	case ActionAddNode:
		data := action.Data.(AddNodeData)
		m.scene.DeleteNode(data.ID)
	case ActionDeleteNode:
		data := action.Data.(DeleteNodeData)
		m.restoreNode(data)
	case ActionEditNode:
		data := action.Data.(EditNodeData)
		m.scene.SetNodeText(data.ID, data.OldText)
	case ActionMoveNode:
		data := action.Data.(MoveNodeData)
		m.scene.SetNodePos(data.ID, data.OldPos)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		if conn := m.scene.ConnectionBetween(data.Start, data.End); conn != nil {
			m.scene.DeleteConnection(conn)
		}
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		m.scene.RestoreConnection(data.Start, data.End, data.Strong)
	case ActionAddTag:
		data := action.Data.(TagData)
		if node := m.scene.Node(data.ID); node != nil {
			node.RemoveTag(data.Tag)
		}
	case ActionRemoveTag:
		data := action.Data.(TagData)
		if node := m.scene.Node(data.ID); node != nil {
			node.AddTag(data.Tag)
		}
	}

	m.redoStack = append(m.redoStack, action)
}

func (m *model) redo() {
	if len(m.redoStack) == 0 {
		return
	}

	lastIndex := len(m.redoStack) - 1
	action := m.redoStack[lastIndex]
	m.redoStack = m.redoStack[:lastIndex]

	switch action.Type {
	case ActionAddNode:
		data := action.Data.(AddNodeData)
		m.scene.addNodeWithID(data.ID, data.Text, data.Pos)
	case ActionDeleteNode:
		data := action.Data.(DeleteNodeData)
		m.scene.DeleteNode(data.ID)
	case ActionEditNode:
		data := action.Data.(EditNodeData)
		m.scene.SetNodeText(data.ID, data.NewText)
	case ActionMoveNode:
		data := action.Data.(MoveNodeData)
		m.scene.SetNodePos(data.ID, data.NewPos)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		m.scene.RestoreConnection(data.Start, data.End, data.Strong)
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		if conn := m.scene.ConnectionBetween(data.Start, data.End); conn != nil {
			m.scene.DeleteConnection(conn)
		}
	case ActionAddTag:
		data := action.Data.(TagData)
		if node := m.scene.Node(data.ID); node != nil {
			node.AddTag(data.Tag)
		}
	case ActionRemoveTag:
		data := action.Data.(TagData)
		if node := m.scene.Node(data.ID); node != nil {
			node.RemoveTag(data.Tag)
		}
	}

	m.undoStack = append(m.undoStack, action)
}
