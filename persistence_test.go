package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestScene()
	ids := chain(t, s, "root", "a", "b")
	s.Node(ids[0]).AddTag("urgent")
	s.Node(ids[0]).AddTag("q3")
	g := s.CreateGroup("work", "#F44336", ids[0])
	s.AssignGroup(ids[0], g.ID)
	s.ToggleGroup(g.ID) // save it collapsed

	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, s.SaveProject(path))

	loaded := newTestScene()
	require.NoError(t, loaded.LoadProject(path))

	require.Equal(t, 3, loaded.NodeCount())
	require.Len(t, loaded.Connections(), 2)
	require.Len(t, loaded.Groups(), 1)

	nodes := loaded.Nodes()
	assert.Equal(t, "root", nodes[0].Text)
	assert.Equal(t, s.Node(ids[0]).Pos, nodes[0].Pos)
	assert.ElementsMatch(t, []string{"urgent", "q3"}, nodes[0].SortedTags())

	// adjacency rebuilt from the connection list
	assert.True(t, nodes[0].Children[nodes[1].ID])
	assert.True(t, nodes[1].Parents[nodes[0].ID])
	assert.True(t, nodes[1].Children[nodes[2].ID])

	// group: stable id, collapsed on the wire, membership and anchor
	// rebuilt, non-anchor members hidden again
	lg := loaded.Groups()[0]
	assert.Equal(t, g.ID, lg.ID)
	assert.Equal(t, "work", lg.Name)
	assert.Equal(t, "#F44336", lg.Color)
	assert.False(t, lg.Expanded)
	assert.Equal(t, 3, lg.MemberCount())
	assert.Equal(t, nodes[0].ID, lg.Anchor)
	assert.True(t, nodes[0].Visible())
	assert.False(t, nodes[1].Visible())
	assert.False(t, nodes[2].Visible())

	// connector routes recomputed on load
	conn := loaded.ConnectionBetween(nodes[0].ID, nodes[1].ID)
	require.NotNil(t, conn)
	assert.NotZero(t, conn.CornerPos)
}

func TestSaveUsesSequentialIDs(t *testing.T) {
	s := newTestScene()
	a := s.AddNode("a", Point{0, 0}).ID
	b := s.AddNode("b", Point{300, 0}).ID
	s.DeleteNode(a)
	require.NoError(t, s.Connect(b, s.AddNode("c", Point{600, 0}).ID))

	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, s.SaveProject(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var project projectFile
	require.NoError(t, json.Unmarshal(data, &project))

	require.Len(t, project.Nodes, 2)
	assert.Equal(t, 0, project.Nodes[0].ID)
	assert.Equal(t, 1, project.Nodes[1].ID)
	require.Len(t, project.Connections, 1)
	assert.Equal(t, 0, project.Connections[0].StartNodeID)
	assert.Equal(t, 1, project.Connections[0].EndNodeID)
}

func TestLoadDropsDanglingConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	raw := `{
		"nodes": [
			{"id": 0, "text": "a", "pos_x": 0, "pos_y": 0, "tags": [], "group_id": null},
			{"id": 1, "text": "b", "pos_x": 300, "pos_y": 0, "tags": [], "group_id": null}
		],
		"connections": [
			{"start_node_id": 0, "end_node_id": 1},
			{"start_node_id": 0, "end_node_id": 7}
		],
		"groups": []
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	s := newTestScene()
	require.NoError(t, s.LoadProject(path))
	assert.Equal(t, 2, s.NodeCount())
	assert.Len(t, s.Connections(), 1)
}

func TestLoadUnknownGroupReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	raw := `{
		"nodes": [
			{"id": 0, "text": "a", "pos_x": 0, "pos_y": 0, "tags": [], "group_id": "gone"}
		],
		"connections": [],
		"groups": []
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	s := newTestScene()
	require.NoError(t, s.LoadProject(path))
	assert.Empty(t, s.Nodes()[0].GroupID)
}

func TestLoadFailureLeavesSceneUntouched(t *testing.T) {
	s := newTestScene()
	chain(t, s, "a", "b")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	assert.Error(t, s.LoadProject(path))
	assert.Equal(t, 2, s.NodeCount())
	assert.Len(t, s.Connections(), 1)

	assert.Error(t, s.LoadProject(filepath.Join(t.TempDir(), "missing.json")))
	assert.Equal(t, 2, s.NodeCount())
}

func TestLoadReplacesPreviousScene(t *testing.T) {
	first := newTestScene()
	first.AddNode("old", Point{0, 0})
	path := filepath.Join(t.TempDir(), "map.json")

	second := newTestScene()
	second.AddNode("new1", Point{0, 0})
	second.AddNode("new2", Point{300, 0})
	require.NoError(t, second.SaveProject(path))

	require.NoError(t, first.LoadProject(path))
	assert.Equal(t, 2, first.NodeCount())
	assert.Equal(t, "new1", first.Nodes()[0].Text)

	// new nodes allocate past the loaded handles
	added := first.AddNode("extra", Point{600, 0})
	assert.Equal(t, 3, first.NodeCount())
	assert.NotNil(t, first.Node(added.ID))
}
