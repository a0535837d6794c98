package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

func main() {
	p := tea.NewProgram(
		initialModel(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type blinkMsg time.Time

func blinkTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return blinkMsg(t)
	})
}

type model struct {
	width  int
	height int

	cursorX int
	cursorY int
	panX    int
	panY    int

	scene  *Scene
	logger *log.Logger
	config *Config

	mode    Mode
	help    bool
	blinkOn bool

	// text input shared by the creating/editing/tag/group/thought modes
	inputText   string
	inputCursor int
	tagFilter   bool // ModeTagInput doubles as the tag filter prompt

	editNodeID  NodeID
	moveNodeID  NodeID
	moveOrigin  Point
	connectFrom NodeID

	filename  string
	fileInput string
	fileOp    FileOperation

	confirmAction ConfirmAction
	confirmNode   NodeID
	confirmConn   *Connection

	errorMessage   string
	successMessage string

	undoStack []Action
	redoStack []Action
}

func initialModel() model {
	logger := newLogger()
	config := loadConfig()
	m := model{
		scene:  NewScene(logger),
		logger: logger,
		config: config,
		mode:   ModeNormal,
	}
	if config.StartMenu {
		m.mode = ModeStartup
	}
	return m
}

func (m model) Init() tea.Cmd {
	return blinkTick()
}

// cursorWorld is the scene point under the cursor cell's center.
func (m *model) cursorWorld() Point {
	return Point{
		float64(m.cursorX+m.panX)*cellWidth + cellWidth/2,
		float64(m.cursorY+m.panY)*cellHeight + cellHeight/2,
	}
}

func (m *model) nodeAtCursor() *Node {
	node, _ := m.scene.ItemAt(m.cursorWorld())
	return node
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case blinkMsg:
		m.blinkOn = !m.blinkOn
		return m, blinkTick()
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case tea.KeyMsg:
		switch m.mode {
		case ModeStartup:
			return m.updateStartup(msg)
		case ModeNormal:
			return m.updateNormal(msg)
		case ModeCreating, ModeEditing, ModeTagInput, ModeGroupInput, ModeThoughtInput:
			return m.updateTextInput(msg)
		case ModeMove:
			return m.updateMove(msg)
		case ModeFileInput:
			return m.updateFileInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}
	m.cursorX = msg.X
	m.cursorY = msg.Y

	node, conn := m.scene.ItemAt(m.cursorWorld())
	for _, c := range m.scene.Connections() {
		c.Hovered = false
	}
	if conn != nil {
		conn.Hovered = true
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && node != nil {
		m.scene.SelectStart(node.ID)
	}
	return m, nil
}

func (m model) updateStartup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.mode = ModeNormal
	case "o":
		m.mode = ModeFileInput
		m.fileOp = FileOpOpen
		m.fileInput = ""
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearMessages()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.help = !m.help

	case "up", "k":
		m.cursorY--
	case "down", "j":
		m.cursorY++
	case "left", "h":
		m.cursorX--
	case "right", "l":
		m.cursorX++
	case "shift+up", "K":
		m.panY--
	case "shift+down", "J":
		m.panY++
	case "shift+left", "H":
		m.panX--
	case "shift+right", "L":
		m.panX++

	case "n":
		m.mode = ModeCreating
		m.inputText = ""
		m.inputCursor = 0

	case "e":
		if node := m.nodeAtCursor(); node != nil {
			m.mode = ModeEditing
			m.editNodeID = node.ID
			m.inputText = node.Text
			m.inputCursor = len(node.Text)
		} else {
			m.errorMessage = "No node under cursor"
		}

	case "enter":
		if node := m.nodeAtCursor(); node != nil {
			m.scene.SelectStart(node.ID)
		}

	case "esc":
		m.scene.ClearSelection()
		m.connectFrom = noNode

	case "c":
		m.connectAtCursor()

	case "w":
		if _, conn := m.scene.ItemAt(m.cursorWorld()); conn != nil {
			conn.Strong = !conn.Strong
		}

	case "m":
		if node := m.nodeAtCursor(); node != nil {
			m.mode = ModeMove
			m.moveNodeID = node.ID
			m.moveOrigin = node.Pos
		} else {
			m.errorMessage = "No node under cursor"
		}

	case "x", "delete":
		m.deleteAtCursor()

	case "t":
		if node := m.nodeAtCursor(); node != nil {
			m.mode = ModeTagInput
			m.tagFilter = false
			m.editNodeID = node.ID
			m.inputText = ""
			m.inputCursor = 0
		} else {
			m.errorMessage = "No node under cursor"
		}

	case "f":
		m.mode = ModeTagInput
		m.tagFilter = true
		m.inputText = ""
		m.inputCursor = 0

	case "g":
		if node := m.nodeAtCursor(); node != nil {
			m.mode = ModeGroupInput
			m.editNodeID = node.ID
			m.inputText = ""
			m.inputCursor = 0
		} else {
			m.errorMessage = "No node under cursor"
		}

	case "G":
		if node := m.nodeAtCursor(); node != nil && node.GroupID != "" {
			expanded := m.scene.ToggleGroup(node.GroupID)
			if expanded {
				m.successMessage = "Group expanded"
			} else {
				m.successMessage = "Group collapsed"
			}
		} else {
			m.errorMessage = "No grouped node under cursor"
		}

	case "v":
		if node := m.nodeAtCursor(); node != nil && node.GroupID != "" {
			hidden := !m.scene.hiddenGroups[node.GroupID]
			m.scene.SetGroupHidden(node.GroupID, hidden)
		} else {
			m.errorMessage = "No grouped node under cursor"
		}

	case "b":
		if node := m.nodeAtCursor(); node != nil {
			m.mode = ModeThoughtInput
			m.editNodeID = node.ID
			m.inputText = ""
			m.inputCursor = 0
		} else {
			m.errorMessage = "No node under cursor"
		}

	case "y":
		if node := m.nodeAtCursor(); node != nil {
			if err := clipboard.WriteAll(node.Text); err != nil {
				m.errorMessage = "Clipboard unavailable"
			} else {
				m.successMessage = "Yanked node text"
			}
		}

	case "p":
		text, err := readClipboardText()
		if err != nil || strings.TrimSpace(text) == "" {
			m.errorMessage = "Clipboard empty"
			break
		}
		text = cleanClipboardText(text)
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		m.addNodeAtCursor(text)

	case "u":
		m.undo()
	case "U", "ctrl+r":
		m.redo()

	case "s":
		m.mode = ModeFileInput
		m.fileOp = FileOpSave
		m.fileInput = m.filename
	case "o":
		m.mode = ModeFileInput
		m.fileOp = FileOpOpen
		m.fileInput = ""
	case "E":
		m.mode = ModeFileInput
		m.fileOp = FileOpSavePNG
		m.fileInput = strings.TrimSuffix(m.filename, ".json")
	case "T":
		m.mode = ModeFileInput
		m.fileOp = FileOpSaveVisualTXT
		m.fileInput = strings.TrimSuffix(m.filename, ".json")

	case "N":
		if m.config.Confirmations && m.scene.NodeCount() > 0 {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmNewMap
		} else {
			m.newMap()
		}
	}
	return m, nil
}

func (m *model) addNodeAtCursor(text string) {
	world := m.cursorWorld()
	pos := Point{snapToGrid(world.X - nodeWidth/2), snapToGrid(world.Y - nodeHeight/2)}
	node := m.scene.AddNode(text, pos)
	m.recordAction(ActionAddNode, AddNodeData{node.ID, text, pos}, nil)
}

func (m *model) connectAtCursor() {
	node := m.nodeAtCursor()
	if node == nil {
		m.errorMessage = "No node under cursor"
		return
	}
	if m.connectFrom == noNode {
		m.connectFrom = node.ID
		m.scene.SelectStart(node.ID)
		m.successMessage = "Connect: pick the child node"
		return
	}
	start := m.connectFrom
	m.connectFrom = noNode
	if err := m.scene.Connect(start, node.ID); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.scene.ClearSelection()
	m.recordAction(ActionAddConnection, ConnectionData{start, node.ID, false}, nil)
	m.successMessage = "Connected"
}

func (m *model) deleteAtCursor() {
	node, conn := m.scene.ItemAt(m.cursorWorld())
	if node != nil {
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteNode
			m.confirmNode = node.ID
			return
		}
		m.deleteNode(node.ID)
		return
	}
	if conn != nil {
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteConnection
			m.confirmConn = conn
			return
		}
		m.deleteConnection(conn)
		return
	}
	m.errorMessage = "Nothing under cursor"
}

func (m *model) deleteNode(id NodeID) {
	data := m.snapshotNode(id)
	m.scene.DeleteNode(id)
	m.recordAction(ActionDeleteNode, data, nil)
}

func (m *model) deleteConnection(conn *Connection) {
	data := ConnectionData{conn.Start, conn.End, conn.Strong}
	m.scene.DeleteConnection(conn)
	m.recordAction(ActionDeleteConnection, data, nil)
}

func (m *model) newMap() {
	m.scene.Clear()
	m.undoStack = nil
	m.redoStack = nil
	m.filename = ""
	m.connectFrom = noNode
	m.panX, m.panY = 0, 0
}

func (m model) updateTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.inputText)
		mode := m.mode
		m.mode = ModeNormal
		if text == "" {
			return m, nil
		}
		switch mode {
		case ModeCreating:
			m.addNodeAtCursor(text)
		case ModeEditing:
			if node := m.scene.Node(m.editNodeID); node != nil {
				m.recordAction(ActionEditNode, EditNodeData{node.ID, node.Text, text}, nil)
				m.scene.SetNodeText(node.ID, text)
			}
		case ModeTagInput:
			if m.tagFilter {
				hidden := !m.scene.hiddenTags[text]
				m.scene.SetTagHidden(text, hidden)
				if hidden {
					m.successMessage = "Hiding tag " + text
				} else {
					m.successMessage = "Showing tag " + text
				}
			} else if node := m.scene.Node(m.editNodeID); node != nil {
				node.AddTag(text)
				m.recordAction(ActionAddTag, TagData{node.ID, text}, nil)
			}
		case ModeGroupInput:
			if node := m.scene.Node(m.editNodeID); node != nil {
				g := m.scene.CreateGroup(text, "", node.ID)
				m.scene.AssignGroup(node.ID, g.ID)
				m.successMessage = fmt.Sprintf("Grouped %d nodes", g.MemberCount())
			}
		case ModeThoughtInput:
			if bubble := m.scene.AddThought(m.editNodeID, text); bubble != nil && bubble.Unresolved {
				m.successMessage = "Thought added (overlaps)"
			} else if bubble != nil {
				m.successMessage = "Thought added"
			}
		}
		return m, nil
	case "backspace":
		if m.inputCursor > 0 {
			m.inputText = m.inputText[:m.inputCursor-1] + m.inputText[m.inputCursor:]
			m.inputCursor--
		}
	case "left":
		if m.inputCursor > 0 {
			m.inputCursor--
		}
	case "right":
		if m.inputCursor < len(m.inputText) {
			m.inputCursor++
		}
	default:
		if msg.Type == tea.KeyRunes || msg.String() == " " {
			s := string(msg.Runes)
			if msg.String() == " " {
				s = " "
			}
			m.inputText = m.inputText[:m.inputCursor] + s + m.inputText[m.inputCursor:]
			m.inputCursor += len(s)
		}
	}
	return m, nil
}

func (m model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.scene.SetNodePos(m.moveNodeID, m.moveOrigin)
		m.mode = ModeNormal
	case "enter":
		m.scene.SnapToNeighbor(m.moveNodeID)
		if node := m.scene.Node(m.moveNodeID); node != nil && node.Pos != m.moveOrigin {
			m.recordAction(ActionMoveNode, MoveNodeData{m.moveNodeID, m.moveOrigin, node.Pos}, nil)
		}
		m.mode = ModeNormal
	case "up", "k":
		m.scene.MoveNode(m.moveNodeID, 0, -gridSize)
	case "down", "j":
		m.scene.MoveNode(m.moveNodeID, 0, gridSize)
	case "left", "h":
		m.scene.MoveNode(m.moveNodeID, -gridSize, 0)
	case "right", "l":
		m.scene.MoveNode(m.moveNodeID, gridSize, 0)
	}
	return m, nil
}

func (m model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.fileInput)
		if name == "" {
			return m, nil
		}
		m.mode = ModeNormal
		m.runFileOp(name)
		return m, nil
	case "backspace":
		if len(m.fileInput) > 0 {
			m.fileInput = m.fileInput[:len(m.fileInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.fileInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *model) runFileOp(name string) {
	switch m.fileOp {
	case FileOpSave:
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		path := m.config.GetSavePath(name)
		if err := m.scene.SaveProject(path); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.filename = name
		m.successMessage = "Saved " + path
	case FileOpOpen:
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		path := m.config.GetSavePath(name)
		if err := m.scene.LoadProject(path); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.filename = name
		m.undoStack = nil
		m.redoStack = nil
		m.connectFrom = noNode
		m.successMessage = "Opened " + path
	case FileOpSavePNG:
		if !strings.HasSuffix(name, ".png") {
			name += ".png"
		}
		path := m.config.GetSavePath(name)
		if err := exportPNG(m.scene, path, m.config.ExportScale); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.successMessage = "Exported " + path
	case FileOpSaveVisualTXT:
		if !strings.HasSuffix(name, ".txt") {
			name += ".txt"
		}
		path := m.config.GetSavePath(name)
		if err := exportVisualTXT(m.scene, path, m.width, m.height-1, m.panX, m.panY); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.successMessage = "Exported " + path
	}
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := m.confirmAction
		m.mode = ModeNormal
		switch action {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDeleteNode:
			m.deleteNode(m.confirmNode)
		case ConfirmDeleteConnection:
			m.deleteConnection(m.confirmConn)
		case ConfirmNewMap:
			m.newMap()
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ECEFF1")).Background(lipgloss.Color("#37474F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252")).Background(lipgloss.Color("#37474F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#69F0AE")).Background(lipgloss.Color("#37474F"))
)

func (m model) View() string {
	if m.width < 1 || m.height < 2 {
		return ""
	}

	if m.mode == ModeStartup {
		lines := make([]string, m.height-1)
		status := "Press 'n' for a new map, 'o' to open one, or 'q' to quit"
		return strings.Join(lines, "\n") + "\n" + statusStyle.Width(m.width).Render(status)
	}

	canvasHeight := m.height - 1
	showCursor := m.mode == ModeNormal
	lines := renderScene(m.scene, m.width, canvasHeight, m.panX, m.panY, m.cursorX, m.cursorY, showCursor, m.blinkOn)

	if m.help && m.mode == ModeNormal {
		help := m.helpLines()
		for i := 0; i < len(help) && i < len(lines); i++ {
			lines[i] = help[i]
		}
	}

	return strings.Join(lines, "\n") + "\n" + m.statusLine()
}

func (m model) helpLines() []string {
	return []string{
		" n=new node  e=edit  m=move  x=delete  c=connect  w=strong  enter=select root ",
		" t=tag  f=tag filter  g=group  G=collapse  v=group filter  b=thought ",
		" y=yank  p=paste  u=undo  U=redo  s=save  o=open  E=png  T=txt  N=new map  q=quit ",
		" hjkl=cursor  HJKL=pan  ?=close help ",
	}
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeCreating:
		status = fmt.Sprintf("Mode: NEW NODE | Text: %s█ | Enter=create, Esc=cancel", m.inputText)
	case ModeEditing:
		status = fmt.Sprintf("Mode: EDIT | Text: %s█ | Enter=save, Esc=cancel", m.inputText)
	case ModeTagInput:
		if m.tagFilter {
			status = fmt.Sprintf("Mode: TAG FILTER | Tag: %s█ | Enter=toggle visibility, Esc=cancel", m.inputText)
		} else {
			status = fmt.Sprintf("Mode: TAG | Tag: %s█ | Enter=add, Esc=cancel", m.inputText)
		}
	case ModeGroupInput:
		status = fmt.Sprintf("Mode: GROUP | Name: %s█ | Enter=create group from node+descendants, Esc=cancel", m.inputText)
	case ModeThoughtInput:
		status = fmt.Sprintf("Mode: THOUGHT | Text: %s█ | Enter=attach, Esc=cancel", m.inputText)
	case ModeMove:
		status = "Mode: MOVE | hjkl/arrows=move, Enter=finish (snaps beside overlaps), Esc=cancel"
	case ModeFileInput:
		ops := map[FileOperation]string{
			FileOpSave: "Save", FileOpOpen: "Open",
			FileOpSavePNG: "Export PNG", FileOpSaveVisualTXT: "Export TXT",
		}
		status = fmt.Sprintf("Mode: FILE | %s filename: %s█ | Enter=confirm, Esc=cancel", ops[m.fileOp], m.fileInput)
	case ModeConfirm:
		prompts := map[ConfirmAction]string{
			ConfirmDeleteNode:       "Delete node and its connections?",
			ConfirmDeleteConnection: "Delete connection?",
			ConfirmQuit:             "Quit?",
			ConfirmNewMap:           "Discard current map?",
		}
		status = fmt.Sprintf("%s (y/n)", prompts[m.confirmAction])
	default:
		if m.errorMessage != "" {
			return errorStyle.Width(m.width).Render(" " + m.errorMessage)
		}
		if m.successMessage != "" {
			return successStyle.Width(m.width).Render(" " + m.successMessage)
		}
		name := m.filename
		if name == "" {
			name = "[unsaved]"
		}
		parts := []string{
			fmt.Sprintf("%s | %d nodes, %d connections", name, m.scene.NodeCount(), len(m.scene.Connections())),
		}
		if m.connectFrom != noNode {
			parts = append(parts, "connect: pick child")
		}
		if tags := m.scene.AllTags(); len(tags) > 0 {
			var hidden []string
			for _, tag := range tags {
				if m.scene.hiddenTags[tag] {
					hidden = append(hidden, tag)
				}
			}
			if len(hidden) > 0 {
				sort.Strings(hidden)
				parts = append(parts, "hidden tags: "+strings.Join(hidden, ","))
			}
		}
		parts = append(parts, "?=help")
		status = strings.Join(parts, " | ")
	}
	return statusStyle.Width(m.width).Render(" " + status)
}
