package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeCreating
	ModeEditing
	ModeMove
	ModeConnect
	ModeTagInput
	ModeGroupInput
	ModeThoughtInput
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpSavePNG
	FileOpSaveVisualTXT
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmDeleteConnection
	ConfirmQuit
	ConfirmNewMap
)

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteNode
	ActionEditNode
	ActionMoveNode
	ActionAddConnection
	ActionDeleteConnection
	ActionAddTag
	ActionRemoveTag
)

const (
	gridSize   = 20.0
	nodeWidth  = 150.0
	nodeHeight = 50.0

	arrowLength = 12.0

	thoughtRadius        = 60.0
	thoughtMinPadding    = 10.0
	thoughtAngleSpread   = 60.0 // degrees
	maxCollisionAttempts = 10

	connectionHitTolerance = 8.0

	// Scene units per terminal cell. A node renders as a 15x3 box.
	cellWidth  = 10.0
	cellHeight = 20.0
)

// Node and connection colors, kept in one place so the terminal
// renderer and the PNG exporter agree.
const (
	colorNodeFill       = "#42A5F5"
	colorNodeBorder     = "#1565C0"
	colorNodeSelected   = "#FFA726"
	colorNodeBlinkAlt   = "#FFCC80"
	colorConnDefault    = "#B0BEC5"
	colorConnStrong     = "#1E88E5"
	colorConnHovered    = "#4DB6AC"
	colorConnSelected   = "#FFCA28"
	colorConnHighlight  = "#00E5FF"
	colorThoughtFill    = "#FFFFE0"
	colorThoughtOutline = "#9E9E9E"
)

// groupPalette is cycled through when a group is created without an
// explicit color.
var groupPalette = []string{
	"#F44336", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#03A9F4", "#00BCD4", "#009688", "#4CAF50",
	"#8BC34A", "#CDDC39", "#FFEB3B", "#FFC107", "#FF9800",
}
