package board

import "strings"

// Tool identifies the active drawing tool.
type Tool int

// Drawing tools. ToolNone is what unknown tool names parse to; pointer
// motion with ToolNone active draws nothing.
const (
	ToolNone Tool = iota
	ToolPen
	ToolEraser
	ToolRectangle
)

// Tool state defaults and the thickness range accepted from input controls.
const (
	DefaultColor     = "black"
	DefaultThickness = 2
	MinThickness     = 1
	MaxThickness     = 50
)

var toolNames = map[Tool]string{
	ToolPen:       "pen",
	ToolEraser:    "eraser",
	ToolRectangle: "rectangle",
}

// String returns the lowercase tool name, or "none".
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "none"
}

// ParseTool maps a tool name to a Tool. Matching is case-insensitive and
// "rect" is accepted for the rectangle. Unknown names return ToolNone.
func ParseTool(name string) Tool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pen":
		return ToolPen
	case "eraser":
		return ToolEraser
	case "rectangle", "rect":
		return ToolRectangle
	}
	return ToolNone
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails;
// unknown names decode to ToolNone.
func (t *Tool) UnmarshalText(text []byte) error {
	*t = ParseTool(string(text))
	return nil
}

// ToolState holds the selected tool, color token and stroke thickness.
// Exactly one tool is active at a time and Thickness is always positive.
type ToolState struct {
	Tool      Tool   `json:"tool"`
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

// DefaultToolState returns a black pen of thickness 2.
func DefaultToolState() ToolState {
	return ToolState{Tool: ToolPen, Color: DefaultColor, Thickness: DefaultThickness}
}

// SelectTool makes t the active tool.
func (ts *ToolState) SelectTool(t Tool) {
	ts.Tool = t
}

// SelectColor sets the stroke color and switches to the pen.
// Picking a color is always a request to draw with it.
func (ts *ToolState) SelectColor(color string) {
	ts.Color = color
	ts.Tool = ToolPen
}

// SetThickness sets the stroke thickness. Values below 1 are ignored;
// range clamping belongs to the input control (see ClampThickness).
func (ts *ToolState) SetThickness(n int) {
	if n > 0 {
		ts.Thickness = n
	}
}

// ClampThickness limits n to [MinThickness, MaxThickness], the range of
// the thickness control.
func ClampThickness(n int) int {
	return min(max(n, MinThickness), MaxThickness)
}
