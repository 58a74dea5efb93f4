// Package viewport owns the state of one display surface: which series
// is attached, which slice is shown, the active interaction tool and the
// zoom/pan/window geometry. Loads run asynchronously; a generation token
// guarantees that only the latest request can change what is displayed.
package viewport

import (
	"fmt"
	"strings"
)

// Tool identifies the active pointer interaction mode.
type Tool int

const (
	ToolPan Tool = iota
	ToolZoom
	ToolWindowLevel
	ToolMeasure
)

// String returns the user-facing tool name.
func (t Tool) String() string {
	switch t {
	case ToolPan:
		return "pan"
	case ToolZoom:
		return "zoom"
	case ToolWindowLevel:
		return "window-level"
	case ToolMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// ParseTool maps a user-facing name to a tool.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pan":
		return ToolPan, nil
	case "zoom":
		return ToolZoom, nil
	case "window-level", "windowlevel", "wl":
		return ToolWindowLevel, nil
	case "measure":
		return ToolMeasure, nil
	}
	return ToolPan, fmt.Errorf("unknown tool %q", s)
}
