package render

import "log/slog"

// HighlightCoordinator turns pointer positions over the rendered output into
// a highlight target.
//
// Picking is two-pass: hovering samples the shadow surface to learn which
// call owns the pixel, then the program is re-run so the renderer can match
// that call again and report its site. There is no shortcut, because the
// call sequence is only discoverable by running the program.
type HighlightCoordinator struct {
	renderer *EchoRenderer
	editor   Editor
	enabled  bool
}

// NewHighlightCoordinator creates a disabled coordinator.
func NewHighlightCoordinator(r *EchoRenderer, editor Editor) *HighlightCoordinator {
	return &HighlightCoordinator{renderer: r, editor: editor}
}

// Enabled reports whether hover picking is active.
func (c *HighlightCoordinator) Enabled() bool { return c.enabled }

// Enable turns on single-target highlighting and requests a re-run.
func (c *HighlightCoordinator) Enable() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.editor.OutputRequestsRerun()
}

// Disable turns highlighting off, clears the target and requests a re-run.
func (c *HighlightCoordinator) Disable() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.renderer.SetTarget(0)
	c.editor.OutputRequestsRerun()
}

// Hover samples the shadow surface at surface coordinates (x, y). When the
// decoded target changes, it is stored and a re-run is requested. It
// returns the decoded target.
func (c *HighlightCoordinator) Hover(x, y int) int {
	if !c.enabled || c.renderer.HighlightingAll() {
		return c.renderer.Target()
	}
	target := c.renderer.IndexAt(x, y)
	if target != c.renderer.Target() {
		slog.Debug("highlight target changed", "x", x, "y", y, "index", target)
		c.renderer.SetTarget(target)
		c.editor.OutputRequestsRerun()
	}
	return target
}
