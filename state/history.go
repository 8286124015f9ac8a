package state

// historyLimit bounds the undo stack; older snapshots fall off the end.
const historyLimit = 64

// History holds undo/redo snapshots of the canvas. Snapshots are cheap:
// layer values are cloned but raster content is shared, and raster edits
// (eraser strokes) are deliberately outside history.
type History struct {
	undo []*Canvas
	redo []*Canvas
}

// Push records the pre-action state and clears the redo stack.
func (h *History) Push(c *Canvas) {
	h.undo = append(h.undo, c.Clone())
	if len(h.undo) > historyLimit {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo exchanges the current state for the most recent snapshot.
// Returns nil when there is nothing to undo.
func (h *History) Undo(current *Canvas) *Canvas {
	if len(h.undo) == 0 {
		return nil
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return last
}

// Redo reverses the most recent Undo. Returns nil when there is nothing
// to redo.
func (h *History) Redo(current *Canvas) *Canvas {
	if len(h.redo) == 0 {
		return nil
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return last
}

// CanUndo reports whether an undo snapshot exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
