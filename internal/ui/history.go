package ui

import (
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

const defaultMaxDepth = 50

// Snapshot captures the run inputs the user can edit: the settings and the
// machining boundary.
type Snapshot struct {
	Settings model.Settings
	Boundary *toolpath.Series // nil means the rectangle around the part
	Label    string           // Human-readable description (e.g. "Import Boundary")
}

// History manages undo/redo stacks of input snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// This should be called before the modification is applied.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot and pushes current onto the redo
// stack. It returns false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoLabel names the change Undo would revert, or "" when there is none.
func (h *History) UndoLabel() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Label
}

// RedoLabel names the change Redo would reapply, or "" when there is none.
func (h *History) RedoLabel() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Label
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// copyBoundary returns an independent copy of a boundary series.
func copyBoundary(b *toolpath.Series) *toolpath.Series {
	if b == nil {
		return nil
	}
	cp := toolpath.NewSeries(b.Z)
	for _, path := range b.Paths() {
		cp.Append(path)
	}
	return cp
}

// MakeSnapshot creates a snapshot of the current inputs with a label.
func MakeSnapshot(settings model.Settings, boundary *toolpath.Series, label string) Snapshot {
	return Snapshot{
		Settings: settings,
		Boundary: copyBoundary(boundary),
		Label:    label,
	}
}
