package ops

import (
	"github.com/hpungsan/perch/internal/grid"
)

// Desktop is the whole mutable start-page state. Reducers take a Desktop by
// value and return a new one; the input is never modified.
type Desktop struct {
	Grid grid.Grid `json:"grid"`
	// OpenFolder is the id of the folder shown in the overlay, or "".
	OpenFolder    string         `json:"open_folder,omitempty"`
	PendingDelete *DeleteRequest `json:"pending_delete,omitempty"`
	EditMode      bool           `json:"edit_mode"`
}

// NewDesktop returns a closed, non-editing desktop over g.
func NewDesktop(g grid.Grid) Desktop {
	return Desktop{Grid: g}
}

// Clone returns a deep copy of d.
func (d Desktop) Clone() Desktop {
	out := d
	out.Grid = d.Grid.Clone()
	if d.PendingDelete != nil {
		req := *d.PendingDelete
		out.PendingDelete = &req
	}
	return out
}

// Folder returns the open folder, if any.
func (d Desktop) Folder() (grid.Folder, int, bool) {
	if d.OpenFolder == "" {
		return grid.Folder{}, -1, false
	}
	return d.Grid.Folder(d.OpenFolder)
}

// Outcome reports what a reducer did. Stale references produce an Outcome
// with Changed false and no error.
type Outcome struct {
	Changed bool   `json:"changed"`
	Op      string `json:"op"`
	// Slot is the desktop slot the operation landed on, or -1.
	Slot int    `json:"slot"`
	ID   string `json:"id,omitempty"`
}

func unchanged(op string) Outcome {
	return Outcome{Op: op, Slot: -1}
}

func changed(op string, slot int, id string) Outcome {
	return Outcome{Changed: true, Op: op, Slot: slot, ID: id}
}
