package ops

import (
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// DeleteKind is what a delete request targets.
type DeleteKind string

const (
	DeleteDesktopItem DeleteKind = "desktop"
	DeleteFolderLink  DeleteKind = "folder"
)

// DeleteRequest is a pending, unconfirmed deletion. Name is captured at
// request time for the confirmation prompt.
type DeleteRequest struct {
	Kind     DeleteKind `json:"kind"`
	Slot     int        `json:"slot"`
	ID       string     `json:"id"`
	FolderID string     `json:"folder_id,omitempty"`
	Name     string     `json:"name"`
}

// RequestDeleteItem records a pending deletion of the item at a desktop
// slot. Empty or out-of-range slots are ignored.
func RequestDeleteItem(d Desktop, slot int) (Desktop, Outcome, error) {
	if !d.Grid.InRange(slot) || d.Grid.Get(slot) == nil {
		return d, unchanged("request_delete"), nil
	}
	it := d.Grid.Get(slot)
	name := it.ItemTitle()
	if name == "" {
		name = "Item"
	}
	out := d.Clone()
	out.PendingDelete = &DeleteRequest{
		Kind: DeleteDesktopItem,
		Slot: slot,
		ID:   it.ItemID(),
		Name: name,
	}
	return out, changed("request_delete", slot, it.ItemID()), nil
}

// RequestDeleteLink records a pending deletion of a link inside a folder.
func RequestDeleteLink(d Desktop, folderID, linkID string) (Desktop, Outcome, error) {
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok {
		return d, unchanged("request_delete"), nil
	}
	idx := f.IndexOfLink(linkID)
	if idx < 0 {
		return d, unchanged("request_delete"), nil
	}
	name := f.Links[idx].Title
	if name == "" {
		name = "Link"
	}
	out := d.Clone()
	out.PendingDelete = &DeleteRequest{
		Kind:     DeleteFolderLink,
		Slot:     slot,
		ID:       linkID,
		FolderID: folderID,
		Name:     name,
	}
	return out, changed("request_delete", slot, linkID), nil
}

// CancelDelete discards the pending request. The grid is not touched.
func CancelDelete(d Desktop) (Desktop, Outcome, error) {
	if d.PendingDelete == nil {
		return d, unchanged("cancel_delete"), nil
	}
	out := d.Clone()
	id := out.PendingDelete.ID
	out.PendingDelete = nil
	return out, changed("cancel_delete", -1, id), nil
}

// ConfirmDelete applies the pending request and clears it. Deleting the
// open folder closes it. A target that no longer exists is skipped.
func ConfirmDelete(d Desktop) (Desktop, Outcome, error) {
	req := d.PendingDelete
	if req == nil {
		return d, unchanged("delete"), errors.NewNoPendingDelete()
	}

	out := d.Clone()
	out.PendingDelete = nil

	switch req.Kind {
	case DeleteDesktopItem:
		slot, ok := out.Grid.IndexOf(req.ID)
		if !ok {
			return out, unchanged("delete"), nil
		}
		out.Grid.Set(slot, nil)
		if out.OpenFolder == req.ID {
			out.OpenFolder = ""
		}
		return out, changed("delete", slot, req.ID), nil

	case DeleteFolderLink:
		f, slot, ok := out.Grid.Folder(req.FolderID)
		if !ok {
			return out, unchanged("delete"), nil
		}
		idx := f.IndexOfLink(req.ID)
		if idx < 0 {
			return out, unchanged("delete"), nil
		}
		links := make([]grid.Link, 0, len(f.Links)-1)
		links = append(links, f.Links[:idx]...)
		links = append(links, f.Links[idx+1:]...)
		out.Grid.Set(slot, f.WithLinks(links))
		return out, changed("delete", slot, req.ID), nil
	}

	return out, unchanged("delete"), errors.NewInvalidRequest("unknown delete kind: " + string(req.Kind))
}
