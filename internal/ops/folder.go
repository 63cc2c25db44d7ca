package ops

import (
	"fmt"

	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// replaceFolder returns a copy of d with the folder at slot replaced by f.
func replaceFolder(d Desktop, slot int, f grid.Folder) Desktop {
	out := d.Clone()
	out.Grid.Set(slot, f)
	return out
}

// ReorderFolder swaps links i and j inside a folder. Unknown folders and
// out-of-range indices leave the desktop unchanged.
func ReorderFolder(d Desktop, folderID string, i, j int) (Desktop, Outcome, error) {
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok || i == j || i < 0 || j < 0 || i >= len(f.Links) || j >= len(f.Links) {
		return d, unchanged("reorder"), nil
	}
	links := append([]grid.Link(nil), f.Links...)
	links[i], links[j] = links[j], links[i]
	return replaceFolder(d, slot, f.WithLinks(links)), changed("reorder", slot, links[j].ID), nil
}

// UpdateFolderLinks replaces a folder's link sequence wholesale. The new
// sequence may only reorder or drop links the folder already holds, or add
// links whose ids appear nowhere else on the desktop.
func UpdateFolderLinks(d Desktop, folderID string, links []grid.Link) (Desktop, Outcome, error) {
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok {
		return d, unchanged("update_links"), nil
	}
	out := replaceFolder(d, slot, f.WithLinks(links))
	if err := out.Grid.Validate(); err != nil {
		return d, unchanged("update_links"), errors.NewInvalidRequest(err.Error())
	}
	return out, changed("update_links", slot, folderID), nil
}

// SetFolderSize changes a folder's size mode. Links are never moved or
// truncated; links past the new capacity stay in the sequence, hidden.
func SetFolderSize(d Desktop, folderID string, size grid.SizeMode) (Desktop, Outcome, error) {
	if size != grid.Size2x2 && size != grid.Size3x3 {
		return d, unchanged("resize"), errors.NewInvalidRequest(fmt.Sprintf("invalid folder size %q", size))
	}
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok || f.Size.Normalized() == size {
		return d, unchanged("resize"), nil
	}
	f = f.WithLinks(f.Links)
	f.Size = size
	return replaceFolder(d, slot, f), changed("resize", slot, folderID), nil
}

// ToggleFolderSize flips a folder between 2x2 and 3x3.
func ToggleFolderSize(d Desktop, folderID string) (Desktop, Outcome, error) {
	f, _, ok := d.Grid.Folder(folderID)
	if !ok {
		return d, unchanged("resize"), nil
	}
	next := grid.Size2x2
	if f.Size.Normalized() == grid.Size2x2 {
		next = grid.Size3x3
	}
	return SetFolderSize(d, folderID, next)
}

// OpenFolder shows the folder in the overlay.
func OpenFolder(d Desktop, folderID string) (Desktop, Outcome, error) {
	_, slot, ok := d.Grid.Folder(folderID)
	if !ok || d.OpenFolder == folderID {
		return d, unchanged("open"), nil
	}
	out := d.Clone()
	out.OpenFolder = folderID
	return out, changed("open", slot, folderID), nil
}

// CloseFolder hides the overlay.
func CloseFolder(d Desktop) (Desktop, Outcome, error) {
	if d.OpenFolder == "" {
		return d, unchanged("close"), nil
	}
	out := d.Clone()
	id := out.OpenFolder
	out.OpenFolder = ""
	return out, changed("close", -1, id), nil
}

// SetEditMode turns edit mode on or off.
func SetEditMode(d Desktop, on bool) (Desktop, Outcome, error) {
	if d.EditMode == on {
		return d, unchanged("edit_mode"), nil
	}
	out := d.Clone()
	out.EditMode = on
	return out, changed("edit_mode", -1, ""), nil
}

// Extract moves the link at index out of a folder into the first empty
// desktop slot and closes the overlay. The desktop is left untouched when
// it has no empty slot.
func Extract(d Desktop, folderID string, index int) (Desktop, Outcome, error) {
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok || index < 0 || index >= len(f.Links) {
		return d, unchanged("extract"), nil
	}
	target, ok := d.Grid.FirstEmpty()
	if !ok {
		return d, unchanged("extract"), errors.NewDesktopFull()
	}

	link := f.Links[index]
	links := make([]grid.Link, 0, len(f.Links)-1)
	links = append(links, f.Links[:index]...)
	links = append(links, f.Links[index+1:]...)

	out := replaceFolder(d, slot, f.WithLinks(links))
	out.Grid.Set(target, link)
	out.OpenFolder = ""
	return out, changed("extract", target, link.ID), nil
}
