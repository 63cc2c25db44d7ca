package ops

import (
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// SlotSummary describes one occupied desktop slot.
type SlotSummary struct {
	Slot   int           `json:"slot"`
	Kind   string        `json:"kind"`
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	URL    string        `json:"url,omitempty"`
	Size   grid.SizeMode `json:"size,omitempty"`
	Links  int           `json:"links,omitempty"`
	Hidden int           `json:"hidden,omitempty"`
}

// DesktopSummary is the listing view of a Desktop.
type DesktopSummary struct {
	Items         []SlotSummary  `json:"items"`
	Used          int            `json:"used"`
	Free          int            `json:"free"`
	Capacity      int            `json:"capacity"`
	OpenFolder    string         `json:"open_folder,omitempty"`
	EditMode      bool           `json:"edit_mode"`
	PendingDelete *DeleteRequest `json:"pending_delete,omitempty"`
}

// FolderSummary is the listing view of one folder.
type FolderSummary struct {
	Slot     int           `json:"slot"`
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Size     grid.SizeMode `json:"size"`
	Capacity int           `json:"capacity"`
	Links    []grid.Link   `json:"links"`
	Hidden   int           `json:"hidden"`
}

// Summarize lists the occupied slots of d in slot order.
func Summarize(d Desktop) DesktopSummary {
	out := DesktopSummary{
		Items:         []SlotSummary{},
		Capacity:      d.Grid.Len(),
		OpenFolder:    d.OpenFolder,
		EditMode:      d.EditMode,
		PendingDelete: d.PendingDelete,
	}
	for i := 0; i < d.Grid.Len(); i++ {
		switch it := d.Grid.Get(i).(type) {
		case grid.Link:
			out.Items = append(out.Items, SlotSummary{Slot: i, Kind: "link", ID: it.ID, Title: it.Title, URL: it.URL})
		case grid.Folder:
			out.Items = append(out.Items, SlotSummary{
				Slot:   i,
				Kind:   "folder",
				ID:     it.ID,
				Title:  it.Title,
				Size:   it.Size.Normalized(),
				Links:  len(it.Links),
				Hidden: len(it.Hidden()),
			})
		}
	}
	out.Used = len(out.Items)
	out.Free = out.Capacity - out.Used
	return out
}

// SummarizeFolder describes the folder with the given id.
func SummarizeFolder(d Desktop, folderID string) (FolderSummary, error) {
	f, slot, ok := d.Grid.Folder(folderID)
	if !ok {
		return FolderSummary{}, errors.NewNotFound("folder", folderID)
	}
	links := f.Links
	if links == nil {
		links = []grid.Link{}
	}
	return FolderSummary{
		Slot:     slot,
		ID:       f.ID,
		Title:    f.Title,
		Size:     f.Size.Normalized(),
		Capacity: f.Capacity(),
		Links:    links,
		Hidden:   len(f.Hidden()),
	}, nil
}
