package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// slotJSON is the union of the persisted link and folder shapes. A slot is a
// folder exactly when it carries a "links" array.
type slotJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	IconName   string   `json:"iconName"`
	IconURL    string   `json:"iconUrl"`
	IsCustom   bool     `json:"isCustom"`
	FolderSize SizeMode `json:"folderSize"`
	Links      *[]Link  `json:"links"`
}

func (s slotJSON) item() Item {
	if s.Links != nil {
		return Folder{
			ID:    s.ID,
			Title: s.Title,
			Size:  s.FolderSize.Normalized(),
			Links: append([]Link(nil), (*s.Links)...),
		}
	}
	return Link{
		ID:       s.ID,
		Title:    s.Title,
		URL:      s.URL,
		IconName: s.IconName,
		IconURL:  s.IconURL,
		IsCustom: s.IsCustom,
	}
}

// MarshalJSON writes the slot array: null for empty slots, link or folder
// objects otherwise.
func (g Grid) MarshalJSON() ([]byte, error) {
	out := make([]any, len(g.slots))
	for i, it := range g.slots {
		if it != nil {
			out[i] = it
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a slot array into a desktop grid. See Decode.
func (g *Grid) UnmarshalJSON(data []byte) error {
	decoded, err := decode(data, DesktopSlots)
	if err != nil {
		return err
	}
	*g = decoded
	return nil
}

// Encode serializes g in the persisted layout.
func Encode(g Grid) ([]byte, error) {
	return json.Marshal(g)
}

// Decode parses a persisted desktop layout.
//
// A shorter array is padded with empty slots. Items past the last slot are
// moved into the first empty slots; if they do not fit the data is rejected.
// Layouts with missing or duplicate ids are rejected.
func Decode(data []byte) (Grid, error) {
	return decode(data, DesktopSlots)
}

func decode(data []byte, capacity int) (Grid, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Grid{}, fmt.Errorf("empty layout")
	}

	var raw []*slotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Grid{}, fmt.Errorf("parse layout: %w", err)
	}

	g := New(capacity)
	var overflow []Item
	for i, s := range raw {
		if s == nil {
			continue
		}
		if i < capacity {
			g.slots[i] = s.item()
		} else {
			overflow = append(overflow, s.item())
		}
	}

	for _, it := range overflow {
		idx, ok := g.FirstEmpty()
		if !ok {
			return Grid{}, fmt.Errorf("layout holds more than %d items", capacity)
		}
		g.slots[idx] = it
	}

	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}
