// Package grid holds the desktop data model: links, folders and the
// fixed-capacity slot grid that owns them.
package grid

import (
	"encoding/json"
	"fmt"
)

// SizeMode is a folder's display size.
type SizeMode string

const (
	Size2x2 SizeMode = "2x2"
	Size3x3 SizeMode = "3x3"

	// DefaultSize is used when a folder has no size recorded.
	DefaultSize = Size3x3
)

// Capacity returns the number of slots a folder of this size renders.
// Unknown or empty modes render as DefaultSize.
func (s SizeMode) Capacity() int {
	if s == Size2x2 {
		return 4
	}
	return 9
}

// Normalized returns s, or DefaultSize when s is not a known mode.
func (s SizeMode) Normalized() SizeMode {
	switch s {
	case Size2x2, Size3x3:
		return s
	default:
		return DefaultSize
	}
}

// ParseSizeMode parses "2x2" or "3x3". Empty input yields DefaultSize.
func ParseSizeMode(s string) (SizeMode, error) {
	switch SizeMode(s) {
	case "":
		return DefaultSize, nil
	case Size2x2, Size3x3:
		return SizeMode(s), nil
	default:
		return "", fmt.Errorf("folder size must be one of: 2x2, 3x3 (got %q)", s)
	}
}

// Item is a value that can occupy a desktop slot: a Link or a Folder.
// The set of implementations is closed.
type Item interface {
	ItemID() string
	ItemTitle() string
	isItem()
}

// Link is a leaf shortcut pointing at a destination URL.
type Link struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`

	// IconName is a symbolic glyph name resolved by Glyph.
	IconName string `json:"iconName,omitempty"`

	// IconURL is a remote favicon derived from the URL's host.
	IconURL string `json:"iconUrl,omitempty"`

	// IsCustom marks links created by the user rather than seeded defaults.
	IsCustom bool `json:"isCustom,omitempty"`
}

func (l Link) ItemID() string    { return l.ID }
func (l Link) ItemTitle() string { return l.Title }
func (Link) isItem()             {}

// Folder is a container of links occupying a single desktop slot.
// Links are held in display order. A folder may hold more links than its
// size renders; the extra links stay in the sequence but are not displayed.
type Folder struct {
	ID    string
	Title string
	Size  SizeMode
	Links []Link
}

func (f Folder) ItemID() string    { return f.ID }
func (f Folder) ItemTitle() string { return f.Title }
func (Folder) isItem()             {}

// Capacity returns the number of slots the folder renders.
func (f Folder) Capacity() int {
	return f.Size.Capacity()
}

// DisplaySlots returns exactly Capacity() entries. Missing links are nil;
// links past the capacity are not included.
func (f Folder) DisplaySlots() []*Link {
	slots := make([]*Link, f.Capacity())
	for i := range slots {
		if i < len(f.Links) {
			l := f.Links[i]
			slots[i] = &l
		}
	}
	return slots
}

// Hidden returns the links that do not fit the current size mode.
func (f Folder) Hidden() []Link {
	if len(f.Links) <= f.Capacity() {
		return nil
	}
	return f.Links[f.Capacity():]
}

// IndexOfLink returns the position of the link with the given id, or -1.
func (f Folder) IndexOfLink(id string) int {
	for i, l := range f.Links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// WithLinks returns a copy of f holding links.
func (f Folder) WithLinks(links []Link) Folder {
	f.Links = append([]Link(nil), links...)
	return f
}

// clone returns a copy of f that shares no backing array with it.
func (f Folder) clone() Folder {
	return f.WithLinks(f.Links)
}

type folderJSON struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Size  SizeMode `json:"folderSize,omitempty"`
	Links []Link   `json:"links"`
}

// MarshalJSON writes the persisted folder shape. Links is always an array.
func (f Folder) MarshalJSON() ([]byte, error) {
	links := f.Links
	if links == nil {
		links = []Link{}
	}
	return json.Marshal(folderJSON{ID: f.ID, Title: f.Title, Size: f.Size, Links: links})
}

// AsLink returns the item as a Link if it is one.
func AsLink(it Item) (Link, bool) {
	l, ok := it.(Link)
	return l, ok
}

// AsFolder returns the item as a Folder if it is one.
func AsFolder(it Item) (Folder, bool) {
	f, ok := it.(Folder)
	return f, ok
}
