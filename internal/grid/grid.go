package grid

import (
	"fmt"
)

// DesktopSlots is the fixed number of desktop slots.
const DesktopSlots = 24

// Grid is a fixed-length sequence of slots, each holding at most one Item.
// A nil entry is an empty slot. Index arguments outside [0, Len()) are
// programming errors and panic.
type Grid struct {
	slots []Item
}

// New returns an empty grid with the given number of slots.
func New(capacity int) Grid {
	if capacity <= 0 {
		panic(fmt.Sprintf("grid: capacity must be positive, got %d", capacity))
	}
	return Grid{slots: make([]Item, capacity)}
}

// NewDesktop returns an empty 24-slot desktop grid.
func NewDesktop() Grid {
	return New(DesktopSlots)
}

// Len returns the grid capacity.
func (g Grid) Len() int {
	return len(g.slots)
}

func (g Grid) check(i int) {
	if i < 0 || i >= len(g.slots) {
		panic(fmt.Sprintf("grid: slot index %d out of range [0, %d)", i, len(g.slots)))
	}
}

// InRange reports whether i addresses a slot.
func (g Grid) InRange(i int) bool {
	return i >= 0 && i < len(g.slots)
}

// Get returns the item at slot i, or nil when the slot is empty.
func (g Grid) Get(i int) Item {
	g.check(i)
	return g.slots[i]
}

// Set places item (or nil) at slot i. Set mutates the receiver's backing
// array; callers that need an independent state Clone first.
func (g Grid) Set(i int, item Item) {
	g.check(i)
	g.slots[i] = item
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := Grid{slots: make([]Item, len(g.slots))}
	for i, it := range g.slots {
		if f, ok := it.(Folder); ok {
			out.slots[i] = f.clone()
			continue
		}
		out.slots[i] = it
	}
	return out
}

// FirstEmpty returns the lowest empty slot index.
func (g Grid) FirstEmpty() (int, bool) {
	for i, it := range g.slots {
		if it == nil {
			return i, true
		}
	}
	return -1, false
}

// IndexOf returns the slot directly holding the item with the given id.
// Links inside folders are not matched.
func (g Grid) IndexOf(id string) (int, bool) {
	for i, it := range g.slots {
		if it != nil && it.ItemID() == id {
			return i, true
		}
	}
	return -1, false
}

// Folder returns the folder with the given id and its slot.
func (g Grid) Folder(id string) (Folder, int, bool) {
	i, ok := g.IndexOf(id)
	if !ok {
		return Folder{}, -1, false
	}
	f, ok := AsFolder(g.slots[i])
	if !ok {
		return Folder{}, -1, false
	}
	return f, i, true
}

// IsEmpty reports whether every slot is empty.
func (g Grid) IsEmpty() bool {
	for _, it := range g.slots {
		if it != nil {
			return false
		}
	}
	return true
}

// Count returns the number of occupied slots.
func (g Grid) Count() int {
	n := 0
	for _, it := range g.slots {
		if it != nil {
			n++
		}
	}
	return n
}

// Items returns a copy of the slot sequence.
func (g Grid) Items() []Item {
	return append([]Item(nil), g.slots...)
}

// Location describes where an id lives: a desktop slot, or a position
// inside the folder at that slot.
type Location struct {
	Slot      int
	InFolder  bool
	FolderID  string
	LinkIndex int
}

// Locate finds the item or folder link with the given id.
func (g Grid) Locate(id string) (Location, bool) {
	for i, it := range g.slots {
		if it == nil {
			continue
		}
		if it.ItemID() == id {
			return Location{Slot: i, LinkIndex: -1}, true
		}
		if f, ok := it.(Folder); ok {
			if j := f.IndexOfLink(id); j >= 0 {
				return Location{Slot: i, InFolder: true, FolderID: f.ID, LinkIndex: j}, true
			}
		}
	}
	return Location{}, false
}

// Validate checks that every id appears exactly once across desktop slots
// and folder contents, and that no id is empty.
func (g Grid) Validate() error {
	seen := make(map[string]string)
	mark := func(id, where string) error {
		if id == "" {
			return fmt.Errorf("%s: item has no id", where)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %q at %s and %s", id, prev, where)
		}
		seen[id] = where
		return nil
	}

	for i, it := range g.slots {
		if it == nil {
			continue
		}
		where := fmt.Sprintf("slot %d", i)
		if err := mark(it.ItemID(), where); err != nil {
			return err
		}
		if f, ok := it.(Folder); ok {
			for j, l := range f.Links {
				if err := mark(l.ID, fmt.Sprintf("%s link %d", where, j)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
