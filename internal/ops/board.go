package ops

import (
	"fmt"

	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
)

// KindOf classifies an item for the gesture engine.
func KindOf(it grid.Item) gesture.Kind {
	switch it.(type) {
	case grid.Link:
		return gesture.KindLink
	case grid.Folder:
		return gesture.KindFolder
	default:
		return gesture.KindEmpty
	}
}

// ApplyDesktop performs a gesture resolved over the desktop grid.
func ApplyDesktop(d Desktop, a gesture.Action) (Desktop, Outcome, error) {
	switch a.Kind {
	case gesture.ActionNone:
		return d, unchanged("none"), nil
	case gesture.ActionSwap:
		return Swap(d, a.Source, a.Target)
	case gesture.ActionMerge:
		return Merge(d, a.Source, a.Target)
	}
	return d, unchanged(a.Kind.String()), fmt.Errorf("action %s does not apply to the desktop", a.Kind)
}

// ApplyFolder performs a gesture resolved inside a folder.
func ApplyFolder(d Desktop, folderID string, a gesture.Action) (Desktop, Outcome, error) {
	switch a.Kind {
	case gesture.ActionNone:
		return d, unchanged("none"), nil
	case gesture.ActionSwap:
		return ReorderFolder(d, folderID, a.Source, a.Target)
	case gesture.ActionExtract:
		return Extract(d, folderID, a.Source)
	}
	return d, unchanged(a.Kind.String()), fmt.Errorf("action %s does not apply inside a folder", a.Kind)
}

// board adapts a Session to gesture.Board. Calls happen with the session
// lock held.
type board struct {
	s      *Session
	folder bool
}

func (b board) Len() int {
	if b.folder {
		f, _, ok := b.s.state.Folder()
		if !ok {
			return 0
		}
		return f.Capacity()
	}
	return b.s.state.Grid.Len()
}

func (b board) Kind(i int) gesture.Kind {
	if b.folder {
		f, _, ok := b.s.state.Folder()
		if !ok || i < 0 || i >= len(f.Links) {
			return gesture.KindEmpty
		}
		return gesture.KindLink
	}
	if !b.s.state.Grid.InRange(i) {
		return gesture.KindEmpty
	}
	return KindOf(b.s.state.Grid.Get(i))
}

func (b board) Apply(a gesture.Action) error {
	if b.folder {
		id := b.s.state.OpenFolder
		_, err := b.s.apply(b.s.opCtx, func(d Desktop) (Desktop, Outcome, error) {
			return ApplyFolder(d, id, a)
		})
		return err
	}
	_, err := b.s.apply(b.s.opCtx, func(d Desktop) (Desktop, Outcome, error) {
		return ApplyDesktop(d, a)
	})
	return err
}
