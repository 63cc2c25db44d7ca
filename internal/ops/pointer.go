package ops

import (
	"context"

	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
)

// PointerState is the gesture view a front end renders from.
type PointerState struct {
	Scope        string `json:"scope"`
	State        string `json:"state"`
	Source       int    `json:"source"`
	Hovered      int    `json:"hovered"`
	HoverPending bool   `json:"hover_pending"`
	PressPending bool   `json:"press_pending"`
	EditMode     bool   `json:"edit_mode"`
	Version      uint64 `json:"version"`
}

// PointerResult is what a pointer release did.
type PointerResult struct {
	PointerState
	Action  gesture.Action `json:"action"`
	Outcome Outcome        `json:"outcome"`
	// Click is set when the press ended without dragging. Slot is the item
	// that was clicked.
	Click bool `json:"click"`
	Slot  int  `json:"slot"`
	// Navigate is the URL a clicked link should open. It is empty in edit
	// mode.
	Navigate string `json:"navigate,omitempty"`
}

func scopeName(sc gesture.Scope) string {
	if sc == gesture.ScopeFolder {
		return "folder"
	}
	return "desktop"
}

// ParseScope maps "folder" to the folder scope; anything else is desktop.
func ParseScope(s string) gesture.Scope {
	if s == "folder" {
		return gesture.ScopeFolder
	}
	return gesture.ScopeDesktop
}

func (s *Session) engine(sc gesture.Scope) *gesture.Engine {
	if sc == gesture.ScopeFolder {
		return s.folder
	}
	return s.desk
}

// SetDesktopSurface installs the geometry of the desktop slots.
func (s *Session) SetDesktopSurface(surface gesture.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desk.SetSurface(surface)
}

// SetFolderSurface installs the geometry of the open folder's slots and
// window.
func (s *Session) SetFolderSurface(surface gesture.Surface, window gesture.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folder.SetSurface(surface)
	s.window = window
}

// PointerState returns the current gesture state.
func (s *Session) PointerState() PointerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerState()
}

func (s *Session) pointerState() PointerState {
	eng := s.engine(s.pressScope)
	src, _ := eng.Source()
	hov, _ := eng.Hovered()
	return PointerState{
		Scope:        scopeName(s.pressScope),
		State:        eng.State().String(),
		Source:       src,
		Hovered:      hov,
		HoverPending: eng.HoverPending(),
		PressPending: s.press.Pending(),
		EditMode:     s.state.EditMode,
		Version:      s.version,
	}
}

// PointerDown starts a press on slot. In edit mode the drag starts at
// once; otherwise a long press turns edit mode on and then starts it.
// A press on no slot (slot < 0) on the desktop leaves edit mode.
func (s *Session) PointerDown(ctx context.Context, scope gesture.Scope, slot int) (PointerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.useCtx(ctx)()

	s.cancelGestures()
	s.pressScope = scope

	if slot < 0 {
		if scope == gesture.ScopeDesktop && s.state.EditMode {
			if _, err := s.apply(ctx, func(d Desktop) (Desktop, Outcome, error) { return SetEditMode(d, false) }); err != nil {
				return s.pointerState(), err
			}
		}
		return s.pointerState(), nil
	}
	if scope == gesture.ScopeFolder && s.state.OpenFolder == "" {
		return s.pointerState(), nil
	}

	s.pressSlot = slot
	if s.state.EditMode {
		s.engine(scope).Start(slot)
	} else {
		s.press.Press()
	}
	return s.pointerState(), nil
}

// longPressed runs from the long-press timer with s.mu held.
func (s *Session) longPressed() {
	if _, err := s.apply(s.opCtx, func(d Desktop) (Desktop, Outcome, error) { return SetEditMode(d, true) }); err != nil {
		return
	}
	s.engine(s.pressScope).Start(s.pressSlot)
}

// PointerMove reports the pointer position during a press.
func (s *Session) PointerMove(ctx context.Context, p gesture.Point) PointerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.useCtx(ctx)()

	s.engine(s.pressScope).Move(p)
	return s.pointerState()
}

// PointerUp ends the press at p.
func (s *Session) PointerUp(ctx context.Context, p gesture.Point) (PointerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.useCtx(ctx)()

	slot := s.pressSlot
	longPress := s.press.Release()
	eng := s.engine(s.pressScope)
	res := PointerResult{Action: gesture.None, Slot: -1}

	moved := false
	if eng.State() != gesture.Idle {
		src, _ := eng.Source()
		moved = src != slot
		before := s.version
		a, err := eng.Release(p)
		res.Action = a
		if err != nil {
			s.pressSlot = -1
			res.PointerState = s.pointerState()
			return res, err
		}
		if s.version != before {
			res.Outcome = s.last
		}
	}
	s.pressSlot = -1

	if res.Action.Kind == gesture.ActionNone && !longPress && !moved && slot >= 0 {
		res.Click = true
		res.Slot = slot
		if err := s.click(ctx, &res); err != nil {
			res.PointerState = s.pointerState()
			return res, err
		}
	}
	res.PointerState = s.pointerState()
	return res, nil
}

// click activates the pressed item: folders open, links navigate unless in
// edit mode.
func (s *Session) click(ctx context.Context, res *PointerResult) error {
	var it grid.Item
	if s.pressScope == gesture.ScopeFolder {
		f, _, ok := s.state.Folder()
		if !ok || res.Slot >= len(f.Links) {
			return nil
		}
		it = f.Links[res.Slot]
	} else if s.state.Grid.InRange(res.Slot) {
		it = s.state.Grid.Get(res.Slot)
	}

	switch v := it.(type) {
	case grid.Folder:
		out, err := s.apply(ctx, func(d Desktop) (Desktop, Outcome, error) { return OpenFolder(d, v.ID) })
		res.Outcome = out
		return err
	case grid.Link:
		if !s.state.EditMode {
			res.Navigate = v.URL
		}
	}
	return nil
}

// PointerCancel abandons the press and any drag without mutating the grid.
func (s *Session) PointerCancel() PointerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelGestures()
	return s.pointerState()
}

// useCtx makes ctx the context for saves until the returned func runs.
// Caller holds s.mu.
func (s *Session) useCtx(ctx context.Context) func() {
	prev := s.opCtx
	if ctx != nil {
		s.opCtx = ctx
	}
	return func() { s.opCtx = prev }
}
