package ops

import (
	"context"
	"log"
	"sync"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/store"
)

// viewOps change only view state; they never trigger a save.
var viewOps = map[string]bool{
	"open":           true,
	"close":          true,
	"edit_mode":      true,
	"request_delete": true,
	"cancel_delete":  true,
}

// Session owns the live Desktop. Every mutation goes through it: the
// session serializes writers, persists the grid after each change and
// runs the gesture engines.
type Session struct {
	mu    sync.Mutex
	store store.Store
	cfg   *config.Config
	newID func() (string, error)
	clock gesture.Clock

	// opCtx is the context saves use while a call is in progress; timer
	// callbacks see the background context.
	opCtx context.Context

	state   Desktop
	version uint64
	last    Outcome

	desk   *gesture.Engine
	folder *gesture.Engine
	window gesture.Rect

	press      *gesture.LongPress
	pressScope gesture.Scope
	pressSlot  int
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock gesture timers are armed on. Callbacks are run
// under the session lock.
func WithClock(c gesture.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithIDGenerator replaces ULID generation, for deterministic tests.
func WithIDGenerator(f func() (string, error)) Option {
	return func(s *Session) { s.newID = f }
}

// NewSession loads the saved desktop from st. Missing or unreadable state
// seeds the default layout.
func NewSession(ctx context.Context, st store.Store, cfg *config.Config, opts ...Option) (*Session, error) {
	if st == nil {
		return nil, errors.NewInvalidRequest("store is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Session{
		store:     st,
		cfg:       cfg,
		newID:     generateULID,
		clock:     gesture.RealClock{},
		opCtx:     context.Background(),
		pressSlot: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clock = gesture.SerialClock{Clock: s.clock, L: &s.mu}

	gopts := gesture.Options{
		HoverDelay:    cfg.HoverDelay(),
		CaptureRadius: cfg.CaptureRadius,
		ExtractBuffer: cfg.ExtractBuffer,
	}
	s.desk = gesture.NewDesktop(board{s: s}, nil, s.clock, gopts)
	s.folder = gesture.NewFolder(board{s: s, folder: true}, nil, s.clock, gopts, func() (gesture.Rect, bool) {
		return s.window, !s.window.IsZero()
	})
	s.press = gesture.NewLongPress(s.clock, cfg.LongPress(), s.longPressed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s, nil
}

// load reads the saved grid, falling back to the seed layout.
func (s *Session) load(ctx context.Context) {
	data, ok, err := s.store.Load(ctx)
	switch {
	case err != nil:
		log.Printf("perch: load layout: %v; using defaults", err)
	case ok:
		g, err := grid.Decode(data)
		if err == nil {
			s.state = NewDesktop(g)
			return
		}
		log.Printf("perch: saved layout unreadable: %v; using defaults", err)
	}

	s.state = NewDesktop(grid.Seed())
	if err := s.persist(ctx); err != nil {
		log.Printf("perch: save seeded layout: %v", err)
	}
}

// persist saves the grid. An all-empty grid is never written.
func (s *Session) persist(ctx context.Context) error {
	if s.state.Grid.IsEmpty() {
		return nil
	}
	data, err := grid.Encode(s.state.Grid)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.store.Save(ctx, data); err != nil {
		if _, ok := err.(*errors.PerchError); ok {
			return err
		}
		return errors.NewInternal(err)
	}
	return nil
}

// apply runs a reducer against the live state. Caller holds s.mu.
func (s *Session) apply(ctx context.Context, fn func(Desktop) (Desktop, Outcome, error)) (Outcome, error) {
	next, out, err := fn(s.state)
	if err != nil {
		return out, err
	}
	s.state = next
	s.last = out
	if !out.Changed {
		return out, nil
	}
	s.version++
	if viewOps[out.Op] {
		return out, nil
	}
	return out, s.persist(ctx)
}

// do applies a mutation that did not come from the gesture engines. A grid
// change drops any press or drag in flight so no armed timer fires against
// slots that have moved underneath it.
func (s *Session) do(ctx context.Context, fn func(Desktop) (Desktop, Outcome, error)) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.apply(ctx, fn)
	if out.Changed && !viewOps[out.Op] {
		s.cancelGestures()
	}
	return out, err
}

// Snapshot returns a copy of the current desktop.
func (s *Session) Snapshot() Desktop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increases every time the desktop changes.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Config returns the session's configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// CreateLink adds a new link in the first empty slot.
func (s *Session) CreateLink(ctx context.Context, input CreateLinkInput) (grid.Link, Outcome, error) {
	id, err := s.newID()
	if err != nil {
		return grid.Link{}, unchanged("insert"), errors.NewInternal(err)
	}
	link, err := NewLink(s.cfg, id, input)
	if err != nil {
		return grid.Link{}, unchanged("insert"), err
	}
	out, err := s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return Insert(d, link) })
	return link, out, err
}

// CreateFolder adds a new empty folder in the first empty slot.
func (s *Session) CreateFolder(ctx context.Context, input CreateFolderInput) (grid.Folder, Outcome, error) {
	id, err := s.newID()
	if err != nil {
		return grid.Folder{}, unchanged("insert"), errors.NewInternal(err)
	}
	folder, err := NewFolder(id, input)
	if err != nil {
		return grid.Folder{}, unchanged("insert"), err
	}
	out, err := s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return Insert(d, folder) })
	return folder, out, err
}

// Swap exchanges two desktop slots.
func (s *Session) Swap(ctx context.Context, i, j int) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return Swap(d, i, j) })
}

// Drop moves slot src onto dst, merging a link into a folder.
func (s *Session) Drop(ctx context.Context, src, dst int) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return Drop(d, src, dst) })
}

// Reorder swaps two links inside a folder.
func (s *Session) Reorder(ctx context.Context, folderID string, i, j int) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return ReorderFolder(d, folderID, i, j) })
}

// UpdateFolderLinks replaces a folder's links.
func (s *Session) UpdateFolderLinks(ctx context.Context, folderID string, links []grid.Link) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return UpdateFolderLinks(d, folderID, links) })
}

// SetFolderSize sets a folder's size mode from its string form.
func (s *Session) SetFolderSize(ctx context.Context, folderID, size string) (Outcome, error) {
	mode, err := grid.ParseSizeMode(size)
	if err != nil {
		return unchanged("resize"), errors.NewInvalidRequest(err.Error())
	}
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return SetFolderSize(d, folderID, mode) })
}

// ToggleFolderSize flips a folder between 2x2 and 3x3.
func (s *Session) ToggleFolderSize(ctx context.Context, folderID string) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return ToggleFolderSize(d, folderID) })
}

// Extract moves a folder link to the desktop.
func (s *Session) Extract(ctx context.Context, folderID string, index int) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return Extract(d, folderID, index) })
}

// OpenFolder opens the folder overlay.
func (s *Session) OpenFolder(ctx context.Context, folderID string) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return OpenFolder(d, folderID) })
}

// CloseFolder closes the folder overlay, abandoning any drag inside it.
func (s *Session) CloseFolder(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folder.Cancel()
	return s.apply(ctx, CloseFolder)
}

// SetEditMode toggles edit mode.
func (s *Session) SetEditMode(ctx context.Context, on bool) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return SetEditMode(d, on) })
}

// RequestDeleteItem stages deletion of a desktop item.
func (s *Session) RequestDeleteItem(ctx context.Context, slot int) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return RequestDeleteItem(d, slot) })
}

// RequestDeleteLink stages deletion of a link inside a folder.
func (s *Session) RequestDeleteLink(ctx context.Context, folderID, linkID string) (Outcome, error) {
	return s.do(ctx, func(d Desktop) (Desktop, Outcome, error) { return RequestDeleteLink(d, folderID, linkID) })
}

// ConfirmDelete applies the staged deletion.
func (s *Session) ConfirmDelete(ctx context.Context) (Outcome, error) {
	return s.do(ctx, ConfirmDelete)
}

// CancelDelete discards the staged deletion.
func (s *Session) CancelDelete(ctx context.Context) (Outcome, error) {
	return s.do(ctx, CancelDelete)
}

// Replace swaps in a whole new grid, closing any folder and dropping any
// pending delete.
func (s *Session) Replace(ctx context.Context, g grid.Grid) (Outcome, error) {
	if g.Len() != grid.DesktopSlots {
		return unchanged("replace"), errors.NewInvalidRequest("layout must have 24 slots")
	}
	if g.IsEmpty() {
		return unchanged("replace"), errors.NewInvalidRequest("layout is empty")
	}
	if err := g.Validate(); err != nil {
		return unchanged("replace"), errors.NewInvalidRequest(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelGestures()
	return s.apply(ctx, func(d Desktop) (Desktop, Outcome, error) {
		return NewDesktop(g.Clone()), changed("replace", -1, ""), nil
	})
}

// Reset restores the default layout.
func (s *Session) Reset(ctx context.Context) (Outcome, error) {
	return s.Replace(ctx, grid.Seed())
}

// Close stops every pending timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelGestures()
}

func (s *Session) cancelGestures() {
	s.press.Cancel()
	s.desk.Cancel()
	s.folder.Cancel()
	s.pressSlot = -1
}
