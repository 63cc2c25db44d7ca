// Package gesture implements pointer-driven rearrangement of slot grids:
// drag, delayed hover swap, release snapping, merge and extraction.
//
// The engine knows nothing about links or folders. It sees a Board that
// reports what kind of thing occupies each slot and accepts Actions, and a
// Surface that maps pointer positions to slots.
package gesture

import (
	"fmt"
	"time"
)

// Kind is what occupies a slot, as far as gestures care.
type Kind int

const (
	KindEmpty Kind = iota
	KindLink
	KindFolder
)

// State is the drag state of an Engine.
type State int

const (
	Idle State = iota
	Dragging
	Hovering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Hovering:
		return "hovering"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ActionKind is the mutation a gesture asks the board to perform.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSwap
	ActionMerge
	ActionExtract
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionSwap:
		return "swap"
	case ActionMerge:
		return "merge"
	case ActionExtract:
		return "extract"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is a resolved gesture. Target is -1 for ActionExtract.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Source int        `json:"source"`
	Target int        `json:"target"`
	// Hover is set when a hover timer produced the action mid-drag.
	Hover bool `json:"hover,omitempty"`
}

// None is the empty action.
var None = Action{Kind: ActionNone, Source: -1, Target: -1}

// Board is the grid being rearranged.
type Board interface {
	// Len is the number of slots.
	Len() int
	// Kind reports the occupant of slot i.
	Kind(i int) Kind
	// Apply performs a resolved action.
	Apply(a Action) error
}

// Scope selects desktop or folder rules.
type Scope int

const (
	// ScopeDesktop allows merging a link onto a folder.
	ScopeDesktop Scope = iota
	// ScopeFolder clamps targets to the occupied prefix and extracts on
	// release outside the folder window.
	ScopeFolder
)

// Options tunes an Engine.
type Options struct {
	HoverDelay    time.Duration
	CaptureRadius float64
	ExtractBuffer float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		HoverDelay:    800 * time.Millisecond,
		CaptureRadius: 100,
		ExtractBuffer: 50,
	}
}

// Engine tracks one drag at a time over a Board.
//
// Engine is not safe for concurrent use. When the Clock delivers callbacks
// on another goroutine, serialize with a SerialClock sharing the caller's lock.
type Engine struct {
	scope   Scope
	opts    Options
	board   Board
	surface Surface
	clock   Clock
	window  func() (Rect, bool)

	state   State
	source  int
	hovered int
	timer   Timer
	gen     uint64
	lastErr error
}

// NewDesktop returns an engine for the desktop grid.
func NewDesktop(board Board, surface Surface, clock Clock, opts Options) *Engine {
	return newEngine(ScopeDesktop, board, surface, clock, opts, nil)
}

// NewFolder returns an engine for an open folder. window reports the folder
// window's bounds; releases outside it, grown by ExtractBuffer, extract.
func NewFolder(board Board, surface Surface, clock Clock, opts Options, window func() (Rect, bool)) *Engine {
	return newEngine(ScopeFolder, board, surface, clock, opts, window)
}

func newEngine(scope Scope, board Board, surface Surface, clock Clock, opts Options, window func() (Rect, bool)) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	def := DefaultOptions()
	if opts.HoverDelay <= 0 {
		opts.HoverDelay = def.HoverDelay
	}
	if opts.CaptureRadius <= 0 {
		opts.CaptureRadius = def.CaptureRadius
	}
	if opts.ExtractBuffer < 0 {
		opts.ExtractBuffer = 0
	}
	return &Engine{
		scope:   scope,
		opts:    opts,
		board:   board,
		surface: surface,
		clock:   clock,
		window:  window,
		source:  -1,
		hovered: -1,
	}
}

// SetSurface swaps the surface, e.g. after a re-layout.
func (e *Engine) SetSurface(s Surface) { e.surface = s }

// Scope returns the engine's scope.
func (e *Engine) Scope() Scope { return e.scope }

// State returns the current drag state.
func (e *Engine) State() State { return e.state }

// Source returns the slot being dragged.
func (e *Engine) Source() (int, bool) {
	if e.state == Idle {
		return -1, false
	}
	return e.source, true
}

// Hovered returns the slot under the pointer, if any.
func (e *Engine) Hovered() (int, bool) {
	return e.hovered, e.hovered >= 0
}

// HoverPending reports whether a hover swap timer is armed.
func (e *Engine) HoverPending() bool { return e.timer != nil }

// LastError returns the error from the most recent hover swap, if it failed.
func (e *Engine) LastError() error { return e.lastErr }

// Start begins dragging slot. Empty slots cannot be dragged. A drag already
// in progress is abandoned.
func (e *Engine) Start(slot int) bool {
	if e.state != Idle {
		e.Cancel()
	}
	if slot < 0 || slot >= e.board.Len() || e.board.Kind(slot) == KindEmpty {
		return false
	}
	e.state = Dragging
	e.source = slot
	e.hovered = -1
	e.lastErr = nil
	return true
}

// Move reports a pointer position during the drag.
func (e *Engine) Move(p Point) {
	if e.state == Idle || e.surface == nil {
		return
	}
	target, ok := e.surface.HitTest(p)
	if ok && e.scope == ScopeFolder {
		target = e.clamp(target)
		ok = target >= 0
	}
	if !ok || target == e.source || target >= e.board.Len() {
		e.clearHover()
		return
	}
	if target == e.hovered {
		return
	}

	e.clearHover()
	e.hovered = target
	e.state = Hovering

	// Hovering a link over a folder waits for release to merge; a hover
	// swap would yank the folder out from under the pointer.
	if e.resolve(e.source, target).Kind == ActionMerge {
		return
	}
	e.arm()
}

// Release ends the drag at p, applies the resolved action and returns it.
func (e *Engine) Release(p Point) (Action, error) {
	if e.state == Idle {
		return None, nil
	}
	src := e.source
	e.clearHover()
	defer e.reset()

	if e.scope == ScopeFolder && e.window != nil {
		if win, ok := e.window(); ok && !win.Expand(e.opts.ExtractBuffer).Contains(p) {
			a := Action{Kind: ActionExtract, Source: src, Target: -1}
			return a, e.board.Apply(a)
		}
	}

	if e.surface == nil {
		return None, nil
	}
	target, ok := Nearest(p, e.surface.SlotBounds(), e.opts.CaptureRadius)
	if !ok || target >= e.board.Len() {
		return None, nil
	}
	a := e.resolve(src, target)
	if a.Kind == ActionNone {
		return None, nil
	}
	return a, e.board.Apply(a)
}

// Cancel abandons the drag without mutating the board.
func (e *Engine) Cancel() {
	e.clearHover()
	e.reset()
}

func (e *Engine) reset() {
	e.state = Idle
	e.source = -1
	e.hovered = -1
}

// resolve decides what dropping src on target means.
func (e *Engine) resolve(src, target int) Action {
	if e.scope == ScopeFolder {
		target = e.clamp(target)
		if target < 0 || target == src {
			return None
		}
		return Action{Kind: ActionSwap, Source: src, Target: target}
	}
	if target == src {
		return None
	}
	if e.board.Kind(src) == KindLink && e.board.Kind(target) == KindFolder {
		return Action{Kind: ActionMerge, Source: src, Target: target}
	}
	return Action{Kind: ActionSwap, Source: src, Target: target}
}

// clamp pins a folder target to the last occupied slot.
func (e *Engine) clamp(target int) int {
	last := -1
	for i := e.board.Len() - 1; i >= 0; i-- {
		if e.board.Kind(i) != KindEmpty {
			last = i
			break
		}
	}
	if target > last {
		return last
	}
	return target
}

func (e *Engine) arm() {
	e.gen++
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.opts.HoverDelay, func() { e.fire(gen) })
}

// clearHover cancels any armed timer and forgets the hovered slot.
func (e *Engine) clearHover() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.hovered = -1
	if e.state == Hovering {
		e.state = Dragging
	}
}

func (e *Engine) fire(gen uint64) {
	// A timer that was cancelled after it started running carries an old
	// generation and must not act.
	if gen != e.gen || e.state != Hovering || e.hovered < 0 {
		return
	}
	target := e.hovered
	e.timer = nil
	e.hovered = -1
	e.state = Dragging

	a := Action{Kind: ActionSwap, Source: e.source, Target: target, Hover: true}
	if err := e.board.Apply(a); err != nil {
		e.lastErr = err
		return
	}
	e.source = target
}
