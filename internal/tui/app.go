package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/prefs"
	"github.com/hpungsan/perch/internal/search"
)

// Options configures the terminal desktop.
type Options struct {
	Context context.Context
	Session *ops.Session
	// Clock must be the clock the session was built with, so gesture timers
	// redraw the screen when they fire. Nil means timers redraw on the next
	// input event.
	Clock     *Clock
	PrefsPath string
	// Theme overrides the saved theme when set.
	Theme string
	// LogPath receives log output while the program runs. Empty disables
	// logging.
	LogPath string
	// Open launches a URL. Defaults to the system browser.
	Open func(url string) error
}

type inputMode int

const (
	modeGrid inputMode = iota
	modeAddLink
	modeAddFolder
	modeSearch
)

// openedMsg reports the result of launching a URL.
type openedMsg struct {
	url string
	err error
}

// Model is the Bubble Tea model for the terminal desktop.
type Model struct {
	ctx       context.Context
	sess      *ops.Session
	prefsPath string
	open      func(string) error

	keys   keyMap
	help   help.Model
	theme  Theme
	styles Styles
	engine search.Engine

	width    int
	height   int
	ready    bool
	showHelp bool

	// cursor is a desktop slot; folderCursor indexes the open folder.
	cursor       int
	folderCursor int

	pressed bool
	pointer gesture.Point

	mode   inputMode
	inputs []textinput.Model
	focus  int

	status    string
	statusErr bool
}

// New creates a new Model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p, _ := prefs.Load(opts.PrefsPath)
	themeName := p.Theme
	if opts.Theme != "" {
		themeName = opts.Theme
	}
	open := opts.Open
	if open == nil {
		open = openInBrowser
	}
	theme := GetTheme(themeName)

	m := Model{
		ctx:       ctx,
		sess:      opts.Session,
		prefsPath: opts.PrefsPath,
		open:      open,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     theme,
		styles:    theme.Styles(),
		engine:    p.Engine(),
	}
	m.sess.SetDesktopSurface(desktopLayout().Surface())
	m.syncFolderSurface(m.sess.Snapshot())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case timerFiredMsg:
		m.syncFolderSurface(m.sess.Snapshot())
		return m, nil

	case openedMsg:
		if msg.err != nil {
			log.Printf("open %s: %v", msg.url, msg.err)
			m.setError(fmt.Errorf("open %s: %w", msg.url, msg.err))
		} else {
			m.setStatus("Opened " + msg.url)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.mode != modeGrid {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// report turns an operation result into a status line.
func (m *Model) report(out ops.Outcome, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	if out.Changed {
		m.setStatus(describe(out))
	}
}

func describe(out ops.Outcome) string {
	switch out.Op {
	case "swap":
		return fmt.Sprintf("Moved to slot %d", out.Slot+1)
	case "merge":
		return "Added to folder"
	case "extract":
		return fmt.Sprintf("Moved to desktop slot %d", out.Slot+1)
	case "reorder":
		return "Reordered"
	case "resize":
		return "Folder resized"
	case "delete":
		return "Deleted"
	}
	return ""
}

// syncFolderSurface installs the folder geometry for the open folder.
func (m Model) syncFolderSurface(d ops.Desktop) {
	f, _, ok := d.Folder()
	if !ok {
		m.sess.SetFolderSurface(nil, gesture.Rect{})
		return
	}
	m.sess.SetFolderSurface(folderLayout(f.Size).Surface(), folderWindow(f.Size))
}

// outsideWindow marks a press outside the open folder's window.
const outsideWindow = -2

// hitTest resolves p to a scope and slot. Slot is -1 for a miss.
func hitTest(d ops.Desktop, p gesture.Point) (gesture.Scope, int) {
	if f, _, ok := d.Folder(); ok {
		if !folderWindow(f.Size).Contains(p) {
			return gesture.ScopeFolder, outsideWindow
		}
		if slot, ok := folderLayout(f.Size).Surface().HitTest(p); ok {
			return gesture.ScopeFolder, slot
		}
		return gesture.ScopeFolder, -1
	}
	if slot, ok := desktopLayout().Surface().HitTest(p); ok {
		return gesture.ScopeDesktop, slot
	}
	return gesture.ScopeDesktop, -1
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	d := m.sess.Snapshot()
	if d.PendingDelete != nil || m.mode != modeGrid {
		return m, nil
	}
	p := toPoint(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.syncFolderSurface(d)
		scope, slot := hitTest(d, p)
		if slot == outsideWindow {
			m.report(m.sess.CloseFolder(m.ctx))
			return m, nil
		}
		if slot >= 0 {
			if scope == gesture.ScopeFolder {
				m.folderCursor = slot
			} else {
				m.cursor = slot
			}
		}
		m.pressed = true
		m.pointer = p
		if _, err := m.sess.PointerDown(m.ctx, scope, slot); err != nil {
			m.setError(err)
		}

	case tea.MouseActionMotion:
		if !m.pressed {
			return m, nil
		}
		m.pointer = p
		m.sess.PointerMove(m.ctx, p)

	case tea.MouseActionRelease:
		if !m.pressed {
			return m, nil
		}
		m.pressed = false
		res, err := m.sess.PointerUp(m.ctx, p)
		m.report(res.Outcome, err)
		if res.Outcome.Op == "open" {
			m.folderCursor = 0
		}
		m.syncFolderSurface(m.sess.Snapshot())
		if res.Navigate != "" {
			return m, m.openURL(res.Navigate)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.sess.Snapshot()
	if d.PendingDelete != nil {
		return m.handleConfirmKey(msg)
	}
	f, _, folderOpen := d.Folder()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		if m.savePrefs() {
			m.setStatus("Theme: " + m.theme.Name)
		}

	case key.Matches(msg, m.keys.NextEngine):
		m.engine = m.engine.Next()
		if m.savePrefs() {
			m.setStatus("Search with " + m.engine.Label())
		}

	case key.Matches(msg, m.keys.Escape):
		switch {
		case m.pressed:
			m.pressed = false
			m.sess.PointerCancel()
		case folderOpen:
			m.report(m.sess.CloseFolder(m.ctx))
			m.syncFolderSurface(m.sess.Snapshot())
		case d.EditMode:
			m.report(m.sess.SetEditMode(m.ctx, false))
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(d, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(d, 0, 1)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(d, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(d, 1, 0)

	case key.Matches(msg, m.keys.Activate):
		return m.activate(d)

	case key.Matches(msg, m.keys.Edit):
		m.report(m.sess.SetEditMode(m.ctx, !d.EditMode))
		if d.EditMode {
			m.setStatus("Edit mode off")
		} else {
			m.setStatus("Edit mode on")
		}

	case key.Matches(msg, m.keys.Delete):
		if folderOpen {
			if m.folderCursor < len(f.Links) {
				m.report(m.sess.RequestDeleteLink(m.ctx, f.ID, f.Links[m.folderCursor].ID))
			}
		} else {
			m.report(m.sess.RequestDeleteItem(m.ctx, m.cursor))
		}

	case key.Matches(msg, m.keys.Resize):
		id := f.ID
		if !folderOpen {
			folder, ok := grid.AsFolder(d.Grid.Get(m.cursor))
			if !ok {
				return m, nil
			}
			id = folder.ID
		}
		m.report(m.sess.ToggleFolderSize(m.ctx, id))
		m.syncFolderSurface(m.sess.Snapshot())
		if folderOpen {
			m.clampFolderCursor()
		}

	case key.Matches(msg, m.keys.Extract):
		if folderOpen && m.folderCursor < len(f.Links) {
			m.report(m.sess.Extract(m.ctx, f.ID, m.folderCursor))
			m.syncFolderSurface(m.sess.Snapshot())
		}

	case key.Matches(msg, m.keys.AddLink):
		return m.startInput(modeAddLink)
	case key.Matches(msg, m.keys.AddFolder):
		return m.startInput(modeAddFolder)
	case key.Matches(msg, m.keys.Search):
		return m.startInput(modeSearch)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.report(m.sess.ConfirmDelete(m.ctx))
		m.clampFolderCursor()
		m.syncFolderSurface(m.sess.Snapshot())
	case key.Matches(msg, m.keys.Cancel):
		m.report(m.sess.CancelDelete(m.ctx))
		m.setStatus("Delete cancelled")
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// moveCursor steps the cursor within the visible grid.
func (m *Model) moveCursor(d ops.Desktop, dx, dy int) {
	cols, n, cur := desktopColumns, grid.DesktopSlots, &m.cursor
	if f, _, ok := d.Folder(); ok {
		cols, n, cur = folderColumns(f.Size), f.Capacity(), &m.folderCursor
	}
	row, col := *cur/cols, *cur%cols
	col += dx
	row += dy
	if col < 0 || col >= cols || row < 0 || row*cols+col >= n {
		return
	}
	*cur = row*cols + col
}

func (m *Model) clampFolderCursor() {
	f, _, ok := m.sess.Snapshot().Folder()
	if !ok {
		return
	}
	if m.folderCursor >= f.Capacity() {
		m.folderCursor = f.Capacity() - 1
	}
}

// activate opens the folder or link under the cursor. Links do not open in
// edit mode.
func (m Model) activate(d ops.Desktop) (tea.Model, tea.Cmd) {
	if f, _, ok := d.Folder(); ok {
		if m.folderCursor < len(f.Links) && m.folderCursor < f.Capacity() && !d.EditMode {
			return m, m.openURL(f.Links[m.folderCursor].URL)
		}
		return m, nil
	}
	switch it := d.Grid.Get(m.cursor).(type) {
	case grid.Folder:
		m.report(m.sess.OpenFolder(m.ctx, it.ID))
		m.folderCursor = 0
		m.syncFolderSurface(m.sess.Snapshot())
	case grid.Link:
		if !d.EditMode {
			return m, m.openURL(it.URL)
		}
	}
	return m, nil
}

func (m Model) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

// savePrefs stores the theme and search engine. It reports false and sets
// the error status when the file cannot be written.
func (m *Model) savePrefs() bool {
	p, _ := prefs.Load(m.prefsPath)
	p.Theme = m.theme.Name
	p.SearchEngine = string(m.engine)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Printf("save prefs: %v", err)
		m.setError(err)
		return false
	}
	return true
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func (m Model) startInput(mode inputMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.focus = 0
	switch mode {
	case modeAddLink:
		m.inputs = []textinput.Model{
			newInput("Title", 60),
			newInput("example.com", 500),
			newInput("Icon ("+strings.Join(grid.IconNames(), ", ")+")", 20),
		}
	case modeAddFolder:
		m.inputs = []textinput.Model{
			newInput("Folder name", 60),
			newInput("2x2 or 3x3", 3),
		}
	case modeSearch:
		m.inputs = []textinput.Model{
			newInput("Search with "+m.engine.Label(), 200),
		}
	}
	return m, m.inputs[0].Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeGrid
		m.inputs = nil
		return m, nil
	case "tab", "shift+tab":
		m.inputs[m.focus].Blur()
		step := 1
		if msg.String() == "shift+tab" {
			step = len(m.inputs) - 1
		}
		m.focus = (m.focus + step) % len(m.inputs)
		return m, m.inputs[m.focus].Focus()
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) value(i int) string {
	if i >= len(m.inputs) {
		return ""
	}
	return strings.TrimSpace(m.inputs[i].Value())
}

// submit applies the open form. A failed create keeps the form open.
func (m Model) submit() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeAddLink:
		link, out, err := m.sess.CreateLink(m.ctx, ops.CreateLinkInput{
			Title:    m.value(0),
			Address:  m.value(1),
			IconName: m.value(2),
		})
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.cursor = out.Slot
		m.setStatus(fmt.Sprintf("Added %s to slot %d", link.Title, out.Slot+1))

	case modeAddFolder:
		folder, out, err := m.sess.CreateFolder(m.ctx, ops.CreateFolderInput{
			Title: m.value(0),
			Size:  m.value(1),
		})
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.cursor = out.Slot
		m.setStatus(fmt.Sprintf("Added folder %s to slot %d", folder.Title, out.Slot+1))

	case modeSearch:
		target, ok := m.engine.URL(m.value(0))
		if ok {
			cmd = m.openURL(target)
		}
	}
	m.mode = modeGrid
	m.inputs = nil
	return m, cmd
}

// Run starts the terminal desktop and blocks until it exits.
func Run(opts Options) error {
	if opts.LogPath != "" {
		f, err := tea.LogToFile(opts.LogPath, "perch")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	if opts.Clock != nil {
		opts.Clock.attach(p.Send)
		defer opts.Clock.attach(nil)
	}
	_, err := p.Run()
	return err
}
