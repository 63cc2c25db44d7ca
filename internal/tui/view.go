package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
)

// View implements tea.Model. The first gridTop lines are the header; the
// desktop or folder window starts at row gridTop so mouse coordinates map
// onto the layouts in layout.go.
func (m Model) View() string {
	d := m.sess.Snapshot()
	ps := m.sess.PointerState()

	var b strings.Builder
	b.WriteString(m.renderHeader(d))
	b.WriteString("\n")
	b.WriteString(m.renderSearchLine())
	b.WriteString("\n\n")

	if f, _, ok := d.Folder(); ok {
		b.WriteString(m.renderFolder(d, f, ps))
	} else {
		b.WriteString(m.renderDesktop(d, ps))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderDock())

	if d.PendingDelete != nil {
		b.WriteString("\n\n")
		b.WriteString(m.renderConfirm(*d.PendingDelete))
	} else if m.mode == modeAddLink || m.mode == modeAddFolder {
		b.WriteString("\n\n")
		b.WriteString(m.renderForm())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(indent(m.help.View(m.keys), gridLeft))
	return b.String()
}

func (m Model) renderHeader(d ops.Desktop) string {
	title := m.styles.Header.Render("✦ Perch")
	parts := []string{title}
	if d.EditMode {
		parts = append(parts, m.styles.Accent.Render("[edit]"))
	}
	parts = append(parts, m.styles.Muted.Render("theme "+m.theme.Name))
	return indent(strings.Join(parts, "  "), gridLeft)
}

func (m Model) renderSearchLine() string {
	if m.mode == modeSearch && len(m.inputs) > 0 {
		label := m.styles.Accent.Render(m.engine.Label() + " ›")
		return indent(label+" "+m.inputs[0].View(), gridLeft)
	}
	return indent(m.styles.Muted.Render("/ search with "+m.engine.Label()+"   E next engine"), gridLeft)
}

// tileState picks the style for one tile.
type tileState struct {
	empty    bool
	selected bool
	dragging bool
	hovered  bool
}

func (m Model) tileStyle(s tileState) lipgloss.Style {
	switch {
	case s.dragging:
		return m.styles.Dragging
	case s.hovered:
		return m.styles.Hovered
	case s.selected:
		return m.styles.Selected
	case s.empty:
		return m.styles.Empty
	}
	return m.styles.Tile
}

func (m Model) renderTile(s tileState, glyph, title string) string {
	return m.tileStyle(s).Render(glyph + "\n" + truncate(title, tileCols-2))
}

func (m Model) renderTiles(n, cols int, tile func(i int) string) string {
	var rows []string
	for start := 0; start < n; start += cols {
		var cells []string
		for i := start; i < start+cols && i < n; i++ {
			if i > start {
				cells = append(cells, strings.Repeat(" ", gapCols))
			}
			cells = append(cells, tile(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, strings.Repeat("\n", gapRows+1))
}

func (m Model) renderDesktop(d ops.Desktop, ps ops.PointerState) string {
	dragging := ps.Scope == "desktop" && ps.State != "idle"
	block := m.renderTiles(d.Grid.Len(), desktopColumns, func(i int) string {
		s := tileState{
			selected: i == m.cursor,
			dragging: dragging && ps.Source == i,
			hovered:  dragging && ps.Hovered == i,
		}
		switch it := d.Grid.Get(i).(type) {
		case grid.Link:
			return m.renderTile(s, grid.Glyph(it.IconName), it.Title)
		case grid.Folder:
			glyph := fmt.Sprintf("%s %d", grid.FolderGlyph, len(it.Links))
			return m.renderTile(s, glyph, it.Title)
		}
		s.empty = true
		return m.renderTile(s, "", "")
	})
	return indent(block, gridLeft)
}

func (m Model) renderFolder(d ops.Desktop, f grid.Folder, ps ops.PointerState) string {
	dragging := ps.Scope == "folder" && ps.State != "idle"
	slots := f.DisplaySlots()
	cols := folderColumns(f.Size)
	tiles := m.renderTiles(len(slots), cols, func(i int) string {
		s := tileState{
			selected: i == m.folderCursor,
			dragging: dragging && ps.Source == i,
			hovered:  dragging && ps.Hovered == i,
		}
		l := slots[i]
		if l == nil {
			s.empty = true
			return m.renderTile(s, "", "")
		}
		return m.renderTile(s, grid.Glyph(l.IconName), l.Title)
	})

	header := fmt.Sprintf("%s %s · %s", grid.FolderGlyph, f.Title, f.Size.Normalized())
	switch {
	case len(f.Links) == 0:
		header += " · Empty Folder"
	case len(f.Hidden()) > 0:
		header += fmt.Sprintf(" · %d hidden", len(f.Hidden()))
	}
	width := cols*tileCols + (cols-1)*gapCols
	header = m.styles.Header.Render(truncate(header, width))

	return indent(m.styles.Window.Render(header+"\n"+tiles), gridLeft)
}

func (m Model) renderDock() string {
	var names []string
	for _, l := range grid.DockLinks() {
		names = append(names, grid.Glyph(l.IconName)+" "+l.Title)
	}
	return indent(m.styles.Muted.Render(strings.Join(names, "  ·  ")), gridLeft)
}

func (m Model) renderConfirm(req ops.DeleteRequest) string {
	body := fmt.Sprintf("Delete %q?\n\n%s  %s",
		req.Name,
		m.styles.Danger.Render("y delete"),
		m.styles.Muted.Render("n cancel"),
	)
	return indent(m.styles.Dialog.Render(body), gridLeft)
}

func (m Model) renderForm() string {
	title := "New link"
	labels := []string{"Title", "Address", "Icon"}
	if m.mode == modeAddFolder {
		title = "New folder"
		labels = []string{"Title", "Size"}
	}
	lines := []string{m.styles.Header.Render(title), ""}
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-8s", labels[i])
		if i == m.focus {
			label = m.styles.Accent.Render(label)
		} else {
			label = m.styles.Muted.Render(label)
		}
		lines = append(lines, label+" "+in.View())
	}
	lines = append(lines, "", m.styles.Muted.Render("enter save · tab next field · esc cancel"))
	return indent(m.styles.Window.Render(strings.Join(lines, "\n")), gridLeft)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return indent(m.styles.Danger.Render(m.status), gridLeft)
	}
	return indent(m.styles.StatusBar.Render(m.status), gridLeft)
}

// indent shifts every line of s right by n columns.
func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
