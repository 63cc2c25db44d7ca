package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/search"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "desktop", "help"
}

// SlotView is one rendered desktop slot.
type SlotView struct {
	Index   int
	Kind    string // "empty", "link", "folder"
	ID      string
	Title   string
	URL     string
	Glyph   string
	IconURL string
	Size    grid.SizeMode
	Preview []grid.Link // first links of a folder, for its tile
}

// FolderSlotView is one rendered slot of the folder overlay.
type FolderSlotView struct {
	Index int
	Link  *grid.Link
	Glyph string
}

// FolderView is the open folder overlay.
type FolderView struct {
	ID     string
	Title  string
	Size   grid.SizeMode
	Slots  []FolderSlotView
	Empty  bool
	Hidden int
}

// DesktopPageData is the template data for the start page.
type DesktopPageData struct {
	PageData
	Slots      []SlotView
	Dock       []grid.Link
	Folder     *FolderView
	Pending    *ops.DeleteRequest
	EditMode   bool
	Engine     search.Engine
	NextEngine search.Engine
	Icons      []string
}

// HelpPageData is the template data for the help page.
type HelpPageData struct {
	PageData
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"glyph":     grid.Glyph,
		"host":      func(u string) string { return grid.Hostname(grid.NormalizeURL(u)) },
		"folderTag": func() string { return grid.FolderGlyph },
		"hasPrefix": strings.HasPrefix,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"desktop": "desktop.html",
		"help":    "help.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var pErr *errors.PerchError
	if !stderrors.As(err, &pErr) {
		pErr = errors.NewInternal(err)
	}

	status := pErr.Status
	message := pErr.Message

	// JSON request
	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(pErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(req.URL.Path, "/api/")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// desktopView builds the page model from a desktop snapshot.
func desktopView(d ops.Desktop) ([]SlotView, *FolderView) {
	slots := make([]SlotView, d.Grid.Len())
	for i := range slots {
		v := SlotView{Index: i, Kind: "empty"}
		switch it := d.Grid.Get(i).(type) {
		case grid.Link:
			v.Kind, v.ID, v.Title, v.URL = "link", it.ID, it.Title, it.URL
			v.Glyph, v.IconURL = grid.Glyph(it.IconName), it.IconURL
		case grid.Folder:
			v.Kind, v.ID, v.Title, v.Size = "folder", it.ID, it.Title, it.Size.Normalized()
			v.Glyph = grid.FolderGlyph
			n := min(len(it.Links), 4)
			v.Preview = it.Links[:n]
		}
		slots[i] = v
	}

	f, _, ok := d.Folder()
	if !ok {
		return slots, nil
	}
	fv := &FolderView{
		ID:     f.ID,
		Title:  f.Title,
		Size:   f.Size.Normalized(),
		Empty:  len(f.Links) == 0,
		Hidden: len(f.Hidden()),
	}
	for i, l := range f.DisplaySlots() {
		s := FolderSlotView{Index: i, Link: l}
		if l != nil {
			s.Glyph = grid.Glyph(l.IconName)
		}
		fv.Slots = append(fv.Slots, s)
	}
	return slots, fv
}
