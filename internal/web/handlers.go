package web

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/prefs"
	"github.com/hpungsan/perch/internal/search"
)

// maxBodyBytes caps gesture API request bodies.
const maxBodyBytes = 64 << 10

// Handlers contains HTTP route handlers for the start page.
type Handlers struct {
	sess      *ops.Session
	renderer  *Renderer
	prefsPath string
	help      template.HTML

	mu     sync.Mutex
	engine search.Engine
}

func (h *Handlers) currentEngine() search.Engine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine
}

// HandleDesktop handles GET /: the start page.
func (h *Handlers) HandleDesktop(w http.ResponseWriter, r *http.Request) {
	d := h.sess.Snapshot()
	slots, folder := desktopView(d)
	engine := h.currentEngine()

	h.renderer.renderPage(w, "desktop", DesktopPageData{
		PageData: PageData{
			Title:   "Perch",
			Version: h.renderer.version,
			Nav:     "desktop",
		},
		Slots:      slots,
		Dock:       grid.DockLinks(),
		Folder:     folder,
		Pending:    d.PendingDelete,
		EditMode:   d.EditMode,
		Engine:     engine,
		NextEngine: engine.Next(),
		Icons:      grid.IconNames(),
	})
}

// HandleHelp handles GET /help: usage notes rendered from markdown.
func (h *Handlers) HandleHelp(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "help", HelpPageData{
		PageData: PageData{
			Title:   "Help",
			Version: h.renderer.version,
			Nav:     "help",
		},
		RenderedHTML: h.help,
	})
}

// HandleSearch handles GET /search?q=: redirects to the active engine.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	engine := h.currentEngine()
	if name := r.URL.Query().Get("engine"); name != "" {
		e, err := search.Parse(name)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
			return
		}
		engine = e
	}

	target, ok := engine.URL(r.URL.Query().Get("q"))
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleCycleEngine handles POST /search/engine: switches to the next engine
// and saves the choice.
func (h *Handlers) HandleCycleEngine(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.engine = h.engine.Next()
	engine := h.engine
	h.mu.Unlock()

	p, _ := prefs.Load(h.prefsPath)
	p.SearchEngine = string(engine)
	if err := prefs.Save(h.prefsPath, p); err != nil {
		log.Printf("save prefs: %v", err)
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"engine": engine, "label": engine.Label()})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleCreateLink handles POST /links.
func (h *Handlers) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	link, out, err := h.sess.CreateLink(r.Context(), ops.CreateLinkInput{
		Title:    r.FormValue("title"),
		Address:  r.FormValue("address"),
		IconName: r.FormValue("icon"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, map[string]any{"link": link, "outcome": out})
}

// HandleCreateFolder handles POST /folders.
func (h *Handlers) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	folder, out, err := h.sess.CreateFolder(r.Context(), ops.CreateFolderInput{
		Title: r.FormValue("title"),
		Size:  r.FormValue("size"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, map[string]any{"folder": folder, "outcome": out})
}

// HandleOpenFolder handles POST /folders/{id}/open.
func (h *Handlers) HandleOpenFolder(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.OpenFolder(r.Context(), r.PathValue("id"))
	h.finish(w, r, out, err)
}

// HandleCloseFolder handles POST /folders/close.
func (h *Handlers) HandleCloseFolder(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.CloseFolder(r.Context())
	h.finish(w, r, out, err)
}

// HandleFolderSize handles POST /folders/{id}/size. Without a size value it
// toggles between 2x2 and 3x3.
func (h *Handlers) HandleFolderSize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	id := r.PathValue("id")
	var (
		out ops.Outcome
		err error
	)
	if size := r.FormValue("size"); size != "" {
		out, err = h.sess.SetFolderSize(r.Context(), id, size)
	} else {
		out, err = h.sess.ToggleFolderSize(r.Context(), id)
	}
	h.finish(w, r, out, err)
}

// HandleExtract handles POST /folders/{id}/links/{index}/extract.
func (h *Handlers) HandleExtract(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("link index must be an integer"))
		return
	}
	out, err := h.sess.Extract(r.Context(), r.PathValue("id"), index)
	h.finish(w, r, out, err)
}

// HandleRequestDeleteItem handles POST /slots/{slot}/delete.
func (h *Handlers) HandleRequestDeleteItem(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("slot must be an integer"))
		return
	}
	out, err := h.sess.RequestDeleteItem(r.Context(), slot)
	h.finish(w, r, out, err)
}

// HandleRequestDeleteLink handles POST /folders/{id}/links/{link}/delete.
func (h *Handlers) HandleRequestDeleteLink(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.RequestDeleteLink(r.Context(), r.PathValue("id"), r.PathValue("link"))
	h.finish(w, r, out, err)
}

// HandleConfirmDelete handles POST /delete/confirm.
func (h *Handlers) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.ConfirmDelete(r.Context())
	h.finish(w, r, out, err)
}

// HandleCancelDelete handles POST /delete/cancel.
func (h *Handlers) HandleCancelDelete(w http.ResponseWriter, r *http.Request) {
	out, err := h.sess.CancelDelete(r.Context())
	h.finish(w, r, out, err)
}

// HandleEditMode handles POST /edit with on=true|false. A missing value
// toggles.
func (h *Handlers) HandleEditMode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	on := !h.sess.Snapshot().EditMode
	if v := r.FormValue("on"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("on must be true or false"))
			return
		}
		on = b
	}
	out, err := h.sess.SetEditMode(r.Context(), on)
	h.finish(w, r, out, err)
}

// stateResponse is the gesture API view of the session.
type stateResponse struct {
	Desktop ops.Desktop      `json:"desktop"`
	Pointer ops.PointerState `json:"pointer"`
}

// HandleState handles GET /api/state.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, stateResponse{
		Desktop: h.sess.Snapshot(),
		Pointer: h.sess.PointerState(),
	})
}

type surfaceRequest struct {
	Scope  string         `json:"scope"`
	Slots  []gesture.Rect `json:"slots"`
	Window gesture.Rect   `json:"window"`
}

// HandleSurface handles POST /api/surface: the client reports the slot
// rectangles it rendered, in CSS pixels.
func (h *Handlers) HandleSurface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest
	if !h.decode(w, r, &req) {
		return
	}
	surface := gesture.RectSurface(req.Slots)
	if ops.ParseScope(req.Scope) == gesture.ScopeFolder {
		h.sess.SetFolderSurface(surface, req.Window)
	} else {
		h.sess.SetDesktopSurface(surface)
	}
	w.WriteHeader(http.StatusNoContent)
}

type pointerDownRequest struct {
	Scope string `json:"scope"`
	Slot  int    `json:"slot"`
}

// HandlePointerDown handles POST /api/pointer/down.
func (h *Handlers) HandlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req pointerDownRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.sess.PointerDown(r.Context(), ops.ParseScope(req.Scope), req.Slot)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, st)
}

// HandlePointerMove handles POST /api/pointer/move.
func (h *Handlers) HandlePointerMove(w http.ResponseWriter, r *http.Request) {
	var p gesture.Point
	if !h.decode(w, r, &p) {
		return
	}
	renderJSON(w, http.StatusOK, h.sess.PointerMove(r.Context(), p))
}

// HandlePointerUp handles POST /api/pointer/up.
func (h *Handlers) HandlePointerUp(w http.ResponseWriter, r *http.Request) {
	var p gesture.Point
	if !h.decode(w, r, &p) {
		return
	}
	res, err := h.sess.PointerUp(r.Context(), p)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, res)
}

// HandlePointerCancel handles POST /api/pointer/cancel.
func (h *Handlers) HandlePointerCancel(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.sess.PointerCancel())
}

// decode reads a JSON request body into v, rendering an error on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

// finish completes a form action that yields an Outcome.
func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, out ops.Outcome, err error) {
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, map[string]any{"outcome": out})
}

// done answers a successful form action: JSON clients get body, browsers
// are sent back to the desktop.
func (h *Handlers) done(w http.ResponseWriter, r *http.Request, body map[string]any) {
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, body)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
