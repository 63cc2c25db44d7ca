package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/db"
	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/prefs"
	"github.com/hpungsan/perch/internal/search"
	"github.com/hpungsan/perch/internal/store"
)

var deskLayout = gesture.Layout{Columns: 6, Slots: grid.DesktopSlots, CellW: 80, CellH: 80, GapX: 20, GapY: 20}

type testServer struct {
	h       *Handlers
	mux     http.Handler
	sess    *ops.Session
	clock   *gesture.FakeClock
	prefsAt string
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	clock := gesture.NewFakeClock()
	sess, err := ops.NewSession(context.Background(), store.NewSQLite(database, store.DefaultKey), config.DefaultConfig(), ops.WithClock(clock))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(sess.Close)

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		t.Fatalf("static sub-FS: %v", err)
	}

	h := &Handlers{
		sess:      sess,
		renderer:  NewRenderer(templateSub, "test"),
		prefsPath: filepath.Join(tmpDir, "prefs.toml"),
		engine:    search.Default,
		help:      renderMarkdown(helpMarkdown),
	}
	return &testServer{
		h:       h,
		mux:     securityHeaders(h.routes(staticSub)),
		sess:    sess,
		clock:   clock,
		prefsAt: h.prefsPath,
	}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, httptest.NewRequest("GET", path, nil))
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, jsonResp bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if jsonResp {
		req.Header.Set("Accept", "application/json")
	}
	return ts.do(t, req)
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	return e["code"].(string)
}

// --- HandleDesktop ---

func TestHandleDesktop_RendersSeed(t *testing.T) {
	ts := setupTest(t)

	rec := ts.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Traveler&#39;s Log", "Small Stash", "Treasure Trove", `data-slot="23"`, "Gmail"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in desktop page", want)
		}
	}
	if strings.Contains(body, "folder-window") {
		t.Error("no folder is open, overlay should not render")
	}
	if strings.Contains(body, "New link") {
		t.Error("creation forms are only shown in edit mode")
	}
}

func TestHandleDesktop_OutboundLinksOpenNewTab(t *testing.T) {
	ts := setupTest(t)

	body := ts.get(t, "/").Body.String()
	// Seeded link in slot 2 plus the dock.
	if got := strings.Count(body, `target="_blank" rel="noopener"`); got < 1+len(grid.DockLinks()) {
		t.Errorf("new-tab anchors = %d, want at least %d", got, 1+len(grid.DockLinks()))
	}
	// Folder tiles are pressed like any other tile; the pointer API opens them.
	if strings.Contains(body, `action="/folders/folder-2x2/open"`) {
		t.Error("folder tile should not be wrapped in a form")
	}
	if !strings.Contains(body, `class="icon folder-tile size-2x2"`) {
		t.Error("expected folder tile icon")
	}
}

func TestHandleDesktop_FolderOverlay(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/folders/folder-2x2/open", nil, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	body := ts.get(t, "/").Body.String()
	if !strings.Contains(body, `id="folder-window"`) {
		t.Fatal("expected folder overlay")
	}
	if got := strings.Count(body, `data-scope="folder"`); got != 4 {
		t.Errorf("folder slots = %d, want 4 for a 2x2 folder", got)
	}

	ts.postForm(t, "/folders/close", nil, false)
	if strings.Contains(ts.get(t, "/").Body.String(), `id="folder-window"`) {
		t.Error("overlay should be gone after close")
	}
}

func TestHandleDesktop_EmptyFolderPlaceholder(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/folders", url.Values{"title": {"Later"}, "size": {"2x2"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	folder := decodeBody(t, rec)["folder"].(map[string]any)

	ts.postForm(t, "/folders/"+folder["id"].(string)+"/open", nil, true)
	if !strings.Contains(ts.get(t, "/").Body.String(), "Empty Folder") {
		t.Error("expected empty folder placeholder")
	}
}

// --- Creation ---

func TestHandleCreateLink_JSON(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/links", url.Values{"title": {"Example"}, "address": {"example.com"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	link := body["link"].(map[string]any)
	if link["url"] != "https://example.com" {
		t.Errorf("url = %v, want normalized https://example.com", link["url"])
	}
	if link["iconName"] != grid.DefaultIcon {
		t.Errorf("iconName = %v, want %s", link["iconName"], grid.DefaultIcon)
	}
	out := body["outcome"].(map[string]any)
	if out["slot"] != float64(0) {
		t.Errorf("slot = %v, want first empty slot 0", out["slot"])
	}

	got, ok := grid.AsLink(ts.sess.Snapshot().Grid.Get(0))
	if !ok || got.Title != "Example" {
		t.Errorf("slot 0 = %+v, want the new link", ts.sess.Snapshot().Grid.Get(0))
	}
}

func TestHandleCreateLink_Validation(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/links", url.Values{"title": {""}, "address": {"example.com"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
}

func TestHandleCreateFolder_BadSize(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/folders", url.Values{"title": {"X"}, "size": {"4x4"}}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error 400") {
		t.Error("expected full error page for browser requests")
	}
}

// --- Delete flow ---

func TestDeleteFlow_CancelThenConfirm(t *testing.T) {
	ts := setupTest(t)

	ts.postForm(t, "/slots/2/delete", nil, false)
	body := ts.get(t, "/").Body.String()
	if !strings.Contains(body, "alertdialog") {
		t.Fatal("expected confirmation dialog")
	}

	ts.postForm(t, "/delete/cancel", nil, false)
	if ts.sess.Snapshot().Grid.Get(2) == nil {
		t.Fatal("cancel must not delete")
	}
	if strings.Contains(ts.get(t, "/").Body.String(), "alertdialog") {
		t.Error("dialog should close on cancel")
	}

	ts.postForm(t, "/slots/2/delete", nil, false)
	rec := ts.postForm(t, "/delete/confirm", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ts.sess.Snapshot().Grid.Get(2) != nil {
		t.Error("slot 2 should be empty after confirm")
	}
}

func TestDeleteFlow_FolderLink(t *testing.T) {
	ts := setupTest(t)

	ts.postForm(t, "/folders/folder-3x3/links/t2/delete", nil, true)
	ts.postForm(t, "/delete/confirm", nil, true)

	f, _, _ := ts.sess.Snapshot().Grid.Folder("folder-3x3")
	if f.IndexOfLink("t2") != -1 || len(f.Links) != 8 {
		t.Errorf("links = %d, t2 index %d; want t2 removed", len(f.Links), f.IndexOfLink("t2"))
	}
}

func TestConfirmDelete_NothingPending(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/delete/confirm", nil, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "NO_PENDING_DELETE" {
		t.Errorf("code = %q, want NO_PENDING_DELETE", code)
	}
}

func TestRequestDeleteItem_BadSlot(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/slots/abc/delete", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "slot must be an integer") {
		t.Error("expected message on error page")
	}
}

// --- Folder actions ---

func TestHandleFolderSize_ToggleAndSet(t *testing.T) {
	ts := setupTest(t)

	ts.postForm(t, "/folders/folder-2x2/size", nil, true)
	f, _, _ := ts.sess.Snapshot().Grid.Folder("folder-2x2")
	if f.Size != grid.Size3x3 {
		t.Fatalf("size = %q, want 3x3 after toggle", f.Size)
	}

	ts.postForm(t, "/folders/folder-2x2/size", url.Values{"size": {"2x2"}}, true)
	f, _, _ = ts.sess.Snapshot().Grid.Folder("folder-2x2")
	if f.Size != grid.Size2x2 {
		t.Fatalf("size = %q, want 2x2", f.Size)
	}
}

func TestHandleExtract(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/folders/folder-2x2/links/0/extract", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	l, ok := grid.AsLink(ts.sess.Snapshot().Grid.Get(0))
	if !ok || l.ID != "g1" {
		t.Errorf("slot 0 = %+v, want extracted g1", ts.sess.Snapshot().Grid.Get(0))
	}
}

func TestHandleEditMode_Toggle(t *testing.T) {
	ts := setupTest(t)

	ts.postForm(t, "/edit", nil, true)
	if !ts.sess.Snapshot().EditMode {
		t.Fatal("edit mode should toggle on")
	}
	if !strings.Contains(ts.get(t, "/").Body.String(), "New link") {
		t.Error("creation forms should render in edit mode")
	}

	rec := ts.postForm(t, "/edit", url.Values{"on": {"maybe"}}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	ts.postForm(t, "/edit", url.Values{"on": {"false"}}, true)
	if ts.sess.Snapshot().EditMode {
		t.Error("edit mode should be off")
	}
}

// --- Search ---

func TestHandleSearch_Redirects(t *testing.T) {
	ts := setupTest(t)

	tests := []struct {
		path string
		want string
	}{
		{"/search?q=hello+world", "https://www.google.com/search?q=hello%20world"},
		{"/search?q=go&engine=yandex", "https://yandex.com/search/?text=go"},
		{"/search?q=++", "/"},
	}
	for _, tt := range tests {
		rec := ts.get(t, tt.path)
		if rec.Code != http.StatusFound {
			t.Fatalf("%s: status = %d, want 302", tt.path, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != tt.want {
			t.Errorf("%s: Location = %q, want %q", tt.path, got, tt.want)
		}
	}

	if rec := ts.get(t, "/search?q=x&engine=altavista"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown engine status = %d, want 400", rec.Code)
	}
}

func TestHandleCycleEngine_SavesPrefs(t *testing.T) {
	ts := setupTest(t)

	rec := ts.postForm(t, "/search/engine", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["engine"]; got != string(search.Bing) {
		t.Errorf("engine = %v, want bing", got)
	}

	p, _ := prefs.Load(ts.prefsAt)
	if p.Engine() != search.Bing {
		t.Errorf("saved engine = %q, want bing", p.SearchEngine)
	}
	if !strings.Contains(ts.get(t, "/").Body.String(), "Search with Bing") {
		t.Error("page should use the new engine")
	}
}

// --- Gesture API ---

func pointAt(i int) gesture.Point {
	return deskLayout.Surface()[i].Center()
}

func TestPointerAPI_DragInEditMode(t *testing.T) {
	ts := setupTest(t)
	ts.postForm(t, "/edit", url.Values{"on": {"true"}}, true)

	rec := ts.postJSON(t, "/api/surface", map[string]any{"scope": "desktop", "slots": []gesture.Rect(deskLayout.Surface())})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("surface status = %d", rec.Code)
	}

	rec = ts.postJSON(t, "/api/pointer/down", map[string]any{"scope": "desktop", "slot": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("down status = %d, body %s", rec.Code, rec.Body.String())
	}
	if st := decodeBody(t, rec); st["state"] != "dragging" {
		t.Fatalf("state = %v, want dragging", st["state"])
	}

	ts.postJSON(t, "/api/pointer/move", pointAt(10))
	rec = ts.postJSON(t, "/api/pointer/up", pointAt(10))
	if rec.Code != http.StatusOK {
		t.Fatalf("up status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody(t, rec)
	action := res["action"].(map[string]any)
	if action["kind"] != "swap" || action["target"] != float64(10) {
		t.Errorf("action = %v, want swap onto 10", action)
	}

	l, ok := grid.AsLink(ts.sess.Snapshot().Grid.Get(10))
	if !ok || l.ID != "single-link" {
		t.Errorf("slot 10 = %+v, want single-link", ts.sess.Snapshot().Grid.Get(10))
	}
}

func TestPointerAPI_ClickNavigates(t *testing.T) {
	ts := setupTest(t)
	ts.postJSON(t, "/api/surface", map[string]any{"scope": "desktop", "slots": []gesture.Rect(deskLayout.Surface())})

	ts.postJSON(t, "/api/pointer/down", map[string]any{"scope": "desktop", "slot": 2})
	rec := ts.postJSON(t, "/api/pointer/up", pointAt(2))
	res := decodeBody(t, rec)
	if res["click"] != true || res["navigate"] != grid.DefaultLink().URL {
		t.Errorf("result = %v, want click navigating to %s", res, grid.DefaultLink().URL)
	}
}

func TestPointerAPI_ClickOpensFolder(t *testing.T) {
	ts := setupTest(t)
	ts.postJSON(t, "/api/surface", map[string]any{"scope": "desktop", "slots": []gesture.Rect(deskLayout.Surface())})

	ts.postJSON(t, "/api/pointer/down", map[string]any{"scope": "desktop", "slot": 3})
	res := decodeBody(t, ts.postJSON(t, "/api/pointer/up", pointAt(3)))
	if res["click"] != true {
		t.Fatalf("result = %v, want a click", res)
	}
	if _, ok := res["navigate"]; ok {
		t.Errorf("folder click should not navigate: %v", res)
	}
	if got := ts.sess.Snapshot().OpenFolder; got != "folder-2x2" {
		t.Errorf("open folder = %q, want folder-2x2", got)
	}
}

func TestPointerAPI_DragFolderOntoFolderSwaps(t *testing.T) {
	ts := setupTest(t)
	ts.postForm(t, "/edit", url.Values{"on": {"true"}}, true)
	ts.postJSON(t, "/api/surface", map[string]any{"scope": "desktop", "slots": []gesture.Rect(deskLayout.Surface())})

	ts.postJSON(t, "/api/pointer/down", map[string]any{"scope": "desktop", "slot": 3})
	ts.postJSON(t, "/api/pointer/move", pointAt(4))
	ts.postJSON(t, "/api/pointer/up", pointAt(4))

	d := ts.sess.Snapshot()
	if d.Grid.Get(3).ItemID() != "folder-3x3" || d.Grid.Get(4).ItemID() != "folder-2x2" {
		t.Errorf("slots 3,4 = %s,%s, want folders swapped", d.Grid.Get(3).ItemID(), d.Grid.Get(4).ItemID())
	}
}

func TestPointerAPI_State(t *testing.T) {
	ts := setupTest(t)

	rec := ts.get(t, "/api/state")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["desktop"]; !ok {
		t.Error("expected desktop in state")
	}
	if p := body["pointer"].(map[string]any); p["state"] != "idle" {
		t.Errorf("pointer state = %v, want idle", p["state"])
	}
}

func TestPointerAPI_BadJSON(t *testing.T) {
	ts := setupTest(t)

	req := httptest.NewRequest("POST", "/api/pointer/down", strings.NewReader("{nope"))
	rec := ts.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
}

// --- Help, static, headers ---

func TestHandleHelp_RendersMarkdown(t *testing.T) {
	ts := setupTest(t)

	body := ts.get(t, "/help").Body.String()
	if !strings.Contains(body, "<h1>Using Perch</h1>") {
		t.Error("expected markdown heading rendered to HTML")
	}
}

func TestStaticAndSecurityHeaders(t *testing.T) {
	ts := setupTest(t)

	rec := ts.get(t, "/static/desk.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "img-src 'self' https:") {
		t.Error("CSP should allow remote favicons")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options DENY")
	}
}
