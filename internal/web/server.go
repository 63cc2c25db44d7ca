package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/perch/internal/ops"
	"github.com/hpungsan/perch/internal/prefs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMarkdown string

// NewServer creates and configures the HTTP server for the Perch start page.
// prefsPath is where the search engine choice is saved; empty means the
// default location.
func NewServer(sess *ops.Session, prefsPath, version, bind string, port int) *http.Server {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	p, _ := prefs.Load(prefsPath)

	h := &Handlers{
		sess:      sess,
		renderer:  NewRenderer(templateSub, version),
		prefsPath: prefsPath,
		engine:    p.Engine(),
		help:      renderMarkdown(helpMarkdown),
	}

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: securityHeaders(h.routes(staticSub)),
	}
}

func (h *Handlers) routes(static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	// Pages and form actions
	mux.HandleFunc("GET /{$}", h.HandleDesktop)
	mux.HandleFunc("GET /help", h.HandleHelp)
	mux.HandleFunc("GET /search", h.HandleSearch)
	mux.HandleFunc("POST /search/engine", h.HandleCycleEngine)
	mux.HandleFunc("POST /links", h.HandleCreateLink)
	mux.HandleFunc("POST /folders", h.HandleCreateFolder)
	mux.HandleFunc("POST /folders/close", h.HandleCloseFolder)
	mux.HandleFunc("POST /folders/{id}/open", h.HandleOpenFolder)
	mux.HandleFunc("POST /folders/{id}/size", h.HandleFolderSize)
	mux.HandleFunc("POST /folders/{id}/links/{link}/delete", h.HandleRequestDeleteLink)
	mux.HandleFunc("POST /folders/{id}/links/{index}/extract", h.HandleExtract)
	mux.HandleFunc("POST /slots/{slot}/delete", h.HandleRequestDeleteItem)
	mux.HandleFunc("POST /delete/confirm", h.HandleConfirmDelete)
	mux.HandleFunc("POST /delete/cancel", h.HandleCancelDelete)
	mux.HandleFunc("POST /edit", h.HandleEditMode)

	// Gesture API used by desk.js
	mux.HandleFunc("GET /api/state", h.HandleState)
	mux.HandleFunc("POST /api/surface", h.HandleSurface)
	mux.HandleFunc("POST /api/pointer/down", h.HandlePointerDown)
	mux.HandleFunc("POST /api/pointer/move", h.HandlePointerMove)
	mux.HandleFunc("POST /api/pointer/up", h.HandlePointerUp)
	mux.HandleFunc("POST /api/pointer/cancel", h.HandlePointerCancel)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
// Favicons are loaded from the configured remote service.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' https: data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Perch start page running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
