// Package server renders the site on request.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/render"
)

const (
	faviconName = "favicon.ico"
	faviconType = "image/vnd.microsoft.icon"
)

// ErrUnknownLanguage is reported when a route names a language the content
// document does not have.
var ErrUnknownLanguage = errors.New("unknown language")

// Snapshot is the read-only state every request renders from.
type Snapshot struct {
	Content  *content.Document
	Renderer *render.Renderer
}

// Loader builds a fresh Snapshot. It is called once at startup and again on
// every reload.
type Loader func() (*Snapshot, error)

// FileLoader loads the content document and templates from disk.
func FileLoader(contentFile, templatesDir string, logger *slog.Logger) Loader {
	return func() (*Snapshot, error) {
		doc, err := content.Load(contentFile, logger)
		if err != nil {
			return nil, err
		}
		r, err := render.New(templatesDir)
		if err != nil {
			return nil, err
		}
		return &Snapshot{Content: doc, Renderer: r}, nil
	}
}

type Options struct {
	Addr      string
	StaticDir string
	Debug     bool
	// WatchPaths are reloaded on change when Debug is set.
	WatchPaths []string
}

type Server struct {
	opts   Options
	load   Loader
	logger *slog.Logger
	snap   atomic.Pointer[Snapshot]
}

// New loads the initial snapshot. A load failure here is fatal to the caller.
func New(load Loader, opts Options, logger *slog.Logger) (*Server, error) {
	snap, err := load()
	if err != nil {
		return nil, err
	}
	s := &Server{opts: opts, load: load, logger: logger}
	s.snap.Store(snap)
	return s, nil
}

// Reload swaps in a freshly loaded snapshot. The current one stays in place
// if loading fails.
func (s *Server) Reload() error {
	snap, err := s.load()
	if err != nil {
		return err
	}
	s.snap.Store(snap)
	return nil
}

// Handler returns the site's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /"+faviconName, s.handleFavicon)
	for _, page := range model.Pages {
		mux.HandleFunc("GET /{lang}"+page.Route, s.handlePage(page))
	}

	// /static/ overlaps /{lang}/projects, so it is routed ahead of the mux.
	assets := http.StripPrefix("/static/", http.FileServer(filesOnly{http.Dir(s.opts.StaticDir)}))
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			assets.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	if s.opts.Debug {
		h = noCache(h)
	}
	return logRequests(s.logger, h)
}

// filesOnly hides directories so the file server never lists them.
type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, render.ServerRouter{}.PageURL("home", model.DefaultLanguage), http.StatusFound)
}

func (s *Server) handlePage(page model.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := r.PathValue("lang")
		snap := s.snap.Load()

		if !snap.Content.Has(lang) {
			s.logger.Debug("not found", "lang", lang, "page", page.Name, "err", ErrUnknownLanguage)
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := model.NewPageData(page, lang, snap.Content.Tree(lang))
		err := snap.Renderer.Render(w, render.ServerRouter{}, page.Name, data)
		switch {
		case err == nil:
		case errors.Is(err, render.ErrMissingTemplate):
			s.logger.Warn("page has no template", "page", page.Name)
			http.NotFound(w, r)
		default:
			s.logger.Error("rendering page", "lang", lang, "page", page.Name, "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(s.opts.StaticDir, faviconName))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", faviconType)
	http.ServeContent(w, r, faviconName, info.ModTime(), f)
}

// Run serves until ctx is cancelled, then shuts down gracefully. In debug
// mode it also reloads on changes under Options.WatchPaths.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.Debug && len(s.opts.WatchPaths) > 0 {
		stop, err := s.watch(ctx, s.opts.WatchPaths)
		if err != nil {
			s.logger.Warn("reload disabled", "err", err)
		} else {
			defer stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving site", "addr", "http://"+s.opts.Addr, "debug", s.opts.Debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
