// Package server serves the family tree over HTTP.
//
// Every client works on its own view session: the first request without an
// X-Session-ID header creates one and the id is returned in the same
// header. Each view operation persists the encoded view state to the
// session store, so a view survives restarts and moves between instances
// sharing a Redis store.
//
// # Endpoints
//
//	GET  /api/data                   family data
//	GET  /api/frame                  current frame
//	POST /api/nodes/{id}/expand      toggle a node
//	POST /api/nodes/{id}/collapse    collapse to ancestors
//	POST /api/nodes/{id}/focus       connect to a node
//	POST /api/reset                  default view
//	GET  /api/path?from=&to=         reveal a path
//	POST /api/lineage?mode=          switch the lineage filter
//	GET  /api/state                  encoded view state
//	POST /api/state                  restore an encoded view state
//	POST /api/share                  share the current view
//	GET  /api/share/{id}             open a shared view
//	GET  /api/snapshots              archived snapshots
//	GET  /api/snapshots/{id}         one archived snapshot
//	GET  /api/render.svg             current view as SVG
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/pipeline"
	"github.com/matzehuels/familytree/pkg/session"
	"github.com/matzehuels/familytree/pkg/state"
	"github.com/matzehuels/familytree/pkg/storage"
	"github.com/matzehuels/familytree/pkg/view"
)

// SessionHeader carries the view session id in requests and responses.
const SessionHeader = "X-Session-ID"

// Options configures a Server.
type Options struct {
	// View holds the source and the spacing and lineage defaults of new
	// views. Formats and render options are ignored.
	View pipeline.Options

	Runner     *pipeline.Runner
	Sessions   session.Store
	Shares     *state.ShareStore
	Archive    storage.Archive
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server holds the loaded family and the live view controllers.
type Server struct {
	opts   Options
	logger *log.Logger

	mu   sync.RWMutex
	data *family.Data
	hash string
	ids  *state.IDMap

	viewsMu sync.Mutex
	views   map[string]*view.Controller
}

// New loads the family from opts.View.Source and returns a ready server.
// Nil stores fall back to in-memory implementations.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if err := opts.View.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	if opts.Shares == nil {
		opts.Shares = state.NewShareStore(opts.Runner.Cache, opts.Runner.Keyer, 0)
	}
	if opts.Archive == nil {
		opts.Archive = storage.NewMemoryArchive()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		views:  make(map[string]*view.Controller),
	}
	if err := s.load(ctx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads the source again and moves every live view onto the new
// data, keeping what each one shows.
func (s *Server) Reload(ctx context.Context) error {
	if err := s.load(ctx, true); err != nil {
		return err
	}
	data, _, _ := s.snapshot()

	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	for id, c := range s.views {
		if _, err := c.UpdateData(data, nil); err != nil {
			s.logger.Warn("dropping view after reload", "session", id, "err", err)
			delete(s.views, id)
		}
	}
	s.logger.Info("reloaded family", "members", len(data.Members), "views", len(s.views))
	return nil
}

func (s *Server) load(ctx context.Context, refresh bool) error {
	opts := s.opts.View
	opts.Refresh = refresh
	data, hash, err := s.opts.Runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ids := state.BuildIDMap(data)

	s.mu.Lock()
	s.data, s.hash, s.ids = data, hash, ids
	s.mu.Unlock()
	return nil
}

func (s *Server) snapshot() (*family.Data, string, *state.IDMap) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.hash, s.ids
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	go s.cleanupSessions(ctx, time.Hour)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// cleanupSessions removes expired sessions every interval until ctx ends.
func (s *Server) cleanupSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.opts.Sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// Close releases the archive and runner.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(s.opts.Archive.Close(ctx), s.opts.Runner.Close())
}
