// Package server exposes viewer sessions over HTTP.
//
// Documents are uploaded once and stored under their content hash. A session
// draws a view of one document and keeps it live in memory; renderer events,
// expansions and collapses are applied to the live view under a per-session
// lock and the resulting snapshot is persisted, so a restarted server (or
// another replica sharing the session store) rebuilds the view by replay.
//
// Changes are announced on a server-sent-event stream at /api/stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage"
	"github.com/matzehuels/netdraw/pkg/topology"
	"github.com/matzehuels/netdraw/pkg/view"
)

// maxDocumentSize bounds uploaded documents.
const maxDocumentSize = 64 << 20

// Options configures a Server. Nil fields get in-memory defaults.
type Options struct {
	Runner     *pipeline.Runner
	Documents  storage.DocumentStore
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *log.Logger
	Metrics    http.Handler // Served at /metrics when set
}

// Server holds the stores and the live sessions.
type Server struct {
	runner   *pipeline.Runner
	docs     storage.DocumentStore
	sessions session.Store
	ttl      time.Duration
	logger   *log.Logger
	metrics  http.Handler
	hub      *Hub

	mu   sync.Mutex
	live map[string]*liveSession
}

// liveSession is a rehydrated view. mu serializes every operation on it.
type liveSession struct {
	mu   sync.Mutex
	sess *session.Session
	view *view.GraphSession
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Documents == nil {
		opts.Documents = storage.NewMemoryStore()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	return &Server{
		runner:   opts.Runner,
		docs:     opts.Documents,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		hub:      NewHub(opts.Logger),
		live:     make(map[string]*liveSession),
	}
}

// Hub returns the event hub. It must be running for streams to receive
// events; [Server.Run] starts it.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stream", s.hub.ServeHTTP)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleCreateDocument)
			r.Get("/", s.handleListDocuments)
			r.Get("/{hash}", s.handleGetDocument)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Get("/frame", s.handleFrame)
				r.Post("/draw", s.handleDraw)
				r.Post("/expand", s.handleExpand)
				r.Post("/collapse", s.handleCollapse)
				r.Post("/events", s.handleEvent)
				r.Get("/search", s.handleSearch)
				r.Get("/description", s.handleDescription)
				r.Get("/summary", s.handleSummary)
				r.Get("/render.svg", s.handleRenderSVG)
			})
		})
	})
	return r
}

// Run serves addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

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

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Watch stores the document at path, then re-stores it whenever it changes
// and broadcasts [EventDocumentReloaded]. Existing sessions keep viewing the
// version they were created from.
func (s *Server) Watch(ctx context.Context, path string) error {
	if _, err := s.reload(ctx, path); err != nil {
		return err
	}
	w := NewWatcher(path, func() {
		if _, err := s.reload(ctx, path); err != nil {
			s.logger.Warn("reload failed", "path", path, "err", err)
		}
	}, s.logger)
	return w.Watch(ctx)
}

func (s *Server) reload(ctx context.Context, path string) (storage.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storage.Info{}, err
	}
	info, err := s.docs.Put(ctx, filepath.Base(path), data)
	if err != nil {
		return storage.Info{}, err
	}
	s.logger.Info("loaded document", "name", info.Name, "hash", info.Hash, "nodes", info.Nodes, "edges", info.Edges)
	s.hub.Broadcast(Event{Type: EventDocumentReloaded, Document: info.Hash, Name: info.Name})
	return info, nil
}

// Close releases the stores and the runner.
func (s *Server) Close() error {
	return errors.Join(s.sessions.Close(), s.docs.Close(), s.runner.Close())
}

// open returns the live session for id, rehydrating it from the session
// store if needed.
func (s *Server) open(ctx context.Context, id string) (*liveSession, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ls, ok := s.live[id]
	s.mu.Unlock()
	if ok {
		if !ls.expired() {
			return ls, nil
		}
		s.forget(id)
	}

	sess, err := session.MustGet(ctx, s.sessions, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, sess.DocumentHash)
	if err != nil {
		return nil, err
	}
	l, err := s.runner.Load(ctx, pipeline.Options{Data: doc.Data})
	if err != nil {
		return nil, err
	}
	g, err := topology.Load(l.Document)
	if err != nil {
		return nil, err
	}
	gs, err := view.Restore(g, sess.Snapshot)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[id]; ok {
		return existing, nil
	}
	ls = &liveSession{sess: sess, view: gs}
	s.live[id] = ls
	s.logger.Debug("rehydrated session", "session", id, "ops", len(sess.Snapshot.Log))
	return ls, nil
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

// persist stores the session's current snapshot. The caller holds ls.mu.
func (s *Server) persist(ctx context.Context, ls *liveSession) error {
	ls.sess.Update(ls.view.Snapshot(), s.ttl)
	if err := s.sessions.Set(ctx, ls.sess); err != nil {
		return err
	}
	s.hub.Broadcast(Event{Type: EventSessionUpdated, Session: ls.sess.ID, Document: ls.sess.DocumentHash})
	return nil
}

func (ls *liveSession) expired() bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.sess.IsExpired()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
