// Package worker runs the assistant-core HTTP service and background loops.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/cohabitat/assistant-core/internal/config"
	"github.com/cohabitat/assistant-core/internal/db"
	gormstore "github.com/cohabitat/assistant-core/internal/db/gorm"
	"github.com/cohabitat/assistant-core/internal/embedding"
	"github.com/cohabitat/assistant-core/internal/events"
	"github.com/cohabitat/assistant-core/internal/ingest"
	"github.com/cohabitat/assistant-core/internal/search"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Service wires the stores, the search manager, the tool dispatcher and the
// background loops behind one HTTP server.
type Service struct {
	version string
	config  *config.Config

	store     *gormstore.Store
	documents db.DocumentStore
	tasks     db.TaskStore
	members   db.MemberReader
	outbox    db.OutboxStore

	embedder  *embedding.Service
	searchMgr *search.Manager
	pipeline  *ingest.Pipeline
	deliverer *events.Deliverer

	router    *chi.Mux
	server    *http.Server
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a fully initialized worker service.
func NewService(version string) (*Service, error) {
	cfg := config.Get()

	store, err := gormstore.NewStore(gormstore.Config{
		DSN:           cfg.DatabaseDSN,
		MaxConns:      cfg.MaxConns,
		EmbeddingDims: cfg.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	embedder, err := embedding.NewService(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}

	documents := gormstore.NewDocumentStore(store)
	tasks := gormstore.NewTaskStore(store)
	members := gormstore.NewMemberStore(store)
	outbox := gormstore.NewOutboxStore(store)

	pipeline, err := ingest.NewPipeline(documents, embedder)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init ingest pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:   version,
		config:    cfg,
		store:     store,
		documents: documents,
		tasks:     tasks,
		members:   members,
		outbox:    outbox,
		embedder:  embedder,
		searchMgr: search.NewManager(embedder, documents),
		pipeline:  pipeline,
		deliverer: events.NewDeliverer(outbox, events.LogSink{}),
		router:    chi.NewRouter(),
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	svc.setupMiddleware()
	svc.setupRoutes()

	return svc, nil
}

// setupMiddleware configures HTTP middleware.
func (s *Service) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(DefaultHTTPTimeout))
	s.router.Use(middleware.RealIP)
}

// setupRoutes configures HTTP routes.
func (s *Service) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/tools", s.handleListTools)
	s.router.Get("/api/stats", s.handleStats)

	// Routes that act inside a party scope.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireScope)

		r.Post("/api/dispatch", s.handleDispatch)
		r.Get("/api/search", s.handleSearch)
		r.Post("/api/documents", s.handleCreateDocument)
		r.Post("/api/documents/{id}/ingest", s.handleIngestDocument)
	})
}

// Start launches the HTTP server and the background loops.
func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.WorkerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pipeline.Run(s.ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliverer.Run(s.ctx)
	}()

	log.Info().
		Int("port", s.config.WorkerPort).
		Str("embedding_provider", s.embedder.Name()).
		Int("embedding_dimensions", s.embedder.Dimensions()).
		Msg("Worker service started")

	return nil
}

// Shutdown gracefully stops the service.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}

	s.embedder.Close()
	if err := s.store.Close(); err != nil {
		log.Error().Err(err).Msg("Database close error")
	}

	s.wg.Wait()

	log.Info().Msg("Worker service shutdown complete")
	return nil
}
