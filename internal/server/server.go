/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/friendsincode/heimdall_stage/internal/config"
	"github.com/friendsincode/heimdall_stage/internal/db"
	"github.com/friendsincode/heimdall_stage/internal/eventbus"
	"github.com/friendsincode/heimdall_stage/internal/events"
	"github.com/friendsincode/heimdall_stage/internal/hub"
	"github.com/friendsincode/heimdall_stage/internal/logbuffer"
	"github.com/friendsincode/heimdall_stage/internal/slip"
	"github.com/friendsincode/heimdall_stage/internal/storage"
	"github.com/friendsincode/heimdall_stage/internal/store"
	"github.com/friendsincode/heimdall_stage/internal/telemetry"
	"github.com/friendsincode/heimdall_stage/internal/web"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db            *gorm.DB
	store         store.Store
	hub           *hub.Hub
	bus           eventbus.Bus
	webHandler    *web.Handler
	logBuffer     *logbuffer.Buffer
	tracer        *telemetry.TracerProvider
	metricsServer *http.Server

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.MetricsMiddleware)
	// Skip timeout for WebSocket connections
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    router,
		logBuffer: logBuf,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr: addr,
		// Traced handler wraps the whole router so every route gets a span.
		Handler:           otelhttp.NewHandler(srv.router, "heimdall-stage-http"),
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout 0 keeps long-lived websocket pushes alive; the
		// middleware timeout covers regular routes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	ctx := context.Background()

	tracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "heimdall-stage",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   s.cfg.OTLPEndpoint,
		Enabled:        s.cfg.TracingEnabled,
		SampleRate:     s.cfg.TracingSampleRate,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	s.tracer = tracer
	s.DeferClose(func() error { return s.tracer.Shutdown(context.Background()) })

	scheduleStore, err := s.initStore(ctx)
	if err != nil {
		return err
	}
	s.store = scheduleStore

	s.hub = hub.New(s.logger)
	s.bus = s.initBus()

	var reports storage.ObjectStore
	if s.cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKeyID:     s.cfg.S3AccessKeyID,
			SecretAccessKey: s.cfg.S3SecretAccessKey,
			Region:          s.cfg.S3Region,
			Bucket:          s.cfg.S3Bucket,
			Endpoint:        s.cfg.S3Endpoint,
			UsePathStyle:    s.cfg.S3UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("init report store: %w", err)
		}
		reports = s3Store
		s.logger.Info().Str("bucket", s.cfg.S3Bucket).Msg("report archiving enabled")
	}

	webHandler, err := web.NewHandler(s.store, s.hub, s.bus, s.logBuffer, reports, s.cfg.StageName, s.logger)
	if err != nil {
		return fmt.Errorf("init web handler: %w", err)
	}
	s.webHandler = webHandler

	return nil
}

func (s *Server) initStore(ctx context.Context) (store.Store, error) {
	switch s.cfg.StoreBackend {
	case config.StoreSheets:
		sheetsStore, err := store.NewSheetsStore(ctx, store.SheetsConfig{
			SpreadsheetID:   s.cfg.SheetsID,
			Tab:             s.cfg.SheetsTab,
			CredentialsFile: s.cfg.SheetsCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("init sheets store: %w", err)
		}
		s.logger.Info().Str("spreadsheet_id", s.cfg.SheetsID).Msg("sheets store initialized")
		return sheetsStore, nil

	case config.StoreMemory:
		s.logger.Warn().Msg("memory store selected, the running order will not survive restarts")
		return store.NewMemoryStore(), nil

	default:
		database, err := db.Connect(s.cfg)
		if err != nil {
			return nil, err
		}
		s.db = database
		s.DeferClose(func() error { return db.Close(database) })

		gormStore := store.NewGormStore(database)
		if err := gormStore.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate schedule store: %w", err)
		}
		s.logger.Info().Str("backend", string(s.cfg.StoreBackend)).Msg("database store initialized")
		return gormStore, nil
	}
}

func (s *Server) initBus() eventbus.Bus {
	nodeID := eventbus.NodeID(s.cfg.InstanceID)

	switch s.cfg.EventBridge {
	case config.BridgeRedis:
		bus := eventbus.NewRedisBus(eventbus.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		}, nodeID, s.logger)
		s.DeferClose(bus.Close)
		return bus

	case config.BridgeNATS:
		bus := eventbus.NewNATSBus(s.cfg.NATSURL, nodeID, s.logger)
		s.DeferClose(bus.Close)
		return bus

	default:
		return events.NewBus()
	}
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// LogBuffer returns the server's log buffer for attaching to zerolog.
func (s *Server) LogBuffer() *logbuffer.Buffer {
	return s.logBuffer
}

// Store exposes the schedule store, e.g. for seeding.
func (s *Server) Store() store.Store {
	return s.store
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runBroadcastWorker(ctx)
	}()

	// Metrics listen on their own port so the public surface stays clean.
	s.metricsServer = &http.Server{
		Addr:              s.cfg.MetricsBind,
		Handler:           telemetry.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.logger.Info().Str("addr", s.cfg.MetricsBind).Msg("metrics listener started")
		if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("metrics listener exited")
		}
	}()
}

// runBroadcastWorker turns bus events into hub pushes. Every schedule
// change recomputes the slip and re-renders both fragments, so clients
// joining any instance see identical state.
func (s *Server) runBroadcastWorker(ctx context.Context) {
	scheduleUpdated := s.bus.Subscribe(events.EventScheduleUpdated)
	showReset := s.bus.Subscribe(events.EventShowReset)
	brightnessChanged := s.bus.Subscribe(events.EventBrightnessChanged)

	defer func() {
		s.bus.Unsubscribe(events.EventScheduleUpdated, scheduleUpdated)
		s.bus.Unsubscribe(events.EventShowReset, showReset)
		s.bus.Unsubscribe(events.EventBrightnessChanged, brightnessChanged)
	}()

	s.logger.Info().Msg("broadcast worker started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("broadcast worker stopped")
			return

		case <-scheduleUpdated:
			s.pushSchedule(ctx)

		case <-showReset:
			s.pushSchedule(ctx)

		case payload := <-brightnessChanged:
			value, ok := payloadInt(payload, "value")
			if !ok {
				s.logger.Warn().Interface("payload", payload).Msg("brightness event without a value")
				continue
			}
			s.hub.BroadcastBrightness(ctx, value)
		}
	}
}

func (s *Server) pushSchedule(ctx context.Context) {
	acts, err := s.store.ListActs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list acts for broadcast")
		return
	}
	telemetry.SlipSeconds.Set(float64(slip.Calculate(acts)))

	viewer, err := s.webHandler.RenderSchedule(acts, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("render viewer schedule")
		return
	}
	editor, err := s.webHandler.RenderSchedule(acts, true)
	if err != nil {
		s.logger.Error().Err(err).Msg("render editor schedule")
		return
	}

	s.hub.BroadcastSchedule(ctx, viewer, editor)
}

// payloadInt reads an integer payload field. Events relayed through a
// broker arrive JSON-decoded, so numbers may be float64.
func payloadInt(payload events.Payload, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","connections":%d}`, s.hub.ConnectionCount())
	})

	s.webHandler.Routes(s.router)
}
