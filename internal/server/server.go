// If you are AI: This file implements the HTTP server lifecycle and routing.

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"nonchalant/internal/asyncworker"
	"nonchalant/internal/config"
	"nonchalant/internal/connmgr"
	"nonchalant/internal/core/bus"
	"nonchalant/internal/hooks"
	"nonchalant/internal/rtspingest"
	"nonchalant/internal/security"
	"nonchalant/internal/svc/api"
	"nonchalant/internal/svc/health"
	"nonchalant/internal/svc/httpflv"
	"nonchalant/internal/svc/relay"
	"nonchalant/internal/svc/rtmp"
	"nonchalant/internal/svc/vod"
	"nonchalant/internal/svc/wsflv"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg         *config.Config
	httpServer  *http.Server
	healthSvc   *health.Service
	httpflvSvc  *httpflv.Service
	wsflvSvc    *wsflv.Service
	vodSvc      *vod.Service
	apiSvc      *api.Service
	relayMgr    *relay.Manager
	rtmpServer  *rtmp.Server
	registry    *bus.Registry
	rtspCtx     context.Context
	rtspCancel  context.CancelFunc
	rtspConnMgr *connmgr.Manager
	rtspListen  *rtspingest.Listener
	hooksWorker *asyncworker.Worker
}

// New creates a new server instance with the given configuration.
// The server is not started until Start is called.
func New(cfg *config.Config) *Server {
	mux := http.NewServeMux()

	healthSvc := health.New()
	healthSvc.RegisterRoutes(mux)

	// Create bus registry
	registry := bus.NewRegistry()

	// Create HTTP-FLV service
	httpflvSvc := httpflv.NewService(registry)
	httpflvSvc.RegisterRoutes(mux)

	// Create WebSocket-FLV service
	wsflvSvc := wsflv.NewService(registry)
	wsflvSvc.RegisterRoutes(mux)

	// Create static VOD mount
	vodSvc := vod.New(cfg.VOD)
	vodSvc.RegisterRoutes(mux)

	// Relay manager drives configured push/pull relay tasks; the
	// management API reports their status.
	relayMgr := relay.NewManager(registry)
	apiSvc := api.NewService(registry, relayMgr)
	apiSvc.RegisterRoutes(mux)

	// Stream lifecycle callbacks (on_publish/on_unpublish/on_play) fire on
	// the shared async-call worker (C4) so a slow webhook never stalls a
	// publisher goroutine.
	hooksWorker := asyncworker.New(64, hooks.LogOutcome)
	hooksDispatcher := hooks.New(cfg.Hooks, hooksWorker)

	securityFilter := security.New(cfg.Security)

	// Create RTMP server
	rtmpServer := rtmp.NewServer(registry, hooksDispatcher, securityFilter)

	// Create the RTSP ingest caster (C8/C9), supervised by the connection
	// manager (C3).
	rtspConnMgr := connmgr.New(0)
	rtspListen := rtspingest.NewListener(cfg.RTSP, rtspConnMgr)

	// HTTP server listens on HTTP port
	// Health endpoint is also available on this port
	// NOTE: Health port is kept for backward compatibility but not used
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}

	rtspCtx, rtspCancel := context.WithCancel(context.Background())

	return &Server{
		cfg:         cfg,
		httpServer:  httpServer,
		healthSvc:   healthSvc,
		httpflvSvc:  httpflvSvc,
		wsflvSvc:    wsflvSvc,
		vodSvc:      vodSvc,
		apiSvc:      apiSvc,
		relayMgr:    relayMgr,
		rtmpServer:  rtmpServer,
		registry:    registry,
		rtspCtx:     rtspCtx,
		rtspCancel:  rtspCancel,
		rtspConnMgr: rtspConnMgr,
		rtspListen:  rtspListen,
		hooksWorker: hooksWorker,
	}
}

// Start begins serving HTTP requests and RTMP/RTSP connections.
// This method blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	// Start RTMP server
	if err := s.rtmpServer.Listen(fmt.Sprintf(":%d", s.cfg.Server.RTMPPort)); err != nil {
		return fmt.Errorf("RTMP server listen: %w", err)
	}
	go func() {
		if err := s.rtmpServer.Accept(); err != nil {
			log.Printf("rtmp accept loop stopped: %v", err)
		}
	}()

	// Start configured relay push/pull tasks
	if err := s.relayMgr.StartTasks(s.cfg); err != nil {
		return fmt.Errorf("relay manager start: %w", err)
	}

	// Start RTSP ingest caster
	if err := s.rtspListen.Listen(); err != nil {
		return fmt.Errorf("RTSP listener listen: %w", err)
	}
	go func() {
		if err := s.rtspListen.Accept(s.rtspCtx); err != nil {
			log.Printf("rtsp accept loop stopped: %v", err)
		}
	}()

	// Start HTTP server (blocks)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server with a timeout.
// Returns an error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout.
// This is a convenience wrapper around Shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close RTMP server
	if s.rtmpServer != nil {
		s.rtmpServer.Close()
	}

	// Stop relay tasks
	if s.relayMgr != nil {
		s.relayMgr.Stop()
	}

	// Close RTSP caster
	if s.rtspListen != nil {
		s.rtspCancel()
		s.rtspListen.Close()
		s.rtspConnMgr.Shutdown()
	}

	s.hooksWorker.Stop()

	return s.Shutdown(ctx)
}
