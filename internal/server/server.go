package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dukerupert/maidmanager/internal/middleware"
	ws "github.com/dukerupert/maidmanager/internal/websocket"
)

// Server exposes controller state over a WebSocket bridge.
type Server struct {
	hub         *ws.Hub
	bridge      *ws.Bridge
	rateLimiter *middleware.RateLimiter
	origins     []string
	logger      *slog.Logger
}

type Config struct {
	// OriginPatterns lists extra browser origins allowed to connect.
	// Same-origin and non-browser clients are always allowed.
	OriginPatterns []string
	// ConnectsPerMinute limits new bridge connections per client address.
	ConnectsPerMinute int
}

func New(c ws.Controllers, cfg Config, logger *slog.Logger) *Server {
	if cfg.ConnectsPerMinute <= 0 {
		cfg.ConnectsPerMinute = 30
	}
	hub := ws.NewHub(logger.With("component", "websocket"))
	return &Server{
		hub:         hub,
		bridge:      ws.NewBridge(c, hub, logger.With("component", "bridge")),
		rateLimiter: middleware.NewRateLimiter(cfg.ConnectsPerMinute, 10),
		origins:     cfg.OriginPatterns,
		logger:      logger,
	}
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthHandler)
	limit := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	mux.Handle("GET /ws", limit(ws.HandleWebSocket(s.hub, s.bridge, s.origins, s.logger.With("component", "websocket"))))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": s.hub.ClientCount()})
}

// Serve runs the bridge on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridgeDone := make(chan error, 1)
	go func() { bridgeDone <- s.bridge.Run(ctx) }()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.rateLimiter.Cleanup(10 * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// bridge connections are hijacked, so Shutdown does not wait for
		// them; deriving from ctx ends them with the server
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", "addr", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		s.logger.Info("shutting down bridge")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		err = httpServer.Shutdown(shutdownCtx)
	}
	cancel()
	<-bridgeDone
	return err
}
