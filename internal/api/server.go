package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

// ServerConfig configures NewServer.
type ServerConfig struct {
	CORSOrigins       []string
	RateLimit         RateLimitConfig
	BroadcastInterval time.Duration
	DisableLogging    bool
}

// Server combines the router with the WebSocket hub. Nothing runs until
// Start is called.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

func NewServer(eng EngineInterface, cfg ServerConfig) *Server {
	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit = DefaultRateLimitConfig
	}
	s := &Server{
		engine:      eng,
		wsHub:       NewWebSocketHub(eng, cfg.CORSOrigins, cfg.BroadcastInterval),
		rateLimiter: NewIPRateLimiter(cfg.RateLimit),
	}
	s.router = NewRouter(RouterConfig{
		Engine:         eng,
		RateLimiter:    s.rateLimiter,
		CORSOrigins:    cfg.CORSOrigins,
		DisableLogging: cfg.DisableLogging,
		Hub:            s.wsHub,
	})
	return s
}

// Start serves addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.wsHub.Run(hubCtx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("api server shutting down")
	cancel()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	s.Stop()
	return nil
}

// Router returns the handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Stop releases background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
