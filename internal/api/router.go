package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/engine"
	"github.com/san-kum/gravquad/internal/spatial"
)

// EngineInterface is the part of the engine the API calls. Tests substitute
// a fake that never starts a loop.
type EngineInterface interface {
	Snapshot() *engine.Snapshot
	Reset() bool
	Nearest(id int) (spatial.Neighbor, error)
	NearestTo(p r2.Vec) (spatial.Neighbor, bool, error)
	SetPaused(paused bool)
	ClosestViaIndex(snap *engine.Snapshot) (spatial.Pair, bool, error)
	Pick(p r2.Vec) (int, bool)
}

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	// Engine is required.
	Engine EngineInterface

	// RateLimiter guards POST /api/reset. If nil, one is built from
	// RateLimitConfig, or DefaultRateLimitConfig when that is nil too.
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to local origins when nil.
	CORSOrigins []string

	DisableLogging bool

	// Hub mounts /ws when set.
	Hub *WebSocketHub
}

type routerHandlers struct {
	engine  EngineInterface
	limiter *IPRateLimiter
}

// NewRouter builds the HTTP handler. It starts no goroutines other than the
// limiter's cleanup loop when it has to create a limiter itself, and opens
// no listeners, so it can be used directly with httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}

	h := &routerHandlers{engine: cfg.Engine, limiter: rateLimiter}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/nearest", h.handleGetNearestPoint)
		r.Get("/nearest/{id}", h.handleGetNearest)
		r.Get("/closest", h.handleGetClosest)
		r.With(rateLimiter.Middleware).Post("/reset", h.handleReset)
	})

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	return r
}

// AllowAllOrigins reports whether origins contains the "*" wildcard.
func AllowAllOrigins(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
