// Package api serves passage extraction and compiled scripture over a JSON
// HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/FocuswithJustin/osistext/internal/cache"
	"github.com/FocuswithJustin/osistext/internal/logging"
	"github.com/FocuswithJustin/osistext/internal/osis"
	"github.com/FocuswithJustin/osistext/internal/scripture"
	"github.com/FocuswithJustin/osistext/internal/server"
	"github.com/FocuswithJustin/osistext/internal/store"
)

// Version is reported by the root and health endpoints.
const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

type streamKey struct {
	version string
	kind    osis.StreamKind
}

// Server answers API requests from a version registry and, optionally, a
// store of compiled streams.
type Server struct {
	cfg      Config
	registry *osis.Registry
	store    *store.Store

	versions *cache.TTLCache[string, []VersionInfo]
	streams  *cache.TTLCache[streamKey, *scripture.Bible]
	limiter  *RateLimiter
	started  time.Time
}

// NewServer validates cfg and builds a server. st may be nil, in which case
// /scripture answers 404.
func NewServer(cfg Config, registry *osis.Registry, st *store.Store) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("a version registry is required")
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		store:    st,
		versions: cache.New[string, []VersionInfo](cfg.CacheTTL),
		streams:  cache.New[streamKey, *scripture.Bible](cfg.CacheTTL),
		started:  time.Now(),
	}
	if cfg.RateLimitRequests > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
		})
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/versions", s.handleVersions)
	mux.HandleFunc("/passage", s.handlePassage)
	mux.HandleFunc("/verse", s.handleVerse)
	mux.HandleFunc("/title", s.handleTitle)
	mux.HandleFunc("/scripture", s.handleScripture)
	return mux
}

// Handler returns the routes wrapped in the middleware chain: security
// headers, auth, rate limiting, CORS, then request ids and logging
// outermost.
func (s *Server) Handler() http.Handler {
	var h http.Handler = server.SecurityHeaders(server.APICSPConfig(), s.routes())
	if s.cfg.Auth.Enabled {
		h = AuthMiddleware(s.cfg.Auth, h)
	}
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	h = server.CORS(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, h)
	return logging.CombinedMiddleware(h)
}

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	protocol := "http"
	if s.cfg.TLS.Enabled {
		protocol = "https"
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or a reverse proxy for production")
	}
	logging.ServerStartup("rest_api", protocol, s.cfg.Port,
		"versions_dir", server.AbsPath(s.registry.Dir()),
		"store", s.store != nil,
		"auth", s.cfg.Auth.Enabled,
		"rate_limit", s.cfg.RateLimitRequests)

	if s.limiter != nil {
		go s.limiter.Run(ctx, time.Minute)
	}
	go s.pruneCaches(ctx, s.cfg.CacheTTL)

	errc := make(chan error, 1)
	go func() {
		if s.cfg.TLS.Enabled {
			errc <- srv.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("shutting down", "timeout", shutdownTimeout.String())
		return srv.Shutdown(shutdownCtx)
	}
}

// pruneCaches drops expired listings and streams every interval until ctx
// is done.
func (s *Server) pruneCaches(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.versions.Prune() + s.streams.Prune(); n > 0 {
				logging.Debug("expired cache entries pruned", "count", n)
			}
		}
	}
}
