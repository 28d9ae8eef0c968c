package security

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"workstream/pkg/logger"
)

type Role int

const (
	RoleUnauth Role = iota
	RoleBackend
	RoleAdmin
)

// SecConfig drives the request middleware. Empty key sets disable API-key
// checks (every caller is treated as backend), which is the mode used by
// tests and local development.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	BackendKeys    map[string]struct{}
	AdminKeys      map[string]struct{}
}

func (c SecConfig) keysConfigured() bool {
	return len(c.BackendKeys) > 0 || len(c.AdminKeys) > 0
}

// Middleware applies CORS, API-key authentication and per-key rate limiting
// ahead of the API router.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-API-Key")
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			role, key := authenticate(r, cfg)

			// Liveness probes cannot carry keys.
			if r.URL.Path == "/healthz" && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.keysConfigured() && role == RoleUnauth {
				logger.Log.Warn("request_unauthorized", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/v1/admin/") && cfg.keysConfigured() && role != RoleAdmin {
				logger.Log.Warn("request_forbidden", zap.String("path", r.URL.Path))
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			if !limiters.Allow(key) {
				logger.Log.Warn("rate_limited", zap.String("path", r.URL.Path))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authenticate resolves the caller's role from Authorization: Bearer or
// X-API-Key. The returned key (or client IP) is the rate-limit bucket.
func authenticate(r *http.Request, cfg SecConfig) (Role, string) {
	auth := r.Header.Get("Authorization")
	var key string
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		key = strings.TrimSpace(auth[7:])
	}
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key == "" {
		return RoleUnauth, clientIP(r)
	}
	if _, ok := cfg.AdminKeys[key]; ok {
		return RoleAdmin, key
	}
	if _, ok := cfg.BackendKeys[key]; ok {
		return RoleBackend, key
	}
	if !cfg.keysConfigured() {
		return RoleBackend, key
	}
	return RoleUnauth, key
}

type limiterPool struct {
	mu  sync.Mutex
	m   map[string]*rate.Limiter
	cfg SecConfig
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = 50
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 100
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}
