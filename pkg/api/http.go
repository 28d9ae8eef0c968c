package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"workstream/pkg/api/handlers"
	"workstream/pkg/engine"
	"workstream/pkg/logger"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Readiness lets the health endpoint report whether the blob store is open.
type Readiness interface {
	Ready() bool
}

// NewRouter assembles the full REST surface. The security middleware wraps
// the returned router in main.
func NewRouter(e *engine.Engine, ready Readiness) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging)

	handlers.RegisterAuth(r, e)
	handlers.RegisterChannels(r, e)
	handlers.RegisterDMs(r, e)
	handlers.RegisterMessages(r, e)
	handlers.RegisterStandups(r, e)
	handlers.RegisterUsers(r, e)
	handlers.RegisterNotifications(r, e)
	handlers.RegisterAdmin(r, e)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if ready != nil && !ready.Ready() {
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	}).Methods(http.MethodGet)
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	return r
}

// requestLogging tags every request with an id and logs method, path,
// and duration.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.Debug("http_request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
