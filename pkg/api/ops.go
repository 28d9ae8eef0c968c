package api

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"workstream/pkg/httpx"
	"workstream/pkg/logger"
	"workstream/pkg/models"
	"workstream/pkg/scheduler"
	"workstream/pkg/state"
)

// OpsHandler serves the lightweight operational surface: /healthz and
// /statsz. It runs on the fasthttp listener so probes stay off the API
// router.
func OpsHandler(ready Readiness, sched *scheduler.Scheduler, st *state.Store) httpx.HandlerFunc {
	return func(w httpx.ResponseWriter, r *httpx.Request) {
		switch r.Path {
		case "/healthz":
			if ready != nil && !ready.Ready() {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/statsz":
			stats := struct {
				Users       int `json:"users"`
				Channels    int `json:"channels"`
				DMs         int `json:"dms"`
				PendingJobs int `json:"pending_jobs"`
			}{}
			_ = st.View(func(snap *models.Snapshot) error {
				stats.Users = len(snap.Users)
				stats.Channels = len(snap.Channels)
				stats.DMs = len(snap.DMs)
				return nil
			})
			if sched != nil {
				stats.PendingJobs = sched.Pending()
			}
			w.Header().Set("Content-Type", "application/json")
			body, _ := json.Marshal(stats)
			_, _ = w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}
}

// StartOps serves the ops handler over fasthttp on addr. The returned server
// is shut down by main.
func StartOps(addr string, h httpx.HandlerFunc) *fasthttp.Server {
	srv := &fasthttp.Server{Handler: httpx.FastHTTP(h)}
	go func() {
		logger.Log.Info("ops_listener_started", zap.String("addr", addr))
		if err := srv.ListenAndServe(addr); err != nil {
			logger.Log.Error("ops_listener_failed", zap.Error(err))
		}
	}()
	return srv
}
