package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterNotifications mounts the notification inbox and search endpoints.
func RegisterNotifications(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/notifications/get", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.Notifications(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/search", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.Search(uid, req.URL.Query().Get("query_str"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": out})
	}).Methods(http.MethodGet)
}
