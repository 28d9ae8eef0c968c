package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
	"workstream/pkg/maintenance"
)

// RegisterAdmin mounts the admin endpoints. The security middleware gates
// /v1/admin/ behind admin API keys when keys are configured.
func RegisterAdmin(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/admin/user/remove", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token  string `json:"token"`
			UserID int    `json:"u_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.AdminUserRemove(uid, body.UserID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodDelete)

	r.HandleFunc("/v1/admin/userpermission/change", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token      string `json:"token"`
			UserID     int    `json:"u_id"`
			Permission int    `json:"permission_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.AdminPermissionChange(uid, body.UserID, body.Permission); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/admin/maintenance/run", func(w http.ResponseWriter, req *http.Request) {
		if err := maintenance.RunImmediate(); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/clear", func(w http.ResponseWriter, req *http.Request) {
		if err := e.Clear(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodDelete)
}
