package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterUsers mounts the profile and stats endpoints.
func RegisterUsers(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/users/all", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.UsersAll(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/user/profile", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		target, err := queryInt(req, "u_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "u_id must be an integer"})
			return
		}
		out, perr := e.UserProfile(uid, target)
		if perr != nil {
			writeError(w, perr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/user/profile/setname", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			NameFirst string `json:"name_first"`
			NameLast  string `json:"name_last"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.SetName(uid, body.NameFirst, body.NameLast); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPut)

	r.HandleFunc("/v1/user/profile/setemail", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token string `json:"token"`
			Email string `json:"email"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.SetEmail(uid, body.Email); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPut)

	r.HandleFunc("/v1/user/profile/sethandle", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token  string `json:"token"`
			Handle string `json:"handle_str"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.SetHandle(uid, body.Handle); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPut)

	r.HandleFunc("/v1/user/stats", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.UserStats(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_stats": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/users/stats", func(w http.ResponseWriter, req *http.Request) {
		if _, ok := actorFromQuery(e, w, req); !ok {
			return
		}
		out, err := e.WorkspaceStats()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"workspace_stats": out})
	}).Methods(http.MethodGet)
}
