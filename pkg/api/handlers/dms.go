package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterDMs mounts the direct-message endpoints.
func RegisterDMs(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/dm/create", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token   string `json:"token"`
			UserIDs []int  `json:"u_ids"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		res, err := e.DMCreate(uid, body.UserIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/dm/list", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.DMList(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dms": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/dm/details", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		dmID, err := queryInt(req, "dm_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dm_id must be an integer"})
			return
		}
		out, derr := e.DMDetails(uid, dmID)
		if derr != nil {
			writeError(w, derr)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/dm/leave", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token string `json:"token"`
			DMID  int    `json:"dm_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.DMLeave(uid, body.DMID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/dm/remove", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token string `json:"token"`
			DMID  int    `json:"dm_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.DMRemove(uid, body.DMID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodDelete)

	r.HandleFunc("/v1/dm/messages", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		dmID, err := queryInt(req, "dm_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dm_id must be an integer"})
			return
		}
		start, err := queryInt(req, "start")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be an integer"})
			return
		}
		page, perr := e.DMMessages(uid, dmID, start)
		if perr != nil {
			writeError(w, perr)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}).Methods(http.MethodGet)
}
