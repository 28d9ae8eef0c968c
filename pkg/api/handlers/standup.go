package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterStandups mounts the standup endpoints.
func RegisterStandups(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/standup/start", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			Length    int64  `json:"length"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		res, err := e.StandupStart(uid, body.ChannelID, body.Length)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/standup/active", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		chID, err := queryInt(req, "channel_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel_id must be an integer"})
			return
		}
		res, aerr := e.StandupActive(uid, chID)
		if aerr != nil {
			writeError(w, aerr)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/standup/send", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			Message   string `json:"message"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.StandupSend(uid, body.ChannelID, body.Message); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)
}
