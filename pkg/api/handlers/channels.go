package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterChannels mounts the channel endpoints.
func RegisterChannels(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/channels/create", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token  string `json:"token"`
			Name   string `json:"name"`
			Public bool   `json:"is_public"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		chID, err := e.ChannelCreate(uid, body.Name, body.Public)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"channel_id": chID})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channels/list", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.ChannelList(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"channels": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/channels/listall", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		out, err := e.ChannelListAll(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"channels": out})
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/channel/details", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		chID, err := queryInt(req, "channel_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel_id must be an integer"})
			return
		}
		out, derr := e.ChannelDetails(uid, chID)
		if derr != nil {
			writeError(w, derr)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/channel/join", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.ChannelJoin(uid, body.ChannelID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channel/invite", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			UserID    int    `json:"u_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.ChannelInvite(uid, body.ChannelID, body.UserID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channel/leave", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.ChannelLeave(uid, body.ChannelID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channel/addowner", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			UserID    int    `json:"u_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.ChannelAddOwner(uid, body.ChannelID, body.UserID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channel/removeowner", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			UserID    int    `json:"u_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.ChannelRemoveOwner(uid, body.ChannelID, body.UserID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/channel/messages", func(w http.ResponseWriter, req *http.Request) {
		uid, ok := actorFromQuery(e, w, req)
		if !ok {
			return
		}
		chID, err := queryInt(req, "channel_id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel_id must be an integer"})
			return
		}
		start, err := queryInt(req, "start")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be an integer"})
			return
		}
		page, perr := e.ChannelMessages(uid, chID, start)
		if perr != nil {
			writeError(w, perr)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}).Methods(http.MethodGet)
}
