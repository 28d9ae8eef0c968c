package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterMessages mounts the message lifecycle endpoints.
func RegisterMessages(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/message/send", func(w http.ResponseWriter, req *http.Request) {
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
		id, err := e.Send(uid, body.ChannelID, body.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.MessageIDResult{MessageID: id})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/senddm", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token   string `json:"token"`
			DMID    int    `json:"dm_id"`
			Message string `json:"message"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		id, err := e.SendDM(uid, body.DMID, body.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.MessageIDResult{MessageID: id})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/edit", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
			Message   string `json:"message"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.Edit(uid, body.MessageID, body.Message); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPut)

	r.HandleFunc("/v1/message/remove", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.Remove(uid, body.MessageID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodDelete)

	r.HandleFunc("/v1/message/share", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			OgMessage int    `json:"og_message_id"`
			Message   string `json:"message"`
			ChannelID int    `json:"channel_id"`
			DMID      int    `json:"dm_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		id, err := e.Share(uid, body.OgMessage, body.Message, body.ChannelID, body.DMID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"shared_message_id": id})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/react", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
			ReactID   int    `json:"react_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.React(uid, body.MessageID, body.ReactID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/unreact", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
			ReactID   int    `json:"react_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.Unreact(uid, body.MessageID, body.ReactID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/pin", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.Pin(uid, body.MessageID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/unpin", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			MessageID int    `json:"message_id"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		if err := e.Unpin(uid, body.MessageID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/sendlater", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token     string `json:"token"`
			ChannelID int    `json:"channel_id"`
			Message   string `json:"message"`
			TimeSent  int64  `json:"time_sent"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		id, err := e.SendLater(uid, body.ChannelID, body.Message, body.TimeSent)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.MessageIDResult{MessageID: id})
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/message/sendlaterdm", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token    string `json:"token"`
			DMID     int    `json:"dm_id"`
			Message  string `json:"message"`
			TimeSent int64  `json:"time_sent"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		uid, ok := actorFromToken(e, w, body.Token)
		if !ok {
			return
		}
		id, err := e.SendLaterDM(uid, body.DMID, body.Message, body.TimeSent)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.MessageIDResult{MessageID: id})
	}).Methods(http.MethodPost)
}
