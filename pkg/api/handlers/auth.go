package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"workstream/pkg/engine"
)

// RegisterAuth mounts the session endpoints.
func RegisterAuth(r *mux.Router, e *engine.Engine) {
	r.HandleFunc("/v1/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			NameFirst string `json:"name_first"`
			NameLast  string `json:"name_last"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		res, err := e.Register(body.Email, body.Password, body.NameFirst, body.NameLast)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		res, err := e.Login(body.Email, body.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		if err := e.Logout(body.Token); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/auth/passwordreset/request", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		if err := e.PasswordResetRequest(body.Email); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)

	r.HandleFunc("/v1/auth/passwordreset/reset", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ResetCode   string `json:"reset_code"`
			NewPassword string `json:"new_password"`
		}
		if !readJSON(w, req, &body) {
			return
		}
		if err := e.PasswordReset(body.ResetCode, body.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}).Methods(http.MethodPost)
}
