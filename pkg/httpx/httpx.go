package httpx

import (
	"context"
	"io"
	"net/http"
)

// Request is the transport-neutral request handed to handlers. The ops
// listener serves the same handlers over net/http and fasthttp.
type Request struct {
	Ctx        context.Context
	Method     string
	Path       string
	Header     http.Header
	Body       io.ReadCloser
	RemoteAddr string
}

// ResponseWriter is the subset of http.ResponseWriter adapters must provide.
type ResponseWriter interface {
	Header() http.Header
	Write([]byte) (int, error)
	WriteHeader(status int)
}

// HandlerFunc is the handler signature shared by both adapters.
type HandlerFunc func(w ResponseWriter, r *Request)
