package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
)

// FastHTTP adapts a HandlerFunc into a fasthttp request handler.
func FastHTTP(h HandlerFunc) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		cctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hdr := make(http.Header)
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			hdr[string(k)] = append(hdr[string(k)], string(v))
		})

		req := &Request{
			Ctx:        cctx,
			Method:     string(ctx.Method()),
			Path:       string(ctx.Path()),
			Header:     hdr,
			Body:       io.NopCloser(bytes.NewReader(ctx.PostBody())),
			RemoteAddr: ctx.RemoteAddr().String(),
		}
		h(&fastWriter{ctx: ctx}, req)
	}
}

type fastWriter struct {
	ctx    *fasthttp.RequestCtx
	header http.Header
	status int
}

func (f *fastWriter) Header() http.Header {
	if f.header == nil {
		f.header = make(http.Header)
	}
	return f.header
}

func (f *fastWriter) WriteHeader(status int) {
	f.status = status
	for k, vals := range f.header {
		for _, v := range vals {
			f.ctx.Response.Header.Add(k, v)
		}
	}
	f.ctx.SetStatusCode(status)
}

func (f *fastWriter) Write(b []byte) (int, error) {
	if f.status == 0 {
		f.WriteHeader(http.StatusOK)
	}
	return f.ctx.Write(b)
}
