package server

import (
	"context"
	"net/http"
)

// httpServer is the minimal listener surface the server manages; tests
// substitute stubs for net/http behind it.
type httpServer interface {
	ListenAndServe() error
	Shutdown(context.Context) error
	Addr() string
	Handler() http.Handler
}

// netHTTPServer adapts *http.Server to the httpServer interface.
type netHTTPServer struct {
	inner *http.Server
}

func (s netHTTPServer) ListenAndServe() error              { return s.inner.ListenAndServe() }
func (s netHTTPServer) Shutdown(ctx context.Context) error { return s.inner.Shutdown(ctx) }
func (s netHTTPServer) Addr() string                       { return s.inner.Addr }
func (s netHTTPServer) Handler() http.Handler              { return s.inner.Handler }
