package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/w-h-a/tabular/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type httpServer struct {
	options server.Options
	srv     *http.Server
}

func (s *httpServer) Run() error {
	slog.InfoContext(s.options.Context, "http server listening", "address", s.options.Address)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) String() string {
	return "http"
}

// Handler returns the fully wrapped handler the server serves.
func (s *httpServer) Handler() http.Handler {
	return s.srv.Handler
}

func NewServer(opts ...server.Option) *httpServer {
	options := server.NewOptions(opts...)

	h, ok := HandlerFrom(options.Context)
	if !ok {
		h = http.NotFoundHandler()
	}

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}
	}

	h = otelhttp.NewHandler(h, "http.server")

	s := &httpServer{
		options: options,
		srv: &http.Server{
			Addr:              options.Address,
			Handler:           h,
			ReadHeaderTimeout: options.ReadHeaderTimeout,
		},
	}

	return s
}
