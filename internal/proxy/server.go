package proxy

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zhengjr9/gemini-bridge/internal/adapter/openai"
	"github.com/zhengjr9/gemini-bridge/internal/config"
	apierrors "github.com/zhengjr9/gemini-bridge/internal/errors"
	"github.com/zhengjr9/gemini-bridge/internal/upstream"
)

// Server is the bridge HTTP server.
type Server struct {
	httpServer *http.Server
}

// New constructs a Server from the given config and upstream Generator.
// gen may be nil; requests then fail with a server error instead of
// refusing to start, so the failure surfaces per request.
func New(cfg *config.Config, gen upstream.Generator) *Server {
	resolve := upstream.NewAliasResolver(cfg.Aliases(), cfg.DefaultModel)
	oaHandler := openai.NewHandler(gen, resolve, cfg.RequestTimeout)

	r := mux.NewRouter()
	r.Handle("/v1/chat/completions", oaHandler).Methods(http.MethodPost)
	// Alias for clients that omit the /v1 prefix.
	r.Handle("/chat/completions", oaHandler).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	// CORS is outermost so that preflight and 404 responses carry the
	// header too; mux's NotFoundHandler bypasses router middleware.
	var handler http.Handler = r
	handler = requestLogMiddleware(handler)
	handler = recoveryMiddleware(handler)
	handler = corsMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: cfg.RequestTimeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins listening and blocks until the server is stopped.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the underlying http.Handler (for use in tests with httptest.NewServer).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Close stops the server immediately, abandoning open connections. Shutdown
// does not drain in-flight requests.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteJSONError(w, http.StatusNotFound, "Not found")
}
