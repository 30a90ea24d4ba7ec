package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/model/interfaces"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the snapshot queries as a read-only HTTP API
type Server struct {
	provider interfaces.ContextProvider
	config   Config
	log      logze.Logger
	server   *servex.Server
}

// New creates a new API server around a provider
func New(cfg Config, provider interfaces.ContextProvider) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	srv, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	s := &Server{
		provider: provider,
		config:   cfg,
		log:      log,
		server:   srv,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	base := s.config.BasePath
	s.server.HandleFunc(base+"/context", s.guard(s.handleContext))
	s.server.HandleFunc(base+"/repository", s.guard(s.handleRepository))
	s.server.HandleFunc(base+"/branch", s.guard(s.handleBranch))
	s.server.HandleFunc(base+"/status", s.guard(s.handleStatus))
	s.server.HandleFunc(base+"/commits", s.guard(s.handleCommits))
	s.server.HandleFunc(base+"/diff", s.guard(s.handleDiff))
	s.server.HandleFunc(base+"/diff/stats", s.guard(s.handleDiffStats))
}

// Start starts the API server
func (s *Server) Start(ctx context.Context) error {
	if s.config.EnableHTTPS {
		return s.server.StartHTTPS(s.config.Address)
	}
	return s.server.StartHTTP(s.config.Address)
}

// Stop stops the API server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// guard rejects non-GET methods and, when a token is configured, requests
// without the matching bearer token.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
				Error: "only GET is supported",
				Kind:  "method",
			})
			return
		}
		if s.config.AuthToken != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.AuthToken)) != 1 {
				s.writeJSON(w, http.StatusUnauthorized, errorResponse{
					Error: "invalid or missing token",
					Kind:  "auth",
				})
				return
			}
		}

		// Bound every extraction by the configured timeout, a wedged
		// subprocess must not hold the connection open forever
		ctx, cancel := context.WithTimeout(r.Context(), s.config.Timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) respond(w http.ResponseWriter, v any) {
	s.writeJSON(w, http.StatusOK, v)
}

// respondError maps the error taxonomy onto status codes: rejected input
// is a client error, a missing repository is a conflict with the state of
// the directory, everything else is internal.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	code, kind := http.StatusInternalServerError, "internal"
	switch {
	case model.IsValidationError(err):
		code, kind = http.StatusBadRequest, "validation"
	case model.IsPreconditionError(err):
		code, kind = http.StatusConflict, "precondition"
	case model.IsCommandError(err):
		kind = "command"
	}
	s.writeJSON(w, code, errorResponse{Error: err.Error(), Kind: kind})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Err(err, "failed to marshal response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}
