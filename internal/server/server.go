// Package server exposes the calculation engine over HTTP with fasthttp.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/internal/config"
	"github.com/rpgo/pension-engine/internal/domain"
)

const (
	scenariosPrefix = "/v1/scenarios/"
	compareTimeout  = 20 * time.Second
)

// Server routes requests to one calculation engine and keeps the last good
// projection per scenario id.
type Server struct {
	engine  *calculation.Engine
	compare *compare.Engine
	parser  *config.InputParser
	logger  *slog.Logger
	version string

	routes map[string]fasthttp.RequestHandler

	// scenario id -> storedResult
	results sync.Map
	srv     *fasthttp.Server
}

type storedResult struct {
	Result    *domain.ProjectionResult `json:"result"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// New creates a server. A nil logger discards logs.
func New(engine *calculation.Engine, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:  engine,
		compare: compare.New(engine),
		parser:  config.NewInputParser(engine.Rules),
		logger:  logger,
		version: version,
	}
	s.routes = map[string]fasthttp.RequestHandler{
		"/v1/factor":          s.handleFactor,
		"/v1/pension":         s.handlePension,
		"/v1/option":          s.handleOption,
		"/v1/cola":            s.handleCOLA,
		"/v1/social-security": s.handleSocialSecurity,
		"/v1/project":         s.handleProject,
		"/v1/compare":         s.handleCompare,
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "pension-engine",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	return s
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("pension engine listening", "addr", addr, "rules", s.engine.Rules.Version)
	return s.srv.ListenAndServe(addr)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handler returns the routing request handler, wrapped with request logging.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.withLogging(s.route)
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	switch {
	case path == "/healthz":
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok", "rules": s.engine.Rules.Version, "version": s.version})
		return
	case strings.HasPrefix(path, scenariosPrefix):
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx)
			return
		}
		s.handleGetScenario(ctx, strings.TrimPrefix(path, scenariosPrefix))
		return
	}

	h, ok := s.routes[path]
	if !ok {
		s.writeError(ctx, fasthttp.StatusNotFound, errorBody{Error: "not found: " + path})
		return
	}
	if !ctx.IsPost() {
		s.methodNotAllowed(ctx)
		return
	}
	h(ctx)
}

func (s *Server) withLogging(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		s.logger.Info("request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start))
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
	// LastGood is the previous successful projection for the scenario id,
	// returned when a recalculation fails.
	LastGood *storedResult `json:"last_good,omitempty"`
}

// statusFor maps engine errors to HTTP status codes: validation 400,
// ineligibility 422, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fasthttp.StatusBadRequest
	case errors.Is(err, domain.ErrNotEligible):
		return fasthttp.StatusUnprocessableEntity
	default:
		return fasthttp.StatusInternalServerError
	}
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	s.failWith(ctx, err, nil)
}

func (s *Server) failWith(ctx *fasthttp.RequestCtx, err error, lastGood *storedResult) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), LastGood: lastGood}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Field, body.Reason = ve.Field, ve.Reason
	}
	var ne *domain.NotEligibleError
	if errors.As(err, &ne) {
		body.Reason = ne.Result.Reason
	}
	if status == fasthttp.StatusInternalServerError {
		s.logger.Error("calculation failed", "path", string(ctx.Path()), "err", err)
	}
	s.writeError(ctx, status, body)
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		s.writeError(ctx, fasthttp.StatusBadRequest, errorBody{Error: "request body is required"})
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, body errorBody) {
	body.Status = status
	s.writeJSON(ctx, status, body)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response", "err", err)
		ctx.Error(`{"status":500,"error":"encoding response"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}
