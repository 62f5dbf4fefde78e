// Package api serves decorations over HTTP so that an editor extension can
// request them for the buffer it displays.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/typstmath/internal/cachemanager"
	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/tracing"
	"github.com/zjrosen/typstmath/internal/walker"
)

// Engine is what the handler needs from the decoration engine.
type Engine interface {
	Decorate(ctx context.Context, text string, opts walker.Options) (*engine.Result, error)
	Resolver() *symbols.Resolver
	CacheStats() cachemanager.Stats
}

// Handler provides the HTTP endpoints.
type Handler struct {
	engine       Engine
	defaults     walker.Options
	tracer       trace.Tracer
	maxBodyBytes int64
}

// HandlerConfig configures the API handler.
type HandlerConfig struct {
	// Engine produces decorations (required).
	Engine Engine
	// Defaults apply to requests that leave an option unset.
	Defaults walker.Options
	// Tracer wraps every route in a server span (optional).
	Tracer trace.Tracer
	// MaxBodyBytes limits request bodies; 0 means no limit.
	MaxBodyBytes int64
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		engine:       cfg.Engine,
		defaults:     cfg.Defaults,
		tracer:       cfg.Tracer,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.handle(mux, "POST /decorations", "decorations", h.Decorate)
	h.handle(mux, "GET /symbols", "symbols", h.ListSymbols)
	h.handle(mux, "GET /symbols/{name}", "symbol", h.GetSymbol)
	h.handle(mux, "GET /health", "health", h.Health)
	return mux
}

func (h *Handler) handle(mux *http.ServeMux, pattern, route string, fn http.HandlerFunc) {
	mux.Handle(pattern, tracing.Middleware(h.tracer, route)(fn))
}

// === Request/Response Types ===

// DecorateRequest is the request body for decorating a text.
type DecorateRequest struct {
	// Text is the Typst source (required, may be empty).
	Text *string `json:"text"`
	// RenderingMode overrides the server's rendering tier.
	RenderingMode *int `json:"rendering_mode,omitempty"`
	// RenderOutsideMath overrides the server's outside-math policy.
	RenderOutsideMath *bool `json:"render_outside_math,omitempty"`
}

// DecorateResponse is the response body for a decoration pass.
type DecorateResponse struct {
	ID          string          `json:"id"`
	Decorations *decoration.Set `json:"decorations"`
	// Problems lists shape errors and key conflicts met during the walk.
	Problems []string `json:"problems,omitempty"`
	CacheHit bool     `json:"cache_hit"`
	TraceID  string   `json:"trace_id,omitempty"`
}

// SymbolResponse describes one resolvable symbol.
type SymbolResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

// ListSymbolsResponse is the response body for listing symbols.
type ListSymbolsResponse struct {
	Names []string `json:"names"`
	Total int      `json:"total"`
}

// HealthResponse is the response body for the health check.
type HealthResponse struct {
	Status string      `json:"status"`
	Cache  CacheHealth `json:"cache"`
}

// CacheHealth reports the result cache counters.
type CacheHealth struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Items  int    `json:"items"`
}

// ErrorResponse is the response body for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// === Handlers ===

// Decorate decorates the request text.
// POST /decorations
func (h *Handler) Decorate(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req DecorateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large", err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	if req.Text == nil {
		h.writeError(w, http.StatusBadRequest, "validation_error", "text is required", "")
		return
	}
	opts := h.defaults
	if req.RenderingMode != nil {
		opts.RenderingMode = *req.RenderingMode
	}
	if req.RenderOutsideMath != nil {
		opts.RenderOutsideMath = *req.RenderOutsideMath
	}
	if opts.RenderingMode < 0 || opts.RenderingMode > walker.MaxRenderingMode {
		h.writeError(w, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("rendering_mode must be between 0 and %d", walker.MaxRenderingMode), "")
		return
	}

	res, err := h.engine.Decorate(r.Context(), *req.Text, opts)
	switch {
	case errors.Is(err, engine.ErrTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Source too large", err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusServiceUnavailable, "canceled", "Request canceled", err.Error())
		return
	case err != nil:
		log.ErrorErr(log.CatAPI, "decorate failed", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "Failed to decorate", err.Error())
		return
	}

	resp := DecorateResponse{
		ID:          res.ID,
		Decorations: res.Decorations,
		CacheHit:    res.CacheHit,
		TraceID:     res.TraceID,
	}
	for _, problem := range engine.Flatten(res.Problems) {
		resp.Problems = append(resp.Problems, problem.Error())
	}
	log.Debug(log.CatAPI, "decorated", "id", res.ID, "bytes", len(*req.Text), "problems", len(resp.Problems))
	h.writeJSON(w, http.StatusOK, resp)
}

// ListSymbols lists every resolvable symbol name.
// GET /symbols
func (h *Handler) ListSymbols(w http.ResponseWriter, r *http.Request) {
	names := h.engine.Resolver().Names()
	h.writeJSON(w, http.StatusOK, ListSymbolsResponse{Names: names, Total: len(names)})
}

// GetSymbol resolves one symbol name, dotted or with a sym. prefix.
// GET /symbols/{name}
func (h *Handler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	glyph, ok := h.engine.Resolver().Resolve(name)
	if !ok {
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown symbol", name)
		return
	}
	h.writeJSON(w, http.StatusOK, SymbolResponse{
		Name:    name,
		Content: glyph.Content,
		Color:   glyph.Color.String(),
	})
}

// Health reports liveness and cache counters.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.CacheStats()
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Cache: CacheHealth{
			Hits:   stats.Hits,
			Misses: stats.Misses,
			Items:  stats.Items,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatAPI, "Failed to encode JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int
}

// ServerConfig configures the API server.
type ServerConfig struct {
	// Addr is the address to listen on, e.g. "localhost:7117" or ":0".
	Addr    string
	Handler HandlerConfig
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// NewServer creates a new API server listening on cfg.Addr. With port 0
// the OS picks a port; Port reports it.
func NewServer(cfg ServerConfig) (*Server, error) {
	handler := NewHandler(cfg.Handler)

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		port:     port,
		listener: listener,
		server: &http.Server{
			Handler:           handler.Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}, nil
}

// Start serves requests. It blocks until the server is stopped or fails;
// after Stop it returns http.ErrServerClosed.
func (s *Server) Start() error {
	log.Info(log.CatAPI, "Starting API server", "addr", s.listener.Addr().String(), "port", s.port)
	return s.server.Serve(s.listener)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatAPI, "Stopping API server")
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}
