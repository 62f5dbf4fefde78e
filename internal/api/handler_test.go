package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/typstmath/internal/cachemanager"
	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/tracing"
	"github.com/zjrosen/typstmath/internal/walker"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Decorate(ctx context.Context, text string, opts walker.Options) (*engine.Result, error) {
	args := m.Called(ctx, text, opts)
	res, _ := args.Get(0).(*engine.Result)
	return res, args.Error(1)
}

func (m *mockEngine) Resolver() *symbols.Resolver {
	return symbols.Default()
}

func (m *mockEngine) CacheStats() cachemanager.Stats {
	return cachemanager.Stats{}
}

// decorationBody mirrors the JSON shape of one decoration.
type decorationBody struct {
	Key     string   `json:"key"`
	Content string   `json:"content"`
	Color   string   `json:"color"`
	Style   string   `json:"style"`
	Spans   [][2]int `json:"spans"`
}

type decorateBody struct {
	ID          string           `json:"id"`
	Decorations []decorationBody `json:"decorations"`
	Problems    []string         `json:"problems"`
	CacheHit    bool             `json:"cache_hit"`
	TraceID     string           `json:"trace_id"`
}

func newHandler(e Engine) *Handler {
	return NewHandler(HandlerConfig{
		Engine:   e,
		Defaults: walker.Options{RenderingMode: walker.TierRewrites},
	})
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/decorations", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandler_Decorate(t *testing.T) {
	h := newHandler(engine.New(engine.WithCache(time.Minute)))

	w := post(h, `{"text": "$alpha + beta$"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp decorateBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.CacheHit)
	assert.Empty(t, resp.Problems)
	byKey := make(map[string]decorationBody, len(resp.Decorations))
	for _, d := range resp.Decorations {
		byKey[d.Key] = d
	}
	require.Contains(t, byKey, "alpha")
	require.Contains(t, byKey, "beta")
	assert.Equal(t, "α", byKey["alpha"].Content)
	assert.Equal(t, "letter", byKey["alpha"].Color)
	assert.Equal(t, [][2]int{{1, 6}}, byKey["alpha"].Spans)

	w = post(h, `{"text": "$alpha + beta$"}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.CacheHit)
}

func TestHandler_Decorate_Overrides(t *testing.T) {
	e := &mockEngine{}
	h := newHandler(e)

	res := &engine.Result{ID: "r-1"}
	e.On("Decorate", mock.Anything, "#sym.alpha", walker.Options{RenderingMode: 0, RenderOutsideMath: true}).Return(res, nil).Once()
	e.On("Decorate", mock.Anything, "", walker.Options{RenderingMode: walker.TierRewrites}).Return(res, nil).Once()

	w := post(h, `{"text": "#sym.alpha", "rendering_mode": 0, "render_outside_math": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(h, `{"text": ""}`)
	require.Equal(t, http.StatusOK, w.Code)
	e.AssertExpectations(t)
}

func TestHandler_Decorate_Problems(t *testing.T) {
	resolver := symbols.NewResolver(map[string]symbols.Glyph{
		"linebreak": {Content: "L", Color: symbols.Keyword},
	}, nil)
	h := newHandler(engine.New(engine.WithResolver(resolver)))

	w := post(h, `{"text": "$linebreak \\ x$"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp decorateBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Problems)
}

func TestHandler_Decorate_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid json", "not json", http.StatusBadRequest, "invalid_json"},
		{"missing text", `{"rendering_mode": 1}`, http.StatusBadRequest, "validation_error"},
		{"mode too high", `{"text": "", "rendering_mode": 4}`, http.StatusBadRequest, "validation_error"},
		{"mode negative", `{"text": "", "rendering_mode": -1}`, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &mockEngine{}
			w := post(newHandler(e), tt.body)
			require.Equal(t, tt.status, w.Code)
			require.Equal(t, tt.code, decodeError(t, w).Code)
			e.AssertNotCalled(t, "Decorate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Decorate_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"too large", fmt.Errorf("%w: 9 nodes, limit is 3", engine.ErrTooLarge), http.StatusRequestEntityTooLarge, "too_large"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "canceled"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &mockEngine{}
			e.On("Decorate", mock.Anything, "$x$", mock.Anything).Return(nil, tt.err).Once()

			w := post(newHandler(e), `{"text": "$x$"}`)
			require.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			require.Equal(t, tt.code, resp.Code)
			require.Equal(t, tt.err.Error(), resp.Details)
		})
	}
}

func TestHandler_Decorate_BodyLimit(t *testing.T) {
	h := NewHandler(HandlerConfig{Engine: engine.New(), MaxBodyBytes: 32})

	w := post(h, `{"text": "`+strings.Repeat("x", 64)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Equal(t, "too_large", decodeError(t, w).Code)
}

func TestHandler_GetSymbol(t *testing.T) {
	h := newHandler(engine.New())

	tests := []struct {
		path   string
		status int
		want   SymbolResponse
	}{
		{"/symbols/alpha", http.StatusOK, SymbolResponse{Name: "alpha", Content: "α", Color: "letter"}},
		{"/symbols/arrow.r", http.StatusOK, SymbolResponse{Name: "arrow.r", Content: "→", Color: "comparison"}},
		{"/symbols/sym.beta", http.StatusOK, SymbolResponse{Name: "sym.beta", Content: "β", Color: "letter"}},
		{"/symbols/nope", http.StatusNotFound, SymbolResponse{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				require.Equal(t, "not_found", decodeError(t, w).Code)
				return
			}
			var resp SymbolResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tt.want, resp)
		})
	}
}

func TestHandler_ListSymbols(t *testing.T) {
	resolver := symbols.NewResolver(nil, []string{"alpha"})
	h := newHandler(engine.New(engine.WithResolver(resolver)))

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/symbols", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListSymbolsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, len(resp.Names), resp.Total)
	require.Contains(t, resp.Names, "beta")
	require.NotContains(t, resp.Names, "alpha")
}

func TestHandler_Health(t *testing.T) {
	h := newHandler(engine.New(engine.WithCache(time.Minute)))
	post(h, `{"text": "$alpha$"}`)
	post(h, `{"text": "$alpha$"}`)

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, HealthResponse{Status: "ok", Cache: CacheHealth{Hits: 1, Misses: 1, Items: 1}}, resp)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	newHandler(engine.New()).Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/decorations", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)).Tracer("test")
	h := NewHandler(HandlerConfig{
		Engine:   engine.New(engine.WithTracer(tracer)),
		Defaults: walker.Options{RenderingMode: walker.TierRewrites},
		Tracer:   tracer,
	})

	w := post(h, `{"text": "$alpha$"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp decorateBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	spans := exporter.GetSpans()
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name)
	}
	require.Contains(t, names, tracing.SpanPrefixHTTP+"decorations")
	require.Contains(t, names, tracing.SpanDecorate)

	server := spans[len(spans)-1]
	require.Equal(t, tracing.SpanPrefixHTTP+"decorations", server.Name)
	require.Equal(t, resp.TraceID, server.SpanContext.TraceID().String())
}

func TestServer_StartStop(t *testing.T) {
	s, err := NewServer(ServerConfig{
		Addr:    "127.0.0.1:0",
		Handler: HandlerConfig{Engine: engine.New()},
	})
	require.NoError(t, err)
	require.NotZero(t, s.Port())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", s.Port()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.ErrorIs(t, <-errCh, http.ErrServerClosed)
}
