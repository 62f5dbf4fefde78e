// Package engine is the entry point for decorating Typst source. It parses
// the text, guards against oversized trees, walks the tree into a
// decoration set and caches the outcome keyed by the text and options.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/typstmath/internal/cachemanager"
	"github.com/zjrosen/typstmath/internal/config"
	"github.com/zjrosen/typstmath/internal/decoration"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/symbols"
	"github.com/zjrosen/typstmath/internal/syntax"
	"github.com/zjrosen/typstmath/internal/tracing"
	"github.com/zjrosen/typstmath/internal/walker"
)

// ErrTooLarge is returned when the parsed tree has more nodes than the
// engine accepts.
var ErrTooLarge = errors.New("source too large")

const cacheName = "decorations"

// Result is one decoration pass over a source text.
type Result struct {
	// ID identifies this call, also when the walk came from the cache.
	ID string
	// Source is the parsed text the spans refer to.
	Source *syntax.Source
	// Decorations is never nil. Callers must not modify it: cached results
	// share it.
	Decorations *decoration.Set
	// Problems holds the shape errors and key conflicts met during the
	// walk. Decorations is still complete apart from the affected subtrees.
	Problems error
	// CacheHit reports whether the walk was served from the cache.
	CacheHit bool
	// TraceID is the trace of this call, "" when tracing is off.
	TraceID string
}

// walked is what the cache stores.
type walked struct {
	source   *syntax.Source
	set      *decoration.Set
	problems error
}

type request struct {
	text string
	opts walker.Options
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the symbol resolver. Nil keeps the built-in table.
func WithResolver(resolver *symbols.Resolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// WithMaxNodes caps the number of syntax nodes walked. Zero disables the
// guard.
func WithMaxNodes(n int) Option {
	return func(e *Engine) {
		e.maxNodes = n
	}
}

// WithCache enables result caching. An entry expires ttl after its last use.
func WithCache(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
		e.manager = cachemanager.NewInMemoryCacheManager[string, walked](cacheName, ttl, 2*ttl)
	}
}

// WithTracer sets the tracer for span instrumentation. Nil keeps the noop
// tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// Engine decorates source texts. It is safe for concurrent use.
type Engine struct {
	resolver *symbols.Resolver
	maxNodes int
	tracer   trace.Tracer

	cacheTTL time.Duration
	manager  *cachemanager.InMemoryCacheManager[string, walked]
	cache    *cachemanager.ReadThroughCache[string, walked, request]
}

// New creates an Engine. Without options it uses the built-in symbols,
// no size guard, no cache and no tracing.
func New(opts ...Option) *Engine {
	e := &Engine{
		resolver: symbols.Default(),
		tracer:   noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(e)
	}

	var manager cachemanager.CacheManager[string, walked]
	if e.manager != nil {
		manager = e.manager
	}
	e.cache = cachemanager.NewReadThroughCache(manager, e.compute, e.manager == nil)
	return e
}

// NewFromConfig creates an Engine for cfg.
func NewFromConfig(cfg config.Config, tracer trace.Tracer) (*Engine, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithResolver(resolver),
		WithMaxNodes(cfg.MaxNodes),
		WithTracer(tracer),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, WithCache(cfg.Cache.TTL))
	}
	return New(opts...), nil
}

// Resolver returns the symbol resolver in use.
func (e *Engine) Resolver() *symbols.Resolver {
	return e.resolver
}

// CacheStats reports the result cache counters. They stay zero while the
// cache is disabled.
func (e *Engine) CacheStats() cachemanager.Stats {
	if e.manager == nil {
		return cachemanager.Stats{}
	}
	return e.manager.Stats()
}

// Decorate parses text and walks it with opts. The error is non-nil only
// when no result could be produced: ctx was done or the tree was too
// large. Problems met during the walk are reported in Result.Problems.
func (e *Engine) Decorate(ctx context.Context, text string, opts walker.Options) (*Result, error) {
	id := uuid.New().String()

	ctx, span := e.tracer.Start(ctx, tracing.SpanDecorate,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrResultID, id),
		attribute.Int(tracing.AttrSourceBytes, len(text)),
		attribute.Int(tracing.AttrRenderingMode, opts.RenderingMode),
		attribute.Bool(tracing.AttrOutsideMath, opts.RenderOutsideMath),
	)

	w, hit, err := e.cache.GetWithRefresh(ctx, cacheKey(text, opts), request{text: text, opts: opts}, e.cacheTTL)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
	if err != nil {
		tracing.Fail(span, err)
		log.Debug(log.CatEngine, "decorate failed", "id", id, "error", err)
		return nil, err
	}
	if hit {
		log.Debug(log.CatCache, "cache hit", "id", id, "bytes", len(text))
	}

	problems := Flatten(w.problems)
	span.SetAttributes(
		attribute.Int(tracing.AttrNodeCount, w.source.NodeCount()),
		attribute.Int(tracing.AttrDecorationCount, w.set.Len()),
		attribute.Int(tracing.AttrSpanCount, w.set.SpanCount()),
		attribute.Int(tracing.AttrWalkErrors, len(problems)),
	)
	if len(problems) > 0 {
		span.SetStatus(codes.Error, "walk reported problems")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	log.Debug(log.CatEngine, "decorated",
		"id", id,
		"mode", opts.RenderingMode,
		"decorations", w.set.Len(),
		"problems", len(problems),
		"cache_hit", hit)

	return &Result{
		ID:          id,
		Source:      w.source,
		Decorations: w.set,
		Problems:    w.problems,
		CacheHit:    hit,
		TraceID:     tracing.TraceID(ctx),
	}, nil
}

// compute is the uncached path: parse, guard, walk.
func (e *Engine) compute(ctx context.Context, req request) (walked, error) {
	if err := ctx.Err(); err != nil {
		return walked{}, err
	}

	_, parseSpan := e.tracer.Start(ctx, tracing.SpanParse)
	source := syntax.Parse(req.text)
	nodes := source.NodeCount()
	parseSpan.SetAttributes(attribute.Int(tracing.AttrNodeCount, nodes))
	parseSpan.End()
	log.Debug(log.CatParse, "parsed", "bytes", len(req.text), "nodes", nodes)

	if e.maxNodes > 0 && nodes > e.maxNodes {
		return walked{}, fmt.Errorf("%w: %d nodes, limit is %d", ErrTooLarge, nodes, e.maxNodes)
	}
	if err := ctx.Err(); err != nil {
		return walked{}, err
	}

	_, walkSpan := e.tracer.Start(ctx, tracing.SpanWalk)
	defer walkSpan.End()
	set, problems := walker.Walk(source.Root(), req.opts, e.resolver)
	walkSpan.SetAttributes(attribute.Int(tracing.AttrDecorationCount, set.Len()))
	if problems != nil {
		walkSpan.RecordError(problems)
	}
	return walked{source: source, set: set, problems: problems}, nil
}

// cacheKey digests everything the walk output depends on besides the
// engine's own resolver.
func cacheKey(text string, opts walker.Options) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(opts.RenderingMode)))
	h.Write([]byte(strconv.FormatBool(opts.RenderOutsideMath)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Flatten returns the individual errors inside err, unwrapping joined
// errors at any depth. It returns nil for a nil err.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var errs []error
	for _, inner := range joined.Unwrap() {
		errs = append(errs, Flatten(inner)...)
	}
	return errs
}
