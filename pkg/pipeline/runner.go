package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pathtrace/pkg/cache"
	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/heuristic"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/observability"
	"github.com/matzehuels/pathtrace/pkg/search"
)

var tracer = otel.Tracer("pathtrace.pipeline")

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// DocumentHash returns a content hash of the graph and heuristics of doc.
// The config section does not take part: it only supplies defaults, which
// reach the cache key through Options.
func DocumentHash(doc *pio.Document) (string, error) {
	data, err := json.Marshal(struct {
		Graph     map[string]map[string]float64 `json:"graph"`
		Heuristic heuristic.Table               `json:"heuristic"`
	}{doc.Graph.Adjacency(), doc.Heuristics})
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return cache.Hash(data), nil
}

// Load reads and normalizes the document at path and returns it with its
// content hash.
func (r *Runner) Load(ctx context.Context, path string) (*pio.Document, string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Load",
		trace.WithAttributes(attribute.String("source", path)))
	defer span.End()

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	doc, err := pio.ReadFile(path)
	if err != nil {
		hooks.OnLoadComplete(ctx, path, 0, 0, time.Since(start), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}
	return r.loaded(ctx, span, path, doc, start)
}

// LoadDocument accepts an already decoded structure, as received by the
// HTTP API or produced by an external source.
func (r *Runner) LoadDocument(ctx context.Context, source string, raw any) (*pio.Document, string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Load",
		trace.WithAttributes(attribute.String("source", source)))
	defer span.End()

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	doc, err := pio.Decode(raw)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, 0, time.Since(start), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}
	return r.loaded(ctx, span, source, doc, start)
}

func (r *Runner) loaded(ctx context.Context, span trace.Span, source string, doc *pio.Document, start time.Time) (*pio.Document, string, error) {
	hash, err := DocumentHash(doc)
	elapsed := time.Since(start)
	observability.Pipeline().OnLoadComplete(ctx, source, doc.Graph.NodeCount(), doc.Graph.EdgeCount(), elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}

	span.SetAttributes(
		attribute.Int("graph.nodes", doc.Graph.NodeCount()),
		attribute.Int("graph.edges", doc.Graph.EdgeCount()),
	)
	span.SetStatus(codes.Ok, "")
	r.Logger.Debug("loaded graph",
		"source", source,
		"nodes", doc.Graph.NodeCount(),
		"edges", doc.Graph.EdgeCount(),
		"heuristic_goals", doc.Heuristics.Len(),
		"duration", elapsed)
	return doc, hash, nil
}

// Execute runs search and render for doc. Unset options are filled from
// the document's config section first.
func (r *Runner) Execute(ctx context.Context, doc *pio.Document, docHash string, opts Options) (*Result, error) {
	opts.ApplyDocumentDefaults(doc.Defaults())
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "pipeline.Execute",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("algorithm", opts.Algorithm),
			attribute.StringSlice("formats", opts.Formats),
		))
	defer span.End()

	result := &Result{
		RunID:   runID,
		DocHash: docHash,
		Stats: Stats{
			NodeCount: doc.Graph.NodeCount(),
			EdgeCount: doc.Graph.EdgeCount(),
		},
	}

	// Stage 1: Search
	searchStart := time.Now()
	res, searchHit, err := r.SearchWithCacheInfo(ctx, doc, docHash, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("search: %w", err)
	}
	result.Search = res
	result.Stats.SearchTime = time.Since(searchStart)
	result.CacheInfo.SearchHit = searchHit

	opts.Logger.Info("search complete",
		"run", runID[:8],
		"strategy", res.Strategy,
		"reachable", res.Reachable(),
		"cost", res.Cost,
		"expanded", len(res.Trace.Expanded),
		"cached", searchHit)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc.Graph, res, r.searchKey(docHash, opts), opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (r *Runner) searchKey(docHash string, opts Options) string {
	if docHash == "" {
		return ""
	}
	return r.Keyer.SearchKey(docHash, opts.SearchKeyOpts())
}

// SearchWithCacheInfo runs the search with caching and reports whether the
// result came from the cache. An empty docHash disables caching.
func (r *Runner) SearchWithCacheInfo(ctx context.Context, doc *pio.Document, docHash string, opts Options) (search.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return search.Result{}, false, err
	}
	sopts, err := opts.SearchOptions()
	if err != nil {
		return search.Result{}, false, err
	}

	ctx, span := tracer.Start(ctx, "pipeline.Search",
		trace.WithAttributes(
			attribute.String("start", opts.Start),
			attribute.String("goal", opts.Goal),
			attribute.String("algorithm", opts.Algorithm),
		))
	defer span.End()

	hooks := observability.Cache()
	key := r.searchKey(docHash, opts)
	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := pio.UnmarshalResult(data); err == nil {
				hooks.OnCacheHit(ctx, "search")
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return res, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		hooks.OnCacheMiss(ctx, "search")
	}

	pipe := observability.Pipeline()
	algorithm := opts.Algorithm
	pipe.OnSearchStart(ctx, algorithm, doc.Graph.NodeCount())
	res, err := search.Search(doc.Graph, doc.Heuristics, opts.Start, opts.Goal, sopts...)
	pipe.OnSearchComplete(ctx, algorithm, len(res.Trace.Expanded), res.Reachable(), res.Elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return search.Result{}, false, err
	}

	span.SetAttributes(
		attribute.Bool("reachable", res.Reachable()),
		attribute.Int("expanded", len(res.Trace.Expanded)),
		attribute.Int("explored", len(res.Trace.Explored)),
	)
	span.SetStatus(codes.Ok, "")

	if key != "" {
		if data, err := pio.MarshalResult(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLSearch); err == nil {
				hooks.OnCacheSet(ctx, "search", len(data))
			} else {
				r.Logger.Warn("cache write failed", "key", key, "err", err)
			}
		}
	}
	return res, false, nil
}

// Search is a convenience wrapper that discards the cache hit info.
func (r *Runner) Search(ctx context.Context, doc *pio.Document, docHash string, opts Options) (search.Result, error) {
	res, _, err := r.SearchWithCacheInfo(ctx, doc, docHash, opts)
	return res, err
}

// RenderWithCacheInfo renders artifacts with caching and reports whether
// every artifact came from the cache. searchKey identifies the search that
// produced res; an empty key disables caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, res search.Result, searchKey string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	ctx, span := tracer.Start(ctx, "pipeline.Render",
		trace.WithAttributes(attribute.StringSlice("formats", opts.Formats)))
	defer span.End()

	hooks := observability.Cache()
	useCache := searchKey != "" && !opts.Refresh
	if useCache {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(searchKey, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		hooks.OnCacheMiss(ctx, "artifact")
	}

	pipe := observability.Pipeline()
	pipe.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, g, res, opts)
	pipe.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	span.SetStatus(codes.Ok, "")

	if searchKey != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(searchKey, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
				hooks.OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	return rendered, false, nil
}

// Query is one start/goal pair of a batch.
type Query struct {
	Start string `json:"start"`
	Goal  string `json:"goal"`
}

// BatchItem is the outcome of one batch query. Err holds per-query
// failures such as unknown nodes; it does not abort the batch.
type BatchItem struct {
	Query  Query
	Result search.Result
	Err    error
}

// Batch searches every query over doc concurrently, at most concurrency at
// a time (DefaultConcurrency when <= 0). Items keep the order of queries.
// The returned error is non-nil only when ctx is cancelled.
func (r *Runner) Batch(ctx context.Context, doc *pio.Document, docHash string, queries []Query, opts Options, concurrency int) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	ctx, span := tracer.Start(ctx, "pipeline.Batch",
		trace.WithAttributes(
			attribute.Int("queries", len(queries)),
			attribute.Int("concurrency", concurrency),
		))
	defer span.End()

	items := make([]BatchItem, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Start, o.Goal = q.Start, q.Goal
			o.validated = false
			res, _, err := r.SearchWithCacheInfo(gctx, doc, docHash, o)
			items[i] = BatchItem{Query: q, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return items, err
	}
	span.SetStatus(codes.Ok, "")
	return items, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
