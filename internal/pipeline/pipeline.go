// Package pipeline implements the aggregation pipeline (spec section 4.8):
// walk a results tree, dispatch adapters in parallel with per-adapter fault
// isolation, apply compliance enrichment, run Trivy/Syft cross-tool
// enrichment per target, and concatenate the result.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/compliance"
	"github.com/lvonguyen/secfindings/internal/enrichment"
	"github.com/lvonguyen/secfindings/internal/finding"
	"github.com/lvonguyen/secfindings/internal/observability"
	"github.com/lvonguyen/secfindings/internal/schema"
	"github.com/lvonguyen/secfindings/internal/walker"
)

// Config carries the pipeline's resource bounds (spec section 5/6.5).
type Config struct {
	WorkerCount      int
	MaxFileSizeBytes int64
	MaxJSONDepth     int
}

// Pipeline runs gatherResults over a results tree (spec section 4.8).
type Pipeline struct {
	registry  *adapter.Registry
	cache     *adapter.ParseCache
	validator *schema.Validator
	logger    *zap.Logger
	tracer    trace.Tracer
	metrics   *observability.Metrics
	cfg       Config
}

// New builds a Pipeline. cache and validator may be nil: a nil cache means
// every parse runs uncached, and a nil validator means schema validation is
// skipped (equivalent to section 4.9's "no validator implementation
// available" fallback).
func New(reg *adapter.Registry, cache *adapter.ParseCache, validator *schema.Validator, logger *zap.Logger, tracer trace.Tracer, metrics *observability.Metrics, cfg Config) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = adapter.DefaultMaxFileSize
	}
	if cfg.MaxJSONDepth <= 0 {
		cfg.MaxJSONDepth = adapter.DefaultMaxJSONDepth
	}
	// Adapters read these bounds via adapter.MaxFileSize()/MaxJSONDepth()
	// rather than taking them as Parse arguments, since Adapter.Parse's
	// signature is fixed by the plugin contract (section 4.1); this is the
	// thread-through point so the configured bounds in cfg actually reach
	// every adapter's ReadBounded/DecodeBounded calls instead of being
	// decorative.
	adapter.SetLimits(cfg.MaxFileSizeBytes, cfg.MaxJSONDepth)
	return &Pipeline{
		registry:  reg,
		cache:     cache,
		validator: validator,
		logger:    logger,
		tracer:    tracer,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID     string
	Findings  []finding.Finding
	Cancelled bool
}

// Run walks root, dispatches every recognized tool output file to its
// adapter with per-adapter fault isolation, enriches, and returns the
// concatenated findings. It is cancellable at work-unit granularity: a
// cancelled context still returns the findings gathered before
// cancellation, with Result.Cancelled set, rather than an error (spec
// section 5, "Cancellation").
func (p *Pipeline) Run(ctx context.Context, root string) (Result, error) {
	runID := uuid.NewString()
	start := time.Now()
	logger := p.logger.With(zap.String("runId", runID), zap.String("root", root))

	var span trace.Span
	if p.tracer != nil {
		ctx, span = p.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("results.root", root),
		))
		defer span.End()
	}

	units, err := walker.Walk(root, p.registry)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		p.recordRunOutcome("error", start)
		return Result{RunID: runID}, fmt.Errorf("pipeline: walking %q: %w", root, err)
	}
	logger.Info("aggregation run starting", zap.Int("work_units", len(units)))

	var mu sync.Mutex
	byTarget := make(map[string][]finding.Finding, len(units))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.WorkerCount)

	if p.metrics != nil {
		p.metrics.ActiveWorkers.Set(float64(p.cfg.WorkerCount))
		defer p.metrics.ActiveWorkers.Set(0)
	}

	for _, u := range units {
		u := u
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}
			findings := p.dispatch(gCtx, u, logger)
			if len(findings) == 0 {
				return nil
			}
			mu.Lock()
			byTarget[u.Target] = append(byTarget[u.Target], findings...)
			mu.Unlock()
			return nil
		})
	}
	// g.Go bodies never return a non-nil error: every adapter failure is
	// isolated inside dispatch per spec section 4.2/4.8, so Wait always
	// returns nil. Cancellation is read from ctx.Err() below.
	_ = g.Wait()

	all := make([]finding.Finding, 0, len(units))
	for target, tf := range byTarget {
		enriched := enrichment.EnrichTrivySyft(tf, logger.With(zap.String("target", target)))
		all = append(all, enriched...)
	}

	if p.validator != nil {
		if err := p.validator.Validate(all); err != nil {
			logger.Warn("schema validation reported a failing finding", zap.Error(err))
			if p.metrics != nil {
				p.metrics.SchemaValidationFailures.WithLabelValues("aggregate").Inc()
			}
		}
	}

	cancelled := ctx.Err() != nil
	status := "ok"
	if cancelled {
		status = "cancelled"
	}
	p.recordRunOutcome(status, start)
	logger.Info("aggregation run complete",
		zap.Int("findings", len(all)), zap.Bool("cancelled", cancelled),
		zap.Duration("duration", time.Since(start)))

	return Result{RunID: runID, Findings: all, Cancelled: cancelled}, nil
}

func (p *Pipeline) recordRunOutcome(status string, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.PipelineRuns.WithLabelValues(status).Inc()
	p.metrics.PipelineDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// dispatch runs one work unit's adapter under fault isolation: a declared
// adapter error or a panic inside Parse is logged and contributes zero
// findings rather than aborting the run (spec section 4.2 policy 7/8 and
// section 7's AdapterParseError / CatastrophicError rows). A bare stdlib
// panic-in-a-goroutine would otherwise take down the whole aggregator for
// one bad tool's output, which violates the "good tool's findings still
// arrive" guarantee the rest of the pipeline provides.
func (p *Pipeline) dispatch(ctx context.Context, u walker.WorkUnit, logger *zap.Logger) (findings []finding.Finding) {
	a, ok := p.registry.Get(u.AdapterName)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked, isolating",
				zap.String("adapter", u.AdapterName), zap.String("path", u.Path),
				zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
			if p.metrics != nil {
				p.metrics.AdapterErrors.WithLabelValues(u.AdapterName, "panic").Inc()
			}
			findings = nil
		}
	}()

	var span trace.Span
	if p.tracer != nil {
		ctx, span = p.tracer.Start(ctx, "adapter.Parse", trace.WithAttributes(
			attribute.String("adapter", u.AdapterName),
			attribute.String("target", u.Target),
		))
		defer span.End()
	}

	key := p.cacheKey(u)
	if key != "" && p.cache != nil {
		if cached, ok := p.cache.Get(ctx, key); ok {
			if p.metrics != nil {
				p.metrics.AdapterCacheHits.WithLabelValues(u.AdapterName).Inc()
			}
			return cached
		}
		if p.metrics != nil {
			p.metrics.AdapterCacheMisses.WithLabelValues(u.AdapterName).Inc()
		}
	}

	parseStart := time.Now()
	parsed, err := a.Parse(u.Path)
	duration := time.Since(parseStart)
	if p.metrics != nil {
		p.metrics.AdapterParseDuration.WithLabelValues(u.AdapterName).Observe(duration.Seconds())
	}
	if err != nil {
		// Declared adapter error (I/O, permission, environmental): absorbed
		// locally per spec section 4.2/7. Undeclared catastrophic failures
		// (OOM) are not recoverable in Go and will crash the process
		// regardless of this branch, matching "propagate; caller decides".
		logger.Warn("adapter parse failed, isolating",
			zap.String("adapter", u.AdapterName), zap.String("path", u.Path), zap.Error(err))
		if span != nil {
			span.RecordError(err)
		}
		if p.metrics != nil {
			p.metrics.AdapterErrors.WithLabelValues(u.AdapterName, "parse_error").Inc()
		}
		return nil
	}

	out := make([]finding.Finding, 0, len(parsed))
	for _, f := range parsed {
		enriched := compliance.Enrich(f)
		out = append(out, enriched)
		if p.metrics != nil {
			p.metrics.FindingsEmitted.WithLabelValues(enriched.Tool.Name, string(enriched.Severity)).Inc()
		}
	}

	if key != "" && p.cache != nil {
		p.cache.Set(ctx, key, out)
	}
	return out
}

// cacheKey builds the parse cache key for a work unit from its file's size
// and modification time, or "" when the file can't be stat'd (in which case
// the caller simply skips caching for this invocation).
func (p *Pipeline) cacheKey(u walker.WorkUnit) string {
	info, err := os.Stat(u.Path)
	if err != nil {
		return ""
	}
	return adapter.Key(u.AdapterName, u.Path, info.Size(), info.ModTime())
}
