package worker

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/expr"
	"github.com/snow-ghost/fitness/pkg/cache"
	"github.com/snow-ghost/fitness/pkg/tracing"
	"github.com/snow-ghost/fitness/worker/telemetry"
)

var ErrNoDataset = errors.New("pool: dataset is required")

// PoolConfig configures a Pool.
type PoolConfig struct {
	Workers int  // concurrent scorers, defaults to GOMAXPROCS
	Batched bool // score on a fresh batch per candidate
}

// Pool scores populations against one dataset in parallel. Baseline refreshes
// take the write side of the pool's lock, so they never overlap a pass.
type Pool[L core.Float] struct {
	mu sync.RWMutex

	ds   *core.Dataset[L]
	opts *core.Options[L]
	cfg  PoolConfig

	telemetry  *telemetry.Telemetry
	complexity *cache.ComplexityCache
	dedup      *cache.Deduplicator[L]
}

// NewPool validates the options and builds a pool. complexity may be nil to
// rely on per-member caching only.
func NewPool[L core.Float](ds *core.Dataset[L], opts *core.Options[L], cfg PoolConfig,
	tel *telemetry.Telemetry, complexity *cache.ComplexityCache) (*Pool[L], error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	if err := opts.Validate(cfg.Batched); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if tel == nil {
		tel = telemetry.NewNop()
	}
	return &Pool[L]{
		ds:         ds,
		opts:       opts,
		cfg:        cfg,
		telemetry:  tel,
		complexity: complexity,
		dedup:      cache.NewDeduplicator[L](),
	}, nil
}

// Dataset returns the pool's dataset.
func (p *Pool[L]) Dataset() *core.Dataset[L] { return p.ds }

// RefreshBaseline recomputes the dataset baseline from the constant mean
// predictor.
func (p *Pool[L]) RefreshBaseline(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	core.UpdateBaselineLossWith(p.ds, p.opts, func(ds *core.Dataset[L]) core.Tree {
		return expr.Const(float64(ds.AvgY))
	})
	p.telemetry.LogBaseline(ctx, float64(p.ds.BaselineLoss()), p.ds.UseBaseline(), p.ds.N)
}

// Summary describes one population pass.
type Summary[L core.Float] struct {
	Size      int
	NonFinite int
	Best      *Member[L]
	Duration  time.Duration
}

// Score scores every member, writing Score, Loss and the cached complexity
// back onto it. It stops early and returns the context error when ctx is
// cancelled; members not yet reached keep their previous values.
func (p *Pool[L]) Score(ctx context.Context, members []*Member[L]) (Summary[L], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := time.Now()
	ctx, span := p.telemetry.StartPopulation(ctx, len(members), p.cfg.Batched)
	defer span.End()

	var (
		mu        sync.Mutex
		nonFinite int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, m := range members {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !p.scoreMember(gctx, m) {
				mu.Lock()
				nonFinite++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.RecordSpanError(span, err)
		return Summary[L]{}, err
	}

	summary := Summary[L]{
		Size:      len(members),
		NonFinite: nonFinite,
		Best:      Best(members),
		Duration:  time.Since(start),
	}
	best := math.Inf(1)
	if summary.Best != nil {
		best = float64(summary.Best.Score)
	}
	p.telemetry.LogPopulation(ctx, span, summary.Size, nonFinite, best, summary.Duration)
	tracing.RecordSpanSuccess(span)
	return summary, nil
}

// scoreMember scores m and reports whether its loss was finite.
func (p *Pool[L]) scoreMember(ctx context.Context, m *Member[L]) bool {
	start := time.Now()
	if m.Empty() {
		inf := L(math.Inf(1))
		m.Score, m.Loss = inf, inf
		m.SetComplexity(0)
		p.telemetry.LogCandidate(ctx, "empty", string(m.Key()), 0,
			float64(inf), float64(inf), false, time.Since(start))
		return false
	}
	complexity := p.memberComplexity(m)

	var score, loss L
	mode := "full"
	if p.cfg.Batched {
		mode = "batched"
		score, loss = core.ScoreFuncBatched(p.ds, m, p.opts, complexity, nil)
	} else {
		// Full-dataset losses are deterministic, so identical expressions
		// scored at the same time share one evaluation.
		loss, _ = p.dedup.Do(m.Key(), func() L {
			return core.EvalLoss(m.GetTree(), p.ds, p.opts, true, nil)
		})
		score = core.LossToScore(loss, p.ds.UseBaseline(), p.ds.BaselineLoss(), m, p.opts, complexity)
	}
	m.Score, m.Loss = score, loss

	finite := !math.IsInf(float64(loss), 0) && !math.IsNaN(float64(loss))
	p.telemetry.LogCandidate(ctx, mode, string(m.Key()), complexity,
		float64(score), float64(loss), finite, time.Since(start))
	return finite
}

func (p *Pool[L]) memberComplexity(m *Member[L]) int {
	if c, ok := m.Complexity(); ok {
		return c
	}
	compute := func() int {
		if p.opts.Complexity == nil {
			return 0
		}
		return p.opts.Complexity.Complexity(m)
	}

	var c int
	if p.complexity != nil {
		var hit bool
		c, hit = p.complexity.GetOrCompute(m.Key(), compute)
		p.telemetry.RecordCache(hit)
	} else {
		c = compute()
	}
	m.SetComplexity(c)
	return c
}
