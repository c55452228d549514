package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/pkg/cache"
	"github.com/snow-ghost/fitness/pkg/config"
	"github.com/snow-ghost/fitness/pkg/limiter"
	"github.com/snow-ghost/fitness/pkg/logging"
	"github.com/snow-ghost/fitness/pkg/tracing"
	"github.com/snow-ghost/fitness/worker"
	"github.com/snow-ghost/fitness/worker/telemetry"
)

func main() {
	env := worker.LoadConfig()
	configPath := flag.String("config", env.ConfigPath, "path to the scoring configuration")
	flag.Parse()

	logger, err := logging.NewLogger(logging.Config{Level: env.LogLevel, Format: env.LogFormat, Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    "fitness-scorer",
		ServiceVersion: "0.1.0",
		JaegerEndpoint: env.JaegerEndpoint,
		Environment:    "production",
	})
	if err != nil {
		logger.Fatal("failed to create tracer", "error", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	tel := telemetry.NewTelemetry(logger, tracer, prometheus.NewRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Precision {
	case config.PrecisionFloat32:
		err = run[float32](ctx, env, cfg, tel)
	default:
		err = run[float64](ctx, env, cfg, tel)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("scoring failed", "error", err)
	}
}

func run[L core.Float](ctx context.Context, env *worker.Config, cfg *config.Config, tel *telemetry.Telemetry) error {
	logger := tel.Logger()

	ds, err := config.BuildDataset[L](cfg)
	if err != nil {
		return err
	}
	opts, err := config.BuildOptions[L](cfg)
	if err != nil {
		return err
	}
	complexity, err := cache.NewComplexityCache(&cache.CacheConfig{MaxSize: env.CacheSize})
	if err != nil {
		return err
	}
	pool, err := worker.NewPool(ds, opts, worker.PoolConfig{
		Workers: env.Workers,
		Batched: env.Batched || cfg.Batching,
	}, tel, complexity)
	if err != nil {
		return err
	}

	logger.Info("dataset loaded", "samples", ds.N, "features", ds.NFeatures, "weighted", ds.Weighted(), "precision", cfg.Precision)
	pool.RefreshBaseline(ctx)

	if len(cfg.Population) > 0 {
		members := make([]*worker.Member[L], len(cfg.Population))
		for i, tree := range cfg.Population {
			members[i] = worker.NewMember[L](tree)
		}
		summary, err := pool.Score(ctx, members)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(worker.NewScoreResponse(members, summary)); err != nil {
			return err
		}
	}

	if env.ListenAddr == "" {
		return nil
	}
	return serve(ctx, env, pool, tel)
}

func serve[L core.Float](ctx context.Context, env *worker.Config, pool *worker.Pool[L], tel *telemetry.Telemetry) error {
	mux := http.NewServeMux()
	limits := limiter.NewRateLimiter(limiter.Config{RequestsPerMinute: env.ScoreRPM, Burst: env.ScoreBurst})
	mux.Handle("/score", limits.Middleware(worker.NewIngestor(pool)))
	mux.Handle("/health", http.HandlerFunc(tel.HealthHandler))
	mux.Handle("/metrics", tel.MetricsHandler())

	srv := &http.Server{Addr: env.ListenAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		tel.Logger().Info("scorer listening", "addr", env.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
