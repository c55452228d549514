package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps both slog and zap loggers
type Logger struct {
	slog *slog.Logger
	zap  *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	AddCaller bool
	AddStack  bool
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	if config.Format == "" {
		config.Format = "json"
	}
	if config.Output == "" {
		config.Output = "stdout"
	}

	var out io.Writer = os.Stdout
	if config.Output == "stderr" {
		out = os.Stderr
	}
	slogLogger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseSlogLevel(config.Level),
	}))

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = config.Format
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		slog: slogLogger,
		zap:  zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
		zap:  zap.NewNop(),
	}
}

// parseSlogLevel parses slog level from string
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithRunID tags every entry with the scoring run.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		slog: l.slog.With("run_id", runID),
		zap:  l.zap.With(zap.String("run_id", runID)),
	}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	slogAttrs := make([]any, 0, len(fields)*2)
	zapFields := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		slogAttrs = append(slogAttrs, key, value)
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return &Logger{
		slog: l.slog.With(slogAttrs...),
		zap:  l.zap.With(zapFields...),
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slog.Debug(msg, args...)
	l.zap.Debug(msg, convertToZapFields(args)...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.slog.Info(msg, args...)
	l.zap.Info(msg, convertToZapFields(args)...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slog.Warn(msg, args...)
	l.zap.Warn(msg, convertToZapFields(args)...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
	l.zap.Error(msg, convertToZapFields(args)...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
	l.zap.Fatal(msg, convertToZapFields(args)...)
}

// convertToZapFields converts interface{} args to zap.Field
func convertToZapFields(args []interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}

// LogBaseline logs a baseline refresh. A disabled baseline is a warning:
// scores fall back to the normalization floor.
func (l *Logger) LogBaseline(ctx context.Context, baseline float64, enabled bool, samples int) {
	logger := l.WithFields(map[string]interface{}{
		"baseline_loss": baseline,
		"use_baseline":  enabled,
		"samples":       samples,
	})
	if enabled {
		logger.Info("Baseline updated")
	} else {
		logger.Warn("Baseline not finite, normalization disabled")
	}
}

// LogPopulation logs a completed population scoring pass.
func (l *Logger) LogPopulation(ctx context.Context, size, nonFinite int, bestScore float64, duration time.Duration) {
	fields := map[string]interface{}{
		"population":  size,
		"non_finite":  nonFinite,
		"best_score":  bestScore,
		"duration_ms": float64(duration.Nanoseconds()) / 1e6,
	}

	l.WithFields(fields).Info("Population scored")
}

// LogCandidate logs a single candidate's score at debug level.
func (l *Logger) LogCandidate(ctx context.Context, expression string, complexity int, score, loss float64) {
	l.Debug("Candidate scored",
		"expression", expression,
		"complexity", complexity,
		"score", score,
		"loss", loss,
	)
}

// Sync syncs the logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetSlog returns the slog logger
func (l *Logger) GetSlog() *slog.Logger {
	return l.slog
}

// GetZap returns the zap logger
func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
