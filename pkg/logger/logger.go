// Package logger provides a shared structured logging setup.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is a re-export of zerolog's level type.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config controls the process-wide logger.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns the logger configuration used when Init is never called explicitly.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init sets up the process-wide logger. Safe to call more than once; only the first call applies.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the shared logger, initializing it with defaults if Init was never called.
func Get() *zerolog.Logger {
	// Init is guarded by once, so this is a no-op after the first call.
	Init(DefaultConfig())
	return &logger
}

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyOrgID     ctxKey = "org_id"
)

// WithRequestID attaches a request id to a context for later log enrichment.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// WithOrgID attaches an org id to a context for later log enrichment.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, ctxKeyOrgID, orgID)
}

// WithContext builds a logger enriched with any request/org id carried on ctx.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value(ctxKeyRequestID).(string); ok && reqID != "" {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if orgID, ok := ctx.Value(ctxKeyOrgID).(string); ok && orgID != "" {
		l = l.With().Str("org_id", orgID).Logger()
	}

	return &l
}

func Debug() *zerolog.Event { return Get().Debug() }
func Info() *zerolog.Event  { return Get().Info() }
func Warn() *zerolog.Event  { return Get().Warn() }
func Error() *zerolog.Event { return Get().Error() }
func Fatal() *zerolog.Event { return Get().Fatal() }

func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// SolverLogger is a component-scoped logger for the routing solver's lifecycle events.
type SolverLogger struct {
	base *zerolog.Logger
}

// NewSolverLogger returns a logger tagged with component=solver.
func NewSolverLogger() *SolverLogger {
	l := Get().With().Str("component", "solver").Logger()
	return &SolverLogger{base: &l}
}

// StartSolve records the beginning of a solve run.
func (l *SolverLogger) StartSolve(date string, visitCount, visitorCount int) {
	l.base.Info().
		Str("date", date).
		Int("visits", visitCount).
		Int("visitors", visitorCount).
		Msg("solve started")
}

// VisitUnassigned records a visit the constructor could not place.
func (l *SolverLogger) VisitUnassigned(visitID string, reason string) {
	l.base.Warn().
		Str("visit_id", visitID).
		Str("reason", reason).
		Msg("visit left unassigned")
}

// ConstructionComplete records the outcome of the greedy insertion phase.
func (l *SolverLogger) ConstructionComplete(assigned, unassigned int, cost float64) {
	l.base.Info().
		Int("assigned", assigned).
		Int("unassigned", unassigned).
		Float64("cost", cost).
		Msg("construction complete")
}

// LocalSearchPass records one pass of the improvement loop.
func (l *SolverLogger) LocalSearchPass(pass int, improved bool, cost float64) {
	l.base.Debug().
		Int("pass", pass).
		Bool("improved", improved).
		Float64("cost", cost).
		Msg("local search pass")
}

// SolveComplete records the end of a solve run.
func (l *SolverLogger) SolveComplete(duration time.Duration, cost float64, unassigned int) {
	l.base.Info().
		Dur("duration", duration).
		Float64("cost", cost).
		Int("unassigned", unassigned).
		Msg("solve complete")
}
