package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every record written by the root logger
const Service = "stellarflux"

// Logger is the backend's root logger. Subsystems log through named
// children obtained with Component.
type Logger struct {
	*zap.Logger
}

// Options selects the level, encoding and sinks
type Options struct {
	Level       string // debug, info, warn or error
	Development bool   // colored console output with stack traces on warn
	Outputs     []string
}

// New builds a logger from opts. Outputs default to stdout.
func New(opts Options) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, err
	}

	outputs := opts.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = outputs
	cfg.InitialFields = map[string]interface{}{"service": Service}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewFromSettings builds a logger from the configured level and mode. An
// unknown level falls back to info so a bad LOG_LEVEL never blocks startup.
func NewFromSettings(level string, development bool) *Logger {
	if level == "" {
		level = "info"
	}

	logger, err := New(Options{Level: level, Development: development})
	if err == nil {
		return logger
	}

	logger, err = New(Options{Level: "info", Development: development})
	if err != nil {
		return NewNop()
	}
	logger.Warn("Unknown log level, using info", zap.String("level", level))
	return logger
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Component returns a child logger named after the subsystem (auth, blob,
// desktop, http, ws)
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}
