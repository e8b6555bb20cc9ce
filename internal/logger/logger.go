package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options selects level and encoding for the process logger.
type Options struct {
	Level        string
	IsProduction bool
	JSON         bool // force JSON output even on a terminal
}

// Logger wraps a zap logger together with its runtime-adjustable level.
type Logger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// New builds the process logger. Level "none" yields a no-op logger.
func New(opts Options) (Logger, error) {
	if opts.Level == "none" {
		return NewNop(), nil
	}
	if opts.Level == "" {
		opts.Level = "info"
	}
	level, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		return Logger{}, err
	}

	var ecfg zapcore.EncoderConfig
	if opts.IsProduction {
		ecfg = zap.NewProductionEncoderConfig()
	} else {
		ecfg = zap.NewDevelopmentEncoderConfig()
	}
	ecfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := newCore(ecfg, level, opts.JSON || !isTTY())
	return Logger{logger: zap.New(core, zap.AddCaller()), level: level}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return Logger{logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func newCore(ecfg zapcore.EncoderConfig, level zap.AtomicLevel, json bool) zapcore.Core {
	if json {
		return zapcore.NewCore(zapcore.NewJSONEncoder(ecfg), zapcore.AddSync(os.Stdout), level)
	}
	// Pretty output for humans at a terminal.
	ecfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(ecfg), zapcore.AddSync(os.Stdout), level)
}

// Get returns the usable zap logger.
func (l Logger) Get() *zap.Logger {
	return l.logger
}

// SetLevelStr changes the log level at runtime.
func (l Logger) SetLevelStr(input string) error {
	level, err := zap.ParseAtomicLevel(input)
	if err != nil {
		return err
	}
	l.level.SetLevel(level.Level())
	return nil
}

// Enabled reports whether entries at lvl are currently written.
func (l Logger) Enabled(lvl zapcore.Level) bool {
	return l.level.Enabled(lvl)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
