// Package logging builds the zap loggers shared by the pipeline and CLI.
package logging

import (
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileConfig enables a rotating log file next to the console output.
type FileConfig struct {
	Path         string
	RotationTime time.Duration
	MaxAge       time.Duration
}

// New returns a console logger at level. Development mode uses a
// human-friendly encoder and enables caller annotations.
func New(level string, development bool) (*zap.Logger, error) {
	return NewWithFile(level, development, FileConfig{})
}

// NewWithFile is New plus an optional rotating file sink. The file is
// named fc.Path with an hourly timestamp suffix.
func NewWithFile(level string, development bool, fc FileConfig) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)
	if development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	syncer := zapcore.AddSync(os.Stderr)
	if fc.Path != "" {
		w, err := rotatingWriter(fc)
		if err != nil {
			return nil, err
		}
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(w))
	}

	var opts []zap.Option
	if development {
		opts = append(opts, zap.AddCaller(), zap.Development())
	}
	return zap.New(zapcore.NewCore(encoder, syncer, lvl), opts...), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }

// ParseLevel maps debug, info, warn or error (any case) to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	}
	return zap.InfoLevel, errors.Errorf("logging: unknown level %q", level)
}

func rotatingWriter(fc FileConfig) (*rotatelogs.RotateLogs, error) {
	if fc.RotationTime <= 0 {
		fc.RotationTime = 24 * time.Hour
	}
	if fc.MaxAge <= 0 {
		fc.MaxAge = 7 * 24 * time.Hour
	}
	w, err := rotatelogs.New(
		fc.Path+".%Y%m%d%H",
		rotatelogs.WithRotationTime(fc.RotationTime),
		rotatelogs.WithMaxAge(fc.MaxAge),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "logging: open %s", fc.Path)
	}
	return w, nil
}
