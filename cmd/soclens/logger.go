package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger. The TUI owns the terminal, so unless
// toStderr is set logs go to path, falling back to stderr when the file
// cannot be opened.
func newLogger(level, path string, toStderr bool) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	out := zapcore.Lock(os.Stderr)
	cleanup := func() {}
	if !toStderr && path != "" {
		if f, err := openLogFile(path); err == nil {
			out = zapcore.AddSync(f)
			cleanup = func() { _ = f.Close() }
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if toStderr {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	logger := zap.New(zapcore.NewCore(enc, out, lvl), zap.AddCaller())
	return logger, func() {
		_ = logger.Sync()
		cleanup()
	}, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}
