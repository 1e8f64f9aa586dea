// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"sqlagent/cli/internal/xdg"
)

// LogFileName is the diagnostic log file inside the XDG state directory.
const LogFileName = "sqlagent.log"

// Setup returns the diagnostic logger. When enabled is false it returns a
// no-op logger and an empty path; otherwise it logs JSON at level to a
// rotating file and returns that file's path.
func Setup(enabled bool, level string) (*zap.Logger, string, error) {
	if !enabled {
		return zap.NewNop(), "", nil
	}
	dir, err := xdg.StateDir()
	if err != nil {
		return zap.NewNop(), "", err
	}
	p := filepath.Join(dir, LogFileName)
	sink := &lumberjack.Logger{
		Filename:   p,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	return New(zapcore.AddSync(sink), level), p, nil
}

// New builds a JSON logger writing to ws at level ("debug", "info", "warn", "error").
func New(ws zapcore.WriteSyncer, level string) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, ParseLevel(level))
	return zap.New(core).With(zap.String("app", xdg.AppName))
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Secret returns a zap field whose value is masked.
func Secret(key, value string) zap.Field {
	return zap.String(key, Mask(value))
}
