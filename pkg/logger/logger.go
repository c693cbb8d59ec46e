// Package logger holds the process-wide slog logger. Packages take a
// component logger from For and never build handlers themselves.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var globalLogger *slog.Logger

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel は大文字小文字を無視してログレベル名を解釈する
func ParseLevel(level string) (slog.Level, error) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
	return l, nil
}

// InitLogger は標準エラー出力へのロガーを初期化する。
// 標準出力はヘルプなどの利用者向け出力に使う。
func InitLogger(level string) error {
	return InitLoggerTo(os.Stderr, level)
}

// InitLoggerTo installs a text handler writing to w as both the package
// logger and slog's default.
func InitLoggerTo(w io.Writer, level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	globalLogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(globalLogger)
	return nil
}

// GetLogger グローバルロガーを取得（未初期化なら slog.Default）
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// For returns a logger whose records carry component=name.
func For(component string) *slog.Logger {
	return GetLogger().With("component", component)
}
