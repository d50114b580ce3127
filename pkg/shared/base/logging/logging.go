// 指示: miu200521358
// Package logging はアプリケーション全体で共有するロガー契約を提供する。
package logging

import "sync"

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグログを表す。
	LOG_LEVEL_DEBUG LogLevel = 10
	// LOG_LEVEL_INFO は情報ログを表す。
	LOG_LEVEL_INFO LogLevel = 20
	// LOG_LEVEL_WARN は警告ログを表す。
	LOG_LEVEL_WARN LogLevel = 30
	// LOG_LEVEL_ERROR はエラーログを表す。
	LOG_LEVEL_ERROR LogLevel = 40
)

// String はレベル名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "debug"
	case LOG_LEVEL_INFO:
		return "info"
	case LOG_LEVEL_WARN:
		return "warn"
	case LOG_LEVEL_ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLogLevel は設定値からレベルを解決する。未知の値はINFOとする。
func ParseLogLevel(value string) LogLevel {
	switch value {
	case "debug", "DEBUG":
		return LOG_LEVEL_DEBUG
	case "warn", "WARN", "warning":
		return LOG_LEVEL_WARN
	case "error", "ERROR":
		return LOG_LEVEL_ERROR
	default:
		return LOG_LEVEL_INFO
	}
}

// ILogger はprintf形式のロガー契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	Level() LogLevel
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger
)

// DefaultLogger は既定ロガーを返す。未設定時はnil。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
