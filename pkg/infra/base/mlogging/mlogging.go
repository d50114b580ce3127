// 指示: miu200521358
// Package mlogging はlogrusによるILogger実装を提供する。
package mlogging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 20
	defaultMaxBackups = 3
	defaultMaxAgeDays = 14
)

// Logger はlogrusを包んだロガーを表す。
type Logger struct {
	base  *logrus.Logger
	level logging.LogLevel
}

// NewLogger は出力先を指定してロガーを生成する。nilの場合は標準エラーへ出力する。
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger := &Logger{base: base}
	logger.SetLevel(logging.LOG_LEVEL_INFO)
	return logger
}

// FileOptions はローテーション付きファイル出力の設定を表す。
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    io.Writer
}

// NewFileLogger はローテーション付きファイルへ出力するロガーを生成する。
// 戻り値の関数でファイルを閉じる。
func NewFileLogger(opts FileOptions) (*Logger, func() error, error) {
	if opts.Path == "" {
		return nil, nil, fmt.Errorf("ログファイルパスが未指定です")
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("ログディレクトリの作成に失敗しました: %w", err)
		}
	}
	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    valueOrDefault(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: valueOrDefault(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     valueOrDefault(opts.MaxAgeDays, defaultMaxAgeDays),
	}
	var out io.Writer = writer
	if opts.Console != nil {
		out = io.MultiWriter(opts.Console, writer)
	}
	return NewLogger(out), writer.Close, nil
}

// valueOrDefault は0以下の値を既定値へ置き換える。
func valueOrDefault(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.level = level
	switch level {
	case logging.LOG_LEVEL_DEBUG:
		l.base.SetLevel(logrus.DebugLevel)
	case logging.LOG_LEVEL_WARN:
		l.base.SetLevel(logrus.WarnLevel)
	case logging.LOG_LEVEL_ERROR:
		l.base.SetLevel(logrus.ErrorLevel)
	default:
		l.base.SetLevel(logrus.InfoLevel)
	}
}

// Level は出力レベルを返す。
func (l *Logger) Level() logging.LogLevel {
	return l.level
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.base.Debugf(format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.base.Infof(format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.base.Warnf(format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.base.Errorf(format, params...)
}
