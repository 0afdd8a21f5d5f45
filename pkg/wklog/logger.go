package wklog

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger      // info日志
var errorLogger *zap.Logger // 错误日志
var atom = zap.NewAtomicLevel()

var opts *Options

// Configure 初始化日志，标准输出留给生成的命令，诊断信息只写到标准错误和日志文件
func Configure(op *Options) {
	atom.SetLevel(op.Level)
	opts = op

	loggerOpts := make([]zap.Option, 0)
	if opts.LineNum {
		loggerOpts = append(loggerOpts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	writers := make([]zapcore.WriteSyncer, 0)
	if !opts.NoStderr {
		writers = append(writers, zapcore.Lock(os.Stderr))
	}

	// ====================== info ==========================
	infoWriters := append([]zapcore.WriteSyncer{}, writers...)
	if opts.LogDir != "" {
		infoWriters = append(infoWriters, newFileWriter("info.log"))
	}
	logger = zap.New(newCore(infoWriters, atom), loggerOpts...)

	// ====================== error ==========================
	errorWriters := append([]zapcore.WriteSyncer{}, writers...)
	if opts.LogDir != "" {
		errorWriters = append(errorWriters, newFileWriter("error.log"))
	}
	errorLogger = zap.New(newCore(errorWriters, zap.ErrorLevel), loggerOpts...)
}

func newFileWriter(name string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path.Join(opts.LogDir, name),
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     7, // days
	})
}

func newCore(writers []zapcore.WriteSyncer, enab zapcore.LevelEnabler) zapcore.Core {
	if len(writers) == 0 {
		return zapcore.NewNopCore()
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(newEncoderConfig()),
		zapcore.NewMultiWriteSyncer(writers...),
		enab,
	)
}

func Level() zapcore.Level {
	if opts == nil {
		return atom.Level()
	}
	return opts.Level
}

func newEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "linenum",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder, // 小写编码器
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02T15:04:05.000-07:00"))
		},
		EncodeDuration: func(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendInt64(int64(d) / 1000000)
		},
	}
}

// Info Info
func Info(msg string, fields ...zap.Field) {

	if logger == nil {
		Configure(NewOptions())
	}
	logger.Info(msg, fields...)

}

// Debug Debug
func Debug(msg string, fields ...zap.Field) {

	if logger == nil {
		Configure(NewOptions())
	}
	logger.Debug(msg, fields...)

}

// Error Error
func Error(msg string, fields ...zap.Field) {

	if errorLogger == nil {
		Configure(NewOptions())
	}
	errorLogger.Error(msg, fields...)

}

// Warn Warn
func Warn(msg string, fields ...zap.Field) {

	if logger == nil {
		Configure(NewOptions())
	}
	logger.Warn(msg, fields...)
}

func Sync() error {
	if errorLogger != nil {
		if err := errorLogger.Sync(); err != nil && !isIgnorableSyncErr(err) {
			fmt.Fprintln(os.Stderr, "errorLogger sync error", err)
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil && !isIgnorableSyncErr(err) {
			fmt.Fprintln(os.Stderr, "logger sync error", err)
		}
	}
	return nil
}

// stderr是终端时fsync会返回EINVAL或ENOTTY
func isIgnorableSyncErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

// Log Log
type Log interface {
	Info(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// WKLog TLog
type WKLog struct {
	prefix string // 日志前缀
}

// NewWKLog NewWKLog
func NewWKLog(prefix string) *WKLog {

	return &WKLog{prefix: prefix}
}

func (t *WKLog) withPrefix(msg string) string {
	var b strings.Builder
	b.WriteString("【")
	b.WriteString(t.prefix)
	b.WriteString("】")
	b.WriteString(msg)
	return b.String()
}

// Info Info
func (t *WKLog) Info(msg string, fields ...zap.Field) {
	Info(t.withPrefix(msg), fields...)
}

// Debug Debug
func (t *WKLog) Debug(msg string, fields ...zap.Field) {
	Debug(t.withPrefix(msg), fields...)
}

// Error Error
func (t *WKLog) Error(msg string, fields ...zap.Field) {
	Error(t.withPrefix(msg), fields...)
}

// Warn Warn
func (t *WKLog) Warn(msg string, fields ...zap.Field) {
	Warn(t.withPrefix(msg), fields...)
}
