package wklog

import "go.uber.org/zap/zapcore"

type Options struct {
	Level    zapcore.Level
	LogDir   string // 为空时不写日志文件
	LineNum  bool
	NoStderr bool // 不输出到标准错误
}

func NewOptions() *Options {

	return &Options{
		Level: zapcore.WarnLevel,
	}
}
