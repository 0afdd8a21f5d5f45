package errors

import "errors"

var (
	// ErrUsage 参数个数不足
	ErrUsage = errors.New("insufficient arguments")
	// ErrArgumentParse 参数格式错误，例如未知的flag或-n不是数字
	ErrArgumentParse = errors.New("argument parse error")
	// ErrInvalidConfig 配置校验失败
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownFormat 不支持的输出格式
	ErrUnknownFormat = errors.New("unknown output format")
)
