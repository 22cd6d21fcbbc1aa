package provider

import (
	"errors"
	"fmt"
)

// ErrNotReady 供应商状态接口返回 404，任务还没被索引，稍后再查
var ErrNotReady = errors.New("job not ready")

// Error 供应商非 2xx 响应，状态码原样透传给调用方
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(statusCode int, format string, args ...interface{}) *Error {
	return &Error{
		StatusCode: statusCode,
		Message:    fmt.Sprintf(format, args...),
	}
}

// AsError 从错误链中取出供应商错误
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
