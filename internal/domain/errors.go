package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 服务边界上的错误类型，由 API 层映射为 HTTP 状态码
type ErrorKind string

const (
	KindNotFound             ErrorKind = "NotFound"
	KindInvalidArgument      ErrorKind = "InvalidArgument"
	KindCapacityExceeded     ErrorKind = "CapacityExceeded"
	KindResourceExhausted    ErrorKind = "ResourceExhausted"
	KindConflict             ErrorKind = "Conflict"
	KindDataConsistencyFault ErrorKind = "DataConsistencyFault"
)

// Error 带类型的业务错误
// Message 可以返回给调用方；Err 只用于日志
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按 Kind 匹配，errors.Is(err, domain.ErrNotFound) 对任意 NotFound 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Err == nil
}

var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrCapacityExceeded     = &Error{Kind: KindCapacityExceeded}
	ErrResourceExhausted    = &Error{Kind: KindResourceExhausted}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrDataConsistencyFault = &Error{Kind: KindDataConsistencyFault}
)

// NotFound 构造 NotFound 错误，如 NotFound("GetTeam", "team", id)
func NotFound(op, entity, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// InvalidArgument 构造参数错误
func InvalidArgument(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap 以指定 Kind 包装底层错误
func Wrap(kind ErrorKind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf 返回错误的 Kind；非 *Error 返回空字符串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PublicMessage 返回可以暴露给调用方的信息（不含底层错误）
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal error"
}
