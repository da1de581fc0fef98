package httpapi

import "festflow/internal/domain"

// Result 统一响应体，成功 code=2000；失败 code=-1 且 kind 给出错误类型
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1

	kindInternal = "Internal"
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

// Fail 由错误构造失败响应；未分类错误统一为 Internal
func Fail(err error) Result[any] {
	kind := string(domain.KindOf(err))
	if kind == "" {
		kind = kindInternal
	}
	return Result[any]{Code: ResultError, Type: "error", Kind: kind, Message: domain.PublicMessage(err)}
}
