package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnreachable 表示请求没有拿到任何响应（DNS、连接、超时等），属于可重试的错误
	ErrUpstreamUnreachable = errors.New("无法连接到认证服务")
	// ErrUpstreamRejected 表示认证服务返回了错误，调用方不应重试
	ErrUpstreamRejected = errors.New("认证服务拒绝了请求")
	// ErrMalformedResponse 表示响应体无法解析或者不符合约定的结构
	ErrMalformedResponse = errors.New("认证服务返回了无法识别的响应")
	ErrTeamNotFound      = errors.New("队伍不存在")
)

// RejectedError 携带认证服务在响应体中给出的错误信息
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

func unreachable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnreachable, err)
}

func malformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
}
