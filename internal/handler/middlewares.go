package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

const tokenCookieName = "__auth_directory_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// originatingURL 还原客户端请求的完整地址，作为 Referer 传给认证服务
func originatingURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 优先从 Authorization 中获取 token，其次是 cookie
		token := r.Header.Get("Authorization")
		if token == "" {
			cookie, err := r.Cookie(tokenCookieName)
			if err != nil {
				switch {
				case errors.Is(err, http.ErrNoCookie):
					h.errorResponse(w, r, "用户未登录")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}
			token = cookie.Value
		}

		// 由认证服务验证 token，本服务不解析 token 的内容
		myInfo, err := h.directory.FetchCurrentUser(r.Context(), token, originatingURL(r))
		if err != nil {
			h.directoryError(w, r, err)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, TokenCtxKey, token)
		ctx = context.WithValue(ctx, MyInfoCtx, myInfo)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredAuthLevel(min domain.AuthLevel) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
			if !myInfo.AuthLevel.AtLeast(min) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
