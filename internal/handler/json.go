package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/directory"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) badGateway(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("认证服务调用失败", "method", r.Method, "path", r.URL.Path, "error", err)
	h.writeJSON(w, r, http.StatusBadGateway, Response{
		Success: false,
		Message: "认证服务暂时不可用",
		Data:    nil,
	})
}

// directoryError 把认证服务客户端返回的错误转换成响应
func (h *Handler) directoryError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *directory.RejectedError
	switch {
	case errors.As(err, &rejected):
		status := http.StatusOK
		if rejected.Status == http.StatusUnauthorized || rejected.Status == http.StatusForbidden {
			status = rejected.Status
		}
		h.writeJSON(w, r, status, Response{
			Success: false,
			Message: rejected.Message,
			Data:    nil,
		})
	case errors.Is(err, directory.ErrTeamNotFound):
		h.errorResponse(w, r, "队伍不存在")
	default:
		// 连接失败、响应无法解析、权限等级未知都属于上游问题
		h.badGateway(w, r, err)
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
