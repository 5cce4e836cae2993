package handler

import (
	"net/http"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	token := r.Context().Value(TokenCtxKey).(string)

	users, err := h.directory.FetchAllUsers(r.Context(), token)
	if err != nil {
		h.directoryError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}
