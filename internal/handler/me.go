package handler

import (
	"net/http"
	"strings"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) UpdateMyName(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	token := r.Context().Value(TokenCtxKey).(string)

	var req struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.directory.UpdateCurrentUserName(r.Context(), req.Name, token); err != nil {
		h.directoryError(w, r, err)
		return
	}

	// 认证服务不返回更新后的用户，这里返回一份修改过名字的副本
	updated := *myInfo
	updated.Name = req.Name

	h.successResponse(w, r, "更新用户名成功", &updated)
}

func (h *Handler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	token := r.Context().Value(TokenCtxKey).(string)

	if !myInfo.HasTeam() {
		h.errorResponse(w, r, "您还没有加入队伍")
		return
	}

	team, err := h.findTeam(r.Context(), token, myInfo, myInfo.Team)
	if err != nil {
		h.directoryError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取队伍信息成功", team)
}
