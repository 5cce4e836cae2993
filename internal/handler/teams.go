package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/directory"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

func (h *Handler) cacheContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// listTeams 优先读取缓存。缓存出错时只记录日志，直接回源到认证服务。
// 调用方必须已经确认用户至少是志愿者，缓存里的数据对所有志愿者可见
func (h *Handler) listTeams(ctx context.Context, token string) ([]*domain.Team, error) {
	if h.teamCache != nil {
		cacheCtx, cancel := h.cacheContext(ctx)
		teams, ok, err := h.teamCache.GetTeams(cacheCtx)
		cancel()
		if err != nil {
			slog.Warn("读取队伍缓存失败", "error", err)
		}
		if ok {
			return teams, nil
		}
	}

	teams, err := h.directory.FetchTeams(ctx, token)
	if err != nil {
		return nil, err
	}

	if h.teamCache != nil {
		cacheCtx, cancel := h.cacheContext(ctx)
		defer cancel()
		if err := h.teamCache.SetTeams(cacheCtx, teams); err != nil {
			slog.Warn("写入队伍缓存失败", "error", err)
		}
	}

	return teams, nil
}

// findTeam 查询单个队伍。缓存是全局共享的，只有志愿者及以上的用户才能读写它，
// 其他用户（例如通过 /my-info/team 查询自己队伍的参赛者）直接回源到认证服务
func (h *Handler) findTeam(ctx context.Context, token string, caller *domain.User, teamCode string) (*domain.Team, error) {
	if h.teamCache == nil || !caller.AuthLevel.AtLeast(domain.AuthLevelVolunteer) {
		return h.directory.FetchTeam(ctx, token, teamCode)
	}

	teams, err := h.listTeams(ctx, token)
	if err != nil {
		return nil, err
	}

	return directory.FindTeam(teams, teamCode)
}

func (h *Handler) GetAllTeams(w http.ResponseWriter, r *http.Request) {
	token := r.Context().Value(TokenCtxKey).(string)

	teams, err := h.listTeams(r.Context(), token)
	if err != nil {
		h.directoryError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取队伍列表成功", teams)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	token := r.Context().Value(TokenCtxKey).(string)
	code := chi.URLParam(r, "code")

	team, err := h.findTeam(r.Context(), token, myInfo, code)
	if err != nil {
		h.directoryError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取队伍信息成功", team)
}

func (h *Handler) InvalidateTeamCache(w http.ResponseWriter, r *http.Request) {
	if h.teamCache == nil {
		h.successResponse(w, r, "未启用队伍缓存", nil)
		return
	}

	ctx, cancel := h.cacheContext(r.Context())
	defer cancel()

	if err := h.teamCache.Invalidate(ctx); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已清除队伍缓存", nil)
}
