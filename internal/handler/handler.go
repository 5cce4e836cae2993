package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/config"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

// Directory 是 handler 依赖的认证服务接口，由 directory.Client 实现
type Directory interface {
	FetchCurrentUser(ctx context.Context, token string, originatingURL string) (*domain.User, error)
	FetchAllUsers(ctx context.Context, token string) ([]*domain.User, error)
	UpdateCurrentUserName(ctx context.Context, name string, token string) error
	FetchTeams(ctx context.Context, token string) ([]*domain.Team, error)
	FetchTeam(ctx context.Context, token string, teamCode string) (*domain.Team, error)
}

// TeamCache 由 cache.TeamCache 实现，为 nil 时不使用缓存
type TeamCache interface {
	GetTeams(ctx context.Context) ([]*domain.Team, bool, error)
	SetTeams(ctx context.Context, teams []*domain.Team) error
	Invalidate(ctx context.Context) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	directory  Directory
	teamCache  TeamCache
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, dir Directory, teamCache TeamCache) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		directory:  dir,
		teamCache:  teamCache,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 以下 API 都需要先通过认证服务确认身份
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/name", h.UpdateMyName)
			r.Get("/team", h.GetMyTeam)
		})

		r.With(h.RequiredAuthLevel(domain.AuthLevelVolunteer)).Get("/users", h.GetAllUsers)

		r.Route("/teams", func(r chi.Router) {
			r.Use(h.RequiredAuthLevel(domain.AuthLevelVolunteer))
			r.Get("/", h.GetAllTeams)
			r.Get("/{code}", h.GetTeam)
		})

		r.With(h.RequiredAuthLevel(domain.AuthLevelOrganiser)).Delete("/team-cache", h.InvalidateTeamCache)
	})
}
