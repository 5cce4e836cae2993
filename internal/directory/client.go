package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

const maxResponseBytes = 10 << 20

// Client 是认证服务用户目录接口的客户端。
// 只保存构造时确定的配置，可以被多个 goroutine 同时使用。
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	translator ut.Translator
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient 指定底层使用的 http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout 为每次请求设置超时，默认不设超时
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("认证服务地址无效: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("认证服务地址无效: %q", baseURL)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		// 复制一份，避免修改调用方传进来的 client
		c := *o.httpClient
		httpClient = &c
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		validate:   validate,
		translator: trans,
	}, nil
}

// FetchCurrentUser 获取 token 对应的用户，originatingURL 会作为 Referer 传给认证服务
func (c *Client) FetchCurrentUser(ctx context.Context, token string, originatingURL string) (*domain.User, error) {
	var res currentUserResponse
	if err := c.do(ctx, "获取当前用户", http.MethodGet, "/api/v1/users/me", token, originatingURL, nil, &res); err != nil {
		return nil, err
	}

	return res.User.toDomain()
}

// FetchAllUsers 获取所有用户。只要有一条记录的权限等级无法识别，整个调用就失败
func (c *Client) FetchAllUsers(ctx context.Context, token string) ([]*domain.User, error) {
	var res usersResponse
	if err := c.do(ctx, "获取用户列表", http.MethodGet, "/api/v1/users", token, "", nil, &res); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(res.Users))
	for i := range res.Users {
		user, err := res.Users[i].toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (c *Client) UpdateCurrentUserName(ctx context.Context, name string, token string) error {
	return c.do(ctx, "更新用户名", http.MethodPut, "/api/v1/users/me", token, "", updateNameRequest{Name: name}, nil)
}

func (c *Client) FetchTeams(ctx context.Context, token string) ([]*domain.Team, error) {
	var res teamsResponse
	if err := c.do(ctx, "获取队伍列表", http.MethodGet, "/api/v1/teams/", token, "", nil, &res); err != nil {
		return nil, err
	}

	teams := make([]*domain.Team, 0, len(res.Teams))
	for i := range res.Teams {
		team, err := res.Teams[i].toDomain()
		if err != nil {
			return nil, malformed("获取队伍列表", err)
		}
		teams = append(teams, team)
	}

	return teams, nil
}

// FetchTeam 认证服务没有按 id 查询队伍的接口，只能拉取全部队伍后逐个比对。
// 需要反复查询的调用方应当自行缓存 FetchTeams 的结果。
func (c *Client) FetchTeam(ctx context.Context, token string, teamCode string) (*domain.Team, error) {
	teams, err := c.FetchTeams(ctx, token)
	if err != nil {
		return nil, err
	}

	return FindTeam(teams, teamCode)
}

// FindTeam 在队伍列表中查找 id 为 teamCode 的队伍
func FindTeam(teams []*domain.Team, teamCode string) (*domain.Team, error) {
	for _, team := range teams {
		if team.ID == teamCode {
			return team, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamCode)
}

func (c *Client) do(ctx context.Context, op string, method string, path string, token string, referer string, reqBody any, resBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// token 原样作为 Authorization 传递，不添加 Bearer 前缀
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unreachable(op, err)
	}

	if rejected := rejectedFrom(data, resp.StatusCode); rejected != nil {
		return rejected
	}

	if resBody == nil {
		return nil
	}

	if err := json.Unmarshal(data, resBody); err != nil {
		return malformed(op, err)
	}
	if err := c.validate.Struct(resBody); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return malformed(op, errors.New(validationErrors[0].Translate(c.translator)))
		}
		return malformed(op, err)
	}

	return nil
}
