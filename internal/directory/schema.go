package directory

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

// 认证服务返回的原始结构，字段名与对方保持一致

type userRecord struct {
	ID            string  `json:"_id" validate:"required"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	EmailVerified bool    `json:"email_verified"`
	AuthLevel     *string `json:"auth_level" validate:"required"`
	Team          string  `json:"team"`
}

type teamRecord struct {
	ID      string `json:"_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Creator string `json:"creator"`
	// table_no 可能以 4 或 4.0 的形式出现，统一按数字读取后再转换
	TableNo json.Number `json:"table_no"`
}

type currentUserResponse struct {
	User *userRecord `json:"user" validate:"required"`
}

type usersResponse struct {
	Users []userRecord `json:"users" validate:"required,dive"`
}

type teamsResponse struct {
	Teams []teamRecord `json:"teams" validate:"required,dive"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

func (rec *userRecord) toDomain() (*domain.User, error) {
	level, err := domain.ParseAuthLevel(*rec.AuthLevel)
	if err != nil {
		return nil, fmt.Errorf("用户 %s: %w", rec.ID, err)
	}

	return &domain.User{
		AuthID:        rec.ID,
		Name:          rec.Name,
		Email:         rec.Email,
		EmailVerified: rec.EmailVerified,
		AuthLevel:     level,
		Team:          rec.Team,
	}, nil
}

func (rec *teamRecord) toDomain() (*domain.Team, error) {
	tableNo, err := parseTableNo(rec.TableNo)
	if err != nil {
		return nil, fmt.Errorf("队伍 %s: %w", rec.ID, err)
	}

	return &domain.Team{
		ID:      rec.ID,
		Name:    rec.Name,
		Creator: rec.Creator,
		TableNo: tableNo,
	}, nil
}

// parseTableNo 接受整数值的数字（包括 4.0 这种写法），null 或缺省表示还没有分配桌号
func parseTableNo(n json.Number) (*int, error) {
	if n == "" {
		return nil, nil
	}

	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("无效的桌号 %q: %w", n.String(), err)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil, fmt.Errorf("桌号 %s 不是整数", n.String())
	}

	tableNo := int(f)
	return &tableNo, nil
}

// rejection 检查响应体中的 error 和 status 字段。
// 认证服务即使在 HTTP 层返回成功，也可能在响应体里表示失败，所以这里只看响应体本身。
func rejection(body []byte) (message string, status int) {
	var envelope struct {
		Error  json.RawMessage `json:"error"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", 0
	}

	message = errorMessage(envelope.Error)

	var code float64
	if err := json.Unmarshal(envelope.Status, &code); err == nil {
		status = int(code)
	}

	return message, status
}

func errorMessage(raw json.RawMessage) string {
	switch string(raw) {
	case "", "null", "false", `""`, "0":
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func rejectedFrom(body []byte, transportStatus int) *RejectedError {
	message, status := rejection(body)
	if message != "" && status >= http.StatusBadRequest {
		return &RejectedError{Status: status, Message: message}
	}

	if transportStatus >= http.StatusBadRequest {
		if message == "" {
			message = http.StatusText(transportStatus)
		}
		if message == "" {
			message = fmt.Sprintf("认证服务返回状态码 %d", transportStatus)
		}
		return &RejectedError{Status: transportStatus, Message: message}
	}

	return nil
}
