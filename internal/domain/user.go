package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidAuthLevel = errors.New("未知的权限等级")

// AuthLevel 的取值必须按权限从低到高排列，调用方依赖数值比较做访问控制
type AuthLevel int

const (
	AuthLevelUnverified AuthLevel = iota
	AuthLevelApplicant
	AuthLevelAttendee
	AuthLevelVolunteer
	AuthLevelOrganiser
)

var authLevelNames = map[AuthLevel]string{
	AuthLevelUnverified: "unverified",
	AuthLevelApplicant:  "applicant",
	AuthLevelAttendee:   "attendee",
	AuthLevelVolunteer:  "volunteer",
	AuthLevelOrganiser:  "organiser",
}

var authLevelsByName = map[string]AuthLevel{
	"unverified": AuthLevelUnverified,
	"applicant":  AuthLevelApplicant,
	"attendee":   AuthLevelAttendee,
	"volunteer":  AuthLevelVolunteer,
	"organiser":  AuthLevelOrganiser,
}

// ParseAuthLevel 不做任何默认值回退，未知字符串直接返回 ErrInvalidAuthLevel
func ParseAuthLevel(s string) (AuthLevel, error) {
	level, ok := authLevelsByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAuthLevel, s)
	}
	return level, nil
}

func (l AuthLevel) String() string {
	if name, ok := authLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("AuthLevel(%d)", int(l))
}

// AtLeast 判断当前等级是否不低于 min
func (l AuthLevel) AtLeast(min AuthLevel) bool {
	return l >= min
}

func (l AuthLevel) MarshalText() ([]byte, error) {
	name, ok := authLevelNames[l]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAuthLevel, int(l))
	}
	return []byte(name), nil
}

func (l *AuthLevel) UnmarshalText(text []byte) error {
	level, err := ParseAuthLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

type User struct {
	AuthID        string    `json:"authId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	AuthLevel     AuthLevel `json:"authLevel"`
	Team          string    `json:"team,omitempty"` // 未加入队伍时为空
}

// HasTeam 判断用户是否已经加入队伍
func (u *User) HasTeam() bool {
	return u.Team != ""
}
