package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

func (r *Repository) GetMirroredUsers() ([]*domain.User, error) {
	query := `
		SELECT auth_id, name, email, email_verified, auth_level, team
		FROM directory_users ORDER BY position
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		var authLevel string
		dst := []any{&user.AuthID, &user.Name, &user.Email, &user.EmailVerified, &authLevel, &user.Team}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if user.AuthLevel, err = domain.ParseAuthLevel(authLevel); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
