package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

// ReplaceDirectory 在一个事务中用最新的用户和队伍覆盖本地镜像
func (r *Repository) ReplaceDirectory(users []*domain.User, teams []*domain.Team) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM directory_users`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM directory_teams`); err != nil {
		return err
	}

	for i, user := range users {
		query := `
			INSERT INTO directory_users (auth_id, position, name, email, email_verified, auth_level, team)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		args := []any{user.AuthID, i, user.Name, user.Email, user.EmailVerified, user.AuthLevel.String(), user.Team}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	for i, team := range teams {
		query := `
			INSERT INTO directory_teams (id, position, name, creator, table_no)
			VALUES ($1, $2, $3, $4, $5)
		`
		// table_no 为 nil 时写入 NULL
		var tableNo any
		if team.TableNo != nil {
			tableNo = *team.TableNo
		}
		args := []any{team.ID, i, team.Name, team.Creator, tableNo}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
