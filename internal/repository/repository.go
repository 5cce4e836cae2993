package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/config"
)

// Repository 保存认证服务用户目录的本地镜像，仅用于统计和报表
type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

const schema = `
	CREATE TABLE IF NOT EXISTS directory_users (
		auth_id        TEXT PRIMARY KEY,
		position       INTEGER NOT NULL,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL,
		email_verified BOOLEAN NOT NULL,
		auth_level     TEXT NOT NULL,
		team           TEXT NOT NULL DEFAULT '',
		synced_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS directory_teams (
		id        TEXT PRIMARY KEY,
		position  INTEGER NOT NULL,
		name      TEXT NOT NULL,
		creator   TEXT NOT NULL,
		table_no  INTEGER,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

func (r *Repository) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, schema)
	return err
}
