package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/config"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/directory"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var dryRun bool

	flag.BoolVar(&dryRun, "dry-run", false, "只从认证服务拉取数据，不写入数据库")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, dryRun, logger); err != nil {
		logger.Error("同步失败", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) error {
	if cfg.Sync.Token == "" {
		return errors.New("未配置 SYNC_TOKEN")
	}

	client, err := directory.NewClient(
		cfg.AuthDirectory.BaseURL,
		directory.WithTimeout(time.Duration(cfg.AuthDirectory.RequestTimeout)*time.Second),
	)
	if err != nil {
		return fmt.Errorf("无法创建认证服务客户端: %w", err)
	}

	// 从认证服务拉取用户和队伍
	users, err := client.FetchAllUsers(ctx, cfg.Sync.Token)
	if err != nil {
		return fmt.Errorf("无法获取用户列表: %w", err)
	}

	teams, err := client.FetchTeams(ctx, cfg.Sync.Token)
	if err != nil {
		return fmt.Errorf("无法获取队伍列表: %w", err)
	}

	logger.Info("已从认证服务拉取数据", slog.Int("users", len(users)), slog.Int("teams", len(teams)))

	if dryRun {
		return nil
	}

	if cfg.Database.DSN == "" {
		return errors.New("未配置 DATABASE_DSN")
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("无法创建数据库连接池: %w", err)
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(pingCtx); err != nil {
		return fmt.Errorf("无法连接到数据库: %w", err)
	}

	repo := repository.NewRepository(cfg, dbpool)

	if err := repo.EnsureSchema(); err != nil {
		return fmt.Errorf("无法创建数据表: %w", err)
	}

	if err := repo.ReplaceDirectory(users, teams); err != nil {
		return fmt.Errorf("无法写入用户目录镜像: %w", err)
	}

	// 读回校验一遍数量
	mirroredUsers, err := repo.GetMirroredUsers()
	if err != nil {
		return fmt.Errorf("无法读取用户镜像: %w", err)
	}
	mirroredTeams, err := repo.GetMirroredTeams()
	if err != nil {
		return fmt.Errorf("无法读取队伍镜像: %w", err)
	}

	logger.Info("同步完成", slog.Int("users", len(mirroredUsers)), slog.Int("teams", len(mirroredTeams)))
	return nil
}
