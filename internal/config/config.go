package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	AuthDirectory struct {
		BaseURL        string `env:"BASE_URL,required,notEmpty"`
		RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"0"` // 秒，0 表示不设超时
	} `envPrefix:"AUTH_DIRECTORY_"`
	Server struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Redis struct {
		Addr             string `env:"ADDR"` // 留空则不启用队伍缓存
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		TeamsTTL         int    `env:"TEAMS_TTL" envDefault:"60"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"3"`
	} `envPrefix:"REDIS_"`
	Database struct {
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"30"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Sync struct {
		Token string `env:"TOKEN"`
	} `envPrefix:"SYNC_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
