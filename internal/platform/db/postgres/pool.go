package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/config"
	"github.com/sirupsen/logrus"
)

const applicationName = "timeclock-grpc"

// PoolOption は pgxpool.Config に追加の設定を施します。
type PoolOption func(*pgxpool.Config)

// WithQueryLogger は実行した SQL を logger に debug レベルで出力します。
func WithQueryLogger(logger logrus.FieldLogger) PoolOption {
	return func(poolCfg *pgxpool.Config) {
		if logger == nil {
			return
		}
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   queryLogger(logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
}

func queryLogger(logger logrus.FieldLogger) tracelog.Logger {
	return tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		entry := logger.WithFields(logrus.Fields(data)).WithField("component", "pgx")
		switch level {
		case tracelog.LogLevelError:
			entry.Error(msg)
		case tracelog.LogLevelWarn:
			entry.Warn(msg)
		case tracelog.LogLevelInfo:
			entry.Info(msg)
		default:
			entry.Debug(msg)
		}
	})
}

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
func BuildPoolConfig(cfg config.DatabaseConfig, opts ...PoolOption) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	// 打刻時刻は UTC で保存・比較します。
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	for _, opt := range opts {
		opt(poolCfg)
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, opts ...PoolOption) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}
