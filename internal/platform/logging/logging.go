// Package logging はアプリケーション共通の logrus ロガーを構築します。
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/platform/config"
	"github.com/sirupsen/logrus"
)

// New は設定に従ってロガーを生成します。出力先は標準エラーです。
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput は出力先を指定してロガーを生成します。
func NewWithOutput(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger, nil
}
