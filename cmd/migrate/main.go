package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/repository/gormstore"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/config"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}
	arg := flag.Arg(1)

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := migrateSQLite(action, cfg.Database.Path, logger); err != nil {
			logger.WithError(err).Fatalf("migration %s failed", action)
		}
		logger.WithField("path", cfg.Database.Path).Infof("migration %s completed", action)
		return
	}

	if err := runMigration(action, arg, *migrationsDir, cfg.Database.DSN(), logger); err != nil {
		logger.WithError(err).Fatalf("migration %s failed", action)
	}

	logger.WithField("dir", *migrationsDir).Infof("migration %s completed", action)
}

// migrateSQLite は組み込みデータストアのスキーマを作成します。up のみ対応します。
func migrateSQLite(action, path string, logger logrus.FieldLogger) error {
	if action != "up" {
		return fmt.Errorf("unsupported action %q for sqlite", action)
	}
	db, err := gormstore.Open(path, logger)
	if err != nil {
		return err
	}
	return gormstore.Close(db)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// runMigration は action を実行します。steps と force は arg に数値を取ります。
func runMigration(action, arg, dir, dsn string, logger logrus.FieldLogger) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return fmt.Errorf("steps requires a non-zero integer, got %q", arg)
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		version, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force requires a version, got %q", arg)
		}
		return m.Force(version)
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migration applied")
				return nil
			}
			return err
		}
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("current migration version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
