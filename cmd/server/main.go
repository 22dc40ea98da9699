package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/repository/gormstore"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/repository/postgres"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/config"
	pg "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/logging"
	"github.com/ogurasousui/timeclock-grpc/internal/platform/server"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	var (
		users    *user.Service
		services server.Services
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := gormstore.Open(cfg.Database.Path, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to open sqlite datastore")
		}
		defer func() { _ = gormstore.Close(db) }()
		users, services = sqliteServices(db, logger)
	default:
		var poolOpts []pg.PoolOption
		if cfg.Database.LogQueries {
			poolOpts = append(poolOpts, pg.WithQueryLogger(logger))
		}
		pool, err := pg.NewPool(ctx, cfg.Database, poolOpts...)
		if err != nil {
			logger.WithError(err).Fatal("failed to initialize database pool")
		}
		defer pool.Close()
		users, services = postgresServices(pool, logger)
	}

	if cfg.Auth.BootstrapAdminEmail != "" {
		admin, err := users.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminName)
		if err != nil {
			logger.WithError(err).Fatal("failed to bootstrap admin")
		}
		logger.WithField("user_id", admin.ID).Info("bootstrap admin ready")
	}

	grpcServer := server.New(cfg.Server.ListenAddr, services, server.Options{
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    logger,
	})

	logger.WithFields(logrus.Fields{
		"listen_addr": cfg.Server.ListenAddr,
		"driver":      cfg.Database.Driver,
	}).Info("gRPC server listening")

	if err := grpcServer.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
}

func postgresServices(pool *pgxpool.Pool, logger logrus.FieldLogger) (*user.Service, server.Services) {
	tx := pg.NewTransactionManager(pool)
	dir := postgres.NewAccessRepository(pool)
	users := user.NewService(postgres.NewUserRepository(pool), nil, tx, logger)

	return users, server.Services{
		Users:       users,
		Departments: department.NewService(postgres.NewDepartmentRepository(pool), dir, nil, tx, logger),
		TimeEntries: timeentry.NewService(postgres.NewTimeEntryRepository(pool), dir, nil, tx, logger),
		Schedules:   schedule.NewService(postgres.NewScheduleRepository(pool), dir, nil, tx, logger),
	}
}

func sqliteServices(db *gorm.DB, logger logrus.FieldLogger) (*user.Service, server.Services) {
	tx := gormstore.NewTransactionManager(db)
	dir := gormstore.NewAccessRepository(db)
	users := user.NewService(gormstore.NewUserRepository(db), nil, tx, logger)

	return users, server.Services{
		Users:       users,
		Departments: department.NewService(gormstore.NewDepartmentRepository(db), dir, nil, tx, logger),
		TimeEntries: timeentry.NewService(gormstore.NewTimeEntryRepository(db), dir, nil, tx, logger),
		Schedules:   schedule.NewService(gormstore.NewScheduleRepository(db), dir, nil, tx, logger),
	}
}
