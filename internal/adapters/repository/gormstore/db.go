// Package gormstore は gorm と SQLite を利用した組み込みデータストアです。
// PostgreSQL を用意できないローカル環境やテストで、同じリポジトリインターフェースを提供します。
package gormstore

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const openEntryIndexDDL = `CREATE UNIQUE INDEX IF NOT EXISTS time_entries_one_open_per_user ON time_entries (user_id) WHERE clock_out IS NULL`

// Open は SQLite データベースを開き、スキーマを適用します。
func Open(path string, logger logrus.FieldLogger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("gormstore: path is required")
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: get database instance: %w", err)
	}
	// SQLite は書き込みが直列のため、接続を 1 本に絞ってトランザクション同士を順番に実行する
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate はテーブルとインデックスを作成します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&departmentModel{},
		&membershipModel{},
		&timeEntryModel{},
		&scheduleModel{},
		&shiftModel{},
	); err != nil {
		return fmt.Errorf("gormstore: auto migrate: %w", err)
	}
	if err := db.Exec(openEntryIndexDDL).Error; err != nil {
		return fmt.Errorf("gormstore: create open entry index: %w", err)
	}
	return nil
}

// Close は下位の接続を閉じます。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
