package gormstore

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// isUniqueViolation は target (例: "users.email") の UNIQUE 制約違反かどうかを判定します。
func isUniqueViolation(err error, target string) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return false
	}
	return strings.Contains(sqliteErr.Error(), target)
}

func isCheckViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
}
