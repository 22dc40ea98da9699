package department

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength     = 200
	maxInfoLength     = 2000
	maxPositionLength = 200
)

// maxRate は時給列 NUMERIC(12, 2) に収まらない最小の値です。
var maxRate = decimal.New(1, 10)

func normalizeUUID(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", invalid
	}
	return parsed.String(), nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func normalizeInfo(raw string) (string, error) {
	info := strings.TrimSpace(raw)
	if utf8.RuneCountInString(info) > maxInfoLength {
		return "", ErrInvalidInfo
	}
	return info, nil
}

func normalizePosition(raw string) (string, error) {
	position := strings.TrimSpace(raw)
	if utf8.RuneCountInString(position) > maxPositionLength {
		return "", ErrInvalidPosition
	}
	return position, nil
}

// validateRate は時給が 0 以上 maxRate 未満かつ小数第 2 位までであることを確認します。
func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(maxRate) {
		return ErrInvalidRate
	}
	if !rate.Equal(rate.Round(2)) {
		return ErrInvalidRate
	}
	return nil
}

func validateRole(role access.DepartmentRole) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}
