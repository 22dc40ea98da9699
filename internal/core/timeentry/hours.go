package timeentry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// HoursBetween は出勤から退勤までの時間数を小数第 2 位に丸めて返します。負の区間は 0 です。
func HoursBetween(clockIn, clockOut time.Time) decimal.Decimal {
	elapsed := clockOut.Sub(clockIn)
	if elapsed <= 0 {
		return decimal.Zero.Round(2)
	}
	return decimal.NewFromInt(elapsed.Nanoseconds()).Div(nanosPerHour).Round(2)
}

// FormatElapsed は経過時間を "HH:MM:SS" で表します。表示専用で保存される時間数には影響しません。
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
