package schedule

import "github.com/ogurasousui/timeclock-grpc/internal/core/apperror"

var (
	ErrInvalidUserID       = apperror.New(apperror.CodeValidation, "schedule: invalid user id")
	ErrInvalidDepartmentID = apperror.New(apperror.CodeValidation, "schedule: invalid department id")
	ErrInvalidWeekStart    = apperror.New(apperror.CodeValidation, "schedule: invalid week start")
	ErrInvalidDayOfWeek    = apperror.New(apperror.CodeValidation, "schedule: invalid day of week")
	ErrScheduleNotFound    = apperror.New(apperror.CodeNotFound, "schedule: not found")
)
