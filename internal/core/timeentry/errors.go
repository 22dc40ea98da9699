package timeentry

import "github.com/ogurasousui/timeclock-grpc/internal/core/apperror"

var (
	ErrInvalidID           = apperror.New(apperror.CodeValidation, "timeentry: invalid id")
	ErrInvalidUserID       = apperror.New(apperror.CodeValidation, "timeentry: invalid user id")
	ErrInvalidDepartmentID = apperror.New(apperror.CodeValidation, "timeentry: invalid department id")
	ErrInvalidLimit        = apperror.New(apperror.CodeValidation, "timeentry: invalid limit")
	ErrTimeEntryNotFound   = apperror.New(apperror.CodeNotFound, "timeentry: not found")
	ErrDepartmentNotFound  = apperror.New(apperror.CodeNotFound, "timeentry: department not found")
	// ErrNoOpenEntry は打刻中のエントリがない場合に返却されます。
	ErrNoOpenEntry = apperror.New(apperror.CodeNotFound, "timeentry: no open entry")
	// ErrAlreadyClockedIn は打刻中のエントリが既にある状態で出勤しようとした場合に返却されます。
	ErrAlreadyClockedIn = apperror.New(apperror.CodeConflict, "timeentry: already clocked in")
	// ErrEntryNotOpen は退勤済みのエントリを退勤しようとした場合に返却されます。
	ErrEntryNotOpen = apperror.New(apperror.CodeConflict, "timeentry: entry is not open")
)
