package user

import "github.com/ogurasousui/timeclock-grpc/internal/core/apperror"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = apperror.New(apperror.CodeNotFound, "user: not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = apperror.New(apperror.CodeConflict, "user: email already exists")
	ErrInvalidEmail       = apperror.New(apperror.CodeValidation, "user: invalid email")
	ErrInvalidName        = apperror.New(apperror.CodeValidation, "user: invalid name")
	ErrInvalidRole        = apperror.New(apperror.CodeValidation, "user: invalid role")
	ErrInvalidID          = apperror.New(apperror.CodeValidation, "user: invalid id")
	ErrInvalidPageSize    = apperror.New(apperror.CodeValidation, "user: invalid page size")
	ErrInvalidPageToken   = apperror.New(apperror.CodeValidation, "user: invalid page token")
)
