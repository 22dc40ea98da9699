package apperror

import "errors"

// Code はエラーの分類です。
type Code string

const (
	CodePermissionDenied Code = "permission_denied"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeValidation       Code = "validation"
	CodeInternal         Code = "internal"
)

// Error は分類付きのドメインエラーです。各パッケージはこれを sentinel として宣言します。
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New は Error を生成します。
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// GetCode は err の分類を返します。分類されていないエラーはストレージ等の想定外障害として internal 扱いです。
func GetCode(err error) Code {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}

// Is は err が指定された分類かどうかを返します。
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}
