package department

import "github.com/ogurasousui/timeclock-grpc/internal/core/apperror"

var (
	ErrInvalidID           = apperror.New(apperror.CodeValidation, "department: invalid id")
	ErrInvalidEmployeeID   = apperror.New(apperror.CodeValidation, "department: invalid employee id")
	ErrInvalidMembershipID = apperror.New(apperror.CodeValidation, "department: invalid membership id")
	ErrInvalidName         = apperror.New(apperror.CodeValidation, "department: invalid name")
	ErrInvalidInfo         = apperror.New(apperror.CodeValidation, "department: invalid info")
	ErrInvalidRole         = apperror.New(apperror.CodeValidation, "department: invalid role")
	ErrInvalidRate         = apperror.New(apperror.CodeValidation, "department: invalid rate")
	ErrInvalidPosition     = apperror.New(apperror.CodeValidation, "department: invalid position")
	ErrDepartmentNotFound  = apperror.New(apperror.CodeNotFound, "department: not found")
	ErrEmployeeNotFound    = apperror.New(apperror.CodeNotFound, "department: employee not found")
	ErrMembershipNotFound  = apperror.New(apperror.CodeNotFound, "department: membership not found")
	ErrDepartmentInUse     = apperror.New(apperror.CodeConflict, "department: in use")
)
