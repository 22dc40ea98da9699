package handler

import (
	"errors"

	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const internalErrorMessage = "internal error"

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(interface{ GRPCStatus() *status.Status }); ok {
		return err
	}

	switch apperror.GetCode(err) {
	case apperror.CodePermissionDenied:
		return status.Error(codes.PermissionDenied, err.Error())
	case apperror.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperror.CodeConflict:
		if errors.Is(err, timeentry.ErrAlreadyClockedIn) || errors.Is(err, user.ErrEmailAlreadyExists) {
			return status.Error(codes.AlreadyExists, err.Error())
		}
		return status.Error(codes.FailedPrecondition, err.Error())
	case apperror.CodeValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, internalErrorMessage)
	}
}
