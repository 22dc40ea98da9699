package handler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/interceptor"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// checkRequest は nil を拒否し、構造体タグに従ってリクエストを検証します。
func checkRequest[T any](req *T) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	if err := validate.Struct(req); err != nil {
		return status.Error(codes.InvalidArgument, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func requireActor(ctx context.Context) (string, error) {
	actorID, ok := interceptor.ActorFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "actor is required")
	}
	return actorID, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, status.Error(codes.InvalidArgument, "invalid date: "+raw)
	}
	return t, nil
}
