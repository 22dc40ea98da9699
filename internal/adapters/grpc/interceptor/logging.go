package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDMetadataKey はリクエスト ID のメタデータキーです。
const RequestIDMetadataKey = "x-request-id"

type requestIDKey struct{}

// RequestIDFromContext はリクエスト ID を返します。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging はメソッド、リクエスト ID、ステータスコード、処理時間を記録する UnaryServerInterceptor です。
// リクエスト ID は x-request-id を引き継ぎ、なければ採番してレスポンスヘッダーに返します。
func Logging(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		requestID := firstValue(md, RequestIDMetadataKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		entry := logger.WithFields(logrus.Fields{
			"method":      info.FullMethod,
			"request_id":  requestID,
			"code":        code.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch code {
		case codes.OK:
			entry.Info("grpc request handled")
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			entry.WithError(err).Error("grpc request failed")
		default:
			entry.WithError(err).Warn("grpc request rejected")
		}

		return resp, err
	}
}
