// Package interceptor は gRPC サーバーの単項インターセプタです。
package interceptor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// ActorMetadataKey は上流のセッションが付与するアクター ID のメタデータキーです。
	ActorMetadataKey = "x-actor-id"
	authorizationKey = "authorization"
	bearerPrefix     = "bearer "
)

// HealthMethodPrefix はヘルスチェックのメソッド名の接頭辞です。
const HealthMethodPrefix = "/grpc.health.v1.Health/"

var (
	errMissingActor = errors.New("actor is required")
	errInvalidToken = errors.New("invalid bearer token")
)

type actorKey struct{}

// WithActor はアクター ID を格納したコンテキストを返します。
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext はインターセプタが解決したアクター ID を返します。
func ActorFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(actorKey{}).(string)
	return actorID, ok && actorID != ""
}

// ActorResolver はリクエストのメタデータからアクターを解決します。
// secret が設定されている場合は HS256 の Bearer トークンの sub を、そうでなければ x-actor-id を使います。
type ActorResolver struct {
	secret []byte
	exempt []string
}

// NewActorResolver は ActorResolver を生成します。exempt に一致する接頭辞のメソッドはアクター不要です。
func NewActorResolver(secret string, exempt ...string) *ActorResolver {
	r := &ActorResolver{exempt: exempt}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

// Unary はアクターを解決してコンテキストに格納する UnaryServerInterceptor です。
func (r *ActorResolver) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if r.isExempt(info.FullMethod) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		actorID, err := r.resolve(md)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(WithActor(ctx, actorID), req)
	}
}

func (r *ActorResolver) isExempt(fullMethod string) bool {
	for _, prefix := range r.exempt {
		if strings.HasPrefix(fullMethod, prefix) {
			return true
		}
	}
	return false
}

func (r *ActorResolver) resolve(md metadata.MD) (string, error) {
	if len(r.secret) == 0 {
		actorID := strings.TrimSpace(firstValue(md, ActorMetadataKey))
		if actorID == "" {
			return "", errMissingActor
		}
		return actorID, nil
	}

	raw := strings.TrimSpace(firstValue(md, authorizationKey))
	if len(raw) < len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return "", errMissingActor
	}
	return r.parseToken(strings.TrimSpace(raw[len(bearerPrefix):]))
}

func (r *ActorResolver) parseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", errInvalidToken
	}
	return subject, nil
}

// SignToken は actorID を sub に持つ HS256 トークンを発行します。テストとローカル検証用です。
func SignToken(secret, actorID string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = actorID
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func firstValue(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
