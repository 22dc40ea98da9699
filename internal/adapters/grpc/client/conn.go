package client

import (
	"context"
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/interceptor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Dial は平文の接続を作成します。TLS が必要な場合は opts で上書きしてください。
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(target, dialOpts...)
}

// actorConn は全ての呼び出しにアクターのメタデータを付与します。
type actorConn struct {
	cc    grpc.ClientConnInterface
	pairs []string
}

func (c *actorConn) attach(ctx context.Context) context.Context {
	if len(c.pairs) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, c.pairs...)
}

func (c *actorConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(c.attach(ctx), method, args, reply, opts...)
}

func (c *actorConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return c.cc.NewStream(c.attach(ctx), desc, method, opts...)
}

// Option は Client の設定です。
type Option func(*Client)

// WithActorID は x-actor-id メタデータでアクターを名乗ります。
func WithActorID(actorID string) Option {
	return func(c *Client) {
		c.conn.pairs = append(c.conn.pairs, interceptor.ActorMetadataKey, actorID)
	}
}

// WithBearerToken は Authorization ヘッダーで JWT を送ります。
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.conn.pairs = append(c.conn.pairs, "authorization", "Bearer "+token)
	}
}

// WithClock はローカルの退勤見積もりに使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
