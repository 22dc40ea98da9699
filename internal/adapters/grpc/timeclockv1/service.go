package timeclockv1

import (
	"context"

	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/codec"
	"google.golang.org/grpc"
)

const packageName = "timeclock.v1"

// unaryMethod は Req を受けて Resp を返す単項メソッドの MethodDesc を組み立てます。
func unaryMethod[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// invoke は JSON コーデックで単項呼び出しを行います。
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(service, method), in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

// FullMethod はサービスとメソッドから完全なメソッド名を返します。
func FullMethod(service, method string) string {
	return "/" + packageName + "." + service + "/" + method
}
