package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/handler"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/interceptor"
	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services はサーバーに公開するユースケースの集合です。
type Services struct {
	Users       user.UseCase
	Departments department.UseCase
	TimeEntries timeentry.UseCase
	Schedules   schedule.UseCase
}

// Options はサーバーの横断的な設定です。
type Options struct {
	// JWTSecret が空ならアクターは x-actor-id メタデータから解決します。
	JWTSecret string
	Logger    logrus.FieldLogger
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, services Services, opts Options, serverOpts ...grpc.ServerOption) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	actors := interceptor.NewActorResolver(opts.JWTSecret, interceptor.HealthMethodPrefix)
	serverOpts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(interceptor.Logging(logger), actors.Unary()),
	}, serverOpts...)

	srv := grpc.NewServer(serverOpts...)
	v1.RegisterUserServiceServer(srv, handler.NewUserGrpcHandler(services.Users))
	v1.RegisterDepartmentServiceServer(srv, handler.NewDepartmentGrpcHandler(services.Departments))
	v1.RegisterTimeEntryServiceServer(srv, handler.NewTimeEntryGrpcHandler(services.TimeEntries))
	v1.RegisterScheduleServiceServer(srv, handler.NewScheduleGrpcHandler(services.Schedules))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)
	for name := range srv.GetServiceInfo() {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthServer,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。テストでは bufconn のリスナーを渡します。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
