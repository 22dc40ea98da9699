package timeclockv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ScheduleServiceName = "ScheduleService"

// ScheduleServiceServer は ScheduleService のサーバー実装が満たすインターフェースです。
type ScheduleServiceServer interface {
	GetSchedule(context.Context, *GetScheduleRequest) (*ScheduleResponse, error)
	DetectConflicts(context.Context, *DetectConflictsRequest) (*ConflictResponse, error)
	CheckUserConflicts(context.Context, *CheckUserConflictsRequest) (*ConflictResponse, error)
	mustEmbedUnimplementedScheduleServiceServer()
}

type UnimplementedScheduleServiceServer struct{}

func (UnimplementedScheduleServiceServer) GetSchedule(context.Context, *GetScheduleRequest) (*ScheduleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSchedule not implemented")
}
func (UnimplementedScheduleServiceServer) DetectConflicts(context.Context, *DetectConflictsRequest) (*ConflictResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DetectConflicts not implemented")
}
func (UnimplementedScheduleServiceServer) CheckUserConflicts(context.Context, *CheckUserConflictsRequest) (*ConflictResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckUserConflicts not implemented")
}
func (UnimplementedScheduleServiceServer) mustEmbedUnimplementedScheduleServiceServer() {}

func RegisterScheduleServiceServer(s grpc.ServiceRegistrar, srv ScheduleServiceServer) {
	s.RegisterService(&ScheduleService_ServiceDesc, srv)
}

var ScheduleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + "." + ScheduleServiceName,
	HandlerType: (*ScheduleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(ScheduleServiceName, "GetSchedule", ScheduleServiceServer.GetSchedule),
		unaryMethod(ScheduleServiceName, "DetectConflicts", ScheduleServiceServer.DetectConflicts),
		unaryMethod(ScheduleServiceName, "CheckUserConflicts", ScheduleServiceServer.CheckUserConflicts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timeclock/v1/schedule",
}

type ScheduleServiceClient interface {
	GetSchedule(ctx context.Context, in *GetScheduleRequest, opts ...grpc.CallOption) (*ScheduleResponse, error)
	DetectConflicts(ctx context.Context, in *DetectConflictsRequest, opts ...grpc.CallOption) (*ConflictResponse, error)
	CheckUserConflicts(ctx context.Context, in *CheckUserConflictsRequest, opts ...grpc.CallOption) (*ConflictResponse, error)
}

type scheduleServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewScheduleServiceClient(cc grpc.ClientConnInterface) ScheduleServiceClient {
	return &scheduleServiceClient{cc: cc}
}

func (c *scheduleServiceClient) GetSchedule(ctx context.Context, in *GetScheduleRequest, opts ...grpc.CallOption) (*ScheduleResponse, error) {
	return invoke[ScheduleResponse](ctx, c.cc, ScheduleServiceName, "GetSchedule", in, opts...)
}

func (c *scheduleServiceClient) DetectConflicts(ctx context.Context, in *DetectConflictsRequest, opts ...grpc.CallOption) (*ConflictResponse, error) {
	return invoke[ConflictResponse](ctx, c.cc, ScheduleServiceName, "DetectConflicts", in, opts...)
}

func (c *scheduleServiceClient) CheckUserConflicts(ctx context.Context, in *CheckUserConflictsRequest, opts ...grpc.CallOption) (*ConflictResponse, error) {
	return invoke[ConflictResponse](ctx, c.cc, ScheduleServiceName, "CheckUserConflicts", in, opts...)
}
