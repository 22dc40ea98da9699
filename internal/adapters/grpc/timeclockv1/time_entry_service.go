package timeclockv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const TimeEntryServiceName = "TimeEntryService"

// TimeEntryServiceServer は TimeEntryService のサーバー実装が満たすインターフェースです。
type TimeEntryServiceServer interface {
	ClockIn(context.Context, *ClockInRequest) (*TimeEntryResponse, error)
	ClockOut(context.Context, *ClockOutRequest) (*TimeEntryResponse, error)
	GetOpenEntry(context.Context, *GetOpenEntryRequest) (*TimeEntryResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	mustEmbedUnimplementedTimeEntryServiceServer()
}

// UnimplementedTimeEntryServiceServer は未実装のメソッドに Unimplemented を返します。
type UnimplementedTimeEntryServiceServer struct{}

func (UnimplementedTimeEntryServiceServer) ClockIn(context.Context, *ClockInRequest) (*TimeEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClockIn not implemented")
}
func (UnimplementedTimeEntryServiceServer) ClockOut(context.Context, *ClockOutRequest) (*TimeEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClockOut not implemented")
}
func (UnimplementedTimeEntryServiceServer) GetOpenEntry(context.Context, *GetOpenEntryRequest) (*TimeEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOpenEntry not implemented")
}
func (UnimplementedTimeEntryServiceServer) ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntries not implemented")
}
func (UnimplementedTimeEntryServiceServer) mustEmbedUnimplementedTimeEntryServiceServer() {}

func RegisterTimeEntryServiceServer(s grpc.ServiceRegistrar, srv TimeEntryServiceServer) {
	s.RegisterService(&TimeEntryService_ServiceDesc, srv)
}

var TimeEntryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + "." + TimeEntryServiceName,
	HandlerType: (*TimeEntryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(TimeEntryServiceName, "ClockIn", TimeEntryServiceServer.ClockIn),
		unaryMethod(TimeEntryServiceName, "ClockOut", TimeEntryServiceServer.ClockOut),
		unaryMethod(TimeEntryServiceName, "GetOpenEntry", TimeEntryServiceServer.GetOpenEntry),
		unaryMethod(TimeEntryServiceName, "ListEntries", TimeEntryServiceServer.ListEntries),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timeclock/v1/time_entry",
}

// TimeEntryServiceClient は TimeEntryService のクライアントです。
type TimeEntryServiceClient interface {
	ClockIn(ctx context.Context, in *ClockInRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error)
	ClockOut(ctx context.Context, in *ClockOutRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error)
	GetOpenEntry(ctx context.Context, in *GetOpenEntryRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error)
	ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
}

type timeEntryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTimeEntryServiceClient(cc grpc.ClientConnInterface) TimeEntryServiceClient {
	return &timeEntryServiceClient{cc: cc}
}

func (c *timeEntryServiceClient) ClockIn(ctx context.Context, in *ClockInRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error) {
	return invoke[TimeEntryResponse](ctx, c.cc, TimeEntryServiceName, "ClockIn", in, opts...)
}

func (c *timeEntryServiceClient) ClockOut(ctx context.Context, in *ClockOutRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error) {
	return invoke[TimeEntryResponse](ctx, c.cc, TimeEntryServiceName, "ClockOut", in, opts...)
}

func (c *timeEntryServiceClient) GetOpenEntry(ctx context.Context, in *GetOpenEntryRequest, opts ...grpc.CallOption) (*TimeEntryResponse, error) {
	return invoke[TimeEntryResponse](ctx, c.cc, TimeEntryServiceName, "GetOpenEntry", in, opts...)
}

func (c *timeEntryServiceClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, TimeEntryServiceName, "ListEntries", in, opts...)
}
