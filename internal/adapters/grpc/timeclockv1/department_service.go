package timeclockv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DepartmentServiceName = "DepartmentService"

// DepartmentServiceServer は DepartmentService のサーバー実装が満たすインターフェースです。
type DepartmentServiceServer interface {
	CreateDepartment(context.Context, *CreateDepartmentRequest) (*DepartmentResponse, error)
	GetDepartment(context.Context, *GetDepartmentRequest) (*DepartmentResponse, error)
	UpdateDepartment(context.Context, *UpdateDepartmentRequest) (*DepartmentResponse, error)
	DeleteDepartment(context.Context, *DeleteDepartmentRequest) (*DepartmentResponse, error)
	ListDepartments(context.Context, *ListDepartmentsRequest) (*ListDepartmentsResponse, error)
	AddEmployee(context.Context, *AddEmployeeRequest) (*DepartmentResponse, error)
	RemoveEmployee(context.Context, *RemoveEmployeeRequest) (*DepartmentResponse, error)
	RemoveMembership(context.Context, *RemoveMembershipRequest) (*DepartmentResponse, error)
	UpdateMemberRole(context.Context, *UpdateMemberRoleRequest) (*MembershipResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	mustEmbedUnimplementedDepartmentServiceServer()
}

// UnimplementedDepartmentServiceServer は未実装のメソッドに Unimplemented を返します。
type UnimplementedDepartmentServiceServer struct{}

func (UnimplementedDepartmentServiceServer) CreateDepartment(context.Context, *CreateDepartmentRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateDepartment not implemented")
}
func (UnimplementedDepartmentServiceServer) GetDepartment(context.Context, *GetDepartmentRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDepartment not implemented")
}
func (UnimplementedDepartmentServiceServer) UpdateDepartment(context.Context, *UpdateDepartmentRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateDepartment not implemented")
}
func (UnimplementedDepartmentServiceServer) DeleteDepartment(context.Context, *DeleteDepartmentRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteDepartment not implemented")
}
func (UnimplementedDepartmentServiceServer) ListDepartments(context.Context, *ListDepartmentsRequest) (*ListDepartmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDepartments not implemented")
}
func (UnimplementedDepartmentServiceServer) AddEmployee(context.Context, *AddEmployeeRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddEmployee not implemented")
}
func (UnimplementedDepartmentServiceServer) RemoveEmployee(context.Context, *RemoveEmployeeRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveEmployee not implemented")
}
func (UnimplementedDepartmentServiceServer) RemoveMembership(context.Context, *RemoveMembershipRequest) (*DepartmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveMembership not implemented")
}
func (UnimplementedDepartmentServiceServer) UpdateMemberRole(context.Context, *UpdateMemberRoleRequest) (*MembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateMemberRole not implemented")
}
func (UnimplementedDepartmentServiceServer) ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMembers not implemented")
}
func (UnimplementedDepartmentServiceServer) mustEmbedUnimplementedDepartmentServiceServer() {}

// RegisterDepartmentServiceServer は srv を s に登録します。
func RegisterDepartmentServiceServer(s grpc.ServiceRegistrar, srv DepartmentServiceServer) {
	s.RegisterService(&DepartmentService_ServiceDesc, srv)
}

// DepartmentService_ServiceDesc は DepartmentService のサービス定義です。
var DepartmentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + "." + DepartmentServiceName,
	HandlerType: (*DepartmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(DepartmentServiceName, "CreateDepartment", DepartmentServiceServer.CreateDepartment),
		unaryMethod(DepartmentServiceName, "GetDepartment", DepartmentServiceServer.GetDepartment),
		unaryMethod(DepartmentServiceName, "UpdateDepartment", DepartmentServiceServer.UpdateDepartment),
		unaryMethod(DepartmentServiceName, "DeleteDepartment", DepartmentServiceServer.DeleteDepartment),
		unaryMethod(DepartmentServiceName, "ListDepartments", DepartmentServiceServer.ListDepartments),
		unaryMethod(DepartmentServiceName, "AddEmployee", DepartmentServiceServer.AddEmployee),
		unaryMethod(DepartmentServiceName, "RemoveEmployee", DepartmentServiceServer.RemoveEmployee),
		unaryMethod(DepartmentServiceName, "RemoveMembership", DepartmentServiceServer.RemoveMembership),
		unaryMethod(DepartmentServiceName, "UpdateMemberRole", DepartmentServiceServer.UpdateMemberRole),
		unaryMethod(DepartmentServiceName, "ListMembers", DepartmentServiceServer.ListMembers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timeclock/v1/department",
}

// DepartmentServiceClient は DepartmentService のクライアントです。
type DepartmentServiceClient interface {
	CreateDepartment(ctx context.Context, in *CreateDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	GetDepartment(ctx context.Context, in *GetDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, in *UpdateDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, in *DeleteDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	ListDepartments(ctx context.Context, in *ListDepartmentsRequest, opts ...grpc.CallOption) (*ListDepartmentsResponse, error)
	AddEmployee(ctx context.Context, in *AddEmployeeRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	RemoveEmployee(ctx context.Context, in *RemoveEmployeeRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	RemoveMembership(ctx context.Context, in *RemoveMembershipRequest, opts ...grpc.CallOption) (*DepartmentResponse, error)
	UpdateMemberRole(ctx context.Context, in *UpdateMemberRoleRequest, opts ...grpc.CallOption) (*MembershipResponse, error)
	ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error)
}

type departmentServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDepartmentServiceClient は DepartmentServiceClient を生成します。
func NewDepartmentServiceClient(cc grpc.ClientConnInterface) DepartmentServiceClient {
	return &departmentServiceClient{cc: cc}
}

func (c *departmentServiceClient) CreateDepartment(ctx context.Context, in *CreateDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "CreateDepartment", in, opts...)
}

func (c *departmentServiceClient) GetDepartment(ctx context.Context, in *GetDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "GetDepartment", in, opts...)
}

func (c *departmentServiceClient) UpdateDepartment(ctx context.Context, in *UpdateDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "UpdateDepartment", in, opts...)
}

func (c *departmentServiceClient) DeleteDepartment(ctx context.Context, in *DeleteDepartmentRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "DeleteDepartment", in, opts...)
}

func (c *departmentServiceClient) ListDepartments(ctx context.Context, in *ListDepartmentsRequest, opts ...grpc.CallOption) (*ListDepartmentsResponse, error) {
	return invoke[ListDepartmentsResponse](ctx, c.cc, DepartmentServiceName, "ListDepartments", in, opts...)
}

func (c *departmentServiceClient) AddEmployee(ctx context.Context, in *AddEmployeeRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "AddEmployee", in, opts...)
}

func (c *departmentServiceClient) RemoveEmployee(ctx context.Context, in *RemoveEmployeeRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "RemoveEmployee", in, opts...)
}

func (c *departmentServiceClient) RemoveMembership(ctx context.Context, in *RemoveMembershipRequest, opts ...grpc.CallOption) (*DepartmentResponse, error) {
	return invoke[DepartmentResponse](ctx, c.cc, DepartmentServiceName, "RemoveMembership", in, opts...)
}

func (c *departmentServiceClient) UpdateMemberRole(ctx context.Context, in *UpdateMemberRoleRequest, opts ...grpc.CallOption) (*MembershipResponse, error) {
	return invoke[MembershipResponse](ctx, c.cc, DepartmentServiceName, "UpdateMemberRole", in, opts...)
}

func (c *departmentServiceClient) ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c.cc, DepartmentServiceName, "ListMembers", in, opts...)
}
