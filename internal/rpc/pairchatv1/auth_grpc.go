package pairchatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const AuthServiceName = "pairchat.v1.AuthService"

const (
	AuthService_Register_FullMethodName = "/pairchat.v1.AuthService/Register"
	AuthService_Login_FullMethodName    = "/pairchat.v1.AuthService/Login"
	AuthService_Logout_FullMethodName   = "/pairchat.v1.AuthService/Logout"
)

// AuthServiceServer registers participants and issues tokens.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
}

type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Register", AuthServiceServer.Register),
		unary(AuthServiceName, "Login", AuthServiceServer.Login),
		unary(AuthServiceName, "Logout", AuthServiceServer.Logout),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pairchat/v1/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// AuthServiceClient is the client API for AuthService.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, AuthService_Register_FullMethodName, in, opts)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, AuthService_Login_FullMethodName, in, opts)
}

func (c *authServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, AuthService_Logout_FullMethodName, in, opts)
}

const HealthServiceName = "pairchat.v1.HealthService"

const HealthService_GetStatus_FullMethodName = "/pairchat.v1.HealthService/GetStatus"

// HealthServiceServer reports daemon state.
type HealthServiceServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
}

type UnimplementedHealthServiceServer struct{}

func (UnimplementedHealthServiceServer) GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}

var HealthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: HealthServiceName,
	HandlerType: (*HealthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(HealthServiceName, "GetStatus", HealthServiceServer.GetStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pairchat/v1/health.json",
}

func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&HealthService_ServiceDesc, srv)
}

// HealthServiceClient is the client API for HealthService.
type HealthServiceClient interface {
	GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error)
}

type healthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHealthServiceClient(cc grpc.ClientConnInterface) HealthServiceClient {
	return &healthServiceClient{cc}
}

func (c *healthServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	return invoke[GetStatusResponse](ctx, c.cc, HealthService_GetStatus_FullMethodName, in, opts)
}

// PublicMethods are served without a token.
var PublicMethods = []string{
	AuthService_Register_FullMethodName,
	AuthService_Login_FullMethodName,
	HealthService_GetStatus_FullMethodName,
}
