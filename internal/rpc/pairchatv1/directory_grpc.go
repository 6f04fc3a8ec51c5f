package pairchatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DirectoryServiceName = "pairchat.v1.DirectoryService"

const (
	DirectoryService_ListContacts_FullMethodName    = "/pairchat.v1.DirectoryService/ListContacts"
	DirectoryService_GetProfile_FullMethodName      = "/pairchat.v1.DirectoryService/GetProfile"
	DirectoryService_SetProfileImage_FullMethodName = "/pairchat.v1.DirectoryService/SetProfileImage"
	DirectoryService_Attach_FullMethodName          = "/pairchat.v1.DirectoryService/Attach"
	DirectoryService_WatchPresence_FullMethodName   = "/pairchat.v1.DirectoryService/WatchPresence"
)

// DirectoryServiceServer serves profiles and presence.
type DirectoryServiceServer interface {
	ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	SetProfileImage(context.Context, *SetProfileImageRequest) (*SetProfileImageResponse, error)
	Attach(*AttachRequest, grpc.ServerStreamingServer[PresenceEvent]) error
	WatchPresence(*WatchPresenceRequest, grpc.ServerStreamingServer[PresenceEvent]) error
}

type UnimplementedDirectoryServiceServer struct{}

func (UnimplementedDirectoryServiceServer) ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListContacts not implemented")
}
func (UnimplementedDirectoryServiceServer) GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedDirectoryServiceServer) SetProfileImage(context.Context, *SetProfileImageRequest) (*SetProfileImageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetProfileImage not implemented")
}
func (UnimplementedDirectoryServiceServer) Attach(*AttachRequest, grpc.ServerStreamingServer[PresenceEvent]) error {
	return status.Error(codes.Unimplemented, "method Attach not implemented")
}
func (UnimplementedDirectoryServiceServer) WatchPresence(*WatchPresenceRequest, grpc.ServerStreamingServer[PresenceEvent]) error {
	return status.Error(codes.Unimplemented, "method WatchPresence not implemented")
}

var DirectoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryServiceName,
	HandlerType: (*DirectoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DirectoryServiceName, "ListContacts", DirectoryServiceServer.ListContacts),
		unary(DirectoryServiceName, "GetProfile", DirectoryServiceServer.GetProfile),
		unary(DirectoryServiceName, "SetProfileImage", DirectoryServiceServer.SetProfileImage),
	},
	Streams: []grpc.StreamDesc{
		serverStream("Attach", DirectoryServiceServer.Attach),
		serverStream("WatchPresence", DirectoryServiceServer.WatchPresence),
	},
	Metadata: "pairchat/v1/directory.json",
}

func RegisterDirectoryServiceServer(s grpc.ServiceRegistrar, srv DirectoryServiceServer) {
	s.RegisterService(&DirectoryService_ServiceDesc, srv)
}

// DirectoryServiceClient is the client API for DirectoryService.
type DirectoryServiceClient interface {
	ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error)
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error)
	SetProfileImage(ctx context.Context, in *SetProfileImageRequest, opts ...grpc.CallOption) (*SetProfileImageResponse, error)
	Attach(ctx context.Context, in *AttachRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PresenceEvent], error)
	WatchPresence(ctx context.Context, in *WatchPresenceRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PresenceEvent], error)
}

type directoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryServiceClient(cc grpc.ClientConnInterface) DirectoryServiceClient {
	return &directoryServiceClient{cc}
}

func (c *directoryServiceClient) ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error) {
	return invoke[ListContactsResponse](ctx, c.cc, DirectoryService_ListContacts_FullMethodName, in, opts)
}

func (c *directoryServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error) {
	return invoke[GetProfileResponse](ctx, c.cc, DirectoryService_GetProfile_FullMethodName, in, opts)
}

func (c *directoryServiceClient) SetProfileImage(ctx context.Context, in *SetProfileImageRequest, opts ...grpc.CallOption) (*SetProfileImageResponse, error) {
	return invoke[SetProfileImageResponse](ctx, c.cc, DirectoryService_SetProfileImage_FullMethodName, in, opts)
}

func (c *directoryServiceClient) Attach(ctx context.Context, in *AttachRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PresenceEvent], error) {
	return openStream[AttachRequest, PresenceEvent](ctx, c.cc, &DirectoryService_ServiceDesc.Streams[0], DirectoryService_Attach_FullMethodName, in, opts)
}

func (c *directoryServiceClient) WatchPresence(ctx context.Context, in *WatchPresenceRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[PresenceEvent], error) {
	return openStream[WatchPresenceRequest, PresenceEvent](ctx, c.cc, &DirectoryService_ServiceDesc.Streams[1], DirectoryService_WatchPresence_FullMethodName, in, opts)
}
