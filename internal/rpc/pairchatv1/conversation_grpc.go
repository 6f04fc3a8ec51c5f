package pairchatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ConversationServiceName = "pairchat.v1.ConversationService"

const (
	ConversationService_EnsureLog_FullMethodName   = "/pairchat.v1.ConversationService/EnsureLog"
	ConversationService_Append_FullMethodName      = "/pairchat.v1.ConversationService/Append"
	ConversationService_GetLog_FullMethodName      = "/pairchat.v1.ConversationService/GetLog"
	ConversationService_WatchLog_FullMethodName    = "/pairchat.v1.ConversationService/WatchLog"
	ConversationService_SetTyping_FullMethodName   = "/pairchat.v1.ConversationService/SetTyping"
	ConversationService_GetTyping_FullMethodName   = "/pairchat.v1.ConversationService/GetTyping"
	ConversationService_WatchTyping_FullMethodName = "/pairchat.v1.ConversationService/WatchTyping"
)

// ConversationServiceServer serves the conversation documents.
type ConversationServiceServer interface {
	EnsureLog(context.Context, *EnsureLogRequest) (*EnsureLogResponse, error)
	Append(context.Context, *AppendRequest) (*AppendResponse, error)
	GetLog(context.Context, *GetLogRequest) (*GetLogResponse, error)
	WatchLog(*WatchLogRequest, grpc.ServerStreamingServer[LogSnapshot]) error
	SetTyping(context.Context, *SetTypingRequest) (*SetTypingResponse, error)
	GetTyping(context.Context, *GetTypingRequest) (*GetTypingResponse, error)
	WatchTyping(*WatchTypingRequest, grpc.ServerStreamingServer[TypingSnapshot]) error
}

// UnimplementedConversationServiceServer can be embedded for forward
// compatibility.
type UnimplementedConversationServiceServer struct{}

func (UnimplementedConversationServiceServer) EnsureLog(context.Context, *EnsureLogRequest) (*EnsureLogResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EnsureLog not implemented")
}
func (UnimplementedConversationServiceServer) Append(context.Context, *AppendRequest) (*AppendResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Append not implemented")
}
func (UnimplementedConversationServiceServer) GetLog(context.Context, *GetLogRequest) (*GetLogResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLog not implemented")
}
func (UnimplementedConversationServiceServer) WatchLog(*WatchLogRequest, grpc.ServerStreamingServer[LogSnapshot]) error {
	return status.Error(codes.Unimplemented, "method WatchLog not implemented")
}
func (UnimplementedConversationServiceServer) SetTyping(context.Context, *SetTypingRequest) (*SetTypingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetTyping not implemented")
}
func (UnimplementedConversationServiceServer) GetTyping(context.Context, *GetTypingRequest) (*GetTypingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTyping not implemented")
}
func (UnimplementedConversationServiceServer) WatchTyping(*WatchTypingRequest, grpc.ServerStreamingServer[TypingSnapshot]) error {
	return status.Error(codes.Unimplemented, "method WatchTyping not implemented")
}

var ConversationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ConversationServiceName,
	HandlerType: (*ConversationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ConversationServiceName, "EnsureLog", ConversationServiceServer.EnsureLog),
		unary(ConversationServiceName, "Append", ConversationServiceServer.Append),
		unary(ConversationServiceName, "GetLog", ConversationServiceServer.GetLog),
		unary(ConversationServiceName, "SetTyping", ConversationServiceServer.SetTyping),
		unary(ConversationServiceName, "GetTyping", ConversationServiceServer.GetTyping),
	},
	Streams: []grpc.StreamDesc{
		serverStream("WatchLog", ConversationServiceServer.WatchLog),
		serverStream("WatchTyping", ConversationServiceServer.WatchTyping),
	},
	Metadata: "pairchat/v1/conversation.json",
}

func RegisterConversationServiceServer(s grpc.ServiceRegistrar, srv ConversationServiceServer) {
	s.RegisterService(&ConversationService_ServiceDesc, srv)
}

// ConversationServiceClient is the client API for ConversationService.
type ConversationServiceClient interface {
	EnsureLog(ctx context.Context, in *EnsureLogRequest, opts ...grpc.CallOption) (*EnsureLogResponse, error)
	Append(ctx context.Context, in *AppendRequest, opts ...grpc.CallOption) (*AppendResponse, error)
	GetLog(ctx context.Context, in *GetLogRequest, opts ...grpc.CallOption) (*GetLogResponse, error)
	WatchLog(ctx context.Context, in *WatchLogRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LogSnapshot], error)
	SetTyping(ctx context.Context, in *SetTypingRequest, opts ...grpc.CallOption) (*SetTypingResponse, error)
	GetTyping(ctx context.Context, in *GetTypingRequest, opts ...grpc.CallOption) (*GetTypingResponse, error)
	WatchTyping(ctx context.Context, in *WatchTypingRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TypingSnapshot], error)
}

type conversationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewConversationServiceClient(cc grpc.ClientConnInterface) ConversationServiceClient {
	return &conversationServiceClient{cc}
}

func (c *conversationServiceClient) EnsureLog(ctx context.Context, in *EnsureLogRequest, opts ...grpc.CallOption) (*EnsureLogResponse, error) {
	return invoke[EnsureLogResponse](ctx, c.cc, ConversationService_EnsureLog_FullMethodName, in, opts)
}

func (c *conversationServiceClient) Append(ctx context.Context, in *AppendRequest, opts ...grpc.CallOption) (*AppendResponse, error) {
	return invoke[AppendResponse](ctx, c.cc, ConversationService_Append_FullMethodName, in, opts)
}

func (c *conversationServiceClient) GetLog(ctx context.Context, in *GetLogRequest, opts ...grpc.CallOption) (*GetLogResponse, error) {
	return invoke[GetLogResponse](ctx, c.cc, ConversationService_GetLog_FullMethodName, in, opts)
}

func (c *conversationServiceClient) WatchLog(ctx context.Context, in *WatchLogRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LogSnapshot], error) {
	return openStream[WatchLogRequest, LogSnapshot](ctx, c.cc, &ConversationService_ServiceDesc.Streams[0], ConversationService_WatchLog_FullMethodName, in, opts)
}

func (c *conversationServiceClient) SetTyping(ctx context.Context, in *SetTypingRequest, opts ...grpc.CallOption) (*SetTypingResponse, error) {
	return invoke[SetTypingResponse](ctx, c.cc, ConversationService_SetTyping_FullMethodName, in, opts)
}

func (c *conversationServiceClient) GetTyping(ctx context.Context, in *GetTypingRequest, opts ...grpc.CallOption) (*GetTypingResponse, error) {
	return invoke[GetTypingResponse](ctx, c.cc, ConversationService_GetTyping_FullMethodName, in, opts)
}

func (c *conversationServiceClient) WatchTyping(ctx context.Context, in *WatchTypingRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TypingSnapshot], error) {
	return openStream[WatchTypingRequest, TypingSnapshot](ctx, c.cc, &ConversationService_ServiceDesc.Streams[1], ConversationService_WatchTyping_FullMethodName, in, opts)
}
