package types

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The receipts gRPC surface is built on protobuf well-known types so any
// client can call it with the default proto codec. Ids travel as
// UInt64Value; payloads are Structs carrying the same JSON shape as the
// HTTP responses.

const ReceiptsServiceName = "receipts.ReceiptsService"

const (
	ReceiptsService_Health_FullMethodName        = "/receipts.ReceiptsService/Health"
	ReceiptsService_GetPayment_FullMethodName    = "/receipts.ReceiptsService/GetPayment"
	ReceiptsService_EnsureReceipt_FullMethodName = "/receipts.ReceiptsService/EnsureReceipt"
	ReceiptsService_GetReceipt_FullMethodName    = "/receipts.ReceiptsService/GetReceipt"
)

// ToStruct converts a response type into its JSON-shaped Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromStruct decodes a Struct returned by the receipts service into out.
func FromStruct(in *structpb.Struct, out any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type ReceiptsServiceServer interface {
	Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetPayment(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	EnsureReceipt(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	GetReceipt(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

type UnimplementedReceiptsServiceServer struct{}

func (UnimplementedReceiptsServiceServer) Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Health not implemented")
}

func (UnimplementedReceiptsServiceServer) GetPayment(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPayment not implemented")
}

func (UnimplementedReceiptsServiceServer) EnsureReceipt(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method EnsureReceipt not implemented")
}

func (UnimplementedReceiptsServiceServer) GetReceipt(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReceipt not implemented")
}

func RegisterReceiptsServiceServer(s grpc.ServiceRegistrar, srv ReceiptsServiceServer) {
	s.RegisterService(&ReceiptsService_ServiceDesc, srv)
}

var ReceiptsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ReceiptsServiceName,
	HandlerType: (*ReceiptsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Health",
			Handler: unaryHandler(ReceiptsService_Health_FullMethodName, func(srv ReceiptsServiceServer, ctx context.Context, in *emptypb.Empty) (*wrapperspb.StringValue, error) {
				return srv.Health(ctx, in)
			}),
		},
		{
			MethodName: "GetPayment",
			Handler: unaryHandler(ReceiptsService_GetPayment_FullMethodName, func(srv ReceiptsServiceServer, ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
				return srv.GetPayment(ctx, in)
			}),
		},
		{
			MethodName: "EnsureReceipt",
			Handler: unaryHandler(ReceiptsService_EnsureReceipt_FullMethodName, func(srv ReceiptsServiceServer, ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
				return srv.EnsureReceipt(ctx, in)
			}),
		},
		{
			MethodName: "GetReceipt",
			Handler: unaryHandler(ReceiptsService_GetReceipt_FullMethodName, func(srv ReceiptsServiceServer, ctx context.Context, in *wrapperspb.UInt64Value) (*structpb.Struct, error) {
				return srv.GetReceipt(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "receipts.proto",
}

func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(ReceiptsServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReceiptsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReceiptsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type ReceiptsServiceClient interface {
	Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetPayment(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	EnsureReceipt(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetReceipt(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type receiptsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReceiptsServiceClient(cc grpc.ClientConnInterface) ReceiptsServiceClient {
	return &receiptsServiceClient{cc: cc}
}

func (c *receiptsServiceClient) Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ReceiptsService_Health_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *receiptsServiceClient) GetPayment(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReceiptsService_GetPayment_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *receiptsServiceClient) EnsureReceipt(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReceiptsService_EnsureReceipt_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *receiptsServiceClient) GetReceipt(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReceiptsService_GetReceipt_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
