package chronosgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/chronos/types"

	"google.golang.org/grpc"
)

const serviceName = "chronos.v1.TimeService"

// TimeServiceServer is the server-side interface for the chronos gRPC
// service.
type TimeServiceServer interface {
	Now(context.Context, *NowRequest) (*types.WireTimestamp, error)
	FormatTime(context.Context, *FormatTimeRequest) (*TextResponse, error)
	ParseTime(context.Context, *ParseTimeRequest) (*types.WireTimestamp, error)
	FormatDuration(context.Context, *FormatDurationRequest) (*TextResponse, error)
	Ticks(*TicksRequest, grpc.ServerStream) error
}

// RegisterTimeServiceServer registers the TimeServiceServer on a gRPC server.
func RegisterTimeServiceServer(s *grpc.Server, srv TimeServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

// unary decodes a request of type Req and runs call through the server's
// interceptor chain, if any.
func unary[Req any](method string, call func(TimeServiceServer, context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TimeServiceServer), ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TimeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	handlerNow = unary("Now", func(s TimeServiceServer, ctx context.Context, req *NowRequest) (any, error) {
		return s.Now(ctx, req)
	})
	handlerFormatTime = unary("FormatTime", func(s TimeServiceServer, ctx context.Context, req *FormatTimeRequest) (any, error) {
		return s.FormatTime(ctx, req)
	})
	handlerParseTime = unary("ParseTime", func(s TimeServiceServer, ctx context.Context, req *ParseTimeRequest) (any, error) {
		return s.ParseTime(ctx, req)
	})
	handlerFormatDuration = unary("FormatDuration", func(s TimeServiceServer, ctx context.Context, req *FormatDurationRequest) (any, error) {
		return s.FormatDuration(ctx, req)
	})
)

func handlerTicks(srv any, stream grpc.ServerStream) error {
	req := new(TicksRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(TimeServiceServer).Ticks(req, stream)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// ticksStream describes the server-streaming Ticks RPC for clients.
var ticksStream = grpc.StreamDesc{
	StreamName:    "Ticks",
	ServerStreams: true,
}

// serviceDesc is the manual gRPC service descriptor for chronos.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TimeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Now", Handler: handlerNow},
		{MethodName: "FormatTime", Handler: handlerFormatTime},
		{MethodName: "ParseTime", Handler: handlerParseTime},
		{MethodName: "FormatDuration", Handler: handlerFormatDuration},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    ticksStream.StreamName,
			Handler:       handlerTicks,
			ServerStreams: true,
			ClientStreams: false,
		},
	},
	Metadata: "chronos/v1/service.cram",
}
