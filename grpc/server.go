package chronosgrpc

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/blockberries/chronos/server"
	"github.com/blockberries/chronos/types"
)

// Compile-time interface check.
var _ TimeServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a server.Server over gRPC. Failures leave as gRPC
// status errors with the exact chronos.Code in the chronos-code trailer.
type GRPCServer struct {
	srv *server.Server
	log zerolog.Logger
}

// NewGRPCServer creates a gRPC service around srv.
func NewGRPCServer(srv *server.Server, log zerolog.Logger) *GRPCServer {
	return &GRPCServer{srv: srv, log: log}
}

// Register adds the chronos service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterTimeServiceServer(gs, s)
}

// ServerOptions returns the logging interceptors. NewServer installs them.
func (s *GRPCServer) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.logUnary),
		grpc.ChainStreamInterceptor(s.logStream),
	}
}

// NewServer creates a grpc.Server with the logging interceptors and the
// chronos service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	gs := grpc.NewServer(append(s.ServerOptions(), opts...)...)
	s.Register(gs)
	return gs
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	return s.NewServer(opts...).Serve(lis)
}

// Stop gracefully stops the gRPC server and closes the time service,
// which ends the tick streams GracefulStop would otherwise wait for.
func (s *GRPCServer) Stop(gs *grpc.Server) {
	_ = s.srv.Close()
	gs.GracefulStop()
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logCall(info.FullMethod, start, err)
	return resp, err
}

func (s *GRPCServer) logStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	s.logCall(info.FullMethod, start, err)
	return err
}

func (s *GRPCServer) logCall(method string, start time.Time, err error) {
	ev := s.log.Debug()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("method", method).
		Str("code", status.Code(err).String()).
		Dur("elapsed", time.Since(start)).
		Msg("rpc")
}

// fail converts err for the wire and attaches its trailer to the call.
func fail(ctx context.Context, err error) error {
	md, err := toStatus(err)
	if md != nil {
		_ = grpc.SetTrailer(ctx, md)
	}
	return err
}

// --- Service RPCs ---

func (s *GRPCServer) Now(ctx context.Context, _ *NowRequest) (*types.WireTimestamp, error) {
	ts, err := s.srv.Now(ctx)
	if err != nil {
		return nil, fail(ctx, err)
	}
	w := ts.ToWire()
	return &w, nil
}

func (s *GRPCServer) FormatTime(ctx context.Context, req *FormatTimeRequest) (*TextResponse, error) {
	ts, err := req.Time.FromWire()
	if err != nil {
		return nil, fail(ctx, err)
	}
	text, err := s.srv.FormatTime(ctx, ts, req.Layout)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &TextResponse{Text: text}, nil
}

func (s *GRPCServer) ParseTime(ctx context.Context, req *ParseTimeRequest) (*types.WireTimestamp, error) {
	ts, err := s.srv.ParseTime(ctx, req.Text, req.Layout)
	if err != nil {
		return nil, fail(ctx, err)
	}
	w := ts.ToWire()
	return &w, nil
}

func (s *GRPCServer) FormatDuration(ctx context.Context, req *FormatDurationRequest) (*TextResponse, error) {
	d, err := req.Duration.FromWire()
	if err != nil {
		return nil, fail(ctx, err)
	}
	text, err := s.srv.FormatDuration(ctx, d, req.Layout, req.InfinityLayout)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &TextResponse{Text: text}, nil
}

// --- Ticker RPC ---

// Ticks sends a header once the stream is accepted so that clients can
// tell a rejected interval from an empty stream.
func (s *GRPCServer) Ticks(req *TicksRequest, stream grpc.ServerStream) error {
	failStream := func(err error) error {
		md, err := toStatus(err)
		if md != nil {
			stream.SetTrailer(md)
		}
		return err
	}

	interval, err := req.Interval.FromWire()
	if err != nil {
		return failStream(err)
	}
	ch, err := s.srv.Ticks(stream.Context(), interval)
	if err != nil {
		return failStream(err)
	}
	if err := stream.SendHeader(metadata.Pairs("chronos-stream", "ticks")); err != nil {
		return err
	}
	for ts := range ch {
		w := ts.ToWire()
		if err := stream.SendMsg(&w); err != nil {
			return err
		}
	}
	return nil
}
