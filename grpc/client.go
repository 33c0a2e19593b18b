package chronosgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/clock"
	"github.com/blockberries/chronos/types"
)

// Compile-time interface check.
var _ chronos.Connection = (*Client)(nil)

// Client implements chronos.Connection for a remote time service over
// gRPC using cramberry serialization. Errors come back as
// *chronos.Failure values that match the same sentinels as on the
// server.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote time service.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(codec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("chronos client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// Source returns the remote clock as a clock.Source, for use with
// types.NowFrom and anything else that takes a local collaborator.
func (c *Client) Source() clock.Source {
	return chronos.SourceOf(c)
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	var trailer metadata.MD
	if err := c.cc.Invoke(ctx, fullMethod(method), req, resp, grpc.Trailer(&trailer)); err != nil {
		return fromStatus(err, trailer)
	}
	return nil
}

// --- Service ---

func (c *Client) Now(ctx context.Context) (types.Timestamp, error) {
	resp := new(types.WireTimestamp)
	if err := c.invoke(ctx, "Now", &NowRequest{}, resp); err != nil {
		return types.Timestamp{}, err
	}
	return resp.FromWire()
}

func (c *Client) FormatTime(ctx context.Context, ts types.Timestamp, layout string) (string, error) {
	req := &FormatTimeRequest{Time: ts.ToWire(), Layout: layout}
	resp := new(TextResponse)
	if err := c.invoke(ctx, "FormatTime", req, resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) ParseTime(ctx context.Context, text, layout string) (types.Timestamp, error) {
	req := &ParseTimeRequest{Text: text, Layout: layout}
	resp := new(types.WireTimestamp)
	if err := c.invoke(ctx, "ParseTime", req, resp); err != nil {
		return types.Timestamp{}, err
	}
	return resp.FromWire()
}

func (c *Client) FormatDuration(ctx context.Context, d types.Duration, layout, infLayout string) (string, error) {
	req := &FormatDurationRequest{Duration: d.ToWire(), Layout: layout, InfinityLayout: infLayout}
	resp := new(TextResponse)
	if err := c.invoke(ctx, "FormatDuration", req, resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// --- Capability Accessors ---

// AsTicker returns a Ticker backed by the server-streaming Ticks RPC.
func (c *Client) AsTicker() chronos.Ticker {
	return &clientTicker{c}
}

// --- Ticker wrapper ---

type clientTicker struct{ c *Client }

func (w *clientTicker) Ticks(ctx context.Context, interval types.Duration) (<-chan types.Timestamp, error) {
	stream, err := w.c.cc.NewStream(ctx, &ticksStream, fullMethod("Ticks"))
	if err != nil {
		return nil, fromStatus(err, nil)
	}
	if err := stream.SendMsg(&TicksRequest{Interval: interval.ToWire()}); err != nil {
		return nil, fromStatus(err, stream.Trailer())
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fromStatus(err, stream.Trailer())
	}

	// The server only sends headers once it accepted the interval.
	md, err := stream.Header()
	if err != nil {
		return nil, fromStatus(err, stream.Trailer())
	}
	if md == nil {
		err := stream.RecvMsg(new(types.WireTimestamp))
		return nil, fromStatus(err, stream.Trailer())
	}

	ch := make(chan types.Timestamp, 1)
	go func() {
		defer close(ch)
		for {
			msg := new(types.WireTimestamp)
			if err := stream.RecvMsg(msg); err != nil {
				return
			}
			ts, err := msg.FromWire()
			if err != nil {
				return
			}
			select {
			case ch <- ts:
			default:
			}
		}
	}()
	return ch, nil
}
