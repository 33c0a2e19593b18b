package chronosgrpc

import (
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/blockberries/chronos"
)

// codeTrailer carries the chronos.Code of a failed call. gRPC codes are
// coarser than chronos codes, so the exact code travels next to them.
const codeTrailer = "chronos-code"

var grpcCodes = map[chronos.Code]codes.Code{
	chronos.CodeUnknown:          codes.Unknown,
	chronos.CodeInvalidParam:     codes.InvalidArgument,
	chronos.CodeArithmetic:       codes.OutOfRange,
	chronos.CodeInvalidTimestamp: codes.OutOfRange,
	chronos.CodeParseFailed:      codes.InvalidArgument,
	chronos.CodeCanceled:         codes.Canceled,
	chronos.CodeTimeout:          codes.DeadlineExceeded,
	chronos.CodeClosed:           codes.FailedPrecondition,
	chronos.CodeUnavailable:      codes.Unavailable,
}

// toStatus converts err into the trailer that names its chronos code and
// a gRPC status error.
func toStatus(err error) (metadata.MD, error) {
	if err == nil {
		return nil, nil
	}
	if _, ok := status.FromError(err); ok {
		return nil, err
	}
	f := chronos.FailureOf(err)
	gc, ok := grpcCodes[f.Code]
	if !ok {
		gc = codes.Unknown
	}
	return metadata.Pairs(codeTrailer, strconv.FormatUint(uint64(f.Code), 10)), status.Error(gc, f.Message)
}

// fromStatus rebuilds a chronos.Failure from a call error and its trailer.
// Without a trailer the gRPC code alone decides.
func fromStatus(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st := status.Convert(err)
	if vals := trailer.Get(codeTrailer); len(vals) > 0 {
		if n, perr := strconv.ParseUint(vals[0], 10, 32); perr == nil {
			return chronos.NewFailure(chronos.Code(n), st.Message())
		}
	}
	code := chronos.CodeUnknown
	switch st.Code() {
	case codes.InvalidArgument:
		code = chronos.CodeInvalidParam
	case codes.Canceled:
		code = chronos.CodeCanceled
	case codes.DeadlineExceeded:
		code = chronos.CodeTimeout
	case codes.Unavailable:
		code = chronos.CodeUnavailable
	case codes.FailedPrecondition:
		code = chronos.CodeClosed
	}
	return chronos.NewFailure(code, st.Message())
}
