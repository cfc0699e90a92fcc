// Package deskserver exposes the desk manager as the hotel.v1.FrontDesk
// gRPC service and provides a client that drives it remotely.
package deskserver

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// ServiceName is the fully qualified FrontDesk service name.
const ServiceName = "hotel.v1.FrontDesk"

// Full method names.
const (
	MethodSnapshot    = "/" + ServiceName + "/Snapshot"
	MethodQuote       = "/" + ServiceName + "/Quote"
	MethodBook        = "/" + ServiceName + "/Book"
	MethodRandomize   = "/" + ServiceName + "/Randomize"
	MethodReset       = "/" + ServiceName + "/Reset"
	MethodBookings    = "/" + ServiceName + "/Bookings"
	MethodBooking     = "/" + ServiceName + "/Booking"
	MethodVerifyAdmin = "/" + ServiceName + "/VerifyAdmin"
)

// adminMethods require the admin password.
var adminMethods = map[string]bool{
	MethodRandomize:   true,
	MethodReset:       true,
	MethodVerifyAdmin: true,
}

// FrontDeskServer is the server API for the FrontDesk service.
type FrontDeskServer interface {
	Snapshot(context.Context, *Empty) (*SnapshotResponse, error)
	Quote(context.Context, *CountRequest) (*QuoteResponse, error)
	Book(context.Context, *CountRequest) (*BookResponse, error)
	Randomize(context.Context, *Empty) (*SnapshotResponse, error)
	Reset(context.Context, *Empty) (*SnapshotResponse, error)
	Bookings(context.Context, *Empty) (*BookingsResponse, error)
	Booking(context.Context, *BookingRequest) (*BookResponse, error)
	VerifyAdmin(context.Context, *Empty) (*Empty, error)
}

// RegisterFrontDeskServer registers srv on s.
func RegisterFrontDeskServer(s grpc.ServiceRegistrar, srv FrontDeskServer) {
	s.RegisterService(&FrontDeskServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodHandler for one FrontDesk method.
func unaryHandler[Req any, Resp any](fullMethod string, call func(FrontDeskServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
		}
		if interceptor == nil {
			return call(srv.(FrontDeskServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FrontDeskServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FrontDeskServiceDesc describes the FrontDesk service for grpc.Server.
var FrontDeskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrontDeskServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Snapshot", Handler: unaryHandler(MethodSnapshot, FrontDeskServer.Snapshot)},
		{MethodName: "Quote", Handler: unaryHandler(MethodQuote, FrontDeskServer.Quote)},
		{MethodName: "Book", Handler: unaryHandler(MethodBook, FrontDeskServer.Book)},
		{MethodName: "Randomize", Handler: unaryHandler(MethodRandomize, FrontDeskServer.Randomize)},
		{MethodName: "Reset", Handler: unaryHandler(MethodReset, FrontDeskServer.Reset)},
		{MethodName: "Bookings", Handler: unaryHandler(MethodBookings, FrontDeskServer.Bookings)},
		{MethodName: "Booking", Handler: unaryHandler(MethodBooking, FrontDeskServer.Booking)},
		{MethodName: "VerifyAdmin", Handler: unaryHandler(MethodVerifyAdmin, FrontDeskServer.VerifyAdmin)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hotel/v1/frontdesk",
}

// Service implements FrontDeskServer on a desk.Manager.
type Service struct {
	desk   *desk.Manager
	logger *zap.Logger
}

// NewService creates a Service.
//
// Precondition: m and logger must be non-nil.
func NewService(m *desk.Manager, logger *zap.Logger) *Service {
	return &Service{desk: m, logger: logger}
}

// Snapshot returns the current inventory.
func (s *Service) Snapshot(ctx context.Context, _ *Empty) (*SnapshotResponse, error) {
	inv, err := s.desk.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return newSnapshotResponse(inv), nil
}

// Quote allocates without committing and returns the inventory the
// allocation saw. Allocation failures are returned in the result, not as
// errors.
func (s *Service) Quote(ctx context.Context, req *CountRequest) (*QuoteResponse, error) {
	if req.Count == nil {
		return nil, status.Error(codes.InvalidArgument, "count is required")
	}
	res, inv, err := s.desk.Preview(ctx, *req.Count)
	if err != nil {
		return nil, toStatus(err)
	}
	return &QuoteResponse{Result: res, Snapshot: newSnapshotResponse(inv)}, nil
}

// Book allocates and commits. Allocation failures are returned in the
// receipt, not as errors.
func (s *Service) Book(ctx context.Context, req *CountRequest) (*BookResponse, error) {
	if req.Count == nil {
		return nil, status.Error(codes.InvalidArgument, "count is required")
	}
	receipt, err := s.desk.Book(ctx, *req.Count)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookResponse{Receipt: receipt}, nil
}

// Randomize overwrites occupancy at random.
func (s *Service) Randomize(ctx context.Context, _ *Empty) (*SnapshotResponse, error) {
	return s.rebuild(ctx, s.desk.Randomize)
}

// Reset marks every room Available.
func (s *Service) Reset(ctx context.Context, _ *Empty) (*SnapshotResponse, error) {
	return s.rebuild(ctx, s.desk.Reset)
}

func (s *Service) rebuild(ctx context.Context, op func(context.Context) (inventory.Inventory, error)) (*SnapshotResponse, error) {
	inv, err := op(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return newSnapshotResponse(inv), nil
}

// Bookings returns the ledger.
func (s *Service) Bookings(ctx context.Context, _ *Empty) (*BookingsResponse, error) {
	receipts, err := s.desk.Bookings(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookingsResponse{Bookings: receipts}, nil
}

// Booking looks up one receipt.
func (s *Service) Booking(ctx context.Context, req *BookingRequest) (*BookResponse, error) {
	if req.ConfirmationID == "" {
		return nil, status.Error(codes.InvalidArgument, "confirmation_id is required")
	}
	receipt, err := s.desk.Booking(ctx, req.ConfirmationID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BookResponse{Receipt: receipt}, nil
}

// VerifyAdmin succeeds when the admin interceptor accepted the password.
func (s *Service) VerifyAdmin(context.Context, *Empty) (*Empty, error) {
	return &Empty{}, nil
}

// toStatus maps desk errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, desk.ErrBookingNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
