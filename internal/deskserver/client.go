package deskserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Client drives a remote FrontDesk service. It satisfies the console's
// Desk interface. Admin calls forward the password stored with
// auth.ContextWithPassword.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// Dial creates a Client for addr over an insecure channel. Extra dial
// options are appended after the defaults.
//
// Postcondition: Returns a Client or an error; no connection is attempted
// until the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating front desk client for %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection. Calls made through it must use
// the hotelpb content-subtype; Dial configures that.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping checks that the remote FrontDesk service reports SERVING.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("checking front desk health: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("front desk is %s", resp.GetStatus())
	}
	return nil
}

// Snapshot fetches the current inventory.
func (c *Client) Snapshot(ctx context.Context) (inventory.Inventory, error) {
	return c.snapshotCall(ctx, MethodSnapshot)
}

// Quote allocates without committing.
func (c *Client) Quote(ctx context.Context, count int) (allocator.BookingResult, error) {
	var resp QuoteResponse
	if err := c.invoke(ctx, MethodQuote, &CountRequest{Count: &count}, &resp); err != nil {
		return allocator.BookingResult{}, err
	}
	return resp.Result, nil
}

// Preview is Quote plus the inventory the allocation ran against.
func (c *Client) Preview(ctx context.Context, count int) (allocator.BookingResult, inventory.Inventory, error) {
	var resp QuoteResponse
	if err := c.invoke(ctx, MethodQuote, &CountRequest{Count: &count}, &resp); err != nil {
		return allocator.BookingResult{}, inventory.Inventory{}, err
	}
	if resp.Snapshot == nil {
		return allocator.BookingResult{}, inventory.Inventory{}, fmt.Errorf("quote response has no snapshot")
	}
	inv, err := resp.Snapshot.Inventory()
	if err != nil {
		return allocator.BookingResult{}, inventory.Inventory{}, fmt.Errorf("decoding quote snapshot: %w", err)
	}
	return resp.Result, inv, nil
}

// Book allocates and commits.
func (c *Client) Book(ctx context.Context, count int) (desk.Receipt, error) {
	var resp BookResponse
	if err := c.invoke(ctx, MethodBook, &CountRequest{Count: &count}, &resp); err != nil {
		return desk.Receipt{}, err
	}
	return resp.Receipt, nil
}

// Randomize overwrites occupancy at random. Requires the admin password.
func (c *Client) Randomize(ctx context.Context) (inventory.Inventory, error) {
	return c.snapshotCall(ctx, MethodRandomize)
}

// Reset marks every room Available. Requires the admin password.
func (c *Client) Reset(ctx context.Context) (inventory.Inventory, error) {
	return c.snapshotCall(ctx, MethodReset)
}

// Bookings fetches the ledger.
func (c *Client) Bookings(ctx context.Context) ([]desk.Receipt, error) {
	var resp BookingsResponse
	if err := c.invoke(ctx, MethodBookings, &Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// Booking fetches one receipt.
//
// Postcondition: Returns desk.ErrBookingNotFound for an unknown id.
func (c *Client) Booking(ctx context.Context, id string) (desk.Receipt, error) {
	var resp BookResponse
	if err := c.invoke(ctx, MethodBooking, &BookingRequest{ConfirmationID: id}, &resp); err != nil {
		return desk.Receipt{}, err
	}
	return resp.Receipt, nil
}

// VerifyAdmin checks password against the server's admin hash.
//
// Postcondition: Returns nil, auth.ErrInvalidCredentials, or
// auth.ErrAdminDisabled, or a transport error.
func (c *Client) VerifyAdmin(ctx context.Context, password string) error {
	return c.invoke(auth.ContextWithPassword(ctx, password), MethodVerifyAdmin, &Empty{}, &Empty{})
}

func (c *Client) snapshotCall(ctx context.Context, method string) (inventory.Inventory, error) {
	var resp SnapshotResponse
	if err := c.invoke(ctx, method, &Empty{}, &resp); err != nil {
		return inventory.Inventory{}, err
	}
	inv, err := resp.Inventory()
	if err != nil {
		return inventory.Inventory{}, fmt.Errorf("front desk sent a bad snapshot: %w", err)
	}
	return inv, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if pw, ok := auth.PasswordFromContext(ctx); ok && adminMethods[method] {
		ctx = metadata.AppendToOutgoingContext(ctx, PasswordMetadataKey, pw)
	}
	if err := c.conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return fromStatus(err)
	}
	return nil
}

// fromStatus maps gRPC status errors back to the sentinels callers check.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return auth.ErrInvalidCredentials
	case codes.PermissionDenied:
		return auth.ErrAdminDisabled
	case codes.NotFound:
		return desk.ErrBookingNotFound
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return fmt.Errorf("front desk %s: %s", st.Code(), st.Message())
	}
}
