package deskserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/frontend/handlers"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/random"
)

var _ handlers.Desk = (*Client)(nil)

const adminPassword = "concierge"

func adminHash(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// startDesk serves a fresh manager over an in-memory listener.
func startDesk(t *testing.T, hash string) (*Client, *desk.Manager) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	m := desk.NewManager(
		inventory.MustNew(inventory.DefaultLayout()),
		allocator.New(allocator.DefaultOptions()),
		logger,
		desk.Options{OccupancyProbability: 0.3, Source: random.NewSeededSource(11)},
	)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(m, auth.NewVerifier(hash), logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, m
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_Ping(t *testing.T) {
	client, _ := startDesk(t, "")
	assert.NoError(t, client.Ping(testContext(t)))
}

func TestClient_SnapshotMatchesManager(t *testing.T) {
	client, m := startDesk(t, "")
	ctx := testContext(t)

	_, err := m.Book(ctx, 3)
	require.NoError(t, err)

	remote, err := client.Snapshot(ctx)
	require.NoError(t, err)
	local, err := m.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, local.Rooms(), remote.Rooms())
	assert.Equal(t, local.Layout(), remote.Layout())
}

func TestClient_BookCommitsRemotely(t *testing.T) {
	client, m := startDesk(t, "")
	ctx := testContext(t)

	receipt, err := client.Book(ctx, 2)
	require.NoError(t, err)
	require.True(t, receipt.Result.Success)
	assert.Equal(t, []int{101, 102}, receipt.Result.RoomNumbers())
	assert.Equal(t, 1, receipt.Result.TotalTravelTime)
	assert.Equal(t, allocator.StrategySameFloor, receipt.Result.Strategy)

	inv, _ := m.Snapshot(ctx)
	r, _ := inv.Room(102)
	assert.Equal(t, inventory.Selected, r.Status)

	got, err := client.Booking(ctx, receipt.ConfirmationID)
	require.NoError(t, err)
	assert.Equal(t, receipt.ConfirmationID, got.ConfirmationID)
	assert.Equal(t, receipt.Result, got.Result)

	bookings, err := client.Bookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, receipt.ConfirmationID, bookings[0].ConfirmationID)
}

func TestClient_BookingNotFound(t *testing.T) {
	client, _ := startDesk(t, "")
	_, err := client.Booking(testContext(t), "missing")
	assert.ErrorIs(t, err, desk.ErrBookingNotFound)
}

func TestClient_QuoteMatchesManager(t *testing.T) {
	client, m := startDesk(t, "")
	ctx := testContext(t)
	_, _ = m.Randomize(ctx)

	for _, k := range []int{-1, 0, 1, 2, 3, 4, 5, 6} {
		remote, err := client.Quote(ctx, k)
		require.NoError(t, err)
		local, err := m.Quote(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, local, remote, "count %d", k)
	}
}

func TestClient_PreviewCarriesAllocationInventory(t *testing.T) {
	client, m := startDesk(t, "")
	ctx := testContext(t)
	_, err := m.Book(ctx, 4)
	require.NoError(t, err)

	res, inv, err := client.Preview(ctx, 2)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, []int{105, 106}, res.RoomNumbers())

	local, _ := m.Snapshot(ctx)
	assert.Equal(t, local.Rooms(), inv.Rooms())
	assert.Equal(t, local.Layout(), inv.Layout())
}

func TestClient_AllocationFailureIsAResult(t *testing.T) {
	client, _ := startDesk(t, "")
	receipt, err := client.Book(testContext(t), 6)
	require.NoError(t, err)
	assert.False(t, receipt.Result.Success)
	assert.Equal(t, allocator.ExceedsMaxRooms, receipt.Result.Failure)
	assert.Empty(t, receipt.ConfirmationID)
}

func TestService_MissingCountIsInvalidArgument(t *testing.T) {
	client, _ := startDesk(t, "")
	var resp BookResponse
	err := client.conn.Invoke(testContext(t), MethodBook, &CountRequest{}, &resp, grpc.CallContentSubtype(codecName))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAdmin_RequiresPassword(t *testing.T) {
	client, m := startDesk(t, adminHash(t))
	ctx := testContext(t)
	_, err := m.Book(ctx, 1)
	require.NoError(t, err)

	_, err = client.Reset(ctx)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = client.Randomize(auth.ContextWithPassword(ctx, "bellhop"))
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	bookings, _ := m.Bookings(ctx)
	assert.Len(t, bookings, 1, "rejected admin calls must not touch the desk")

	inv, err := client.Reset(auth.ContextWithPassword(ctx, adminPassword))
	require.NoError(t, err)
	assert.Equal(t, 97, inv.CountByStatus()[inventory.Available])
	bookings, _ = m.Bookings(ctx)
	assert.Empty(t, bookings)

	inv, err = client.Randomize(auth.ContextWithPassword(ctx, adminPassword))
	require.NoError(t, err)
	assert.Zero(t, inv.CountByStatus()[inventory.Selected])
}

func TestAdmin_VerifyAdmin(t *testing.T) {
	client, _ := startDesk(t, adminHash(t))
	ctx := testContext(t)
	assert.NoError(t, client.VerifyAdmin(ctx, adminPassword))
	assert.ErrorIs(t, client.VerifyAdmin(ctx, "wrong"), auth.ErrInvalidCredentials)
}

func TestAdmin_Disabled(t *testing.T) {
	client, _ := startDesk(t, "")
	ctx := auth.ContextWithPassword(testContext(t), adminPassword)
	_, err := client.Reset(ctx)
	assert.ErrorIs(t, err, auth.ErrAdminDisabled)
	assert.ErrorIs(t, client.VerifyAdmin(ctx, adminPassword), auth.ErrAdminDisabled)
}

func TestClient_PasswordNotSentOnPublicMethods(t *testing.T) {
	client, _ := startDesk(t, adminHash(t))
	ctx := auth.ContextWithPassword(testContext(t), "wrong")
	_, err := client.Snapshot(ctx)
	assert.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
