package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk/command"
	"github.com/cory-johannsen/hotel/internal/frontend/telnet"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// deskContext carries all inputs a command handler needs.
type deskContext struct {
	ctx context.Context
	h   *DeskHandler
	s   *session
	cmd *command.Command
	req command.Request
}

// deskResult tells the session loop what to do next.
type deskResult struct {
	quit bool
}

// deskHandlerFunc runs one console command. A returned error ends the
// session; desk failures are reported to the client instead.
type deskHandlerFunc func(dc *deskContext) (deskResult, error)

// DeskHandlers returns the map from Handler constant to handler function.
func DeskHandlers() map[string]deskHandlerFunc {
	return deskHandlerMap
}

// deskHandlerMap is the single source of truth for console dispatch.
var deskHandlerMap = map[string]deskHandlerFunc{
	command.HandlerHelp:      handleHelp,
	command.HandlerQuit:      handleQuit,
	command.HandlerShow:      handleShow,
	command.HandlerRoom:      handleRoom,
	command.HandlerQuote:     handleQuote,
	command.HandlerBook:      handleBook,
	command.HandlerBookings:  handleBookings,
	command.HandlerAdmin:     handleAdmin,
	command.HandlerRandomize: handleRandomize,
	command.HandlerReset:     handleReset,
}

func (dc *deskContext) write(lines ...string) (deskResult, error) {
	return deskResult{}, dc.s.conn.WriteLines(lines...)
}

func (dc *deskContext) usage(msg string) (deskResult, error) {
	return dc.write(telnet.Colorize(telnet.Red, msg), telnet.Colorf(telnet.Dim, "Usage: %s", dc.cmd.Usage))
}

func handleHelp(dc *deskContext) (deskResult, error) {
	return deskResult{}, dc.s.conn.Write([]byte(RenderHelp(dc.h.registry, dc.s.admin)))
}

func handleQuit(dc *deskContext) (deskResult, error) {
	_ = dc.s.conn.WriteLine(telnet.Colorize(telnet.Cyan, "Thank you for staying with us. Goodbye."))
	return deskResult{quit: true}, nil
}

func handleShow(dc *deskContext) (deskResult, error) {
	inv, err := dc.h.desk.Snapshot(dc.ctx)
	if err != nil {
		return dc.write(errorLine(err))
	}
	return deskResult{}, dc.s.conn.Write([]byte(RenderFloorMap(inv, nil)))
}

func handleRoom(dc *deskContext) (deskResult, error) {
	n, err := command.ParseRoomNumber(dc.req.Args)
	if err != nil {
		return dc.usage(err.Error())
	}
	inv, err := dc.h.desk.Snapshot(dc.ctx)
	if err != nil {
		return dc.write(errorLine(err))
	}
	room, ok := inv.Room(n)
	if !ok {
		return dc.write(telnet.Colorf(telnet.Red, "There is no room %d.", n))
	}
	return dc.write(RenderRoom(room))
}

func handleQuote(dc *deskContext) (deskResult, error) {
	count, err := command.ParseCount(dc.req.Args)
	if err != nil {
		return dc.usage(err.Error())
	}
	res, inv, err := dc.h.desk.Preview(dc.ctx, count)
	if err != nil {
		return dc.write(errorLine(err))
	}
	if !res.Success {
		return dc.write(RenderQuote(res))
	}

	highlight := make(map[int]bool, len(res.Rooms))
	for _, n := range res.RoomNumbers() {
		highlight[n] = true
	}
	if err := dc.s.conn.Write([]byte(RenderFloorMap(inv, highlight))); err != nil {
		return deskResult{}, err
	}
	return dc.write(RenderQuote(res))
}

func handleBook(dc *deskContext) (deskResult, error) {
	count, err := command.ParseCount(dc.req.Args)
	if err != nil {
		return dc.usage(err.Error())
	}
	receipt, err := dc.h.desk.Book(dc.ctx, count)
	if err != nil {
		return dc.write(errorLine(err))
	}
	if receipt.Result.Success {
		dc.h.logger.Info("console booking",
			zap.String("confirmation_id", receipt.ConfirmationID),
			zap.Ints("rooms", receipt.Result.RoomNumbers()),
		)
	}
	return dc.write(RenderBooking(receipt))
}

func handleBookings(dc *deskContext) (deskResult, error) {
	receipts, err := dc.h.desk.Bookings(dc.ctx)
	if err != nil {
		return dc.write(errorLine(err))
	}
	return dc.write(RenderBookings(receipts))
}

func handleAdmin(dc *deskContext) (deskResult, error) {
	if dc.s.admin {
		return dc.write(telnet.Colorize(telnet.Dim, "Admin commands are already unlocked."))
	}
	if dc.h.unlock == nil {
		return dc.write(telnet.Colorize(telnet.Red, "Admin commands are disabled on this desk."))
	}
	if err := dc.s.conn.WritePrompt("Admin password: "); err != nil {
		return deskResult{}, err
	}
	pw, err := dc.s.conn.ReadPassword()
	if err != nil {
		return deskResult{}, err
	}

	switch err := dc.h.unlock(dc.ctx, pw); {
	case err == nil:
		dc.s.admin = true
		dc.s.password = pw
		dc.h.logger.Info("console admin unlocked", zap.String("remote_addr", dc.s.conn.RemoteAddr().String()))
		return dc.write(telnet.Colorize(telnet.BrightGreen, "Admin commands unlocked."))
	case errors.Is(err, auth.ErrAdminDisabled):
		return dc.write(telnet.Colorize(telnet.Red, "Admin commands are disabled on this desk."))
	case errors.Is(err, auth.ErrInvalidCredentials):
		dc.h.logger.Warn("console admin password rejected", zap.String("remote_addr", dc.s.conn.RemoteAddr().String()))
		return dc.write(telnet.Colorize(telnet.Red, "Incorrect password."))
	default:
		return dc.write(errorLine(err))
	}
}

func handleRandomize(dc *deskContext) (deskResult, error) {
	return adminRebuild(dc, "Occupancy randomized.", dc.h.desk.Randomize)
}

func handleReset(dc *deskContext) (deskResult, error) {
	return adminRebuild(dc, "All rooms are available.", dc.h.desk.Reset)
}

func adminRebuild(dc *deskContext, done string, op func(context.Context) (inventory.Inventory, error)) (deskResult, error) {
	inv, err := op(dc.s.adminContext(dc.ctx))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAdminDisabled) {
			dc.s.admin = false
			dc.s.password = ""
		}
		return dc.write(errorLine(err))
	}
	dc.h.logger.Info("console admin command", zap.String("command", dc.cmd.Name))
	if err := dc.s.conn.Write([]byte(RenderFloorMap(inv, nil))); err != nil {
		return deskResult{}, err
	}
	return dc.write(telnet.Colorize(telnet.BrightGreen, done))
}
