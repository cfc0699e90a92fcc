// Package handlers runs the front-desk console over a Telnet session.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/auth"
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/desk/command"
	"github.com/cory-johannsen/hotel/internal/frontend/telnet"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Desk is the booking surface the console drives. *desk.Manager and the
// gRPC desk client both implement it.
type Desk interface {
	Snapshot(ctx context.Context) (inventory.Inventory, error)
	// Preview quotes count rooms and returns the inventory the quote ran
	// against.
	Preview(ctx context.Context, count int) (allocator.BookingResult, inventory.Inventory, error)
	Book(ctx context.Context, count int) (desk.Receipt, error)
	Randomize(ctx context.Context) (inventory.Inventory, error)
	Reset(ctx context.Context) (inventory.Inventory, error)
	Bookings(ctx context.Context) ([]desk.Receipt, error)
}

// UnlockFunc checks an admin password. It returns auth.ErrAdminDisabled or
// auth.ErrInvalidCredentials on refusal.
type UnlockFunc func(ctx context.Context, password string) error

const (
	prompt      = "[desk]> "
	adminPrompt = "[desk#admin]> "
)

// DeskHandler implements telnet.SessionHandler for the front-desk console.
type DeskHandler struct {
	desk     Desk
	unlock   UnlockFunc
	registry *command.Registry
	logger   *zap.Logger
}

// NewDeskHandler creates a console handler.
//
// Precondition: d and logger must be non-nil. A nil unlock disables admin
// commands.
// Postcondition: Returns a DeskHandler ready to handle sessions.
func NewDeskHandler(d Desk, unlock UnlockFunc, logger *zap.Logger) *DeskHandler {
	return &DeskHandler{
		desk:     d,
		unlock:   unlock,
		registry: command.DefaultRegistry(),
		logger:   logger,
	}
}

// session is the per-connection console state.
type session struct {
	conn     *telnet.Conn
	admin    bool
	password string
	commands int
}

func (s *session) prompt() string {
	if s.admin {
		return telnet.Colorize(telnet.BrightRed, adminPrompt)
	}
	return telnet.Colorize(telnet.BrightCyan, prompt)
}

// HandleSession implements telnet.SessionHandler. It greets the client with
// the floor map and runs commands until quit, disconnect, or shutdown.
//
// Postcondition: Returns nil on quit, ctx.Err() on shutdown, or the read or
// write error that ended the session.
func (h *DeskHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	s := &session{conn: conn}
	logger := h.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))

	if err := h.greet(ctx, s); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The front desk is closing. Goodbye."))
			return err
		}
		if err := conn.WritePrompt(s.prompt()); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		req, err := h.registry.Lookup(line, s.admin)
		if req.Blank() {
			continue
		}
		s.commands++
		switch {
		case errors.Is(err, command.ErrUnknownCommand):
			if err := conn.WriteLine(telnet.Colorf(telnet.Dim, "Unknown command %q. Type help for a list.", req.Word)); err != nil {
				return err
			}
			continue
		case errors.Is(err, command.ErrAdminRequired):
			if err := conn.WriteLine(telnet.Colorf(telnet.Red, "%s requires admin access. Type admin first.", req.Command.Name)); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}
		cmd := req.Command

		fn, ok := deskHandlerMap[cmd.Handler]
		if !ok {
			return fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
		}
		res, err := fn(&deskContext{ctx: ctx, h: h, s: s, cmd: cmd, req: req})
		if err != nil {
			return err
		}
		if res.quit {
			logger.Info("desk session quit",
				zap.Int("commands", s.commands),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		}
	}
}

func (h *DeskHandler) greet(ctx context.Context, s *session) error {
	inv, err := h.desk.Snapshot(ctx)
	if err != nil {
		_ = s.conn.WriteLine(telnet.Colorf(telnet.Red, "Front desk unavailable: %v", err))
		return fmt.Errorf("loading inventory: %w", err)
	}
	return s.conn.WriteLines(
		telnet.Colorf(telnet.Bold+telnet.BrightYellow, "Welcome to the %s front desk.", inv.Layout().Name),
		fmt.Sprintf("Type %s to see the floor map or %s for commands.",
			telnet.Colorize(telnet.Green, "show"), telnet.Colorize(telnet.Green, "help")),
		"",
	)
}

// adminContext attaches the session password for desks that forward it.
func (s *session) adminContext(ctx context.Context) context.Context {
	return auth.ContextWithPassword(ctx, s.password)
}

// errorLine renders a desk error for the client.
func errorLine(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return telnet.Colorize(telnet.Red, "The front desk did not answer in time.")
	}
	return telnet.Colorf(telnet.Red, "Front desk error: %v", err)
}
