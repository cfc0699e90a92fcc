// Package command provides the front-desk console's command registry,
// line lookup, and built-in command definitions.
package command

import (
	"fmt"
	"strconv"
)

// Categories for organizing commands. CategoryOrder is the order help
// lists them in.
const (
	CategoryBooking = "booking"
	CategoryInfo    = "info"
	CategoryAdmin   = "admin"
	CategorySystem  = "system"
)

// CategoryOrder lists categories in display order.
var CategoryOrder = []string{CategoryBooking, CategoryInfo, CategoryAdmin, CategorySystem}

// Handler identifiers mapping commands to console actions.
const (
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
	HandlerShow      = "show"
	HandlerRoom      = "room"
	HandlerQuote     = "quote"
	HandlerBook      = "book"
	HandlerBookings  = "bookings"
	HandlerAdmin     = "admin"
	HandlerRandomize = "randomize"
	HandlerReset     = "reset"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "book <count>".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the console action.
	Handler string
	// Admin commands require an unlocked admin session.
	Admin bool
}

// BuiltinCommands returns all built-in desk commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "book", Aliases: []string{"b"}, Usage: "book <count>", Help: "Book count rooms (1-5) with the lowest travel time", Category: CategoryBooking, Handler: HandlerBook},
		{Name: "quote", Aliases: []string{"q"}, Usage: "quote <count>", Help: "Show which rooms a booking would get without booking them", Category: CategoryBooking, Handler: HandlerQuote},
		{Name: "bookings", Aliases: []string{"ledger"}, Usage: "bookings", Help: "List bookings made since the last reset", Category: CategoryBooking, Handler: HandlerBookings},

		{Name: "show", Aliases: []string{"map", "l"}, Usage: "show", Help: "Show the floor map", Category: CategoryInfo, Handler: HandlerShow},
		{Name: "room", Aliases: []string{"r"}, Usage: "room <number>", Help: "Show one room's floor, position, and status", Category: CategoryInfo, Handler: HandlerRoom},

		{Name: "admin", Aliases: []string{"su"}, Usage: "admin", Help: "Unlock admin commands", Category: CategoryAdmin, Handler: HandlerAdmin},
		{Name: "randomize", Aliases: []string{"random"}, Usage: "randomize", Help: "Randomly mark rooms occupied", Category: CategoryAdmin, Handler: HandlerRandomize, Admin: true},
		{Name: "reset", Usage: "reset", Help: "Mark every room available", Category: CategoryAdmin, Handler: HandlerReset, Admin: true},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "logout"}, Usage: "quit", Help: "Leave the front desk", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// ParseCount reads the room count argument of book and quote.
//
// Postcondition: Returns the integer value of args[0], or an error when it
// is missing or not an integer. Range checks are left to the allocator.
func ParseCount(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing room count")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("room count %q is not a number", args[0])
	}
	return n, nil
}

// ParseRoomNumber reads the room number argument of room.
//
// Postcondition: Returns a positive room number or an error.
func ParseRoomNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing room number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a room number", args[0])
	}
	return n, nil
}
