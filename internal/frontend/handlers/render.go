package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/desk/command"
	"github.com/cory-johannsen/hotel/internal/frontend/telnet"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// statusColor maps each room status to its map color.
var statusColor = map[inventory.Status]string{
	inventory.Available: telnet.Green,
	inventory.Occupied:  telnet.Red,
	inventory.Selected:  telnet.Yellow,
}

// statusLabel is the legend text for each status.
var statusLabel = map[inventory.Status]string{
	inventory.Available: "available",
	inventory.Occupied:  "occupied",
	inventory.Selected:  "booked",
}

const quotedColor = telnet.Bold + telnet.BrightCyan

// RenderFloorMap draws the inventory top floor first, one row per floor,
// each room colored by status. Rooms in highlight are drawn in the quote
// color regardless of status.
func RenderFloorMap(inv inventory.Inventory, highlight map[int]bool) string {
	layout := inv.Layout()
	cell := len(strconv.Itoa(inventory.RoomNumber(layout.Floors(), inventory.MaxRoomsPerFloor)))
	label := len(strconv.Itoa(layout.Floors()))

	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightWhite, layout.Name))
	b.WriteString("\r\n")
	for f := layout.Floors(); f >= 1; f-- {
		b.WriteString(telnet.Colorf(telnet.BrightBlack, "  Floor %*d | ", label, f))
		for _, r := range inv.Floor(f) {
			color := statusColor[r.Status]
			if highlight[r.Number] {
				color = quotedColor
			}
			b.WriteString(telnet.PadRight(telnet.Colorize(color, strconv.Itoa(r.Number)), cell+1))
		}
		b.WriteString("\r\n")
	}
	b.WriteString(renderLegend(highlight != nil))
	b.WriteString(RenderCounts(inv))
	return b.String()
}

func renderLegend(withQuote bool) string {
	parts := make([]string, 0, len(inventory.AllStatuses)+1)
	for _, s := range inventory.AllStatuses {
		parts = append(parts, telnet.Colorize(statusColor[s], statusLabel[s]))
	}
	if withQuote {
		parts = append(parts, telnet.Colorize(quotedColor, "quoted"))
	}
	return "  Legend: " + strings.Join(parts, "  ") + "\r\n"
}

// RenderCounts summarizes how many rooms are in each status.
func RenderCounts(inv inventory.Inventory) string {
	counts := inv.CountByStatus()
	return fmt.Sprintf("  %d rooms: %s available, %s occupied, %s booked\r\n",
		inv.Count(),
		telnet.Colorf(statusColor[inventory.Available], "%d", counts[inventory.Available]),
		telnet.Colorf(statusColor[inventory.Occupied], "%d", counts[inventory.Occupied]),
		telnet.Colorf(statusColor[inventory.Selected], "%d", counts[inventory.Selected]),
	)
}

// RenderRoom describes a single room.
func RenderRoom(r inventory.Room) string {
	return fmt.Sprintf("Room %s: floor %d, position %d, %s",
		telnet.Colorize(telnet.Bold, strconv.Itoa(r.Number)),
		r.Floor, r.Position,
		telnet.Colorize(statusColor[r.Status], statusLabel[r.Status]),
	)
}

// RenderBooking formats the outcome of a book command.
func RenderBooking(receipt desk.Receipt) string {
	res := receipt.Result
	if !res.Success {
		return telnet.Colorize(telnet.Red, res.Message)
	}
	return telnet.Colorize(telnet.BrightGreen, res.Message) + "\r\n" +
		telnet.Colorf(telnet.Dim, "Confirmation: %s", receipt.ConfirmationID)
}

// RenderQuote formats the outcome of a quote command.
func RenderQuote(res allocator.BookingResult) string {
	if !res.Success {
		return telnet.Colorize(telnet.Red, res.Message)
	}
	line := fmt.Sprintf("Would book %s", joinNumbers(res.RoomNumbers()))
	if res.ShowTravelTime() {
		line += fmt.Sprintf(" (travel time %d min)", res.TotalTravelTime)
	}
	return telnet.Colorize(telnet.BrightCyan, line) +
		telnet.Colorf(telnet.Dim, " via %s search", res.Strategy)
}

// RenderBookings lists the booking ledger oldest first.
func RenderBookings(receipts []desk.Receipt) string {
	if len(receipts) == 0 {
		return telnet.Colorize(telnet.Dim, "No bookings since the last reset.")
	}
	var b strings.Builder
	for i, r := range receipts {
		if i > 0 {
			b.WriteString("\r\n")
		}
		fmt.Fprintf(&b, "  %s  %s  %s",
			telnet.Colorize(telnet.Dim, r.BookedAt.Format("15:04:05")),
			telnet.Colorize(telnet.Yellow, joinNumbers(r.Result.RoomNumbers())),
			r.ConfirmationID,
		)
		if r.Result.ShowTravelTime() {
			fmt.Fprintf(&b, "  %d min", r.Result.TotalTravelTime)
		}
	}
	return b.String()
}

// RenderHelp lists the commands by category. Admin commands are marked
// unless the session is unlocked.
func RenderHelp(reg *command.Registry, admin bool) string {
	var b strings.Builder
	for _, sec := range reg.Sections() {
		cat, cmds := sec.Category, sec.Commands
		b.WriteString(telnet.Colorf(telnet.BrightYellow, "%s commands:", strings.ToUpper(cat[:1])+cat[1:]))
		b.WriteString("\r\n")
		for _, cmd := range cmds {
			help := cmd.Help
			if cmd.Admin && !admin {
				help += telnet.Colorize(telnet.Dim, " (locked)")
			}
			fmt.Fprintf(&b, "  %s %s\r\n", telnet.PadRight(telnet.Colorize(telnet.Green, cmd.Usage), 16), help)
		}
	}
	return b.String()
}

func joinNumbers(numbers []int) string {
	s := make([]string, len(numbers))
	for i, n := range numbers {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}
