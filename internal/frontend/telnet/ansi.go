// Package telnet serves the front-desk console over Telnet with ANSI
// colors.
package telnet

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI SGR sequences.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack  = "\033[90m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"

	BgRed    = "\033[41m"
	BgGreen  = "\033[42m"
	BgYellow = "\033[43m"
)

// Colorize wraps text in color followed by Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats and wraps the result in color followed by Reset.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes every ESC [ ... m sequence from s.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 3
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// VisibleLen is the number of printable runes in s.
func VisibleLen(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// PadRight pads s with spaces to width printable columns.
//
// Postcondition: VisibleLen(result) == max(width, VisibleLen(s)).
func PadRight(s string, width int) string {
	if n := VisibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
