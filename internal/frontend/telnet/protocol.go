package telnet

// Telnet command and option bytes (RFC 854, RFC 857, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptNAWS            byte = 31
	OptLinemode        byte = 34
)

// optionCommand reports whether cmd is followed by a single option byte.
func optionCommand(cmd byte) bool {
	return cmd == WILL || cmd == WONT || cmd == DO || cmd == DONT
}

// FilterIAC removes Telnet command sequences from raw input. An escaped
// IAC IAC pair yields one literal 0xFF byte.
//
// Postcondition: The result is never longer than input.
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); {
		if input[i] != IAC || i+1 >= len(input) {
			out = append(out, input[i])
			i++
			continue
		}
		cmd := input[i+1]
		switch {
		case optionCommand(cmd):
			i += 3
		case cmd == SB:
			i = skipSubnegotiation(input, i+2)
		case cmd == IAC:
			out = append(out, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return out
}

// skipSubnegotiation returns the index just past the IAC SE that closes a
// subnegotiation starting at from, or len(input) if it never closes.
func skipSubnegotiation(input []byte, from int) int {
	for j := from; j+1 < len(input); j++ {
		if input[j] == IAC && input[j+1] == SE {
			return j + 2
		}
	}
	return len(input)
}
