package command

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownCommand is returned by Lookup for a word no command answers to.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAdminRequired is returned by Lookup for an admin command on a locked
	// session.
	ErrAdminRequired = errors.New("admin access required")
)

// Request is one console line resolved against a Registry.
type Request struct {
	// Word is the first word typed, lowercased. Empty for a blank line.
	Word string
	// Args are the remaining words.
	Args []string
	// Command is the resolved command. Nil for a blank line or an unknown
	// word.
	Command *Command
}

// Blank reports whether the line held nothing to run.
func (r Request) Blank() bool {
	return r.Word == ""
}

func splitLine(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	if len(fields) == 1 {
		return strings.ToLower(fields[0]), nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
