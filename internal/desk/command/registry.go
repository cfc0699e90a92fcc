package command

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Registry resolves console input to desk commands. Names and aliases share
// one case-insensitive namespace.
type Registry struct {
	byWord   map[string]*Command
	commands []*Command // sorted by name
}

// Section is one help heading and its commands.
type Section struct {
	Category string
	Commands []*Command
}

// NewRegistry creates a Registry from cmds.
//
// Precondition: Every command has a one-word lowercase name and a category
// from CategoryOrder, and no name or alias is used twice.
// Postcondition: Returns a Registry or an error naming the first violation.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command)}
	for i := range cmds {
		cmd := cmds[i]
		if err := checkWord(cmd.Name); err != nil {
			return nil, fmt.Errorf("command %d: name: %w", i, err)
		}
		if !slices.Contains(CategoryOrder, cmd.Category) {
			return nil, fmt.Errorf("command %q: unknown category %q", cmd.Name, cmd.Category)
		}
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			if err := checkWord(word); err != nil {
				return nil, fmt.Errorf("command %q: alias: %w", cmd.Name, err)
			}
			if other, taken := r.byWord[word]; taken {
				return nil, fmt.Errorf("command %q: %q is already used by %q", cmd.Name, word, other.Name)
			}
			r.byWord[word] = &cmd
		}
		r.commands = append(r.commands, &cmd)
	}
	sort.Slice(r.commands, func(i, j int) bool { return r.commands[i].Name < r.commands[j].Name })
	return r, nil
}

func checkWord(w string) error {
	switch {
	case w == "":
		return fmt.Errorf("empty")
	case strings.ContainsAny(w, " \t\r\n"):
		return fmt.Errorf("%q contains whitespace", w)
	case strings.ToLower(w) != w:
		return fmt.Errorf("%q must be lowercase", w)
	}
	return nil
}

// DefaultRegistry creates a Registry with all built-in desk commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Lookup splits a console line and resolves its first word. admin reports
// whether the session has unlocked admin commands.
//
// Postcondition: A blank line returns a Blank request and nil. An unknown
// word wraps ErrUnknownCommand. An admin command on a locked session
// returns the resolved request and wraps ErrAdminRequired.
func (r *Registry) Lookup(line string, admin bool) (Request, error) {
	word, args := splitLine(line)
	req := Request{Word: word, Args: args}
	if word == "" {
		return req, nil
	}
	cmd, ok := r.byWord[word]
	if !ok {
		return req, fmt.Errorf("%w: %q", ErrUnknownCommand, word)
	}
	req.Command = cmd
	if cmd.Admin && !admin {
		return req, fmt.Errorf("%w: %s", ErrAdminRequired, cmd.Name)
	}
	return req, nil
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.commands)
}

// Sections groups the commands under CategoryOrder for help output,
// skipping empty categories.
func (r *Registry) Sections() []Section {
	var out []Section
	for _, cat := range CategoryOrder {
		var cmds []*Command
		for _, cmd := range r.commands {
			if cmd.Category == cat {
				cmds = append(cmds, cmd)
			}
		}
		if len(cmds) > 0 {
			out = append(out, Section{Category: cat, Commands: cmds})
		}
	}
	return out
}
