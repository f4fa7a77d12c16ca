package command

import (
	"strings"
)

// Command represents a parsed shell command.
type Command struct {
	Name      string
	Args      []string
	Raw       string
	Remainder string
}

// Parse parses a line into a Command. A leading "/" is accepted and
// ignored; ok is false for blank input.
func Parse(input string) (Command, bool) {
	trimmed := strings.TrimLeft(input, " \t")
	trimmed = strings.TrimPrefix(trimmed, "/")
	raw := strings.TrimSpace(trimmed)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name:      strings.ToLower(fields[0]),
		Args:      fields[1:],
		Raw:       raw,
		Remainder: remainderAfterTokens(raw, 1),
	}, true
}

// Flag reports whether any of names appears in the arguments.
func (c Command) Flag(names ...string) bool {
	for _, arg := range c.Args {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}

func remainderAfterTokens(raw string, count int) string {
	i := 0
	remaining := count
	for remaining > 0 && i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		remaining--
	}
	if i >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[i:])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
