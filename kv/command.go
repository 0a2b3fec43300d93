// Package kv implements the key-value store replicated by the consensus engines.
package kv

import "strings"

// Op identifies the operation carried by a Command.
type Op uint8

const (
	// Invalid marks text that is not a well-formed command. Applying it is a no-op.
	Invalid Op = iota
	Set
	Add
	Del
)

func (o Op) String() string {
	switch o {
	case Set:
		return "SET"
	case Add:
		return "ADD"
	case Del:
		return "DEL"
	default:
		return "INVALID"
	}
}

// Command is a parsed store mutation. Commands are comparable: two commands are
// the same action if and only if they were produced from the same text.
type Command struct {
	Op    Op
	Key   string
	Value string

	// The text the command was parsed from.
	raw string
}

// NewSet returns the command SET-key-value.
func NewSet(key, value string) Command {
	return Command{Op: Set, Key: key, Value: value, raw: "SET-" + key + "-" + value}
}

// NewAdd returns the command ADD-key-value.
func NewAdd(key, value string) Command {
	return Command{Op: Add, Key: key, Value: value, raw: "ADD-" + key + "-" + value}
}

// NewDel returns the command DEL-key.
func NewDel(key string) Command {
	return Command{Op: Del, Key: key, raw: "DEL-" + key}
}

// ParseCommand parses text of the form OP-KEY-VALUE (SET, ADD) or OP-KEY (DEL).
// The value may itself contain dashes. Anything else yields an Invalid command
// that still remembers its text.
func ParseCommand(text string) Command {
	cmd := Command{raw: text}
	if !strings.Contains(text, "-") {
		return cmd
	}

	parts := strings.SplitN(text, "-", 3)
	switch parts[0] {
	case "SET", "ADD":
		if len(parts) < 3 {
			return cmd
		}
		cmd.Op = Set
		if parts[0] == "ADD" {
			cmd.Op = Add
		}
		cmd.Key, cmd.Value = parts[1], parts[2]
	case "DEL":
		cmd.Op = Del
		cmd.Key = parts[1]
	}
	return cmd
}

// NormalizeCommand trims and upper-cases the operation and trims the key and the
// value before parsing.
func NormalizeCommand(text string) Command {
	if text == "" {
		return ParseCommand(text)
	}
	parts := strings.SplitN(text, "-", 3)
	parts[0] = strings.ToUpper(strings.TrimSpace(parts[0]))
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return ParseCommand(strings.Join(parts, "-"))
}

// Valid reports whether the command can change a store.
func (c Command) Valid() bool {
	return c.Op != Invalid
}

func (c Command) String() string {
	return c.raw
}
