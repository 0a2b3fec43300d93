package raft

import (
	"fmt"

	"github.com/larryuc/t2-iic2523/kv"
	"golang.org/x/exp/slices"
)

const invalidIndexErrorFormat = "invalid index: log does not contain index %d"

// Entry is a log entry: a command and the term in which the leader received it.
type Entry struct {
	Term    int
	Command kv.Command
}

func (e Entry) String() string {
	return fmt.Sprintf("(%d, %s)", e.Term, e.Command)
}

// Log is the in-memory log of a node. Positions start at zero.
type Log struct {
	entries []Entry
}

func NewLog(entries ...Entry) *Log {
	return &Log{entries: slices.Clone(entries)}
}

func (l *Log) Size() int {
	return len(l.entries)
}

// LastTerm returns the term of the last entry, zero if the log is empty.
func (l *Log) LastTerm() int {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Term
}

func (l *Log) Append(entries ...Entry) {
	l.entries = append(l.entries, entries...)
}

func (l *Log) GetEntry(index int) (Entry, error) {
	if !l.Contains(index) {
		return Entry{}, fmt.Errorf(invalidIndexErrorFormat, index)
	}
	return l.entries[index], nil
}

func (l *Log) Contains(index int) bool {
	return index >= 0 && index < len(l.entries)
}

// Entries returns a copy of the entries.
func (l *Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Commands returns the commands of the first n entries, or of all of them if
// the log is shorter.
func (l *Log) Commands(n int) []kv.Command {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	commands := make([]kv.Command, 0, n)
	for _, e := range l.entries[:n] {
		commands = append(commands, e.Command)
	}
	return commands
}

// Replace discards the log and copies entries into it.
func (l *Log) Replace(entries []Entry) {
	l.entries = slices.Clone(entries)
}

func (l *Log) Equal(other *Log) bool {
	return slices.Equal(l.entries, other.entries)
}
