package raft

import (
	"testing"

	"github.com/larryuc/t2-iic2523/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogAppend checks that appended entries can be read back by position.
func TestLogAppend(t *testing.T) {
	log := NewLog()
	assert.Zero(t, log.Size())
	assert.Zero(t, log.LastTerm())

	log.Append(Entry{Term: 1, Command: kv.NewSet("x", "1")}, Entry{Term: 2, Command: kv.NewAdd("x", "2")})

	entry, err := log.GetEntry(1)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Term)
	assert.Equal(t, kv.NewAdd("x", "2"), entry.Command)
	assert.Equal(t, 2, log.Size())
	assert.Equal(t, 2, log.LastTerm())
}

// TestLogGetEntryOutOfRange checks that reading outside the log returns an error.
func TestLogGetEntryOutOfRange(t *testing.T) {
	log := NewLog(Entry{Term: 1, Command: kv.NewSet("x", "1")})

	_, err := log.GetEntry(1)
	require.Error(t, err)
	_, err = log.GetEntry(-1)
	require.Error(t, err)
	assert.True(t, log.Contains(0))
	assert.False(t, log.Contains(1))
}

// TestLogReplaceCopies checks that a replaced log does not share storage with its source.
func TestLogReplaceCopies(t *testing.T) {
	source := []Entry{{Term: 1, Command: kv.NewSet("x", "1")}}
	log := NewLog()
	log.Replace(source)
	source[0].Term = 9

	entry, err := log.GetEntry(0)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Term)

	entries := log.Entries()
	entries[0].Term = 7
	entry, _ = log.GetEntry(0)
	assert.Equal(t, 1, entry.Term)
}

// TestLogCommands checks that Commands clamps to the log size.
func TestLogCommands(t *testing.T) {
	log := NewLog(Entry{Term: 1, Command: kv.NewSet("x", "1")}, Entry{Term: 1, Command: kv.NewDel("x")})
	assert.Equal(t, []kv.Command{kv.NewSet("x", "1")}, log.Commands(1))
	assert.Len(t, log.Commands(5), 2)
	assert.Empty(t, log.Commands(0))
}

// TestLogEqual checks log comparison on terms and commands.
func TestLogEqual(t *testing.T) {
	a := NewLog(Entry{Term: 1, Command: kv.NewSet("x", "1")})
	b := NewLog(Entry{Term: 1, Command: kv.NewSet("x", "1")})
	c := NewLog(Entry{Term: 2, Command: kv.NewSet("x", "1")})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "(1, SET-x-1)", Entry{Term: 1, Command: kv.NewSet("x", "1")}.String())
}
