package kv

import (
	"math/big"
)

// NotFound is the value read back for a variable the store does not hold.
const NotFound = "Variable no existe"

// Store is a key-value database mutated by commands.
//
// Implementations differ in how keys are matched and how ADD combines values;
// the set of operations is the same for all of them.
type Store interface {
	// Set assigns value to key.
	Set(key, value string)

	// Add sums value into key when both are numeric, and concatenates otherwise.
	// Adding to an absent key behaves like Set.
	Add(key, value string)

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)

	// Read returns the value of key, or NotFound.
	Read(key string) string

	// Snapshot returns a copy of the store contents in insertion order.
	Snapshot() Snapshot

	// Apply dispatches a command to Set, Add or Delete. Invalid commands are ignored.
	Apply(cmd Command)
}

// Factory creates an empty store.
type Factory func() Store

// Policy names a store implementation.
type Policy string

const (
	// PlainPolicy matches keys exactly.
	PlainPolicy Policy = "plain"

	// NormalizingPolicy maps underscores to spaces in keys and separates concatenated values.
	NormalizingPolicy Policy = "normalizing"
)

// FactoryFor returns the factory of the named policy, or nil if the policy is unknown.
func FactoryFor(policy Policy) Factory {
	switch policy {
	case PlainPolicy:
		return func() Store { return NewPlain() }
	case NormalizingPolicy:
		return func() Store { return NewNormalizing() }
	default:
		return nil
	}
}

func apply(s Store, cmd Command) {
	switch cmd.Op {
	case Set:
		s.Set(cmd.Key, cmd.Value)
	case Add:
		s.Add(cmd.Key, cmd.Value)
	case Del:
		s.Delete(cmd.Key)
	}
}

// Replay builds a fresh store from factory and applies commands in order.
func Replay(factory Factory, commands ...Command) Store {
	s := factory()
	for _, cmd := range commands {
		s.Apply(cmd)
	}
	return s
}

// isDigits reports whether s is a non-empty string of decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// sumDigits adds two digit strings without overflow.
func sumDigits(a, b string) string {
	x, _ := new(big.Int).SetString(a, 10)
	y, _ := new(big.Int).SetString(b, 10)
	return x.Add(x, y).String()
}
