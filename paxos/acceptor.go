package paxos

import "github.com/larryuc/t2-iic2523/kv"

// AcceptorState is the promise and acceptance state of one acceptor.
type AcceptorState struct {
	ID string

	// Whether the acceptor is running. Stopped acceptors keep their state but
	// take no part in rounds.
	Active bool

	// The highest round this acceptor promised.
	Promised int

	// The round of the last accepted value, zero if none.
	AcceptedRound int

	// The last accepted value, nil if none.
	Accepted *kv.Command
}

func (a *AcceptorState) accept(round int, value kv.Command) {
	a.AcceptedRound = round
	a.Accepted = &value
}

func (a *AcceptorState) reset() {
	a.Promised = 0
	a.AcceptedRound = 0
	a.Accepted = nil
}

type roundKey struct {
	proposer string
	round    int
}

// roundInfo is what a Prepare collected for a (proposer, round) pair.
type roundInfo struct {
	// Acceptors that promised, in configuration order.
	promised []string

	// A value already accepted by one of the promising acceptors, which the
	// proposer has to carry forward instead of its own.
	suggested *kv.Command

	// The highest accepted round among the promising acceptors, -1 if none.
	maxAccepted int
}
