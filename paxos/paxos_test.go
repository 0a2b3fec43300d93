package paxos

import (
	"bytes"
	"strings"
	"testing"

	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/script"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, acceptors ...string) *Engine {
	t.Helper()
	e, err := New(acceptors, []string{"P", "Q"}, kv.FactoryFor(kv.PlainPolicy))
	require.NoError(t, err)
	return e
}

func runScript(t *testing.T, input string) *Engine {
	t.Helper()
	s, err := script.ParsePaxos(strings.NewReader(input))
	require.NoError(t, err)
	e, err := New(s.Acceptors, s.Proposers, kv.FactoryFor(kv.PlainPolicy))
	require.NoError(t, err)
	e.Run(s.Events)
	return e
}

// TestNewRequiresFactory checks that an engine cannot be created without a store factory.
func TestNewRequiresFactory(t *testing.T) {
	_, err := New([]string{"A"}, []string{"P"}, nil)
	require.Error(t, err)

	_, err = New([]string{"A"}, []string{"P"}, kv.FactoryFor(kv.PlainPolicy), WithLogger(nil))
	require.Error(t, err)
}

// TestSingleDecision checks that a prepared, accepted and learned value reaches the store.
func TestSingleDecision(t *testing.T) {
	e := runScript(t, "A;B;C\nP\nPrepare;P;1\nAccept;P;1;SET-x-5\nLearn\nLog;x\n")
	require.Equal(t, []string{"x=5"}, e.Trace())
	require.Equal(t, kv.Snapshot{{Key: "x", Value: "5"}}, e.Snapshot())

	// Learning resets the acceptors for the next decision.
	a, ok := e.Acceptor("A")
	require.True(t, ok)
	require.Zero(t, a.Promised)
	require.Zero(t, a.AcceptedRound)
	require.Nil(t, a.Accepted)
}

// TestMinorityPrepare checks that an accept without a quorum of promises is ignored.
func TestMinorityPrepare(t *testing.T) {
	e := runScript(t, "A;B;C\nP\nStop;B\nStop;C\nPrepare;P;1\nAccept;P;1;SET-x-5\nLearn\nLog;x\n")
	require.Equal(t, []string{"x=" + kv.NotFound}, e.Trace())
	require.Empty(t, e.Snapshot())

	a, _ := e.Acceptor("A")
	require.Equal(t, 1, a.Promised)
	require.Nil(t, a.Accepted)
}

// TestStoppedAcceptorsCountTowardsQuorum checks that the quorum is computed over every configured acceptor.
func TestStoppedAcceptorsCountTowardsQuorum(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C", "D", "E")
	e.Stop("D")
	e.Stop("E")

	// Three of five acceptors promise: a quorum.
	e.Prepare("P", 1)
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Learn()
	e.Log("x")

	e.Stop("C")
	// Only two of five promise now.
	e.Prepare("P", 2)
	e.Accept("P", 2, kv.NewSet("x", "2"))
	e.Learn()
	e.Log("x")

	require.Equal(t, []string{"x=1", "x=1"}, e.Trace())
}

// TestAcceptWithoutPrepare checks that an accept for a round that was never prepared is ignored.
func TestAcceptWithoutPrepare(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Learn()
	e.Log("x")
	require.Equal(t, []string{"x=" + kv.NotFound}, e.Trace())
}

// TestUnknownProposer checks that rounds from proposers that were not declared are ignored.
func TestUnknownProposer(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")
	e.Prepare("Z", 1)
	a, _ := e.Acceptor("A")
	require.Zero(t, a.Promised)

	e.Accept("Z", 1, kv.NewSet("x", "1"))
	e.Learn()
	require.Empty(t, e.Snapshot())
}

// TestPrepareRequiresHigherRound checks that acceptors only promise rounds above their current promise.
func TestPrepareRequiresHigherRound(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")
	e.Prepare("P", 5)
	e.Prepare("Q", 3)

	// Q's round collected no promises.
	e.Accept("Q", 3, kv.NewSet("x", "q"))
	e.Learn()
	require.Empty(t, e.Snapshot())

	e.Accept("P", 5, kv.NewSet("x", "p"))
	e.Learn()
	e.Log("x")
	require.Equal(t, []string{"x=p"}, e.Trace())
}

// TestSuggestedValueCarriedForward checks that a proposer adopts a value already accepted by a promising acceptor.
func TestSuggestedValueCarriedForward(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")

	e.Prepare("P", 1)
	e.Accept("P", 1, kv.NewSet("x", "first"))

	// A competing proposer runs a higher round before anything is learned.
	e.Prepare("Q", 2)
	e.Accept("Q", 2, kv.NewSet("x", "second"))

	a, _ := e.Acceptor("B")
	require.Equal(t, 2, a.AcceptedRound)
	require.Equal(t, kv.NewSet("x", "first"), *a.Accepted)

	e.Learn()
	e.Log("x")
	require.Equal(t, []string{"x=first"}, e.Trace())
}

// TestStoppedAcceptorKeepsState checks that a stopped acceptor neither promises nor is reset by a learn.
func TestStoppedAcceptorKeepsState(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")
	e.Prepare("P", 1)
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Stop("C")
	e.Learn()

	c, _ := e.Acceptor("C")
	require.False(t, c.Active)
	require.Equal(t, 1, c.Promised)
	require.Equal(t, 1, c.AcceptedRound)

	e.Start("C")
	e.Prepare("P", 1)
	c, _ = e.Acceptor("C")
	require.Equal(t, 1, c.Promised)
	require.True(t, c.Active)
}

// TestLearnWithoutQuorum checks that a value held by a minority of acceptors is not learned.
func TestLearnWithoutQuorum(t *testing.T) {
	e := newTestEngine(t, "A", "B", "C")
	e.Prepare("P", 1)
	e.Stop("B")
	e.Stop("C")
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Learn()
	require.Empty(t, e.Snapshot())

	a, _ := e.Acceptor("A")
	require.NotNil(t, a.Accepted)
}

// TestSequentialDecisions checks that several decisions apply in order and ADD sums numbers.
func TestSequentialDecisions(t *testing.T) {
	input := `A;B;C
P;Q
Prepare;P;1
Accept;P;1;SET-n-3
Learn
Prepare;Q;1
Accept;Q;1;ADD-n-4
Learn
Log;n
Prepare;P;2
Accept;P;2;SET-s-ab
Learn
Prepare;P;3
Accept;P;3;ADD-s-cd
Learn
Log;s
Prepare;P;4
Accept;P;4;DEL-n
Learn
Log;n
`
	e := runScript(t, input)
	require.Equal(t, []string{"n=7", "s=abcd", "n=" + kv.NotFound}, e.Trace())
	require.Equal(t, kv.Snapshot{{Key: "s", Value: "abcd"}}, e.Snapshot())
}

// TestDeterministicReplay checks that replaying a script twice yields identical results.
func TestDeterministicReplay(t *testing.T) {
	input := "A;B;C;D\nP;Q\nPrepare;P;1\nStop;D\nPrepare;Q;2\nAccept;P;1;SET-x-1\nAccept;Q;2;SET-x-2\nLearn\nLog;x\n"
	first := runScript(t, input)
	second := runScript(t, input)
	require.Equal(t, first.Trace(), second.Trace())
	require.Equal(t, first.Snapshot(), second.Snapshot())
	require.Equal(t, []string{"x=2"}, first.Trace())
}

// TestDuplicateAcceptorsCountedOnce checks that repeated acceptor IDs do not inflate the quorum.
func TestDuplicateAcceptorsCountedOnce(t *testing.T) {
	e := newTestEngine(t, "A", "A", "B")
	e.Prepare("P", 1)
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Learn()
	e.Log("x")
	require.Equal(t, []string{"x=1"}, e.Trace())
}

// TestLogging checks that the engine reports learned values at the debug level.
func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewLogger(logging.WithWriter(&buf), logging.WithLevel(logging.Debug))
	require.NoError(t, err)

	e, err := New([]string{"A"}, []string{"P"}, kv.FactoryFor(kv.PlainPolicy), WithLogger(logger))
	require.NoError(t, err)
	e.Prepare("P", 1)
	e.Accept("P", 1, kv.NewSet("x", "1"))
	e.Learn()
	require.NoError(t, logger.Sync())

	require.Contains(t, buf.String(), "learned SET-x-1")
}

// TestEmptyEngine checks that an engine with no acceptors produces nothing.
func TestEmptyEngine(t *testing.T) {
	e := runScript(t, "")
	require.Empty(t, e.Trace())
	require.Empty(t, e.Snapshot())
}
