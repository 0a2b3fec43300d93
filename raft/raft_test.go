package raft

import (
	"strings"
	"testing"

	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/script"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, nodes ...script.NodeSpec) *Engine {
	t.Helper()
	e, err := New(nodes, kv.FactoryFor(kv.NormalizingPolicy))
	require.NoError(t, err)
	e.Run(nil)
	return e
}

func runScript(t *testing.T, input string) *Engine {
	t.Helper()
	s, err := script.ParseRaft(strings.NewReader(input))
	require.NoError(t, err)
	e, err := New(s.Nodes, kv.FactoryFor(kv.NormalizingPolicy))
	require.NoError(t, err)
	e.Run(s.Events)
	return e
}

func nodeLog(t *testing.T, e *Engine, id string) []Entry {
	t.Helper()
	n, ok := e.Node(id)
	require.True(t, ok)
	return n.Log
}

// TestNewRequiresFactory checks that an engine cannot be created without a store factory.
func TestNewRequiresFactory(t *testing.T) {
	_, err := New([]script.NodeSpec{{ID: "A"}}, nil)
	require.Error(t, err)

	_, err = New([]script.NodeSpec{{ID: "A"}}, kv.FactoryFor(kv.PlainPolicy), WithLogger(nil))
	require.Error(t, err)
}

// TestInitialElection checks that the first run elects the node with the smallest timeout.
func TestInitialElection(t *testing.T) {
	e := newTestEngine(t, script.NodeSpec{ID: "A", Timeout: 5}, script.NodeSpec{ID: "B", Timeout: 1}, script.NodeSpec{ID: "C", Timeout: 3})
	status := e.Status()
	require.Equal(t, LeaderElected, status.State)
	require.Equal(t, "B", status.Leader)
	require.Equal(t, 1, status.Term)

	n, _ := e.Node("B")
	require.Equal(t, 1, n.Term)
}

// TestInitialElectionTieGoesToFirstNode checks that equal candidates are resolved by configuration order.
func TestInitialElectionTieGoesToFirstNode(t *testing.T) {
	e := newTestEngine(t, script.NodeSpec{ID: "A"}, script.NodeSpec{ID: "B"}, script.NodeSpec{ID: "C"})
	require.Equal(t, "A", e.Status().Leader)
}

// TestMoreUpToDate checks the election ordering: last log term, then log size, then timeout.
func TestMoreUpToDate(t *testing.T) {
	set := kv.NewSet("x", "1")
	newer := &node{log: NewLog(Entry{Term: 2, Command: set}), timeout: 9}
	longer := &node{log: NewLog(Entry{Term: 1, Command: set}, Entry{Term: 1, Command: set}), timeout: 0}
	shorter := &node{log: NewLog(Entry{Term: 1, Command: set}), timeout: 0}
	slow := &node{log: NewLog(Entry{Term: 1, Command: set}), timeout: 4}

	require.True(t, newer.moreUpToDate(longer))
	require.False(t, longer.moreUpToDate(newer))
	require.True(t, longer.moreUpToDate(shorter))
	require.True(t, shorter.moreUpToDate(slow))
	require.False(t, slow.moreUpToDate(shorter))
	require.False(t, shorter.moreUpToDate(shorter))
}

// TestSendSpreadCommit checks that a replicated entry from the current term is committed and applied.
func TestSendSpreadCommit(t *testing.T) {
	e := runScript(t, "A;B;C\nSend;SET-y-1\nLog;y\nSpread;[]\nLog;y\n")
	require.Equal(t, []string{"y=" + kv.NotFound, "y=1"}, e.Trace())
	require.Equal(t, kv.Snapshot{{Key: "y", Value: "1"}}, e.Snapshot())

	status := e.Status()
	require.Equal(t, 1, status.CommitIndex)
	require.Equal(t, 1, status.LastApplied)
}

// TestSpreadToMinority checks that replication to a minority does not commit.
func TestSpreadToMinority(t *testing.T) {
	e := runScript(t, "A;B;C;D;E\nSend;SET-x-1\nSpread;[B]\nLog;x\nSpread;[C, Z]\nLog;x\n")
	require.Equal(t, []string{"x=" + kv.NotFound, "x=1"}, e.Trace())
	require.Empty(t, nodeLog(t, e, "D"))
}

// TestSpreadSkipsStoppedNodes checks that stopped targets keep their log.
func TestSpreadSkipsStoppedNodes(t *testing.T) {
	e := runScript(t, "A;B;C\nStop;C\nSend;SET-x-1\nSpread;[B, C]\n")
	require.Len(t, nodeLog(t, e, "B"), 1)
	require.Empty(t, nodeLog(t, e, "C"))
	require.Equal(t, 1, e.Status().CommitIndex)
}

// TestLeaderCrashKeepsCommittedEntries checks that a committed entry survives the election that follows a leader crash.
func TestLeaderCrashKeepsCommittedEntries(t *testing.T) {
	e := runScript(t, "A,1;B,2;C,3\nSend;SET-y-1\nSpread;[]\nLog;y\nStop;A\nLog;y\n")
	require.Equal(t, []string{"y=1", "y=1"}, e.Trace())

	status := e.Status()
	require.Equal(t, "B", status.Leader)
	require.Equal(t, 2, status.Term)
	require.Equal(t, 1, status.CommitIndex)
	require.Equal(t, []Entry{{Term: 1, Command: kv.NewSet("y", "1")}}, nodeLog(t, e, "B"))
}

// TestLeaderCompletenessWithDivergentLogs checks that reconciliation keeps the majority prefix and drops the
// crashed leader's unreplicated suffix.
func TestLeaderCompletenessWithDivergentLogs(t *testing.T) {
	input := `A,1;B,2;C,3;D,4;E,5
Send;SET-x-1
Spread;[B,C]
Send;SET-x-2
Log;x
Stop;A
Log;x
Send;SET-x-3
Spread;[]
Log;x
Start;A
`
	e := runScript(t, input)
	require.Equal(t, []string{"x=1", "x=1", "x=3"}, e.Trace())

	want := []Entry{{Term: 1, Command: kv.NewSet("x", "1")}, {Term: 2, Command: kv.NewSet("x", "3")}}
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		require.Equal(t, want, nodeLog(t, e, id), id)
	}
	require.Equal(t, 2, e.Status().CommitIndex)
}

// TestOldTermEntriesNotCommittedByCount checks that entries from earlier terms are only committed together
// with an entry of the current term.
func TestOldTermEntriesNotCommittedByCount(t *testing.T) {
	input := `A,1;B,2;C,3
Send;SET-x-1
Stop;A
Start;A
Stop;B
Start;B
Log;x
Send;SET-y-2
Spread;[]
Log;x
Log;y
`
	e := runScript(t, input)
	require.Equal(t, []string{"x=" + kv.NotFound, "x=1", "y=2"}, e.Trace())
	require.Equal(t, "A", e.Status().Leader)
	require.Equal(t, 3, e.Status().Term)
}

// TestNoActiveNodes checks that the cluster has no leader while every node is stopped and ignores sends.
func TestNoActiveNodes(t *testing.T) {
	e := newTestEngine(t, script.NodeSpec{ID: "A"}, script.NodeSpec{ID: "B"})
	e.Stop("B")
	e.Stop("A")
	require.Equal(t, NoLeader, e.Status().State)
	require.Empty(t, e.Status().Leader)

	e.Send(kv.NewSet("x", "1"))
	e.Spread()
	e.Log("x")

	e.Start("A")
	require.Equal(t, "A", e.Status().Leader)
	require.Equal(t, 2, e.Status().Term)
	require.Empty(t, nodeLog(t, e, "A"))
	require.Equal(t, []string{"x=" + kv.NotFound}, e.Trace())
}

// TestStartSyncsWithLeader checks that a recovered node receives the leader's log.
func TestStartSyncsWithLeader(t *testing.T) {
	e := runScript(t, "A;B;C\nStop;C\nSend;SET-x-1\nSpread;[]\nStart;C\n")
	require.Equal(t, nodeLog(t, e, "A"), nodeLog(t, e, "C"))
	require.Equal(t, "A", e.Status().Leader)
	require.Equal(t, 1, e.Status().Term)
}

// TestUnknownNodes checks that events naming undeclared nodes are no-ops.
func TestUnknownNodes(t *testing.T) {
	e := runScript(t, "A;B;C\nStop;Z\nStart;Z\nSend;SET-x-1\nSpread;[Z]\nLog;x\n")
	require.Equal(t, []string{"x=" + kv.NotFound}, e.Trace())
	_, ok := e.Node("Z")
	require.False(t, ok)
	require.Equal(t, 1, e.Status().Term)
}

// TestNormalizedKeys checks that the Raft store treats underscores as spaces.
func TestNormalizedKeys(t *testing.T) {
	e := runScript(t, "A;B;C\nSend;SET-my_key-hello\nSend;ADD-my key-world\nSpread;[]\nLog;my_key\nSend;DEL-MY_KEY\nSpread;[]\nLog;my key\n")
	require.Equal(t, []string{"my_key=hello world", "my key=" + kv.NotFound}, e.Trace())
	require.Empty(t, e.Snapshot())
}

// TestStoreMatchesCommittedPrefix checks that the store equals a replay of the leader's committed entries.
func TestStoreMatchesCommittedPrefix(t *testing.T) {
	e := runScript(t, "A;B;C\nSend;SET-n-3\nSend;ADD-n-4\nSpread;[]\nSend;SET-s-ab\nLog;n\n")

	status := e.Status()
	require.Equal(t, 2, status.CommitIndex)

	var commands []kv.Command
	for _, entry := range nodeLog(t, e, status.Leader)[:status.CommitIndex] {
		commands = append(commands, entry.Command)
	}
	incremental := kv.NewNormalizing()
	for _, cmd := range commands {
		incremental.Apply(cmd)
	}
	require.Equal(t, incremental.Snapshot(), e.Snapshot())
	require.Equal(t, kv.Snapshot{{Key: "n", Value: "7"}}, e.Snapshot())
	require.Equal(t, []string{"n=7"}, e.Trace())
}

// TestDeterministicReplay checks that the same script always yields the same trace and snapshot.
func TestDeterministicReplay(t *testing.T) {
	input := "A,2;B,1;C\nSend;SET-a-1\nSpread;[A]\nStop;C\nSend;ADD-a-2\nSpread;[]\nStop;B\nStart;C\nLog;a\nStart;B\nLog;a\n"
	first := runScript(t, input)
	second := runScript(t, input)
	require.Equal(t, first.Trace(), second.Trace())
	require.Equal(t, first.Snapshot(), second.Snapshot())
	require.Equal(t, first.Status(), second.Status())
}

// TestEmptyCluster checks that an engine without nodes produces nothing.
func TestEmptyCluster(t *testing.T) {
	e := runScript(t, "")
	require.Empty(t, e.Trace())
	require.Empty(t, e.Snapshot())
	require.Equal(t, NoLeader, e.Status().State)
}

// TestStateString checks the textual form of each state.
func TestStateString(t *testing.T) {
	require.Equal(t, "no leader", NoLeader.String())
	require.Equal(t, "leader elected", LeaderElected.String())
	require.Panics(t, func() { _ = State(7).String() })
}
