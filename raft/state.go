package raft

// State is the cluster-wide leadership state.
type State uint32

const (
	NoLeader State = iota
	LeaderElected
)

func (s State) String() string {
	switch s {
	case NoLeader:
		return "no leader"
	case LeaderElected:
		return "leader elected"
	default:
		panic("invalid state")
	}
}

// Status is the status of the simulated cluster.
type Status struct {
	// The leadership state.
	State State

	// The elected leader, empty if there is none.
	Leader string

	// The current term.
	Term int

	// The number of log entries known to be committed.
	CommitIndex int

	// The number of committed entries applied to the store.
	LastApplied int
}

// NodeStatus is the status of a single node.
type NodeStatus struct {
	ID      string
	Active  bool
	Timeout int

	// The term in which the node was last elected leader.
	Term int

	Log []Entry
}

type node struct {
	id      string
	active  bool
	timeout int
	term    int
	log     *Log
}

// moreUpToDate reports whether n should win an election against other: the
// higher last log term wins, then the longer log, then the smaller timeout.
func (n *node) moreUpToDate(other *node) bool {
	if n.log.LastTerm() != other.log.LastTerm() {
		return n.log.LastTerm() > other.log.LastTerm()
	}
	if n.log.Size() != other.log.Size() {
		return n.log.Size() > other.log.Size()
	}
	return n.timeout < other.timeout
}

func (n *node) status() NodeStatus {
	return NodeStatus{ID: n.id, Active: n.active, Timeout: n.timeout, Term: n.term, Log: n.log.Entries()}
}
