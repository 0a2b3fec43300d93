package script

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/larryuc/t2-iic2523/kv"
)

// Event is a single scripted instruction.
type Event interface {
	fmt.Stringer
	event()
}

// Prepare asks every active acceptor to promise round n to a proposer.
type Prepare struct {
	Proposer string
	Round    int
}

// Accept asks the acceptors that promised a round to accept a value.
type Accept struct {
	Proposer string
	Round    int
	Payload  kv.Command
}

// Learn tallies accepted values and applies the one chosen by a quorum.
type Learn struct{}

// Start recovers a stopped participant.
type Start struct {
	ID string
}

// Stop crashes a participant.
type Stop struct {
	ID string
}

// Log reads a variable from the store into the trace.
type Log struct {
	Var string
}

// Send appends a command to the Raft leader's log.
type Send struct {
	Command kv.Command
}

// Spread replicates the Raft leader's log. An empty target list means every
// active follower.
type Spread struct {
	Targets []string
}

func (Prepare) event() {}
func (Accept) event()  {}
func (Learn) event()   {}
func (Start) event()   {}
func (Stop) event()    {}
func (Log) event()     {}
func (Send) event()    {}
func (Spread) event()  {}

func (e Prepare) String() string { return fmt.Sprintf("Prepare;%s;%d", e.Proposer, e.Round) }
func (e Accept) String() string {
	return fmt.Sprintf("Accept;%s;%d;%s", e.Proposer, e.Round, e.Payload)
}
func (Learn) String() string    { return "Learn" }
func (e Start) String() string  { return "Start;" + e.ID }
func (e Stop) String() string   { return "Stop;" + e.ID }
func (e Log) String() string    { return "Log;" + e.Var }
func (e Send) String() string   { return "Send;" + e.Command.String() }
func (e Spread) String() string { return fmt.Sprintf("Spread;%v", e.Targets) }

// LineError describes a script line that was skipped.
type LineError struct {
	// One-based line number in the original input.
	Line int

	// The line with its comment removed.
	Text string

	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// PaxosScript is a parsed Paxos case.
type PaxosScript struct {
	Acceptors []string
	Proposers []string
	Events    []Event

	// Lines that were skipped while parsing. Skipping never stops the parse.
	Skipped *multierror.Error
}

// NodeSpec declares a Raft node and its election priority. A lower timeout
// wins ties between equally up-to-date logs.
type NodeSpec struct {
	ID      string
	Timeout int
}

// RaftScript is a parsed Raft case.
type RaftScript struct {
	Nodes  []NodeSpec
	Events []Event

	// Lines that were skipped while parsing. Skipping never stops the parse.
	Skipped *multierror.Error
}
