// Package raft implements a deterministic, single-process Raft cluster driven by script events.
package raft

import (
	"fmt"

	"github.com/larryuc/t2-iic2523/internal/numeric"
	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/script"
	"golang.org/x/exp/slices"
)

// Engine replays Raft events against a cluster of nodes and a store.
//
// Leader election is deterministic: the most up-to-date active node wins,
// with ties broken by the smallest configured timeout and then by
// configuration order. The store only ever reflects the committed prefix of
// the leader's log and is rebuilt from scratch whenever the commit index is
// evaluated.
type Engine struct {
	// Nodes in configuration order.
	nodes []*node
	byID  map[string]*node

	// The elected leader, nil if there is none.
	leader *node

	// The latest term handed out by an election.
	currentTerm int

	// Number of leading log entries known to be committed.
	commitIndex int

	// Number of committed entries applied to the store.
	lastApplied int

	factory kv.Factory
	store   kv.Store
	trace   []string

	// Whether the initial election has run.
	started bool

	options options
}

// New creates an engine with every node active, no leader and an empty store.
// Duplicate node IDs keep the position of the first and the timeout of the last.
func New(nodes []script.NodeSpec, factory kv.Factory, opts ...Option) (*Engine, error) {
	if factory == nil {
		return nil, fmt.Errorf("store factory must not be nil")
	}

	var options options
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}
	if options.logger == nil {
		options.logger = logging.Nop()
	}

	e := &Engine{
		byID:    make(map[string]*node, len(nodes)),
		factory: factory,
		store:   factory(),
		options: options,
	}
	for _, spec := range nodes {
		if n, ok := e.byID[spec.ID]; ok {
			n.timeout = spec.Timeout
			continue
		}
		n := &node{id: spec.ID, active: true, timeout: spec.Timeout, log: NewLog()}
		e.nodes = append(e.nodes, n)
		e.byID[spec.ID] = n
	}
	return e, nil
}

// majority is computed over every configured node, stopped or not.
func (e *Engine) majority() int {
	return numeric.Majority(len(e.nodes))
}

func (e *Engine) activeNodes() []*node {
	var active []*node
	for _, n := range e.nodes {
		if n.active {
			active = append(active, n)
		}
	}
	return active
}

func (e *Engine) activeLeader() *node {
	if e.leader == nil || !e.leader.active {
		return nil
	}
	return e.leader
}

// Run applies events in order. The first call elects the initial leader, and
// every call ends by re-evaluating the commit index.
func (e *Engine) Run(events []script.Event) {
	if !e.started {
		e.started = true
		e.electLeader()
		e.updateCommitIndex()
	}

	for _, event := range events {
		switch ev := event.(type) {
		case script.Send:
			e.Send(ev.Command)
		case script.Spread:
			e.Spread(ev.Targets...)
		case script.Start:
			e.Start(ev.ID)
		case script.Stop:
			e.Stop(ev.ID)
		case script.Log:
			e.Log(ev.Var)
		default:
			e.options.logger.Debugf("ignoring event %s", event)
		}
	}

	e.updateCommitIndex()
}

// electLeader picks the most up-to-date active node, starts a new term for it,
// and makes sure its log holds the prefix committed by a majority of the
// cluster.
func (e *Engine) electLeader() {
	active := e.activeNodes()
	if len(active) == 0 {
		e.leader = nil
		e.options.logger.Debug("no active nodes, no leader elected")
		return
	}

	candidate := active[0]
	for _, n := range active[1:] {
		if n.moreUpToDate(candidate) {
			candidate = n
		}
	}

	e.currentTerm++
	candidate.term = e.currentTerm
	e.leader = candidate

	prefix := e.committedPrefix()
	if len(prefix) > 0 {
		entries := candidate.log.Entries()
		if len(entries) > len(prefix) {
			prefix = append(prefix, entries[len(prefix):]...)
		}
		candidate.log.Replace(prefix)
	}

	e.options.logger.With("term", e.currentTerm).Debugf("elected %s with log %v", candidate.id, candidate.log.Entries())
}

// committedPrefix scans log positions across every configured node and keeps
// the command held by a majority at each position, stopping at the first
// position without one. Each kept entry carries the term most commonly
// recorded with that command at that position.
func (e *Engine) committedPrefix() []Entry {
	maxSize := 0
	for _, n := range e.nodes {
		maxSize = numeric.Max(maxSize, n.log.Size())
	}

	var prefix []Entry
	for i := 0; i < maxSize; i++ {
		counts := make(map[kv.Command]int)
		var order []kv.Command
		for _, n := range e.nodes {
			entry, err := n.log.GetEntry(i)
			if err != nil {
				continue
			}
			if counts[entry.Command] == 0 {
				order = append(order, entry.Command)
			}
			counts[entry.Command]++
		}

		best := order[0]
		for _, cmd := range order[1:] {
			if counts[cmd] > counts[best] {
				best = cmd
			}
		}
		if counts[best] < e.majority() {
			break
		}
		prefix = append(prefix, Entry{Term: e.commonTerm(i, best), Command: best})
	}
	return prefix
}

// commonTerm returns the term most nodes recorded with cmd at index. Ties go to
// the smaller term.
func (e *Engine) commonTerm(index int, cmd kv.Command) int {
	counts := make(map[int]int)
	for _, n := range e.nodes {
		if entry, err := n.log.GetEntry(index); err == nil && entry.Command == cmd {
			counts[entry.Term]++
		}
	}

	term, votes := e.currentTerm, 0
	for t, c := range counts {
		if c > votes || (c == votes && t < term) {
			term, votes = t, c
		}
	}
	return term
}

// updateCommitIndex advances the commit index to just past the last leader
// entry replicated on a majority of the cluster, provided at least one such
// entry belongs to the current term. The store is then rebuilt from the
// committed prefix.
func (e *Engine) updateCommitIndex() {
	leader := e.activeLeader()
	if leader == nil {
		return
	}

	var replicated []int
	for i, entry := range leader.log.entries {
		count := 0
		for _, n := range e.nodes {
			if other, err := n.log.GetEntry(i); err == nil && other.Command == entry.Command {
				count++
			}
		}
		if count >= e.majority() {
			replicated = append(replicated, i)
		}
	}

	currentTermReplicated := slices.IndexFunc(replicated, func(i int) bool {
		return leader.log.entries[i].Term == e.currentTerm
	}) >= 0
	if currentTermReplicated {
		commitIndex := numeric.Max(e.commitIndex, replicated[len(replicated)-1]+1)
		if commitIndex != e.commitIndex {
			e.options.logger.With("term", e.currentTerm).Debugf("commit index %d -> %d", e.commitIndex, commitIndex)
		}
		e.commitIndex = commitIndex
	}

	e.lastApplied = e.commitIndex
	e.store = kv.Replay(e.factory, leader.log.Commands(e.commitIndex)...)
}

// Send appends a command to the active leader's log. It is a no-op without an
// active leader.
func (e *Engine) Send(cmd kv.Command) {
	leader := e.activeLeader()
	if leader == nil {
		e.options.logger.Debugf("ignoring send %s: no active leader", cmd)
		return
	}
	leader.log.Append(Entry{Term: e.currentTerm, Command: cmd})
}

// Spread replaces the log of each active target with the leader's log, then
// re-evaluates the commit index. Without targets every active follower is
// updated. Unknown, stopped and leader targets are skipped.
func (e *Engine) Spread(targets ...string) {
	leader := e.activeLeader()
	if leader == nil {
		e.options.logger.Debug("ignoring spread: no active leader")
		return
	}
	if leader.log.Size() == 0 {
		return
	}

	var dests []*node
	if len(targets) == 0 {
		for _, n := range e.nodes {
			if n.active && n != leader {
				dests = append(dests, n)
			}
		}
	} else {
		for _, id := range targets {
			if n, ok := e.byID[id]; ok && n.active && n != leader {
				dests = append(dests, n)
			}
		}
	}

	for _, n := range dests {
		n.log.Replace(leader.log.entries)
	}
	e.updateCommitIndex()
}

// Start recovers a node. If there is an active leader the node's log is
// replaced by the leader's, otherwise an election is held.
func (e *Engine) Start(id string) {
	n, ok := e.byID[id]
	if !ok {
		return
	}
	n.active = true

	if leader := e.activeLeader(); leader != nil {
		if leader.log.Size() > 0 && !n.log.Equal(leader.log) {
			n.log.Replace(leader.log.entries)
		}
	} else {
		e.electLeader()
	}
	e.updateCommitIndex()
}

// Stop crashes a node. Stopping the leader triggers an election.
func (e *Engine) Stop(id string) {
	n, ok := e.byID[id]
	if !ok {
		return
	}
	n.active = false

	if n == e.leader {
		e.electLeader()
		e.updateCommitIndex()
	}
}

// Log re-evaluates the commit index and appends var=value to the trace.
func (e *Engine) Log(variable string) {
	e.updateCommitIndex()
	e.trace = append(e.trace, variable+"="+e.store.Read(variable))
}

// Status returns the cluster status.
func (e *Engine) Status() Status {
	status := Status{
		State:       NoLeader,
		Term:        e.currentTerm,
		CommitIndex: e.commitIndex,
		LastApplied: e.lastApplied,
	}
	if e.leader != nil {
		status.State = LeaderElected
		status.Leader = e.leader.id
	}
	return status
}

// Node returns the status of a node.
func (e *Engine) Node(id string) (NodeStatus, bool) {
	n, ok := e.byID[id]
	if !ok {
		return NodeStatus{}, false
	}
	return n.status(), true
}

// Trace returns the lines produced by Log events so far.
func (e *Engine) Trace() []string {
	return append([]string(nil), e.trace...)
}

// Snapshot returns the current store contents.
func (e *Engine) Snapshot() kv.Snapshot {
	return e.store.Snapshot()
}
