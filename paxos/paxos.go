package paxos

import (
	"fmt"

	"github.com/larryuc/t2-iic2523/internal/numeric"
	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/script"
)

// Engine replays Paxos events against a set of acceptors and a store.
//
// The engine is single-threaded: events are applied one at a time in script
// order, and the same script always produces the same trace and snapshot.
type Engine struct {
	// Acceptors in configuration order.
	acceptors []*AcceptorState
	byID      map[string]*AcceptorState

	proposers map[string]bool

	// Bookkeeping between a Prepare and the Learn that ends the decision.
	rounds map[roundKey]*roundInfo

	store kv.Store
	trace []string

	options options
}

// New creates an engine with every acceptor active and an empty store.
// Duplicate acceptor IDs are counted once.
func New(acceptors, proposers []string, factory kv.Factory, opts ...Option) (*Engine, error) {
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
		byID:      make(map[string]*AcceptorState, len(acceptors)),
		proposers: make(map[string]bool, len(proposers)),
		rounds:    make(map[roundKey]*roundInfo),
		store:     factory(),
		options:   options,
	}
	for _, id := range acceptors {
		if _, ok := e.byID[id]; ok {
			continue
		}
		a := &AcceptorState{ID: id, Active: true}
		e.acceptors = append(e.acceptors, a)
		e.byID[id] = a
	}
	for _, id := range proposers {
		e.proposers[id] = true
	}
	return e, nil
}

// quorum is computed over every configured acceptor, stopped or not.
func (e *Engine) quorum() int {
	return numeric.Majority(len(e.acceptors))
}

// Run applies events in order.
func (e *Engine) Run(events []script.Event) {
	for _, event := range events {
		switch ev := event.(type) {
		case script.Prepare:
			e.Prepare(ev.Proposer, ev.Round)
		case script.Accept:
			e.Accept(ev.Proposer, ev.Round, ev.Payload)
		case script.Learn:
			e.Learn()
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
}

// Prepare asks every active acceptor to promise round n. Acceptors that already
// promised n or higher do not answer.
func (e *Engine) Prepare(proposer string, n int) {
	if !e.proposers[proposer] {
		e.options.logger.Debugf("ignoring prepare from unknown proposer %s", proposer)
		return
	}

	info := &roundInfo{maxAccepted: -1}
	for _, a := range e.acceptors {
		if !a.Active || n <= a.Promised {
			continue
		}
		a.Promised = n
		info.promised = append(info.promised, a.ID)
		if a.Accepted != nil && a.AcceptedRound > info.maxAccepted {
			info.maxAccepted = a.AcceptedRound
			info.suggested = a.Accepted
		}
	}
	e.rounds[roundKey{proposer: proposer, round: n}] = info

	e.options.logger.Debugf("prepare %s/%d promised by %v", proposer, n, info.promised)
}

// Accept asks the acceptors to accept a value for round n. It is ignored unless
// a quorum promised the round. The value accepted is the one carried forward
// from a previous acceptance, if any, and payload otherwise.
func (e *Engine) Accept(proposer string, n int, payload kv.Command) {
	if !e.proposers[proposer] {
		e.options.logger.Debugf("ignoring accept from unknown proposer %s", proposer)
		return
	}

	info, ok := e.rounds[roundKey{proposer: proposer, round: n}]
	if !ok {
		e.options.logger.Debugf("ignoring accept %s/%d: round was not prepared", proposer, n)
		return
	}
	if len(info.promised) < e.quorum() {
		e.options.logger.Debugf("ignoring accept %s/%d: %d promises, quorum is %d",
			proposer, n, len(info.promised), e.quorum())
		return
	}

	value := payload
	if info.suggested != nil {
		value = *info.suggested
	}
	for _, a := range e.acceptors {
		if a.Active && n >= a.Promised {
			a.accept(n, value)
		}
	}

	e.options.logger.Debugf("accept %s/%d value %s", proposer, n, value)
}

// Learn tallies the values held by every acceptor. If the most voted value
// reaches a quorum it is applied to the store, and all active acceptors and
// round bookkeeping are reset for the next decision. Ties go to the value
// found first in acceptor order.
func (e *Engine) Learn() {
	counts := make(map[kv.Command]int)
	var order []kv.Command
	for _, a := range e.acceptors {
		if a.Accepted == nil {
			continue
		}
		if counts[*a.Accepted] == 0 {
			order = append(order, *a.Accepted)
		}
		counts[*a.Accepted]++
	}
	if len(order) == 0 {
		return
	}

	winner := order[0]
	for _, value := range order[1:] {
		if counts[value] > counts[winner] {
			winner = value
		}
	}
	if counts[winner] < e.quorum() {
		e.options.logger.Debugf("nothing learned: %s has %d votes, quorum is %d",
			winner, counts[winner], e.quorum())
		return
	}

	e.store.Apply(winner)
	for _, a := range e.acceptors {
		if a.Active {
			a.reset()
		}
	}
	e.rounds = make(map[roundKey]*roundInfo)

	e.options.logger.Debugf("learned %s with %d votes", winner, counts[winner])
}

// Start recovers an acceptor.
func (e *Engine) Start(id string) {
	if a, ok := e.byID[id]; ok {
		a.Active = true
	}
}

// Stop crashes an acceptor.
func (e *Engine) Stop(id string) {
	if a, ok := e.byID[id]; ok {
		a.Active = false
	}
}

// Log appends var=value to the trace.
func (e *Engine) Log(variable string) {
	e.trace = append(e.trace, variable+"="+e.store.Read(variable))
}

// Acceptor returns a copy of the state of an acceptor.
func (e *Engine) Acceptor(id string) (AcceptorState, bool) {
	a, ok := e.byID[id]
	if !ok {
		return AcceptorState{}, false
	}
	return *a, true
}

// Trace returns the lines produced by Log events so far.
func (e *Engine) Trace() []string {
	return append([]string(nil), e.trace...)
}

// Snapshot returns the current store contents.
func (e *Engine) Snapshot() kv.Snapshot {
	return e.store.Snapshot()
}
