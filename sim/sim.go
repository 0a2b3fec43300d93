package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/larryuc/t2-iic2523/internal/errors"
	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/paxos"
	"github.com/larryuc/t2-iic2523/raft"
	"github.com/larryuc/t2-iic2523/script"
)

// Protocol names a consensus protocol.
type Protocol string

const (
	Paxos Protocol = "Paxos"
	Raft  Protocol = "Raft"
)

// Protocols lists the supported protocols.
var Protocols = []Protocol{Paxos, Raft}

// ParseProtocol returns the protocol with the given name. Names are case-sensitive.
func ParseProtocol(name string) (Protocol, error) {
	switch Protocol(name) {
	case Paxos, Raft:
		return Protocol(name), nil
	default:
		return "", fmt.Errorf("unknown protocol %q: expected Paxos or Raft", name)
	}
}

// DefaultPolicy returns the store policy a protocol uses unless configured otherwise.
func (p Protocol) DefaultPolicy() kv.Policy {
	if p == Raft {
		return kv.NormalizingPolicy
	}
	return kv.PlainPolicy
}

// Result is the outcome of a simulation.
type Result struct {
	// One var=value line per Log event, in event order.
	Trace []string

	// The final store contents.
	Snapshot kv.Snapshot
}

// Simulator runs case scripts for one protocol. Every run starts from an
// empty cluster and an empty store.
type Simulator struct {
	protocol Protocol
	options  options
}

// New creates a simulator for protocol.
func New(protocol Protocol, opts ...Option) (*Simulator, error) {
	if _, err := ParseProtocol(string(protocol)); err != nil {
		return nil, err
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
	if options.factory == nil {
		options.factory = kv.FactoryFor(protocol.DefaultPolicy())
	}

	return &Simulator{protocol: protocol, options: options}, nil
}

// Protocol returns the protocol the simulator runs.
func (s *Simulator) Protocol() Protocol {
	return s.protocol
}

// Run parses a case script from r and replays it. Malformed lines are logged
// and skipped; the only errors returned come from reading r.
func (s *Simulator) Run(r io.Reader) (Result, error) {
	logger := s.options.logger.With("protocol", string(s.protocol))

	switch s.protocol {
	case Paxos:
		parsed, err := script.ParsePaxos(r)
		if err != nil {
			return Result{}, errors.WrapError(err, "failed to read %s case", s.protocol)
		}
		logSkipped(logger, parsed.Skipped)

		engine, err := paxos.New(parsed.Acceptors, parsed.Proposers, s.options.factory, paxos.WithLogger(logger))
		if err != nil {
			return Result{}, err
		}
		engine.Run(parsed.Events)
		return Result{Trace: engine.Trace(), Snapshot: engine.Snapshot()}, nil
	default:
		parsed, err := script.ParseRaft(r)
		if err != nil {
			return Result{}, errors.WrapError(err, "failed to read %s case", s.protocol)
		}
		logSkipped(logger, parsed.Skipped)

		engine, err := raft.New(parsed.Nodes, s.options.factory, raft.WithLogger(logger))
		if err != nil {
			return Result{}, err
		}
		engine.Run(parsed.Events)
		status := engine.Status()
		logger.Debugf("finished in term %d with commit index %d", status.Term, status.CommitIndex)
		return Result{Trace: engine.Trace(), Snapshot: engine.Snapshot()}, nil
	}
}

// RunFile replays the case script stored at path.
func (s *Simulator) RunFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, errors.WrapError(err, "failed to open case %s", path)
	}
	defer f.Close()
	return s.Run(f)
}

func logSkipped(logger *logging.Logger, skipped *multierror.Error) {
	if skipped == nil {
		return
	}
	for _, err := range skipped.Errors {
		logger.Debugf("skipped %s", err)
	}
}
