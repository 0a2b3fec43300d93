/*
Package sim replays Paxos and Raft case scripts against a replicated key-value store and renders what happened.

A case script is a plain text file. The first lines describe the cluster and every following line is an event. Lines
starting with # are comments and blank lines are ignored. A Paxos case names its acceptors and its proposers, then
drives rounds explicitly.

	# acceptors, then proposers
	A;B;C
	P1;P2
	Prepare;P1;1
	Accept;P1;1;SET-x-5
	Learn
	Stop;B
	Log;x

A Raft case lists its nodes, each with an optional election timeout, then submits commands to the leader and spreads
them to the followers.

	A,150;B,300;C
	Send;SET-y-1
	Send;ADD-y-2
	Spread;[]
	Stop;A
	Log;y

To run a case, create a Simulator for the protocol and hand it the script.

	simulator, err := sim.New(sim.Raft)
	if err != nil {
	    panic(err)
	}
	result, err := simulator.RunFile("casos_Raft/caso1.txt")
	if err != nil {
	    panic(err)
	}

The result holds the trace, one var=value line per Log event, and the final contents of the store in insertion order.
Malformed lines never stop a run: they are skipped and, if a logger was configured, reported at the debug level.

	logger, _ := logging.NewLogger(logging.WithLevel(logging.Debug))
	simulator, err := sim.New(sim.Paxos, sim.WithLogger(logger))

Each protocol drives its own store policy by default. Paxos stores values exactly as submitted, while Raft normalizes
keys and joins text with a space when adding. The policy can be overridden.

	simulator, err := sim.New(sim.Raft, sim.WithStorePolicy(kv.PlainPolicy))

Finally, WriteReportFile renders a result in the report format read by the comparison tools.

	path, err := sim.WriteReportFile("logs", sim.Raft, "casos_Raft/caso1.txt", result)

A Simulator keeps no state between runs, so a single one may run many cases at once.
*/
package sim
