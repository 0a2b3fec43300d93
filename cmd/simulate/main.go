// Command simulate replays one Paxos or Raft case and writes its report.
//
//	simulate [-out logs] [-snapshot file] [-policy plain|normalizing] [-v] Paxos|Raft <case>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/sim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("simulate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	outDir := flags.String("out", "logs", "directory the report is written to")
	snapshotPath := flags.String("snapshot", "", "also write the final store to `file`")
	policy := flags.String("policy", "", "store policy (plain or normalizing); defaults to the protocol's")
	verbose := flags.Bool("v", false, "log engine decisions")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: simulate [flags] Paxos|Raft <case>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return 2
	}

	protocol, err := sim.ParseProtocol(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	casePath := flags.Arg(1)

	level := logging.Info
	if *verbose {
		level = logging.Debug
	}
	logger, err := logging.NewLogger(logging.WithWriter(stderr), logging.WithLevel(level))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Sync()

	opts := []sim.Option{sim.WithLogger(logger)}
	if *policy != "" {
		opts = append(opts, sim.WithStorePolicy(kv.Policy(*policy)))
	}
	simulator, err := sim.New(protocol, opts...)
	if err != nil {
		logger.Errorf("invalid configuration: %v", err)
		return 2
	}

	result, err := simulator.RunFile(casePath)
	if err != nil {
		logger.Errorf("simulation failed: %v", err)
		return 1
	}
	reportPath, err := sim.WriteReportFile(*outDir, protocol, casePath, result)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	fmt.Fprintf(stdout, "report written to %s\n", reportPath)

	if *snapshotPath != "" {
		if err := writeSnapshot(*snapshotPath, result.Snapshot); err != nil {
			logger.Errorf("failed to write snapshot: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "snapshot written to %s\n", *snapshotPath)
	}
	return 0
}

func writeSnapshot(path string, snapshot kv.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kv.EncodeSnapshot(f, snapshot); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
