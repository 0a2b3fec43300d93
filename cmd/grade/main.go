// Command grade simulates every case under the case directories and grades
// each report against the expected one.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/larryuc/t2-iic2523/compare"
	"github.com/larryuc/t2-iic2523/logging"
	"github.com/larryuc/t2-iic2523/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	dirs := compare.DefaultCaseDirs()

	flags := flag.NewFlagSet("grade", flag.ContinueOnError)
	flags.SetOutput(stderr)
	paxosDir := flags.String("paxos", dirs[sim.Paxos], "directory of Paxos cases")
	raftDir := flags.String("raft", dirs[sim.Raft], "directory of Raft cases")
	outDir := flags.String("out", "logs", "directory reports are written to")
	expectedDir := flags.String("expected", "logs_esperados", "directory of expected reports")
	parallelism := flags.Int("j", 0, "cases simulated at once (0 means one per CPU)")
	verbose := flags.Bool("v", false, "log engine decisions")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	level := logging.Warn
	if *verbose {
		level = logging.Debug
	}
	logger, err := logging.NewLogger(logging.WithWriter(stderr), logging.WithLevel(level))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Sync()

	results, err := compare.Batch(ctx, compare.BatchConfig{
		CaseDirs:    map[sim.Protocol]string{sim.Paxos: *paxosDir, sim.Raft: *raftDir},
		OutputDir:   *outDir,
		ExpectedDir: *expectedDir,
		Parallelism: *parallelism,
		Options:     []sim.Option{sim.WithLogger(logger)},
	})
	if results == nil && err != nil {
		logger.Errorf("batch failed: %v", err)
		return 1
	}

	var total, maxScore int
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(stdout, "checking %s...\n  error: %v\n\n", result.Name, result.Err)
			continue
		}
		compare.WriteGrade(stdout, result.Name, result.Grade)
		total += result.Grade.Score
		maxScore += result.Grade.MaxScore
	}
	if len(results) == 0 {
		fmt.Fprintln(stdout, "no cases found")
		return 0
	}
	fmt.Fprintf(stdout, "total: %d of %d\n", total, maxScore)
	if err != nil {
		return 1
	}
	return 0
}
