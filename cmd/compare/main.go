// Command compare compares generated reports with the expected ones.
//
//	compare [-generated logs] [-expected logs_esperados] [-diff 10] [Paxos|Raft]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/larryuc/t2-iic2523/compare"
	"github.com/larryuc/t2-iic2523/sim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("compare", flag.ContinueOnError)
	flags.SetOutput(stderr)
	generatedDir := flags.String("generated", "logs", "directory of generated reports")
	expectedDir := flags.String("expected", "logs_esperados", "directory of expected reports")
	maxDiff := flags.Int("diff", 10, "maximum diff lines shown per report")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: compare [flags] [Paxos|Raft]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return 2
	}

	var prefix string
	if flags.NArg() == 1 {
		protocol, err := sim.ParseProtocol(flags.Arg(0))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		prefix = string(protocol)
	}

	summary, err := compare.Directories(*generatedDir, *expectedDir, prefix)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	compare.WriteSummary(stdout, summary, *maxDiff)
	if summary.Correct != summary.Total {
		return 1
	}
	return 0
}
