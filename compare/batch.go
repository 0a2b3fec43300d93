package compare

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/larryuc/t2-iic2523/internal/errors"
	"github.com/larryuc/t2-iic2523/internal/fileutil"
	"github.com/larryuc/t2-iic2523/sim"
	"golang.org/x/sync/errgroup"
)

// DefaultCaseDirs returns the directory holding the cases of each protocol.
func DefaultCaseDirs() map[sim.Protocol]string {
	return map[sim.Protocol]string{
		sim.Paxos: "casos_Paxos",
		sim.Raft:  "casos_Raft",
	}
}

// BatchConfig configures a batch run.
type BatchConfig struct {
	// The directory of case scripts for each protocol. Protocols without an
	// entry, or whose directory does not exist, are skipped.
	CaseDirs map[sim.Protocol]string

	// Where reports are written.
	OutputDir string

	// Where expected reports are read from.
	ExpectedDir string

	// Maximum number of cases simulated at once. Defaults to the number of CPUs.
	Parallelism int

	// Options handed to every simulator.
	Options []sim.Option
}

// CaseResult is the outcome of one case of a batch.
type CaseResult struct {
	Protocol sim.Protocol
	CasePath string

	// Path of the generated report.
	ReportPath string

	// Name of the report, which is also the name of the expected report.
	Name string

	Grade Grade

	// Set when the case could not be simulated or graded.
	Err error
}

type batchCase struct {
	simulator *sim.Simulator
	casePath  string
}

// Batch simulates every case under the configured directories, writes the
// reports and grades each against its expected report. Cases run
// concurrently; results are returned ordered by protocol and case name. The
// returned error aggregates the per-case failures and is nil if every case was
// graded.
func Batch(ctx context.Context, config BatchConfig) ([]CaseResult, error) {
	cases, err := collectCases(config)
	if err != nil {
		return nil, err
	}

	parallelism := config.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]CaseResult, len(cases))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	for i, c := range cases {
		i, c := i, c
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runCase(c, config.OutputDir, config.ExpectedDir)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var merr *multierror.Error
	for _, result := range results {
		if result.Err != nil {
			merr = multierror.Append(merr, result.Err)
		}
	}
	return results, merr.ErrorOrNil()
}

func collectCases(config BatchConfig) ([]batchCase, error) {
	var cases []batchCase
	for _, protocol := range sim.Protocols {
		dir, ok := config.CaseDirs[protocol]
		if !ok {
			continue
		}
		names, err := fileutil.List(dir, "", ReportSuffix)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.WrapError(err, "failed to list %s cases in %s", protocol, dir)
		}

		simulator, err := sim.New(protocol, config.Options...)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			cases = append(cases, batchCase{simulator: simulator, casePath: filepath.Join(dir, name)})
		}
	}
	return cases, nil
}

func runCase(c batchCase, outputDir, expectedDir string) CaseResult {
	protocol := c.simulator.Protocol()
	result := CaseResult{
		Protocol: protocol,
		CasePath: c.casePath,
		Name:     sim.ReportName(protocol, c.casePath),
	}

	simulated, err := c.simulator.RunFile(c.casePath)
	if err != nil {
		result.Err = err
		return result
	}
	result.ReportPath, err = sim.WriteReportFile(outputDir, protocol, c.casePath, simulated)
	if err != nil {
		result.Err = err
		return result
	}
	result.Grade, err = GradeFiles(filepath.Join(expectedDir, result.Name), result.ReportPath)
	if err != nil {
		result.Err = errors.WrapError(err, "failed to grade %s", result.Name)
	}
	return result
}
