// Package compare checks generated reports against expected ones.
package compare

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/larryuc/t2-iic2523/internal/errors"
	"github.com/larryuc/t2-iic2523/internal/fileutil"
	"github.com/pmezard/go-difflib/difflib"
)

// ReportSuffix is the extension of case and report files.
const ReportSuffix = ".txt"

// FileComparison is the result of comparing one generated report with its
// expected counterpart.
type FileComparison struct {
	Name string

	// Line similarity in percent.
	Ratio float64

	// Unified diff from the expected report to the generated one.
	Diff []string

	// Whether the expected report does not exist. Ratio and Diff are unset.
	MissingExpected bool
}

// Match reports whether the generated report is identical to the expected one.
func (c FileComparison) Match() bool {
	return !c.MissingExpected && c.Ratio == 100
}

// Summary is the result of comparing a directory of reports.
type Summary struct {
	Files []FileComparison

	// Number of reports that had an expected counterpart.
	Total int

	// Number of those that matched exactly.
	Correct int
}

// readLinesOrEmpty reads path, treating a missing file as empty.
func readLinesOrEmpty(path string) ([]string, error) {
	lines, err := fileutil.ReadLines(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, "failed to read %s", path)
	}
	return lines, nil
}

// Files compares the generated report with the expected one line by line and
// returns the similarity in percent and a unified diff. Missing files compare
// as empty.
func Files(generatedPath, expectedPath string) (float64, []string, error) {
	generated, err := readLinesOrEmpty(generatedPath)
	if err != nil {
		return 0, nil, err
	}
	expected, err := readLinesOrEmpty(expectedPath)
	if err != nil {
		return 0, nil, err
	}
	return Lines(generated, expected)
}

// Lines compares two reports given as lines.
func Lines(generated, expected []string) (float64, []string, error) {
	if len(generated) == 0 && len(expected) == 0 {
		return 100, []string{"(both empty)"}, nil
	}

	ratio := difflib.NewMatcher(generated, expected).Ratio() * 100

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withEOL(expected),
		B:        withEOL(generated),
		FromFile: "esperado",
		ToFile:   "generado",
		Context:  3,
	})
	if err != nil {
		return 0, nil, err
	}
	var diff []string
	if text != "" {
		diff = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}
	return ratio, diff, nil
}

func withEOL(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// Directories compares every report in generatedDir whose name starts with
// prefix against the report with the same name in expectedDir.
func Directories(generatedDir, expectedDir, prefix string) (*Summary, error) {
	names, err := fileutil.List(generatedDir, prefix, ReportSuffix)
	if err != nil {
		return nil, errors.WrapError(err, "failed to list %s", generatedDir)
	}

	summary := &Summary{}
	for _, name := range names {
		expectedPath := filepath.Join(expectedDir, name)
		if !fileutil.Exists(expectedPath) {
			summary.Files = append(summary.Files, FileComparison{Name: name, MissingExpected: true})
			continue
		}

		ratio, diff, err := Files(filepath.Join(generatedDir, name), expectedPath)
		if err != nil {
			return nil, err
		}
		c := FileComparison{Name: name, Ratio: ratio, Diff: diff}
		summary.Files = append(summary.Files, c)
		summary.Total++
		if c.Match() {
			summary.Correct++
		}
	}
	return summary, nil
}

// WriteSummary prints a summary, showing at most maxDiff diff lines per file.
func WriteSummary(w io.Writer, s *Summary, maxDiff int) {
	if len(s.Files) == 0 {
		fmt.Fprintln(w, "no reports found")
		return
	}

	for _, c := range s.Files {
		switch {
		case c.MissingExpected:
			fmt.Fprintf(w, "MISSING %s: no expected report\n", c.Name)
		case c.Match():
			fmt.Fprintf(w, "OK   %s: %.1f%%\n", c.Name, c.Ratio)
		default:
			fmt.Fprintf(w, "FAIL %s: %.1f%% match\n", c.Name, c.Ratio)
			for i, line := range c.Diff {
				if i == maxDiff {
					fmt.Fprintln(w, "    ... (diff truncated)")
					break
				}
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if s.Total > 0 {
		fmt.Fprintf(w, "summary: %d/%d correct (%.1f%%)\n", s.Correct, s.Total, 100*float64(s.Correct)/float64(s.Total))
	} else {
		fmt.Fprintln(w, "no reports to compare")
	}
}
