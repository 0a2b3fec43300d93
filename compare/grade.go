package compare

import (
	"fmt"
	"io"
	"strings"

	"github.com/larryuc/t2-iic2523/internal/errors"
	"github.com/larryuc/t2-iic2523/internal/fileutil"
	"github.com/larryuc/t2-iic2523/sim"
)

// Mismatch is a log line that differs from the expected report.
type Mismatch struct {
	// One-based position among the non-blank report lines.
	Line     int
	Expected string
	Got      string
}

// Grade scores a generated report against the expected one. Log lines are
// compared by position, database lines as sets.
type Grade struct {
	LogsOK    int
	LogsTotal int

	DatabaseOK    int
	DatabaseTotal int

	// Database lines beyond the number expected.
	Extra int

	Score    int
	MaxScore int

	Mismatches []Mismatch

	// Whether the generated report ran out of lines before the expected logs ended.
	Truncated bool

	// Whether the log sections have different lengths.
	LogSizeDiffers bool
}

// reportLines returns the trimmed, non-blank lines of a report.
func reportLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}

// GradeLines grades generated against expected.
func GradeLines(expected, generated []string) (Grade, error) {
	expected, generated = reportLines(expected), reportLines(generated)

	expectedDB := indexOf(expected, sim.DatabaseHeader)
	if expectedDB < 0 {
		return Grade{}, errors.New("expected report has no " + sim.DatabaseHeader + " section")
	}
	generatedDB := indexOf(generated, sim.DatabaseHeader)
	if generatedDB < 0 {
		return Grade{}, errors.New("generated report has no " + sim.DatabaseHeader + " section")
	}

	g := Grade{
		LogsTotal:      expectedDB - 1,
		LogSizeDiffers: expectedDB != generatedDB,
		MaxScore:       len(expected) - 2,
	}
	for i := 1; i < expectedDB; i++ {
		if i >= len(generated) {
			g.Truncated = true
			break
		}
		if generated[i] != expected[i] {
			g.Mismatches = append(g.Mismatches, Mismatch{Line: i + 1, Expected: expected[i], Got: generated[i]})
			continue
		}
		g.LogsOK++
	}

	expectedSet := toSet(expected[expectedDB+1:])
	generatedSet := toSet(generated[generatedDB+1:])
	g.DatabaseTotal = len(expectedSet)
	if len(generatedSet) > len(expectedSet) {
		g.Extra = len(generatedSet) - len(expectedSet)
	}
	for line := range generatedSet {
		if expectedSet[line] {
			g.DatabaseOK++
		}
	}

	g.Score = g.LogsOK + g.DatabaseOK - g.Extra
	if g.Score < 0 {
		g.Score = 0
	}
	return g, nil
}

func toSet(lines []string) map[string]bool {
	set := make(map[string]bool, len(lines))
	for _, l := range lines {
		set[l] = true
	}
	return set
}

// GradeFiles grades the report at generatedPath against the one at expectedPath.
func GradeFiles(expectedPath, generatedPath string) (Grade, error) {
	expected, err := fileutil.ReadLines(expectedPath)
	if err != nil {
		return Grade{}, errors.WrapError(err, "failed to read expected report %s", expectedPath)
	}
	generated, err := fileutil.ReadLines(generatedPath)
	if err != nil {
		return Grade{}, errors.WrapError(err, "failed to read generated report %s", generatedPath)
	}
	return GradeLines(expected, generated)
}

// WriteGrade prints a grade for a case.
func WriteGrade(w io.Writer, name string, g Grade) {
	fmt.Fprintf(w, "checking %s...\n", name)
	if g.LogSizeDiffers {
		fmt.Fprintln(w, "  warning: the log section does not have the expected size")
	}
	for _, m := range g.Mismatches {
		fmt.Fprintf(w, "  line %d: expected %q, got %q\n", m.Line, m.Expected, m.Got)
	}
	if g.Truncated {
		fmt.Fprintln(w, "  missing log lines, stopped checking logs")
	}
	if g.Extra > 0 {
		fmt.Fprintln(w, "  warning: the database has more entries than expected")
	}
	fmt.Fprintf(w, "  logs: %d/%d\n", g.LogsOK, g.LogsTotal)
	fmt.Fprintf(w, "  database: %d/%d\n", g.DatabaseOK, g.DatabaseTotal)
	fmt.Fprintf(w, "  extra database entries: %d\n", g.Extra)
	fmt.Fprintf(w, "  => score for %s: %d of %d\n\n", name, g.Score, g.MaxScore)
}
