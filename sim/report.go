package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/larryuc/t2-iic2523/internal/errors"
)

// Report section headers and placeholders.
const (
	LogsHeader     = "LOGS"
	DatabaseHeader = "BASE DE DATOS"
	NoLogs         = "No hubo logs"
	NoData         = "No hay datos"
)

// WriteReport writes result in the report format: the trace under LogsHeader,
// then the snapshot as key=value lines under DatabaseHeader. Empty sections get
// a placeholder line.
func WriteReport(w io.Writer, result Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, LogsHeader)
	if len(result.Trace) == 0 {
		fmt.Fprintln(bw, NoLogs)
	}
	for _, line := range result.Trace {
		fmt.Fprintln(bw, line)
	}

	fmt.Fprintln(bw, DatabaseHeader)
	if len(result.Snapshot) == 0 {
		fmt.Fprintln(bw, NoData)
	}
	for _, e := range result.Snapshot {
		fmt.Fprintf(bw, "%s=%s\n", e.Key, e.Value)
	}

	return bw.Flush()
}

// ReportName returns the file name of the report for a case: the protocol and
// the case file name joined by an underscore.
func ReportName(protocol Protocol, casePath string) string {
	return fmt.Sprintf("%s_%s", protocol, filepath.Base(casePath))
}

// WriteReportFile writes the report of a case into dir, creating dir if needed,
// and returns the path of the report.
func WriteReportFile(dir string, protocol Protocol, casePath string, result Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapError(err, "failed to create report directory %s", dir)
	}

	path := filepath.Join(dir, ReportName(protocol, casePath))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.WrapError(err, "failed to create report %s", path)
	}
	if err := WriteReport(f, result); err != nil {
		f.Close()
		return "", errors.WrapError(err, "failed to write report %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapError(err, "failed to close report %s", path)
	}
	return path, nil
}
