package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrEmptyHistory is returned when exporting an empty history.
var ErrEmptyHistory = errors.New("no history to export")

const reportTitle = "Calculator History"

// ReportFilename names an export made at t.
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("calculator-history-%s.txt", t.Format("2006-01-02"))
}

// WriteReport writes the history as a numbered plain-text report, newest first.
func (s *Store) WriteReport(w io.Writer) error {
	entries := s.Entries()
	if len(entries) == 0 {
		return ErrEmptyHistory
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", reportTitle)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", len(reportTitle)))

	for i, e := range entries {
		fmt.Fprintf(bw, "%d. %s\n", i+1, e.Operation)
		if e.IsError {
			fmt.Fprintf(bw, "   Error: %s\n", e.Result)
		} else {
			fmt.Fprintf(bw, "   Result: %s\n", e.Result)
		}
		fmt.Fprintf(bw, "   Time: %s\n\n", e.Timestamp)
	}

	return bw.Flush()
}

