// Package report exports job outcomes as a CSV job report.
package report

import (
	"encoding/csv"
	"fmt"
	"ht-planning-service/internal/domain"
	"io"
	"os"
	"strconv"
)

var header = []string{"job_id", "job_type", "assigned_truck", "assigned_yard", "start_time", "end_time"}

// WriteCSV writes one row per outcome, in the order given.
func WriteCSV(w io.Writer, outcomes []domain.JobOutcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write job report: header: %w", err)
	}
	for _, o := range outcomes {
		row := []string{
			o.JobID,
			string(o.Kind),
			o.TruckID,
			o.YardID,
			strconv.FormatInt(o.StartTick, 10),
			strconv.FormatInt(o.EndTick, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write job report: job_id=%s: %w", o.JobID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write job report: flush: %w", err)
	}
	return nil
}

// WriteCSVFile creates or truncates path and writes the report into it.
func WriteCSVFile(path string, outcomes []domain.JobOutcome) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write job report: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write job report: close %q: %w", path, cerr)
		}
	}()
	return WriteCSV(f, outcomes)
}
