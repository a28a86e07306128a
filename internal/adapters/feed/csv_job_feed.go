// Package feed reads job lists from CSV exports and JSON seed files.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"ht-planning-service/internal/domain"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns of a terminal job export. ARRIVAL_TICK, YARD_OVERRIDE and LEGS are optional.
const (
	colJobID      = "JOB_ID"
	colJobType    = "JOB_TYPE"
	colContainer  = "CONTAINER_NO"
	colQC         = "QC_M"
	colQCSeq      = "QC_JOB_SEQ"
	colYard       = "YARD_BLOCK"
	colAltYard    = "ALT_YARD_BLOCK_"
	colArrival    = "ARRIVAL_TICK"
	colOverride   = "YARD_OVERRIDE"
	colLegs       = "LEGS"
	maxAltYards   = 3
	legsSeparator = ";"
)

// CSVJobFeed implements ports.JobSource over a CSV file.
type CSVJobFeed struct {
	Path string
}

func NewCSVJobFeed(path string) *CSVJobFeed { return &CSVJobFeed{Path: path} }

func (f *CSVJobFeed) LoadJobs(ctx context.Context) ([]*domain.Job, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("load csv jobs: open %q: %w", f.Path, err)
	}
	defer file.Close()

	jobs, err := ParseCSV(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("load csv jobs: %q: %w", f.Path, err)
	}
	return jobs, nil
}

// ParseCSV reads jobs from r. The header row decides column positions.
func ParseCSV(ctx context.Context, r io.Reader) ([]*domain.Job, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty job file", domain.ErrInputValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colJobID, colJobType, colQC} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", domain.ErrInputValidation, required)
		}
	}

	var jobs []*domain.Job
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		job, err := jobFromRecord(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func jobFromRecord(get func(string) string) (*domain.Job, error) {
	kind, err := domain.ParseJobKind(get(colJobType))
	if err != nil {
		return nil, err
	}

	var arrival int64
	if v := get(colArrival); v != "" {
		arrival, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", domain.ErrInputValidation, colArrival, v, err)
		}
	}

	job := domain.NewJob(get(colJobID), kind, get(colQC), arrival)
	job.ContainerNo = get(colContainer)
	job.YardOverride = get(colOverride)

	if v := get(colQCSeq); v != "" {
		seq, err := ParseQCSequence(v)
		if err != nil {
			return nil, err
		}
		job.QCSequence = seq
	}

	if v := get(colLegs); v != "" {
		job.Legs = nil
		for _, part := range strings.Split(v, legsSeparator) {
			leg, err := domain.ParseLegType(part)
			if err != nil {
				return nil, err
			}
			job.Legs = append(job.Legs, leg)
		}
	}

	if y := get(colYard); y != "" {
		job.CandidateYards = append(job.CandidateYards, y)
	}
	for i := 1; i <= maxAltYards; i++ {
		if y := get(colAltYard + strconv.Itoa(i)); y != "" {
			job.CandidateYards = append(job.CandidateYards, y)
		}
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// ParseQCSequence accepts "QC1_0004" style sequence labels or bare numbers.
func ParseQCSequence(s string) (int, error) {
	num := s
	if i := strings.LastIndex(s, "_"); i >= 0 {
		num = s[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid qc job sequence %q", domain.ErrInputValidation, s)
	}
	return n, nil
}
