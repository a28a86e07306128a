package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"ht-planning-service/internal/domain"
	"io"
	"os"
	"strings"
)

// JobSeed is the JSON shape of one job in seed files and API requests.
type JobSeed struct {
	JobID          string           `json:"job_id"`
	JobType        string           `json:"job_type"`
	ContainerNo    string           `json:"container_no,omitempty"`
	QC             string           `json:"qc,omitempty"`
	QCSequence     int              `json:"qc_sequence,omitempty"`
	ArrivalTick    int64            `json:"arrival_tick,omitempty"`
	CandidateYards []string         `json:"candidate_yards,omitempty"`
	YardOverride   string           `json:"yard_override,omitempty"`
	Legs           []domain.LegType `json:"legs,omitempty"`
}

// ToJob converts and validates a seed.
func (s JobSeed) ToJob() (*domain.Job, error) {
	kind, err := domain.ParseJobKind(s.JobType)
	if err != nil {
		return nil, err
	}
	job := domain.NewJob(strings.TrimSpace(s.JobID), kind, strings.TrimSpace(s.QC), s.ArrivalTick)
	job.ContainerNo = s.ContainerNo
	job.QCSequence = s.QCSequence
	job.YardOverride = strings.TrimSpace(s.YardOverride)
	job.CandidateYards = append([]string(nil), s.CandidateYards...)
	if len(s.Legs) > 0 {
		job.Legs = append([]domain.LegType(nil), s.Legs...)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// ToJobs converts seeds in order, naming the first invalid one.
func ToJobs(seeds []JobSeed) ([]*domain.Job, error) {
	jobs := make([]*domain.Job, 0, len(seeds))
	for i, s := range seeds {
		j, err := s.ToJob()
		if err != nil {
			return nil, fmt.Errorf("job at index %d: %w", i, err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// JSONJobFeed implements ports.JobSource over a JSON array of JobSeed.
type JSONJobFeed struct {
	Path string
}

func NewJSONJobFeed(path string) *JSONJobFeed { return &JSONJobFeed{Path: path} }

func (f *JSONJobFeed) LoadJobs(ctx context.Context) ([]*domain.Job, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("load json jobs: open %q: %w", f.Path, err)
	}
	defer file.Close()

	jobs, err := ParseJSON(file)
	if err != nil {
		return nil, fmt.Errorf("load json jobs: %q: %w", f.Path, err)
	}
	return jobs, nil
}

func ParseJSON(r io.Reader) ([]*domain.Job, error) {
	var seeds []JobSeed
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", domain.ErrInputValidation, err)
	}
	return ToJobs(seeds)
}
