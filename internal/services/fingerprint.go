package services

import (
	"fmt"
	"ht-planning-service/internal/domain"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the assignment sequence of a run. Two runs over the same input
// and configuration produce the same fingerprint.
func Fingerprint(batches []domain.Batch) string {
	d := xxhash.New()
	buf := make([]byte, 0, 256)
	for _, b := range batches {
		for _, a := range b.Assignments {
			buf = buf[:0]
			buf = strconv.AppendInt(buf, a.Tick, 10)
			buf = append(buf, '|')
			buf = append(buf, a.JobID...)
			buf = append(buf, '|')
			buf = append(buf, a.TruckID...)
			buf = append(buf, '|')
			buf = append(buf, a.YardID...)
			buf = append(buf, '|')
			buf = strconv.AppendInt(buf, int64(a.LegIndex), 10)
			for _, c := range a.Path {
				buf = append(buf, '|')
				buf = strconv.AppendInt(buf, int64(c.X), 10)
				buf = append(buf, ',')
				buf = strconv.AppendInt(buf, int64(c.Y), 10)
			}
			buf = append(buf, '\n')
			_, _ = d.Write(buf)
		}
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
