package domain

import (
	"fmt"
	"time"
)

// RunState tracks where an import run is in its lifecycle.
type RunState string

const (
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// ImportStats counts what one run did. Counters belong to the run that
// produced them; nothing here is global or shared between runs.
type ImportStats struct {
	// Queries is how many store queries the run issued, delta import
	// re-fetches included.
	Queries int64

	// RowsRead is how many documents came off cursors.
	RowsRead int64

	// RecordsWritten is how many flat records reached the sink.
	RecordsWritten int64

	// KeysDiscovered is how many change markers delta discovery yielded.
	KeysDiscovered int64

	// DateWarnings is how many datetime literals fell back to shape
	// normalisation during query rewriting.
	DateWarnings int64
}

// Add accumulates other into s.
func (s *ImportStats) Add(other ImportStats) {
	s.Queries += other.Queries
	s.RowsRead += other.RowsRead
	s.RecordsWritten += other.RecordsWritten
	s.KeysDiscovered += other.KeysDiscovered
	s.DateWarnings += other.DateWarnings
}

// RunSummary is the durable record of one import run over one entity.
type RunSummary struct {
	ID         string
	Entity     string
	Phase      SyncPhase
	State      RunState
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      ImportStats
	Error      string
}

// Duration returns how long the run took, or the elapsed time so far for
// a run still going.
func (r RunSummary) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r RunSummary) String() string {
	return fmt.Sprintf("%s %s [%s] rows=%d records=%d keys=%d queries=%d",
		r.Entity, r.Phase, r.State,
		r.Stats.RowsRead, r.Stats.RecordsWritten, r.Stats.KeysDiscovered, r.Stats.Queries)
}
