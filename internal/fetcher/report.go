package fetcher

import (
	"time"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// Outcome is the result of persisting one commodity.
type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeError     Outcome = "error"
)

// Attempt records a source that failed during a run.
type Attempt struct {
	Source string
	Err    error
}

// Item is the persistence result for one commodity.
type Item struct {
	Commodity string
	Price     int64
	Outcome   Outcome
	Err       error
}

// Report summarizes one run.
type Report struct {
	Domain     model.Domain
	Source     string    // source that produced the prices
	Failed     []Attempt // sources tried before Source, in order
	ObservedAt time.Time
	Items      []Item
}

// UsedFallback reports whether the prices came from a non-primary source.
func (r *Report) UsedFallback() bool {
	return len(r.Failed) > 0
}

// Count returns the number of items with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}
