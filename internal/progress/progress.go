package progress

import (
	"sync"
	"time"
)

// Phase identifies one pipeline stage for progress mapping.
type Phase string

const (
	PhaseExtract    Phase = "extract"
	PhaseSegment    Phase = "segment"
	PhaseEngineLoad Phase = "engine_load"
	PhaseTranscribe Phase = "transcribe"
	PhaseSummarize  Phase = "summarize"
)

// band maps a phase onto a fixed slice of the 0-100 scale. Within a band the
// percentage advances linearly with current/total.
type band struct {
	start float64
	end   float64
}

var bands = map[Phase]band{
	PhaseExtract:    {0, 5},
	PhaseSegment:    {5, 10},
	PhaseEngineLoad: {10, 15},
	PhaseTranscribe: {15, 70},
	PhaseSummarize:  {70, 100},
}

// Event is one progress update consumed by an external observer.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId"`
	Phase     Phase     `json:"phase"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
}

// Reporter receives phase updates from pipeline stages.
type Reporter interface {
	Emit(phase Phase, current, total int, message string)
}

// Sink receives fully derived events.
type Sink interface {
	Publish(event Event) Event
}

// Tracker derives banded percentages from phase updates and guarantees the
// reported percentage never decreases over the lifetime of one job.
type Tracker struct {
	mu    sync.Mutex
	jobID string
	sink  Sink
	last  int
}

// NewTracker creates a per-job tracker writing to the given sink.
func NewTracker(jobID string, sink Sink) *Tracker {
	return &Tracker{jobID: jobID, sink: sink}
}

// Emit maps the update onto the phase band and publishes it.
func (t *Tracker) Emit(phase Phase, current, total int, message string) {
	pct := percent(phase, current, total)

	t.mu.Lock()
	if pct < t.last {
		pct = t.last
	}
	t.last = pct
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Publish(Event{
			JobID:   t.jobID,
			Phase:   phase,
			Current: current,
			Total:   total,
			Percent: pct,
			Message: message,
		})
	}
}

// Percent returns the last reported percentage.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func percent(phase Phase, current, total int) int {
	b, ok := bands[phase]
	if !ok {
		return 0
	}

	frac := 1.0
	if total > 0 {
		frac = float64(current) / float64(total)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
	}

	return int(b.start + (b.end-b.start)*frac)
}

// Nop is a Reporter that drops all updates.
type Nop struct{}

func (Nop) Emit(Phase, int, int, string) {}
