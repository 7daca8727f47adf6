package jobs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrCancelled marks a job that ended through cooperative cancellation.
// It is a terminal outcome distinct from success and from failure.
var ErrCancelled = errors.New("job cancelled")

// ErrJobAlreadyRunning is returned when starting a second active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrNoRunningJob is returned when cancel is requested for idle state.
var ErrNoRunningJob = errors.New("no running job")

// Status tracks each pipeline stage for a single job.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusExtracting   Status = "extracting"
	StatusSegmenting   Status = "segmenting"
	StatusTranscribing Status = "transcribing"
	StatusSummarizing  Status = "summarizing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
	StatusCancelled    Status = "cancelled"
)

// Gate is a cooperative cancellation flag. It is set once by an external
// caller and polled by the pipeline at chunk and phase boundaries; in-flight
// work is never interrupted mid-call.
type Gate struct {
	requested atomic.Bool
}

// Request asks the running job to stop at its next safe point.
func (g *Gate) Request() {
	g.requested.Store(true)
}

// Requested reports whether cancellation has been asked for.
func (g *Gate) Requested() bool {
	return g.requested.Load()
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string `json:"id"`
	Media  string `json:"media"`
	Status Status `json:"status"`
}

// Manager tracks the single allowed active job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: Job{Status: StatusIdle},
	}
}

// Start creates a new job and moves it to extracting state.
func (m *Manager) Start(mediaPath string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isRunning(m.current.Status) {
		return Job{}, ErrJobAlreadyRunning
	}

	m.current = Job{
		ID:     uuid.NewString(),
		Media:  mediaPath,
		Status: StatusExtracting,
	}
	return m.current, nil
}

// Transition validates and applies state transitions for current job.
func (m *Manager) Transition(status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != StatusIdle {
		return fmt.Errorf("cannot transition without an active job")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsRunning reports whether the current state is an active stage.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// Cancel moves an active job to cancelled state.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isRunning(m.current.Status) {
		return ErrNoRunningJob
	}
	m.current.Status = StatusCancelled
	return nil
}

// isRunning checks if a status represents active pipeline execution.
func isRunning(status Status) bool {
	switch status {
	case StatusExtracting, StatusSegmenting, StatusTranscribing, StatusSummarizing:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusExtracting
	case StatusExtracting:
		return to == StatusSegmenting || to == StatusFailed || to == StatusCancelled
	case StatusSegmenting:
		return to == StatusTranscribing || to == StatusFailed || to == StatusCancelled
	case StatusTranscribing:
		return to == StatusSummarizing || to == StatusDone || to == StatusFailed || to == StatusCancelled
	case StatusSummarizing:
		return to == StatusDone || to == StatusFailed || to == StatusCancelled
	case StatusDone, StatusFailed, StatusCancelled:
		return to == StatusExtracting || to == StatusIdle
	default:
		return false
	}
}
