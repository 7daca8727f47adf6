package transcriber

import (
	"context"
	"fmt"
	"strings"
)

// Segment is a timed span of recognized speech. Start and End are
// chunk-relative seconds until the merge step shifts them onto the full
// recording's timeline.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ChunkResult is the engine output for a single chunk. A failed chunk is
// represented by empty text and segments with Err recording the cause; a
// single chunk's failure never aborts the job.
type ChunkResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
	Err      string    `json:"error,omitempty"`
}

// Transcript is the merged, timeline-corrected result of one job.
type Transcript struct {
	Text      string    `json:"text"`
	Segments  []Segment `json:"segments"`
	Language  string    `json:"language"`
	WordCount int       `json:"word_count"`
}

// Empty reports whether no speech was recognized in any chunk. This is a
// valid outcome, not an error.
func (t Transcript) Empty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// Engine is the speech-to-text capability. Each chunk is transcribed
// independently, without conditioning on previous chunks.
type Engine interface {
	Available(ctx context.Context) error
	Transcribe(ctx context.Context, audioPath string) (ChunkResult, error)
}

// EngineLoadError means the speech engine failed to initialize or probe.
type EngineLoadError struct {
	Err error
}

func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("speech engine unavailable: %v", e.Err)
}

func (e *EngineLoadError) Unwrap() error { return e.Err }
