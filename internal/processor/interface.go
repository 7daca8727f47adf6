package processor

import (
	"context"

	"github.com/nguyentantai21042004/transcript-flow/internal/jobs"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
)

// Processor runs the full media-to-summary pipeline for one file at a time.
type Processor interface {
	Process(ctx context.Context, mediaPath string) error
	Cancel() error
	Job() jobs.Job
	Events(since int64) []progress.Event
}
