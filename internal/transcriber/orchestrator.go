package transcriber

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/transcript-flow/internal/jobs"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
	"github.com/nguyentantai21042004/transcript-flow/internal/sysload"
)

// Orchestrator dispatches chunks to the speech engine under the chosen
// concurrency mode and merges partial results into one ordered transcript.
type Orchestrator struct {
	engine Engine
	logger logger.Logger
}

func NewOrchestrator(engine Engine, log logger.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, logger: log}
}

// Run transcribes every chunk and merges the results in index order. The
// gate is polled at chunk boundaries; once set, no further chunk is
// dispatched and jobs.ErrCancelled is returned with in-flight results
// discarded. Per-chunk engine failures become empty contributions.
func (o *Orchestrator) Run(ctx context.Context, chunks []segmenter.ChunkRef, decision sysload.Decision, gate *jobs.Gate, report progress.Reporter) (Transcript, error) {
	if report == nil {
		report = progress.Nop{}
	}

	var results []ChunkResult
	var err error
	if decision.Mode == sysload.Parallel && decision.Workers > 1 {
		results, err = o.runParallel(ctx, chunks, decision.Workers, gate, report)
	} else {
		results, err = o.runSequential(ctx, chunks, gate, report)
	}
	if err != nil {
		return Transcript{}, err
	}

	return merge(chunks, results), nil
}

func (o *Orchestrator) runSequential(ctx context.Context, chunks []segmenter.ChunkRef, gate *jobs.Gate, report progress.Reporter) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(chunks))

	for i, chunk := range chunks {
		if gate != nil && gate.Requested() {
			o.logger.Info(ctx, "Cancellation requested, stopping after %d/%d chunks", i, len(chunks))
			return nil, jobs.ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results[i] = o.transcribeChunk(ctx, chunk)
		report.Emit(progress.PhaseTranscribe, i+1, len(chunks), "")
	}

	return results, nil
}

func (o *Orchestrator) runParallel(ctx context.Context, chunks []segmenter.ChunkRef, workers int, gate *jobs.Gate, report progress.Reporter) ([]ChunkResult, error) {
	if workers > len(chunks) {
		workers = len(chunks)
	}

	// Each worker writes only its own chunk indexes; the counter is the only
	// state shared across tasks.
	results := make([]ChunkResult, len(chunks))
	indexes := make(chan int)
	var completed atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = o.transcribeChunk(ctx, chunks[idx])
				done := completed.Add(1)
				report.Emit(progress.PhaseTranscribe, int(done), len(chunks), "")
			}
		}()
	}

	// Submit in index order, stopping at the first cancellation observation.
	// Chunks already handed to workers are allowed to finish.
	cancelled := false
	for i := range chunks {
		if gate != nil && gate.Requested() {
			cancelled = true
			break
		}
		select {
		case indexes <- i:
		case <-ctx.Done():
			cancelled = true
		}
		if cancelled {
			break
		}
	}
	close(indexes)
	wg.Wait()

	if cancelled || (gate != nil && gate.Requested()) {
		o.logger.Info(ctx, "Cancellation requested, discarding %d in-flight results", completed.Load())
		return nil, jobs.ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (o *Orchestrator) transcribeChunk(ctx context.Context, chunk segmenter.ChunkRef) ChunkResult {
	result, err := o.engine.Transcribe(ctx, chunk.Path)
	if err != nil {
		o.logger.Warn(ctx, "Chunk %d failed, continuing without it: %v", chunk.Index, err)
		return ChunkResult{Language: "unknown", Err: err.Error()}
	}
	return result
}

// merge combines chunk results in index order, shifting each chunk's
// segments by the total duration of the chunks before it.
func merge(chunks []segmenter.ChunkRef, results []ChunkResult) Transcript {
	var texts []string
	var segments []Segment
	language := "unknown"

	offset := 0.0
	for i, result := range results {
		if result.Text != "" {
			texts = append(texts, result.Text)

			for _, seg := range result.Segments {
				segments = append(segments, Segment{
					Start: seg.Start + offset,
					End:   seg.End + offset,
					Text:  seg.Text,
				})
			}

			if language == "unknown" && result.Language != "" && result.Language != "unknown" {
				language = result.Language
			}
		}

		offset += chunks[i].Duration
	}

	text := strings.Join(texts, " ")
	return Transcript{
		Text:      text,
		Segments:  segments,
		Language:  language,
		WordCount: len(strings.Fields(text)),
	}
}
