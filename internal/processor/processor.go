package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/jobs"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcriber"
)

// Process runs the full pipeline: extract audio, segment, transcribe under
// the concurrency decision, and reduce the transcript into a summary
// document. Outputs land in the configured output directory.
func (p *implProcessor) Process(ctx context.Context, mediaPath string) error {
	startTime := time.Now()

	if _, err := os.Stat(mediaPath); err != nil {
		return &InputError{Path: mediaPath, Reason: "file not found"}
	}
	if !segmenter.SupportedFormat(mediaPath) {
		return &InputError{Path: mediaPath, Reason: fmt.Sprintf("unsupported format %s", filepath.Ext(mediaPath))}
	}

	if err := p.segmenter.Available(ctx); err != nil {
		return &EnvironmentError{Tool: "ffmpeg", Err: err}
	}

	job, err := p.manager.Start(mediaPath)
	if err != nil {
		return err
	}

	gate := &jobs.Gate{}
	p.mu.Lock()
	p.gate = gate
	p.mu.Unlock()

	tracker := progress.NewTracker(job.ID, p.bus)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Job %s: processing %s", job.ID, mediaPath)
	p.logger.Info(ctx, "========================================")

	err = p.run(ctx, job, mediaPath, gate, tracker)
	switch {
	case errors.Is(err, jobs.ErrCancelled):
		p.manager.Cancel()
		p.logger.Info(ctx, "Job %s cancelled after %s", job.ID, time.Since(startTime))
		return err
	case err != nil:
		if terr := p.manager.Transition(jobs.StatusFailed); terr != nil {
			p.logger.Warn(ctx, "Failed-state transition: %v", terr)
		}
		p.logger.Error(ctx, "Job %s failed: %v", job.ID, err)
		return err
	default:
		if terr := p.manager.Transition(jobs.StatusDone); terr != nil {
			p.logger.Warn(ctx, "Done-state transition: %v", terr)
		}
		p.logger.Info(ctx, "Job %s completed in %s", job.ID, time.Since(startTime))
		return nil
	}
}

func (p *implProcessor) run(ctx context.Context, job jobs.Job, mediaPath string, gate *jobs.Gate, tracker *progress.Tracker) error {
	// Phase 1: extract audio.
	tracker.Emit(progress.PhaseExtract, 0, 1, "Extracting audio...")
	audioPath, err := p.segmenter.ExtractAudio(ctx, mediaPath)
	if err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	defer p.segmenter.CleanupAudio(ctx, audioPath)
	tracker.Emit(progress.PhaseExtract, 1, 1, "Audio extracted")

	if gate.Requested() {
		return jobs.ErrCancelled
	}

	// Phase 2: segment into chunks.
	if err := p.manager.Transition(jobs.StatusSegmenting); err != nil {
		return err
	}
	tracker.Emit(progress.PhaseSegment, 0, 1, "Segmenting audio...")
	chunks, err := p.segmenter.Segment(ctx, audioPath, p.cfg.Pipeline.ChunkSeconds)
	if err != nil {
		return err
	}
	defer p.segmenter.CleanupChunks(ctx)
	tracker.Emit(progress.PhaseSegment, 1, 1, fmt.Sprintf("Created %d chunks", len(chunks)))

	if gate.Requested() {
		return jobs.ErrCancelled
	}

	// Phase 3: probe engines and pick the concurrency mode.
	tracker.Emit(progress.PhaseEngineLoad, 0, 1, "Loading engines...")
	if err := p.sttEngine.Available(ctx); err != nil {
		return err
	}
	if err := p.sumEngine.Available(ctx); err != nil {
		return fmt.Errorf("summary engine unavailable: %w", err)
	}
	decision := p.controller.Decide(ctx, p.cfg.Pipeline.Workers)
	tracker.Emit(progress.PhaseEngineLoad, 1, 1, fmt.Sprintf("Engines ready (%s, %d workers)", decision.Mode, decision.Workers))

	if gate.Requested() {
		return jobs.ErrCancelled
	}

	// Phase 4: transcribe.
	if err := p.manager.Transition(jobs.StatusTranscribing); err != nil {
		return err
	}
	transcript, err := p.orch.Run(ctx, chunks, decision, gate, tracker)
	if err != nil {
		return err
	}

	if transcript.Empty() {
		p.logger.Info(ctx, "No speech detected in %s", mediaPath)
		tracker.Emit(progress.PhaseSummarize, 1, 1, "No speech detected")
		return nil
	}

	if err := p.writeTranscript(ctx, mediaPath, transcript); err != nil {
		return err
	}

	if gate.Requested() {
		return jobs.ErrCancelled
	}

	// Phase 5: summarize.
	if err := p.manager.Transition(jobs.StatusSummarizing); err != nil {
		return err
	}
	doc, err := p.reducer.Reduce(ctx, transcript.Text, p.cfg.Summary.WordLimit, tracker)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	return p.writeSummary(ctx, mediaPath, doc)
}

// Cancel asks the running job to stop at its next safe point.
func (p *implProcessor) Cancel() error {
	if !p.manager.IsRunning() {
		return jobs.ErrNoRunningJob
	}

	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()

	if gate == nil {
		return jobs.ErrNoRunningJob
	}
	gate.Request()
	return nil
}

// Job returns a snapshot of the current job.
func (p *implProcessor) Job() jobs.Job {
	return p.manager.Current()
}

// Events returns progress events newer than seq for a polling observer.
func (p *implProcessor) Events(since int64) []progress.Event {
	return p.bus.Since(since)
}

func (p *implProcessor) writeTranscript(ctx context.Context, mediaPath string, tr transcriber.Transcript) error {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := p.outputPath(mediaPath, "_transcript.txt")
	if err := os.WriteFile(path, []byte(transcriber.FormatTimestamps(tr)+"\n"), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	p.logger.Info(ctx, "Transcript written: %s (%d words, language %s)", path, tr.WordCount, tr.Language)
	return nil
}

func (p *implProcessor) writeSummary(ctx context.Context, mediaPath string, doc *summarizer.Document) error {
	mdPath := p.outputPath(mediaPath, "_summary.md")
	if err := os.WriteFile(mdPath, []byte(doc.Markdown()), 0644); err != nil {
		return fmt.Errorf("write summary markdown: %w", err)
	}
	p.logger.Info(ctx, "Summary written: %s", mdPath)

	docxPath := p.outputPath(mediaPath, "_summary.docx")
	if err := summarizer.WriteDocx(doc, docxPath); err != nil {
		// Markdown is the primary artifact; docx is best effort.
		p.logger.Warn(ctx, "Failed to write docx summary: %v", err)
		return nil
	}
	p.logger.Info(ctx, "Summary written: %s", docxPath)

	return nil
}

func (p *implProcessor) outputPath(mediaPath, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	return filepath.Join(p.cfg.Paths.Output, base+suffix)
}
