package segmenter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

// ChunkRef identifies one bounded slice of the extracted audio. Index gives
// temporal order; Duration is the measured chunk length in seconds (the last
// chunk is usually shorter than the nominal segment time).
type ChunkRef struct {
	Index    int
	Path     string
	Duration float64
}

// Error is a segmentation failure: encoder unavailable, encoder exit,
// timeout, or zero chunks produced.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("segmentation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("segmentation: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

var supportedFormats = []string{
	".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv", ".wmv",
	".wav", ".mp3", ".m4a", ".aac", ".ogg", ".flac",
}

// Segmenter turns a media file into an ordered sequence of fixed-duration
// 16 kHz mono WAV chunks under a scratch directory.
type Segmenter struct {
	exec           executor.Executor
	logger         logger.Logger
	scratchDir     string
	extractTimeout time.Duration
	segmentTimeout time.Duration
}

func New(exec executor.Executor, log logger.Logger, scratchDir string, extractTimeout, segmentTimeout time.Duration) *Segmenter {
	return &Segmenter{
		exec:           exec,
		logger:         log,
		scratchDir:     scratchDir,
		extractTimeout: extractTimeout,
		segmentTimeout: segmentTimeout,
	}
}

// Available probes the ffmpeg binary.
func (s *Segmenter) Available(ctx context.Context) error {
	if _, err := s.exec.ExecuteTimeout(ctx, 10*time.Second, "ffmpeg", "-version"); err != nil {
		return fmt.Errorf("ffmpeg not available: %w", err)
	}
	return nil
}

// SupportedFormat checks the media file extension.
func SupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// ExtractAudio converts the media file to a 16kHz mono PCM WAV in scratch.
// This format matches what the speech engine expects.
func (s *Segmenter) ExtractAudio(ctx context.Context, mediaPath string) (string, error) {
	if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	audioPath := filepath.Join(s.scratchDir, base+"_audio.wav")

	s.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	args := []string{
		"-i", mediaPath,
		"-vn",          // No video
		"-ar", "16000", // 16kHz sample rate
		"-ac", "1", // Mono
		"-c:a", "pcm_s16le",
		"-y",
		audioPath,
	}

	if _, err := s.exec.ExecuteTimeout(ctx, s.extractTimeout, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("ffmpeg completed but audio file is missing: %w", err)
	}

	s.logger.Info(ctx, "Audio extracted: %s", audioPath)
	return audioPath, nil
}

// Duration returns the media duration in seconds via ffprobe, 0 on failure.
func (s *Segmenter) Duration(ctx context.Context, path string) float64 {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := s.exec.ExecuteTimeout(ctx, 30*time.Second, "ffprobe", args...)
	if err != nil {
		s.logger.Debug(ctx, "ffprobe duration failed for %s: %v", path, err)
		return 0
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0
	}
	return dur
}

// Segment splits the audio file into nominal chunkSeconds slices under
// scratch/chunks. Pre-existing chunk files are cleared first so a re-run is
// idempotent. The returned refs are ordered by index.
func (s *Segmenter) Segment(ctx context.Context, audioPath string, chunkSeconds int) ([]ChunkRef, error) {
	if chunkSeconds <= 0 {
		return nil, &Error{Reason: fmt.Sprintf("invalid chunk duration %d", chunkSeconds)}
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, &Error{Reason: "audio file not found", Err: err}
	}

	chunksDir := filepath.Join(s.scratchDir, "chunks")
	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		return nil, &Error{Reason: "create chunks dir", Err: err}
	}

	// Clear leftovers from a previous run
	old, _ := filepath.Glob(filepath.Join(chunksDir, "chunk_*.wav"))
	for _, f := range old {
		if err := os.Remove(f); err != nil {
			s.logger.Warn(ctx, "Failed to remove stale chunk %s: %v", f, err)
		}
	}

	s.logger.Info(ctx, "Segmenting audio into %ds chunks: %s", chunkSeconds, audioPath)

	args := []string{
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-c:a", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		filepath.Join(chunksDir, "chunk_%03d.wav"),
	}

	if _, err := s.exec.ExecuteTimeout(ctx, s.segmentTimeout, "ffmpeg", args...); err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Reason: "segmentation interrupted", Err: ctx.Err()}
		}
		return nil, &Error{Reason: "ffmpeg segment failed", Err: err}
	}

	files, err := filepath.Glob(filepath.Join(chunksDir, "chunk_*.wav"))
	if err != nil {
		return nil, &Error{Reason: "list chunks", Err: err}
	}
	if len(files) == 0 {
		return nil, &Error{Reason: "no audio chunks created"}
	}
	sort.Strings(files)

	nominal := float64(chunkSeconds)
	chunks := make([]ChunkRef, 0, len(files))
	for i, f := range files {
		dur := s.Duration(ctx, f)
		if dur <= 0 {
			// Measurement unavailable; assume the nominal cut point.
			dur = nominal
		}
		chunks = append(chunks, ChunkRef{Index: i, Path: f, Duration: dur})
	}

	s.logger.Info(ctx, "Created %d audio chunks (%ds nominal)", len(chunks), chunkSeconds)
	return chunks, nil
}

// CleanupAudio removes an extracted audio file, logging on failure.
func (s *Segmenter) CleanupAudio(ctx context.Context, audioPath string) {
	if audioPath == "" {
		return
	}
	if err := os.Remove(audioPath); err != nil {
		s.logger.Warn(ctx, "Failed to cleanup audio file %s: %v", audioPath, err)
	} else {
		s.logger.Debug(ctx, "Cleaned up audio file: %s", audioPath)
	}
}

// CleanupChunks removes all chunk files and the chunks directory.
func (s *Segmenter) CleanupChunks(ctx context.Context) {
	chunksDir := filepath.Join(s.scratchDir, "chunks")
	if err := os.RemoveAll(chunksDir); err != nil {
		s.logger.Warn(ctx, "Failed to cleanup chunks dir %s: %v", chunksDir, err)
	} else {
		s.logger.Debug(ctx, "Cleaned up chunks dir: %s", chunksDir)
	}
}
