package segmenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// fakeExecutor simulates ffmpeg/ffprobe without running processes.
type fakeExecutor struct {
	chunkCount int
	durations  map[string]float64
	failWith   error
	calls      []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name)

	if f.failWith != nil {
		return "", f.failWith
	}

	if name == "ffprobe" {
		path := args[len(args)-1]
		if dur, ok := f.durations[path]; ok {
			return fmt.Sprintf("%f\n", dur), nil
		}
		return "", errors.New("no such file")
	}

	// ffmpeg segment mode writes chunk files named by the output pattern.
	pattern := args[len(args)-1]
	if filepath.Base(pattern) == "chunk_%03d.wav" {
		dir := filepath.Dir(pattern)
		for i := 0; i < f.chunkCount; i++ {
			path := filepath.Join(dir, fmt.Sprintf("chunk_%03d.wav", i))
			if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
				return "", err
			}
		}
	} else if filepath.Ext(pattern) == ".wav" {
		if err := os.WriteFile(pattern, []byte("RIFF"), 0644); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (f *fakeExecutor) ExecuteTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func newTestSegmenter(t *testing.T, exec *fakeExecutor) *Segmenter {
	t.Helper()
	return New(exec, logger.New("error"), t.TempDir(), time.Minute, time.Minute)
}

func TestSegmentOrdering(t *testing.T) {
	exec := &fakeExecutor{chunkCount: 5}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	chunks, err := s.Segment(context.Background(), audio, 30)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	if len(chunks) != 5 {
		t.Fatalf("Segment() produced %d chunks, want 5", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if filepath.Base(c.Path) != fmt.Sprintf("chunk_%03d.wav", i) {
			t.Errorf("chunk %d path = %s", i, c.Path)
		}
	}
}

func TestSegmentMeasuredDurations(t *testing.T) {
	exec := &fakeExecutor{chunkCount: 2, durations: map[string]float64{}}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	chunksDir := filepath.Join(s.scratchDir, "chunks")
	exec.durations[filepath.Join(chunksDir, "chunk_000.wav")] = 30.0
	exec.durations[filepath.Join(chunksDir, "chunk_001.wav")] = 12.5

	chunks, err := s.Segment(context.Background(), audio, 30)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	if chunks[0].Duration != 30.0 {
		t.Errorf("chunk 0 duration = %v, want 30", chunks[0].Duration)
	}
	if chunks[1].Duration != 12.5 {
		t.Errorf("chunk 1 duration = %v, want 12.5", chunks[1].Duration)
	}
}

func TestSegmentNominalFallback(t *testing.T) {
	// No ffprobe data: durations fall back to the nominal chunk length.
	exec := &fakeExecutor{chunkCount: 1}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	chunks, err := s.Segment(context.Background(), audio, 45)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if chunks[0].Duration != 45 {
		t.Errorf("fallback duration = %v, want 45", chunks[0].Duration)
	}
}

func TestSegmentClearsStaleChunks(t *testing.T) {
	exec := &fakeExecutor{chunkCount: 2}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	chunksDir := filepath.Join(s.scratchDir, "chunks")
	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(chunksDir, "chunk_009.wav")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	chunks, err := s.Segment(context.Background(), audio, 30)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("Segment() produced %d chunks, want 2 after clearing stale", len(chunks))
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale chunk was not removed")
	}
}

func TestSegmentZeroChunks(t *testing.T) {
	exec := &fakeExecutor{chunkCount: 0}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Segment(context.Background(), audio, 30)
	var segErr *Error
	if !errors.As(err, &segErr) {
		t.Fatalf("Segment() error = %v, want *segmenter.Error", err)
	}
}

func TestSegmentEncoderFailure(t *testing.T) {
	exec := &fakeExecutor{failWith: errors.New("encoder exploded")}
	s := newTestSegmenter(t, exec)

	audio := filepath.Join(s.scratchDir, "in.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Segment(context.Background(), audio, 30)
	var segErr *Error
	if !errors.As(err, &segErr) {
		t.Fatalf("Segment() error = %v, want *segmenter.Error", err)
	}
	if !errors.Is(err, exec.failWith) {
		t.Error("segmentation error does not wrap the encoder error")
	}
}

func TestSegmentMissingInput(t *testing.T) {
	s := newTestSegmenter(t, &fakeExecutor{chunkCount: 1})

	_, err := s.Segment(context.Background(), filepath.Join(s.scratchDir, "missing.wav"), 30)
	var segErr *Error
	if !errors.As(err, &segErr) {
		t.Fatalf("Segment() error = %v, want *segmenter.Error", err)
	}
}

func TestSupportedFormat(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"meeting.mp4", true},
		{"talk.MOV", true},
		{"audio.wav", true},
		{"audio.mp3", true},
		{"notes.txt", false},
		{"archive.zip", false},
	}

	for _, tt := range tests {
		if got := SupportedFormat(tt.path); got != tt.want {
			t.Errorf("SupportedFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
