package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// scriptedExecutor writes a canned whisper JSON file instead of running the
// binary.
type scriptedExecutor struct {
	json    string
	failErr error
	args    []string
}

func (s *scriptedExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	s.args = args
	if s.failErr != nil {
		return "", s.failErr
	}

	for i, a := range args {
		if a == "-of" && i+1 < len(args) {
			if err := os.WriteFile(args[i+1]+".json", []byte(s.json), 0644); err != nil {
				return "", err
			}
		}
	}
	return "", nil
}

func (s *scriptedExecutor) ExecuteTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	return s.Execute(ctx, name, args...)
}

const whisperJSON = `{
  "result": {"language": "en"},
  "transcription": [
    {"offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
    {"offsets": {"from": 2500, "to": 6000}, "text": " Welcome to the meeting."},
    {"offsets": {"from": 6000, "to": 6200}, "text": "  "}
  ]
}`

func TestWhisperTranscribe(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "chunk_000.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &scriptedExecutor{json: whisperJSON}
	engine := NewWhisperEngine("whisper-cli", "model.bin", "en", 4, exec, logger.New("error"))

	result, err := engine.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if result.Text != "Hello there. Welcome to the meeting." {
		t.Errorf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2 (blank segment dropped)", len(result.Segments))
	}
	if result.Segments[0].Start != 0 || result.Segments[0].End != 2.5 {
		t.Errorf("segment 0 = (%v, %v), want (0, 2.5)", result.Segments[0].Start, result.Segments[0].End)
	}
	if result.Segments[1].Start != 2.5 || result.Segments[1].End != 6.0 {
		t.Errorf("segment 1 = (%v, %v), want (2.5, 6.0)", result.Segments[1].Start, result.Segments[1].End)
	}

	// JSON sidecar is removed after parsing.
	if _, err := os.Stat(strings.TrimSuffix(audio, ".wav") + ".json"); !os.IsNotExist(err) {
		t.Error("whisper JSON output was not cleaned up")
	}
}

func TestWhisperTranscribeLanguageFlags(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "chunk_000.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	// "auto" means no -l override.
	exec := &scriptedExecutor{json: `{"result":{"language":""},"transcription":[]}`}
	engine := NewWhisperEngine("whisper-cli", "model.bin", "auto", 0, exec, logger.New("error"))

	result, err := engine.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	for _, a := range exec.args {
		if a == "-l" {
			t.Error("auto language produced a -l flag")
		}
	}
	if result.Language != "unknown" {
		t.Errorf("language = %q, want unknown when engine reports none", result.Language)
	}
}

func TestWhisperTranscribeFailure(t *testing.T) {
	exec := &scriptedExecutor{failErr: errors.New("exit status 1")}
	engine := NewWhisperEngine("whisper-cli", "model.bin", "en", 0, exec, logger.New("error"))

	if _, err := engine.Transcribe(context.Background(), "chunk_000.wav"); err == nil {
		t.Error("Transcribe() expected error when the binary fails")
	}
}

func TestWhisperAvailableMissingModel(t *testing.T) {
	exec := &scriptedExecutor{json: "{}"}
	engine := NewWhisperEngine("whisper-cli", filepath.Join(t.TempDir(), "missing.bin"), "en", 0, exec, logger.New("error"))

	err := engine.Available(context.Background())
	var loadErr *EngineLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Available() error = %v, want *EngineLoadError", err)
	}
}

func TestFormatTimestamps(t *testing.T) {
	tr := Transcript{Segments: []Segment{
		{Start: 2.0, End: 5.5, Text: "hello"},
		{Start: 65.0, End: 70.2, Text: "again"},
		{Start: 3661.0, End: 3665.0, Text: "late"},
	}}

	got := FormatTimestamps(tr)
	want := "[00:02 → 00:05] hello\n[01:05 → 01:10] again\n[01:01:01 → 01:01:05] late"
	if got != want {
		t.Errorf("FormatTimestamps() =\n%q\nwant\n%q", got, want)
	}
}
