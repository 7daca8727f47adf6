package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

// WhisperEngine drives the whisper.cpp CLI, one independent invocation per
// chunk, parsing its JSON output into segments.
type WhisperEngine struct {
	binaryPath string
	modelPath  string
	language   string
	threads    int
	exec       executor.Executor
	logger     logger.Logger
}

func NewWhisperEngine(binaryPath, modelPath, language string, threads int, exec executor.Executor, log logger.Logger) *WhisperEngine {
	return &WhisperEngine{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		language:   language,
		threads:    threads,
		exec:       exec,
		logger:     log,
	}
}

// Available verifies the model file exists and the binary responds.
func (w *WhisperEngine) Available(ctx context.Context) error {
	if _, err := os.Stat(w.modelPath); err != nil {
		return &EngineLoadError{Err: fmt.Errorf("model file: %w", err)}
	}
	if _, err := w.exec.ExecuteTimeout(ctx, 10*time.Second, w.binaryPath, "-h"); err != nil {
		return &EngineLoadError{Err: fmt.Errorf("whisper binary: %w", err)}
	}
	return nil
}

// whisperOutput mirrors the relevant parts of whisper.cpp -oj output.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp over one audio chunk and returns its text and
// chunk-relative segments.
func (w *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (ChunkResult, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	jsonPath := outputPrefix + ".json"

	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outputPrefix,
	}
	if lang := normalizeLanguage(w.language); lang != "" {
		args = append(args, "-l", lang)
	}
	if w.threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.threads))
	}

	if _, err := w.exec.Execute(ctx, w.binaryPath, args...); err != nil {
		return ChunkResult{}, fmt.Errorf("whisper transcribe %s: %w", audioPath, err)
	}
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return ChunkResult{}, fmt.Errorf("parse whisper output: %w", err)
	}

	result := ChunkResult{Language: "unknown"}
	if out.Result.Language != "" {
		result.Language = out.Result.Language
	}

	texts := make([]string, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		texts = append(texts, text)
		result.Segments = append(result.Segments, Segment{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
	}
	result.Text = strings.Join(texts, " ")

	return result, nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}
