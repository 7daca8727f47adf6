package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
)

// actionKeywords mark sentences that read like commitments or follow-ups.
var actionKeywords = []string{
	"should", "need to", "must", "will", "going to", "plan to", "want to", "have to",
}

var fallbackActionItems = []string{
	"Review the key points from this meeting",
	"Follow up on discussed topics",
	"Share summary with relevant stakeholders",
}

const (
	maxKeyPoints    = 10
	maxActionItems  = 8
	execTrigger     = 500  // chars of detailed summary above which a reduce pass runs
	execInputPrefix = 2000 // chars of detailed summary fed to the reduce pass
)

// Reducer builds a summary document from a transcript via hierarchical
// map-reduce: chunk -> per-chunk summary -> detailed summary -> executive
// summary, plus heuristic key-point and action-item extraction.
type Reducer struct {
	engine Engine
	logger logger.Logger
}

func NewReducer(engine Engine, log logger.Logger) *Reducer {
	return &Reducer{engine: engine, logger: log}
}

// Reduce summarizes the transcript into a document bounded by wordLimit.
func (r *Reducer) Reduce(ctx context.Context, transcript string, wordLimit int, report progress.Reporter) (*Document, error) {
	if report == nil {
		report = progress.Nop{}
	}
	if wordLimit <= 0 {
		return nil, fmt.Errorf("word limit must be positive, got %d", wordLimit)
	}

	transcript = strings.TrimSpace(transcript)
	doc := &Document{
		GeneratedAt:     time.Now(),
		TranscriptChars: len(transcript),
		TranscriptWords: len(strings.Fields(transcript)),
		Transcript:      transcript,
	}

	if transcript == "" {
		doc.Executive = "No content to summarize."
		doc.Detailed = "No content to summarize."
		doc.KeyPoints = []string{"No speech was detected in the recording."}
		return doc, nil
	}

	// Chunk size scales inversely with the requested summary length: more
	// output words means more chunks of smaller size.
	targetChunks := max(3, wordLimit/100)
	maxChunkChars := max(400, doc.TranscriptWords/targetChunks*5)
	chunks := chunkText(transcript, maxChunkChars)

	r.logger.Info(ctx, "Summarizing %d transcript chunks (~%d chars each)", len(chunks), maxChunkChars)

	summaries := make([]string, 0, len(chunks))
	var lastErr error
	for i, chunk := range chunks {
		summary, err := r.engine.Summarize(ctx, chunk, detailedOptions)
		if err != nil {
			r.logger.Warn(ctx, "Chunk %d/%d summary failed, skipping: %v", i+1, len(chunks), err)
			lastErr = err
			continue
		}
		if summary != "" {
			summaries = append(summaries, summary)
		}
		report.Emit(progress.PhaseSummarize, i+1, len(chunks)+1, fmt.Sprintf("Summarized chunk %d/%d", i+1, len(chunks)))
	}
	if len(summaries) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("all chunk summaries failed: %w", lastErr)
		}
		return nil, fmt.Errorf("summarization produced no output")
	}

	detailed := strings.Join(summaries, "\n\n")

	// Hard word cap: truncation, not re-summarization, so it may cut
	// mid-thought.
	words := strings.Fields(detailed)
	if len(words) > wordLimit*12/10 {
		detailed = strings.Join(words[:wordLimit], " ") + "..."
	}
	doc.Detailed = detailed

	doc.Executive = r.executive(ctx, detailed)
	report.Emit(progress.PhaseSummarize, len(chunks)+1, len(chunks)+1, "Summary ready")

	doc.KeyPoints = keyPoints(summaries)
	doc.ActionItems = actionItems(summaries)

	return doc, nil
}

// executive reduces the detailed summary to a short overview. Short detailed
// summaries pass through unchanged.
func (r *Reducer) executive(ctx context.Context, detailed string) string {
	if len(detailed) <= execTrigger {
		return detailed
	}

	input := detailed
	if len(input) > execInputPrefix {
		input = input[:execInputPrefix]
	}

	out, err := r.engine.Summarize(ctx, input, tightOptions)
	if err != nil || out == "" {
		r.logger.Warn(ctx, "Executive summary failed, using detailed prefix: %v", err)
		return detailed[:execTrigger]
	}
	return out
}

// chunkText splits text greedily on word boundaries so no chunk exceeds
// maxChars. It never splits inside a word.
func chunkText(text string, maxChars int) []string {
	words := strings.Fields(text)

	var chunks []string
	var current []string
	length := 0

	for _, word := range words {
		if length+len(word) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{word}
			length = len(word)
		} else {
			current = append(current, word)
			length += len(word) + 1
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// keyPoints takes the first sentence of each chunk summary, in chunk order,
// keeping only substantial ones.
func keyPoints(summaries []string) []string {
	var points []string
	for _, summary := range summaries {
		sentence, _, _ := strings.Cut(summary, ".")
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 20 {
			points = append(points, sentence+".")
		}
		if len(points) == maxKeyPoints {
			break
		}
	}

	if len(points) == 0 {
		return []string{"Key points extracted from the meeting content above."}
	}
	return points
}

// actionItems keeps sentences that contain an action keyword and look like a
// usable task.
func actionItems(summaries []string) []string {
	combined := strings.ToLower(strings.Join(summaries, " "))

	replacer := strings.NewReplacer(".", ".|", "!", "!|", "?", "?|")
	sentences := strings.Split(replacer.Replace(combined), "|")

	var items []string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 30 || len(sentence) >= 200 {
			continue
		}
		if !containsAny(sentence, actionKeywords) {
			continue
		}
		runes := []rune(sentence)
		items = append(items, strings.ToUpper(string(runes[0]))+string(runes[1:]))
		if len(items) == maxActionItems {
			break
		}
	}

	if len(items) == 0 {
		return append([]string(nil), fallbackActionItems...)
	}
	return items
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
