package summarizer

import "context"

// Options tune one summarization call. Lengths are in words.
type Options struct {
	MinLength     int
	MaxLength     int
	BeamWidth     int
	NoRepeatNGram int
}

// detailedOptions produce longer per-chunk summaries for the map step.
var detailedOptions = Options{MinLength: 80, MaxLength: 300, BeamWidth: 2, NoRepeatNGram: 3}

// tightOptions produce the short executive summary for the reduce step.
var tightOptions = Options{MinLength: 30, MaxLength: 150, BeamWidth: 4}

// Engine is the summarization capability. It is invoked once per map chunk
// plus once for the executive summary.
type Engine interface {
	Available(ctx context.Context) error
	Summarize(ctx context.Context, text string, opts Options) (string, error)
}
