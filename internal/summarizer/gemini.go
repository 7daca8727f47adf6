package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

const summaryPrompt = `You are summarizing part of a meeting transcript. Write a clear prose summary of the text below.

Requirements:
- Between %d and %d words
- Cover every distinct topic in the order it appears
- Do not repeat phrases or restate the same point twice
- Plain prose only, no headings or bullet points

Transcript section:
---
%s
---`

// GeminiEngine summarizes text through the Gemini API, rotating through the
// supplied API keys on quota errors.
type GeminiEngine struct {
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

func NewGeminiEngine(apiKeys []string, model string, log logger.Logger) *GeminiEngine {
	return &GeminiEngine{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

// Available reports whether the engine has credentials to work with.
func (g *GeminiEngine) Available(ctx context.Context) error {
	if len(g.apiKeys) == 0 {
		return fmt.Errorf("no Gemini API keys configured")
	}
	return nil
}

// Summarize sends the text to Gemini with the option bounds folded into the
// prompt. Rotates API keys on 429 / quota errors.
func (g *GeminiEngine) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, opts.MinLength, opts.MaxLength, text)

	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key := g.apiKeys[g.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var out string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					out += part.Text
				}
			}
			return strings.TrimSpace(out), nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *GeminiEngine) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}
