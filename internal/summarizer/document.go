package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// Document is the fixed-structure summary built once per job. The section
// order and headings in Markdown() are a compatibility surface for tooling
// that parses the output.
type Document struct {
	GeneratedAt     time.Time
	TranscriptChars int
	TranscriptWords int
	Executive       string
	Detailed        string
	KeyPoints       []string
	ActionItems     []string
	Transcript      string
}

// Markdown renders the document: title + metadata, Executive Summary,
// Detailed Summary, bulleted Key Points, checkbox Action Items, and the
// full transcript in a collapsible block.
func (d *Document) Markdown() string {
	var b strings.Builder

	b.WriteString("# Meeting Summary\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", d.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Transcript Length:** %s characters | %s words\n", groupDigits(d.TranscriptChars), groupDigits(d.TranscriptWords))

	b.WriteString("\n---\n\n## Executive Summary\n")
	b.WriteString(d.Executive)
	b.WriteString("\n")

	b.WriteString("\n---\n\n## Detailed Summary\n\n")
	b.WriteString(d.Detailed)
	b.WriteString("\n")

	b.WriteString("\n---\n\n## Key Points\n")
	for _, p := range d.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString("\n---\n\n## Action Items & Takeaways\n")
	if len(d.ActionItems) > 0 {
		b.WriteString("Based on the meeting content, the following items require attention:\n\n")
	}
	for _, item := range d.ActionItems {
		fmt.Fprintf(&b, "- [ ] %s\n", item)
	}

	b.WriteString("\n---\n\n## Full Transcript\n")
	b.WriteString("<details>\n")
	fmt.Fprintf(&b, "<summary>Click to expand full transcript (%s characters)</summary>\n\n", groupDigits(d.TranscriptChars))
	b.WriteString(d.Transcript)
	b.WriteString("\n\n</details>\n")

	return b.String()
}

// groupDigits formats n with thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
