package transcriber

import (
	"fmt"
	"strings"
)

// FormatTimestamps renders one line per segment:
//
//	[MM:SS → MM:SS] text
//
// with HH:MM:SS once a timestamp reaches one hour.
func FormatTimestamps(tr Transcript) string {
	lines := make([]string, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		lines = append(lines, fmt.Sprintf("[%s → %s] %s", formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Text))
	}
	return strings.Join(lines, "\n")
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
