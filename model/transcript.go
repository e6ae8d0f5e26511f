package model

import (
	"fmt"
	"strings"
)

type TranscriptEntry struct {
	Start float64
	Text  string
}

// Transcript is an ordered sequence of cues, chronological by start time.
type Transcript []TranscriptEntry

func (t Transcript) Empty() bool {
	return len(t) == 0
}

// Render produces the stored form of a transcript: one line per cue,
// formatted as "[65.25s] text". This is what ends up on the record and in
// the generation prompt.
func (t Transcript) Render() string {
	lines := make([]string, 0, len(t))
	for _, entry := range t {
		lines = append(lines, fmt.Sprintf("[%.2fs] %s", entry.Start, entry.Text))
	}

	return strings.Join(lines, "\n")
}
