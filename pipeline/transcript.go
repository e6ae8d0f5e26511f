package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"ewintr.nl/tubemap/model"
)

var (
	markupTag        = regexp.MustCompile(`<[^>]+>`)
	encodedMarkupTag = regexp.MustCompile(`&lt;[^&]+&gt;`)
)

// ParseVTT extracts timestamped cues from a raw VTT payload. It is best
// effort and never fails: headers and notes are skipped, cues without a
// parseable timestamp or without text are dropped, and unusable input
// yields an empty transcript.
func ParseVTT(payload string) model.Transcript {
	lines := strings.Split(payload, "\n")
	transcript := model.Transcript{}

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			i++
			continue
		}
		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		start, ok := parseStartTime(line)
		i++

		textLines := []string{}
		for i < len(lines) {
			text := strings.TrimSpace(lines[i])
			if text == "" || strings.Contains(text, "-->") {
				break
			}
			if text = stripMarkup(text); text != "" {
				textLines = append(textLines, text)
			}
			i++
		}

		if ok && len(textLines) > 0 {
			transcript = append(transcript, model.TranscriptEntry{
				Start: start,
				Text:  strings.Join(textLines, " "),
			})
		}
	}

	return transcript
}

// parseStartTime parses the left-hand side of a cue timestamp line. The
// format is [HH:]MM:SS.mmm, with either a dot or a comma as the fractional
// separator.
func parseStartTime(line string) (float64, bool) {
	start, _, _ := strings.Cut(line, "-->")
	start = strings.ReplaceAll(strings.TrimSpace(start), ",", ".")

	parts := strings.Split(start, ":")
	switch len(parts) {
	case 3:
		hours, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, false
		}
		seconds, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, false
		}
		return float64(hours)*3600 + float64(minutes)*60 + seconds, true
	case 2:
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		seconds, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, false
		}
		return float64(minutes)*60 + seconds, true
	}

	return 0, false
}

// stripMarkup removes inline styling from cue text, both literal tags and
// their HTML-entity-encoded form. Plain substitution, not a markup parser.
func stripMarkup(text string) string {
	text = markupTag.ReplaceAllString(text, "")
	text = encodedMarkupTag.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
