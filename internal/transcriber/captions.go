package transcriber

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

var ErrMalformedTimestamp = errors.New("malformed caption timestamp")

// ParseSRT reads SRT cues into segments. Blocks without a timing line are
// skipped; a timing line that does not parse is an error.
func ParseSRT(src string) ([]pipeline.Segment, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.TrimPrefix(src, "\ufeff")

	var segments []pipeline.Segment
	for _, block := range strings.Split(src, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}

		start, end, err := parseTiming(lines[timing])
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(strings.Join(lines[timing+1:], " "))
		if text == "" {
			continue
		}
		segments = append(segments, pipeline.Segment{Start: start, End: end, Text: text})
	}
	return segments, nil
}

func parseTiming(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS,mmm and HH:MM:SS.mmm.
func parseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.Replace(s, ",", ".", 1)

	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	h, err1 := strconv.Atoi(fields[0])
	m, err2 := strconv.Atoi(fields[1])
	sec, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return float64(h*3600+m*60) + sec, nil
}

// FullText joins segment texts with single spaces.
func FullText(segments []pipeline.Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}

// EncodeSRT renders segments as numbered SRT cues.
func EncodeSRT(segments []pipeline.Segment) string {
	var b strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatTimestamp(s.Start, ','), formatTimestamp(s.End, ','), s.Text)
	}
	return b.String()
}

// EncodeVTT renders segments as a WebVTT document.
func EncodeVTT(segments []pipeline.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", formatTimestamp(s.Start, '.'), formatTimestamp(s.End, '.'), s.Text)
	}
	return b.String()
}

func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	ms := total % 1000
	total /= 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", total/3600, total%3600/60, total%60, sep, ms)
}
