package llm

import (
	"strings"
)

// stripFences removes a markdown code fence wrapped around the whole answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// splitText cuts text into chunks of at most maxRunes, preferring paragraph
// then sentence boundaries.
func splitText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if c := strings.TrimSpace(current.String()); c != "" {
			chunks = append(chunks, c)
		}
		current.Reset()
	}

	for _, piece := range pieces(text) {
		if len([]rune(current.String()))+len([]rune(piece)) > maxRunes {
			flush()
		}
		for len([]rune(piece)) > maxRunes {
			r := []rune(piece)
			chunks = append(chunks, string(r[:maxRunes]))
			piece = string(r[maxRunes:])
		}
		current.WriteString(piece)
	}
	flush()
	return chunks
}

// pieces splits text after paragraph breaks and sentence terminators,
// keeping the separators attached.
func pieces(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '\n', '.', '!', '?', '。', '！', '？':
			out = append(out, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}
