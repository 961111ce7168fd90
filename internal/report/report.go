package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

var ErrNoResult = errors.New("run has no result")

// WriteRunReport writes <dir>/<runID>.docx with the optimized transcript,
// the optional summary and translation, and the timestamped segments.
func (w *implWriter) WriteRunReport(ctx context.Context, runID, url string, res *pipeline.Result) (string, error) {
	if res == nil {
		return "", ErrNoResult
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("new document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), "Transcript "+runID, true, 16)
	addPlain(doc.AddParagraph(""), "Source: "+url)

	if m := res.Multilingual; m != nil && m.Summary != "" {
		addHeading(doc, "Summary")
		addMarkdown(doc, m.Summary)
	}

	addHeading(doc, "Transcript")
	for _, para := range paragraphs(res.OptimizedText) {
		addRichText(doc.AddParagraph(""), para)
	}

	if m := res.Multilingual; m != nil && m.Translation != "" {
		addHeading(doc, "Translation ("+m.TargetLanguage+")")
		for _, para := range paragraphs(m.Translation) {
			addPlain(doc.AddParagraph(""), para)
		}
	}

	if len(res.Segments) > 0 {
		addHeading(doc, "Timestamped segments")
		for _, seg := range res.Segments {
			addPlain(doc.AddParagraph(""), segmentLine(seg))
		}
	}

	path := filepath.Join(w.dir, runID+".docx")
	if err := doc.SaveTo(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	w.logger.Info(ctx, "Report written: %s", path)
	return path, nil
}

// paragraphs splits text on blank lines, dropping empty ones.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.Join(strings.Fields(p), " "))
		}
	}
	return out
}

// segmentLine renders "[HH:MM:SS] text".
func segmentLine(seg pipeline.Segment) string {
	total := int(seg.Start)
	return fmt.Sprintf("[%02d:%02d:%02d] %s", total/3600, total%3600/60, total%60, seg.Text)
}
