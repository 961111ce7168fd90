package report

import (
	"context"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// Writer exports a completed run as a DOCX document.
type Writer interface {
	WriteRunReport(ctx context.Context, runID, url string, res *pipeline.Result) (string, error)
}
