package pipeline

import (
	"context"
	"errors"
)

func (o *implOrchestrator) Execute(ctx context.Context, url string, opts Options) Outcome {
	h, err := o.Submit(ctx, url, opts)
	if err != nil {
		out := Outcome{Success: false, Error: err.Error()}
		var capErr *CapacityError
		if errors.As(err, &capErr) {
			out.ActiveRuns = capErr.Active
		}
		return out
	}

	out, err := h.Wait(ctx)
	if err != nil {
		return Outcome{Success: false, RunID: h.RunID, Status: StatusRunning, Error: err.Error()}
	}
	return out
}

// BatchExecute runs each url to completion before starting the next. A
// failed item does not stop the batch.
func (o *implOrchestrator) BatchExecute(ctx context.Context, urls []string, opts Options) BatchSummary {
	sum := BatchSummary{
		Total:   len(urls),
		Results: make([]BatchItem, 0, len(urls)),
	}

	for i, url := range urls {
		var out Outcome
		if err := ctx.Err(); err != nil {
			out = Outcome{Success: false, Error: err.Error()}
		} else {
			out = o.Execute(ctx, url, opts)
		}

		sum.Results = append(sum.Results, BatchItem{
			URL:     url,
			RunID:   out.RunID,
			Success: out.Success,
			Error:   out.Error,
		})
		if out.Success {
			sum.Succeeded++
		} else {
			sum.Failed++
			o.logger.Warn(ctx, "batch item %d/%d failed: %s: %s", i+1, len(urls), url, out.Error)
		}
	}

	o.logger.Info(ctx, "batch finished: %d total, %d succeeded, %d failed", sum.Total, sum.Succeeded, sum.Failed)
	return sum
}
