package watcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// doneSuffix is appended to a list file once its batch ran, so it is not
// picked up again on restart.
const doneSuffix = ".done"

// ReadURLs returns one URL per non-blank line. Lines starting with # are
// comments.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// BatchHandler returns an EventHandler that runs every URL of a dropped list
// file through b and then renames the file with a .done suffix. The file is
// not renamed when ctx ends during the batch.
func BatchHandler(b Batcher, opts pipeline.Options, log logger.Logger) EventHandler {
	return func(ctx context.Context, path string) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open url list: %w", err)
		}
		urls, err := ReadURLs(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read url list: %w", err)
		}

		if len(urls) == 0 {
			log.Warn(ctx, "No URLs in %s", path)
		} else {
			log.Info(ctx, "Running batch of %d URL(s) from %s", len(urls), path)
			sum := b.BatchExecute(ctx, urls, opts)
			log.Info(ctx, "Batch %s: %d total, %d succeeded, %d failed", path, sum.Total, sum.Succeeded, sum.Failed)
		}

		// An interrupted batch leaves the list in place for the next start.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch %s interrupted: %w", path, err)
		}

		if err := os.Rename(path, path+doneSuffix); err != nil {
			return fmt.Errorf("mark url list done: %w", err)
		}
		return nil
	}
}
