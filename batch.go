package pageling

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pageling/pageling/rewriter"
)

// BatchItem is one (URL, language) unit of the auto-translation queue.
type BatchItem struct {
	URL string `json:"url"`
	Lng string `json:"lng"`
}

// BatchToken resumes a chunked batch run. The zero value starts from the
// beginning.
type BatchToken struct {
	Cursor int `json:"cursor"`
}

// BatchResult reports one chunk of a batch run. Failed items are still
// consumed by the cursor, so Failed counts a subset of Processed;
// Processed-Failed items succeeded.
type BatchResult struct {
	Processed int         // items consumed in this chunk, including failures
	Failed    int         // items that could not be fetched or rewritten
	Next      *BatchToken // nil when the queue is exhausted
}

// Done reports whether the queue is exhausted.
func (r BatchResult) Done() bool { return r.Next == nil }

// BuildBatchQueue expands a URL list into the full (URL × language) queue
// over the engine's target languages.
func (e *Engine) BuildBatchQueue(urls []string) []BatchItem {
	targets := e.cfg.TargetLngs()
	items := make([]BatchItem, 0, len(urls)*len(targets))
	for _, u := range urls {
		for _, lng := range targets {
			items = append(items, BatchItem{URL: u, Lng: lng})
		}
	}
	return items
}

// AutoTranslateChunk processes a bounded slice of the batch queue and
// returns a resumption token for the next invocation. Each item fetches the
// page, rewrites it with automatic translation forced on and flushes the
// discovered and translated strings. The chunking is deliberate
// backpressure: one invocation never exceeds chunkSize items, so a hosting
// environment's execution limits are respected without a background job.
func (e *Engine) AutoTranslateChunk(ctx context.Context, queue []BatchItem, tok BatchToken, chunkSize int) (BatchResult, error) {
	if e.provider == nil {
		return BatchResult{}, &ConfigError{Field: "provider", Message: "automatic translation requires a provider"}
	}
	if chunkSize <= 0 {
		chunkSize = 10
	}
	start := tok.Cursor
	if start < 0 {
		start = 0
	}
	if start >= len(queue) {
		return BatchResult{}, nil
	}
	end := start + chunkSize
	if end > len(queue) {
		end = len(queue)
	}

	var result BatchResult
	for _, item := range queue[start:end] {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.autoTranslatePage(ctx, item); err != nil {
			result.Failed++
			e.log.WithError(err).WithFields(logrus.Fields{
				"url": item.URL,
				"lng": item.Lng,
			}).Warn("batch auto-translation item failed")
		}
		result.Processed++
	}

	if end < len(queue) {
		result.Next = &BatchToken{Cursor: end}
	}
	return result, nil
}

// autoTranslatePage fetches one page and runs the rewrite pipeline with
// machine translation on, persisting everything it learned.
func (e *Engine) autoTranslatePage(ctx context.Context, item BatchItem) error {
	content, err := e.fetch(ctx, item.URL)
	if err != nil {
		return err
	}
	sess := e.newSession(item.URL, e.cfg.DiscoveryLog, true)
	if _, err := e.rewrite(ctx, sess, content, item.Lng, rewriter.Meta{}); err != nil {
		sess.Discard()
		return err
	}
	if err := sess.Flush(); err != nil {
		return &StoreError{Message: "flushing batch session", Cause: err}
	}
	return nil
}
