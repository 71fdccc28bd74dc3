// Package pipeline drives classification over a batch of attachments.
//
// Attachments are processed one at a time in input order, so the output
// order needs no reordering. A failing attachment is logged and dropped; it
// never aborts the batch.
package pipeline

import (
	"context"
	"log/slog"

	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/loader"
	"go.klb.dev/sharekit/internal/shareerr"
)

// Classifier turns one descriptor into an item.
type Classifier interface {
	Classify(ctx context.Context, d loader.Descriptor) (item.Item, error)
}

// Run classifies descriptors in order and returns the successful items in
// the same relative order. The result is never nil. A cancelled context
// stops the batch and returns what was classified so far.
func Run(ctx context.Context, c Classifier, descriptors []loader.Descriptor, log *slog.Logger) []item.Item {
	if log == nil {
		log = slog.Default()
	}
	items := make([]item.Item, 0, len(descriptors))
	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			log.Warn("batch interrupted", "done", i, "total", len(descriptors), "err", err)
			break
		}
		it, err := c.Classify(ctx, d)
		if err != nil {
			level := slog.LevelWarn
			if !shareerr.PerAttachment(err) {
				// Outside the attachment taxonomy: a loader or environment fault.
				level = slog.LevelError
			}
			log.Log(ctx, level, "failed to parse attachment",
				"attachment", d.ID,
				"index", i,
				"code", shareerr.Code(err),
				"err", err,
			)
			continue
		}
		items = append(items, it)
	}
	log.Info("batch classified", "attachments", len(descriptors), "items", len(items))
	return items
}
