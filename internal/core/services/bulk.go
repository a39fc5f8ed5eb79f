package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/kinde-purge/internal/core/domain"
)

// DeleteFunc removes a single resource by id.
type DeleteFunc func(ctx context.Context, id string) error

// uniqueIDs collapses duplicate ids, preserving first-seen order, so a
// resource that appears on more than one page is deleted at most once.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// deleteAll attempts del for every unique id, strictly in sequence.
// A failed delete is counted and logged but never aborts the batch;
// Processed reflects the attempts made so far after every item.
func deleteAll(ctx context.Context, ids []string, del DeleteFunc, logger *slog.Logger) domain.BulkResult {
	var result domain.BulkResult
	for _, id := range uniqueIDs(ids) {
		if err := del(ctx, id); err != nil {
			result.Failed++
			logger.Warn("delete failed",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		} else {
			result.Deleted++
		}
		result.Processed++
	}
	return result
}
