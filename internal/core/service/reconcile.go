package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

// Outcomes of product reconciliation, recorded for diagnostics.
const (
	matchedByMetadata = "metadata"
	matchedByName     = "name"
	matchedSentinel   = "sentinel"
)

// reconcileStrategy tries to map a provider line item to a catalog product.
type reconcileStrategy func(ctx context.Context, line ports.SessionLineItem) (int64, bool)

// Reconciler maps payment-provider line items back to internal products via
// an ordered strategy chain: embedded metadata id, then fuzzy name lookup,
// then a sentinel placeholder. Losing a paid line item is worse than a wrong
// reference, so the chain never drops a line — sentinel outcomes go to the
// review queue instead.
type Reconciler struct {
	strategies []reconcileStrategy
	queue      ports.ReviewQueue // nil when no review stream is configured
}

func NewReconciler(products ports.ProductRepository, queue ports.ReviewQueue) *Reconciler {
	byMetadata := func(ctx context.Context, line ports.SessionLineItem) (int64, bool) {
		if line.ProductID > 0 {
			return line.ProductID, true
		}
		return 0, false
	}
	byName := func(ctx context.Context, line ports.SessionLineItem) (int64, bool) {
		name := line.ProductName
		if name == "" {
			name = line.Description
		}
		if name == "" {
			return 0, false
		}
		p, err := products.SearchProductByName(ctx, name)
		if err != nil {
			return 0, false
		}
		return p.ID, true
	}

	return &Reconciler{
		strategies: []reconcileStrategy{byMetadata, byName},
		queue:      queue,
	}
}

// Resolve returns the first strategy's match, or the sentinel placeholder id
// after publishing a review event.
func (r *Reconciler) Resolve(ctx context.Context, sessionID string, line ports.SessionLineItem) (int64, string) {
	for i, strat := range r.strategies {
		if id, ok := strat(ctx, line); ok {
			how := matchedByMetadata
			if i > 0 {
				how = matchedByName
			}
			return id, how
		}
	}

	slog.WarnContext(ctx, "line item could not be reconciled to a product, using placeholder",
		"session_id", sessionID, "description", line.Description)

	if r.queue != nil {
		event := ports.ReviewEvent{
			EventID:     uuid.NewString(),
			SessionID:   sessionID,
			Description: line.Description,
			Quantity:    line.Quantity,
			Reason:      "no product match by metadata or name",
			OccurredAt:  time.Now().UTC(),
		}
		if err := r.queue.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "failed to publish reconciliation review event",
				"session_id", sessionID, "error", err)
		}
	}
	return entity.PlaceholderProductID, matchedSentinel
}
