package ports

import (
	"context"
	"time"
)

// ReviewEvent flags a payment line that was accepted with a placeholder
// product reference and needs manual reconciliation.
type ReviewEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	OrderID     int64     `json:"order_id,omitempty"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ReviewQueue publishes reconciliation events to the operator review stream.
// Implementations must be safe to call when the stream is not configured.
type ReviewQueue interface {
	Publish(ctx context.Context, event ReviewEvent) error
}
