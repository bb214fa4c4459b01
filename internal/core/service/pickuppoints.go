package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/cache"
)

var _ ports.PickupPointDirectory = (*PickupPointService)(nil)

// PickupPointService serves the carrier's pickup point directory with a
// short-lived cache in front — the feed is large and changes rarely.
type PickupPointService struct {
	carrier ports.Carrier
	cache   cache.Cache // nil-safe
	ttl     time.Duration
}

func NewPickupPointService(carrier ports.Carrier, c cache.Cache) *PickupPointService {
	return &PickupPointService{
		carrier: carrier,
		cache:   c,
		ttl:     15 * time.Minute,
	}
}

func (s *PickupPointService) List(ctx context.Context) ([]entity.PickupPoint, error) {
	if s.carrier == nil {
		return nil, entity.ErrServiceUnavailable
	}

	var key string
	if s.cache != nil {
		key = s.cache.GenerateKey("pickup-points", "all")
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var points []entity.PickupPoint
			if err := json.Unmarshal([]byte(raw), &points); err == nil {
				return points, nil
			}
		}
	}

	points, err := s.carrier.PickupPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("pickup points: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(points); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				slog.WarnContext(ctx, "failed to cache pickup point directory", "error", err)
			}
		}
	}
	return points, nil
}
