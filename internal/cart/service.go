package cart

import (
	"context"
	"fmt"
	"strings"

	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

const maxItems = 100

type Service interface {
	Get(ctx context.Context, customerID string) (*Snapshot, error)
	// Sync replaces the server cart with the client's copy when the client
	// saw the latest version. Otherwise the server copy wins and is returned
	// with Conflict set.
	Sync(ctx context.Context, customerID string, in SyncInput) (*SyncResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, customerID string) (*Snapshot, error) {
	return s.repo.Get(ctx, customerID)
}

func (s *service) Sync(ctx context.Context, customerID string, in SyncInput) (*SyncResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SyncCart"),
		zap.String("customer_id", customerID),
	)

	current, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if in.BaseVersion != current.Version {
		log.Info("stale cart sync",
			zap.Int("base_version", in.BaseVersion),
			zap.Int("server_version", current.Version),
		)
		return &SyncResult{Cart: *current, Conflict: true}, nil
	}

	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}
	wishlist := dedupe(in.Wishlist)

	saved, err := s.repo.Save(ctx, customerID, in.BaseVersion, items, wishlist)
	if err != nil {
		log.Error("failed to save cart", zap.Error(err))
		return nil, err
	}

	latest, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !saved {
		log.Info("cart changed during sync", zap.Int("server_version", latest.Version))
		return &SyncResult{Cart: *latest, Conflict: true}, nil
	}
	return &SyncResult{Cart: *latest}, nil
}

// mergeItems validates items and folds repeated product/weight pairs into
// one line. The first occurrence keeps its position, name and price.
func mergeItems(in []Item) ([]Item, error) {
	out := make([]Item, 0, len(in))
	index := make(map[string]int, len(in))

	for i, it := range in {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Weight = strings.TrimSpace(it.Weight)
		it.Name = strings.TrimSpace(it.Name)

		switch {
		case it.ProductID == "" || it.Weight == "":
			return nil, fmt.Errorf("%w: item %d", ErrInvalidItem, i+1)
		case it.Quantity < 1:
			return nil, fmt.Errorf("%w: item %d", ErrInvalidQuantity, i+1)
		case it.UnitPrice <= 0:
			return nil, fmt.Errorf("%w: item %d", ErrInvalidPrice, i+1)
		}

		key := it.ProductID + "|" + strings.ToLower(it.Weight)
		if at, ok := index[key]; ok {
			out[at].Quantity += it.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, it)
	}

	if len(out) > maxItems {
		return nil, fmt.Errorf("%w: %d lines, max %d", ErrTooManyItems, len(out), maxItems)
	}
	return out, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
