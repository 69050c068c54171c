package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"homefoods-be/internal/cache"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/pricing"

	"go.uber.org/zap"
)

const (
	cachePrefix = "catalog:"
	cacheTTL    = 5 * time.Minute
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

type Service interface {
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) ([]CategorySummary, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id string, p Product) (*Product, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, products []Product) (SeedResult, error)
	// VariantPrice reports the catalog price for a product's pack size.
	VariantPrice(ctx context.Context, productID, weight string) (float64, bool, error)
	ProductName(ctx context.Context, productID string) (string, bool, error)
}

type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type service struct {
	repo  Repository
	cache cache.Cache
}

// NewService caches catalog reads in c; a nil cache disables caching.
func NewService(repo Repository, c cache.Cache) Service {
	return &service{repo: repo, cache: c}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, f.Category)
	}

	key := fmt.Sprintf("%slist:%s:%t", cachePrefix, f.Category, f.IncludeUnavailable)
	var products []*Product
	if s.cached(ctx, key, &products) {
		return products, nil
	}

	products, err := s.repo.List(ctx, f)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list products",
			zap.String("layer", "service"),
			zap.String("category", string(f.Category)),
			zap.Error(err),
		)
		return nil, err
	}
	s.remember(ctx, key, products)
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductNotFound
	}

	key := cachePrefix + "product:" + id
	var p Product
	if s.cached(ctx, key, &p) {
		return &p, nil
	}

	found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, found)
	return found, nil
}

func (s *service) Categories(ctx context.Context) ([]CategorySummary, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategorySummary, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, CategorySummary{Category: c, Label: categoryLabels[c], Count: counts[c]})
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, p Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "CreateProduct"))

	if err := normalize(&p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		log.Error("failed to create product", zap.String("product_id", p.ID), zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("product created", zap.String("product_id", p.ID))
	return s.repo.Get(ctx, p.ID)
}

func (s *service) Update(ctx context.Context, id string, p Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	p.ID = strings.TrimSpace(id)
	if p.ID == "" {
		return nil, ErrProductNotFound
	}
	if err := normalize(&p); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, &p); err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			log.Error("failed to update product", zap.Error(err))
		}
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("product updated")
	return s.repo.Get(ctx, p.ID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.FromCtx(ctx).Info("product deleted", zap.String("layer", "service"), zap.String("product_id", id))
	return nil
}

// Seed upserts every product by id; the first invalid entry aborts the run.
func (s *service) Seed(ctx context.Context, products []Product) (SeedResult, error) {
	var res SeedResult
	for i := range products {
		p := products[i]
		if err := normalize(&p); err != nil {
			return res, fmt.Errorf("product %d (%s): %w", i, p.ID, err)
		}
		created, err := s.repo.Upsert(ctx, &p)
		if err != nil {
			return res, fmt.Errorf("product %s: %w", p.ID, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	s.invalidate(ctx)

	logger.FromCtx(ctx).Info("catalog seeded", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return res, nil
}

func (s *service) VariantPrice(ctx context.Context, productID, weight string) (float64, bool, error) {
	p, err := s.Get(ctx, productID)
	if errors.Is(err, ErrProductNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	v, ok := p.variant(weight)
	if !ok {
		return 0, false, nil
	}
	return v.Price, true, nil
}

// ProductName returns the English display name used on order lines.
func (s *service) ProductName(ctx context.Context, productID string) (string, bool, error) {
	p, err := s.Get(ctx, productID)
	if errors.Is(err, ErrProductNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Name.En, true, nil
}

// variant matches pack sizes by weight, so "1kg" finds "1 KG" and "1000g".
func (p *Product) variant(weight string) (Variant, bool) {
	want, err := pricing.ParseWeight(weight)
	for _, v := range p.Variants {
		if err != nil {
			if strings.EqualFold(strings.TrimSpace(v.Weight), strings.TrimSpace(weight)) {
				return v, true
			}
			continue
		}
		if kg, perr := pricing.ParseWeight(v.Weight); perr == nil && math.Abs(kg-want) < 1e-9 {
			return v, true
		}
	}
	return Variant{}, false
}

func normalize(p *Product) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name.En = strings.TrimSpace(p.Name.En)
	p.Name.Hi = strings.TrimSpace(p.Name.Hi)
	p.Category = Category(strings.ToLower(strings.TrimSpace(string(p.Category))))

	if p.Name.En == "" {
		return fmt.Errorf("%w: name.en is required", ErrInvalidProduct)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, p.Category)
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("%w: at least one weight variant is required", ErrInvalidProduct)
	}

	lowest := math.Inf(1)
	for i := range p.Variants {
		v := &p.Variants[i]
		v.Weight = strings.TrimSpace(v.Weight)
		if _, err := pricing.ParseWeight(v.Weight); err != nil {
			return fmt.Errorf("%w: variant %d: %v", ErrInvalidProduct, i, err)
		}
		if v.Price <= 0 || math.IsNaN(v.Price) || math.IsInf(v.Price, 0) {
			return fmt.Errorf("%w: variant %d: price must be positive", ErrInvalidProduct, i)
		}
		lowest = math.Min(lowest, v.Price)
	}
	if p.BasePrice <= 0 {
		p.BasePrice = lowest
	}
	if p.ID == "" {
		p.ID = Slug(p.Name.En)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// Slug lowercases s and joins its alphanumeric runs with dashes.
func Slug(s string) string {
	return strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *service) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.FromCtx(ctx).Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *service) remember(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL); err != nil {
		logger.FromCtx(ctx).Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		logger.FromCtx(ctx).Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
