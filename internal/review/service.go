package review

import (
	"context"
	"errors"
	"html"
	"math"
	"strings"
	"time"

	"homefoods-be/internal/logger"
	"homefoods-be/internal/validation"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	idPrefix         = "rev_"
	maxNameLength    = 80
	maxCommentLength = 2000
)

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Review, error)
	List(ctx context.Context, filter ListFilter) ([]*Review, error)
	Verify(ctx context.Context, id string) (*Review, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, productID string) (Stats, error)
}

type ServiceDeps struct {
	Repo        Repository
	Clock       func() time.Time
	IDGenerator func() string
}

type service struct {
	repo     Repository
	clock    func() time.Time
	newID    func() string
	sanitize func(string) string
}

func NewService(deps ServiceDeps) (Service, error) {
	if deps.Repo == nil {
		return nil, errors.New("review service: repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return idPrefix + ulid.Make().String() }
	}

	policy := bluemonday.StrictPolicy()
	return &service{
		repo:  deps.Repo,
		clock: func() time.Time { return clock().UTC() },
		newID: newID,
		sanitize: func(s string) string {
			return plainText(policy, s)
		},
	}, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "CreateReview"))

	name := truncate(s.sanitize(in.Name), maxNameLength)
	comment := truncate(s.sanitize(in.Comment), maxCommentLength)

	errs := validation.FieldErrors{}
	if name == "" {
		errs[FieldName] = MsgNameRequired
	}
	if !validRating(in.Rating) {
		errs[FieldRating] = MsgRatingInvalid
	}
	if comment == "" {
		errs[FieldComment] = MsgCommentRequired
	}
	if len(errs) > 0 {
		return nil, errs
	}

	now := s.clock()
	rv := &Review{
		ID:          s.newID(),
		Name:        name,
		Rating:      int(in.Rating),
		Comment:     comment,
		ProductID:   strings.TrimSpace(in.ProductID),
		ProductName: s.sanitize(in.ProductName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		log.Error("failed to save review", zap.Error(err))
		return nil, err
	}

	log.Info("review submitted", zap.String("review_id", rv.ID), zap.Int("rating", rv.Rating))
	return rv, nil
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Review, error) {
	f.ProductID = strings.TrimSpace(f.ProductID)
	return s.repo.List(ctx, f)
}

func (s *service) Verify(ctx context.Context, id string) (*Review, error) {
	if err := s.repo.SetVerified(ctx, id, true); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("review verified", zap.String("layer", "service"), zap.String("review_id", id))
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("review deleted", zap.String("layer", "service"), zap.String("review_id", id))
	return nil
}

func (s *service) Stats(ctx context.Context, productID string) (Stats, error) {
	st, err := s.repo.Stats(ctx, strings.TrimSpace(productID))
	if err != nil {
		return Stats{}, err
	}
	st.Average = math.Round(st.Average*10) / 10
	return st, nil
}

func validRating(r float64) bool {
	return r >= 1 && r <= 5 && r == math.Trunc(r)
}

// plainText strips markup and collapses runs of whitespace.
func plainText(p *bluemonday.Policy, s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(p.Sanitize(s))), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
