package review

import (
	"context"
	"fmt"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, reviewerID string, req domain.CreateReviewRequest) (*domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
}

type reviewStore interface {
	Put(ctx context.Context, r *domain.Review) error
	GetByListingAndReviewer(ctx context.Context, listingID, reviewerID string) (*domain.Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]domain.Review, error)
}

type listingStore interface {
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
}

type service struct {
	repo        reviewStore
	listingRepo listingStore
}

type ServiceDeps struct {
	ReviewRepo  reviewStore
	ListingRepo listingStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ReviewRepo, listingRepo: deps.ListingRepo}
}

// Create records one review per participant per sold listing. The reviewee is
// always the other party of the sale.
func (s *service) Create(ctx context.Context, reviewerID string, req domain.CreateReviewRequest) (*domain.Review, error) {
	l, err := s.listingRepo.Get(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if l.Status != domain.ListingSold || l.BuyerID == nil {
		return nil, fmt.Errorf("listing has not been sold: %w", domain.ErrBadRequest)
	}

	var revieweeID string
	switch reviewerID {
	case l.SellerID:
		revieweeID = *l.BuyerID
	case *l.BuyerID:
		revieweeID = l.SellerID
	default:
		return nil, fmt.Errorf("only the buyer and seller may review this sale: %w", domain.ErrForbidden)
	}

	if _, err := s.repo.GetByListingAndReviewer(ctx, req.ListingID, reviewerID); err == nil {
		return nil, fmt.Errorf("you already reviewed this sale: %w", domain.ErrConflict)
	}

	r := &domain.Review{
		ReviewID:   id.New(),
		ListingID:  req.ListingID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return s.repo.ListByReviewee(ctx, userID)
}
