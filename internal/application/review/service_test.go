package review

import (
	"context"
	"errors"
	"testing"

	"github.com/go-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReviewStore struct{ mock.Mock }

func (m *mockReviewStore) Put(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReviewStore) GetByListingAndReviewer(ctx context.Context, listingID, reviewerID string) (*domain.Review, error) {
	args := m.Called(ctx, listingID, reviewerID)
	if r, _ := args.Get(0).(*domain.Review); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReviewStore) ListByReviewee(ctx context.Context, revieweeID string) ([]domain.Review, error) {
	args := m.Called(ctx, revieweeID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockListingStore struct{ mock.Mock }

func (m *mockListingStore) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if l, _ := args.Get(0).(*domain.Listing); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func soldListing() *domain.Listing {
	buyer := "buyer-1"
	return &domain.Listing{
		ListingID: "l1",
		SellerID:  "seller-1",
		Status:    domain.ListingSold,
		BuyerID:   &buyer,
	}
}

func newSvc(rs *mockReviewStore, ls *mockListingStore) Service {
	return NewService(ServiceDeps{ReviewRepo: rs, ListingRepo: ls})
}

// --- Create tests ---

func TestCreate_ListingNotSold(t *testing.T) {
	ls := &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1", Status: domain.ListingActive}, nil)

	_, err := newSvc(&mockReviewStore{}, ls).Create(context.Background(), "buyer-1", domain.CreateReviewRequest{ListingID: "l1", Rating: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_NonParticipant(t *testing.T) {
	ls := &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(soldListing(), nil)

	_, err := newSvc(&mockReviewStore{}, ls).Create(context.Background(), "stranger", domain.CreateReviewRequest{ListingID: "l1", Rating: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreate_Duplicate(t *testing.T) {
	rs, ls := &mockReviewStore{}, &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(soldListing(), nil)
	rs.On("GetByListingAndReviewer", mock.Anything, "l1", "buyer-1").Return(&domain.Review{}, nil)

	_, err := newSvc(rs, ls).Create(context.Background(), "buyer-1", domain.CreateReviewRequest{ListingID: "l1", Rating: 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreate_BuyerReviewsSeller(t *testing.T) {
	rs, ls := &mockReviewStore{}, &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(soldListing(), nil)
	rs.On("GetByListingAndReviewer", mock.Anything, "l1", "buyer-1").Return(nil, domain.ErrNotFound)
	rs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	r, err := newSvc(rs, ls).Create(context.Background(), "buyer-1", domain.CreateReviewRequest{ListingID: "l1", Rating: 5, Comment: "很好的賣家"})

	require.NoError(t, err)
	assert.Equal(t, "seller-1", r.RevieweeID)
	assert.Equal(t, 5, r.Rating)
	rs.AssertExpectations(t)
}

func TestCreate_SellerReviewsBuyer(t *testing.T) {
	rs, ls := &mockReviewStore{}, &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(soldListing(), nil)
	rs.On("GetByListingAndReviewer", mock.Anything, "l1", "seller-1").Return(nil, domain.ErrNotFound)
	rs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	r, err := newSvc(rs, ls).Create(context.Background(), "seller-1", domain.CreateReviewRequest{ListingID: "l1", Rating: 4})

	require.NoError(t, err)
	assert.Equal(t, "buyer-1", r.RevieweeID)
}
