package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-market-api/internal/application/notify"
	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldCategory    = "category"
	fieldStatus      = "listing_status"
	fieldBuyerID     = "buyer_id"
	fieldSoldAt      = "sold_at"
)

type Service interface {
	Create(ctx context.Context, sellerID string, req domain.CreateListingRequest) (*domain.Listing, error)
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	Search(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, string, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error)
	Update(ctx context.Context, listingID, actorID string, req domain.UpdateListingRequest) (*domain.Listing, error)
	Delete(ctx context.Context, listingID, actorID string) error
	SetStatus(ctx context.Context, listingID, actorID string, req domain.SetListingStatusRequest) (*domain.Listing, error)
}

type listingStore interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	Update(ctx context.Context, listingID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, listingID string) error
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error)
	Search(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, string, error)
}

type conversationStore interface {
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
}

type categoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type service struct {
	repo             listingStore
	conversationRepo conversationStore
	categoryRepo     categoryStore
	notifier         notify.Notifier
}

type ServiceDeps struct {
	ListingRepo      listingStore
	ConversationRepo conversationStore
	CategoryRepo     categoryStore
	Notifier         notify.Notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:             deps.ListingRepo,
		conversationRepo: deps.ConversationRepo,
		categoryRepo:     deps.CategoryRepo,
		notifier:         deps.Notifier,
	}
}

func (s *service) Create(ctx context.Context, sellerID string, req domain.CreateListingRequest) (*domain.Listing, error) {
	if _, err := s.categoryRepo.Get(ctx, req.Category); err != nil {
		return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	l := &domain.Listing{
		ListingID:   id.New(),
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Status:      domain.ListingActive,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.repo.Get(ctx, listingID)
}

func (s *service) Search(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, string, error) {
	if q.Limit < 1 {
		q.Limit = 20
	}
	return s.repo.Search(ctx, q)
}

func (s *service) ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *service) Update(ctx context.Context, listingID, actorID string, req domain.UpdateListingRequest) (*domain.Listing, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.SellerID != actorID {
		return nil, fmt.Errorf("only the seller may edit a listing: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Price != nil {
		updates[fieldPrice] = *req.Price
	}
	if req.Category != nil {
		if _, err := s.categoryRepo.Get(ctx, *req.Category); err != nil {
			return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
		}
		updates[fieldCategory] = *req.Category
	}
	if len(updates) == 0 {
		return l, nil
	}
	if err := s.repo.Update(ctx, listingID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, listingID)
}

func (s *service) Delete(ctx context.Context, listingID, actorID string) error {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if l.SellerID != actorID {
		return fmt.Errorf("only the seller may delete a listing: %w", domain.ErrForbidden)
	}
	return s.repo.SoftDelete(ctx, listingID)
}

// SetStatus moves a listing between active, reserved and sold. Reserving or
// selling identifies the buyer through the conversation the deal happened in
// and pushes an immediate notification to them.
func (s *service) SetStatus(ctx context.Context, listingID, actorID string, req domain.SetListingStatusRequest) (*domain.Listing, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.SellerID != actorID {
		return nil, fmt.Errorf("only the seller may change listing status: %w", domain.ErrForbidden)
	}

	updates := map[string]interface{}{fieldStatus: req.Status}
	var conv *domain.Conversation

	switch req.Status {
	case domain.ListingActive:
		// Relisting. Buyer and sale time become stale but stay on the record;
		// only the status drives visibility.
	case domain.ListingReserved, domain.ListingSold:
		if req.ConversationID == "" {
			return nil, fmt.Errorf("conversation_id is required when reserving or selling: %w", domain.ErrBadRequest)
		}
		conv, err = s.conversationRepo.Get(ctx, req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv.ListingID != listingID {
			return nil, fmt.Errorf("conversation does not belong to this listing: %w", domain.ErrBadRequest)
		}
		updates[fieldBuyerID] = conv.BuyerID
		if req.Status == domain.ListingSold {
			updates[fieldSoldAt] = time.Now().UTC()
		}
	default:
		return nil, fmt.Errorf("invalid listing status: %w", domain.ErrBadRequest)
	}

	if err := s.repo.Update(ctx, listingID, updates); err != nil {
		return nil, err
	}

	if conv != nil {
		s.notifier.Notify(ctx, notify.Event{
			Kind:         notify.EventTransaction,
			Conversation: conv,
			RecipientID:  conv.BuyerID,
			SenderID:     actorID,
			Content:      statusMessage(req.Status, l.Title),
			SentAt:       time.Now().UTC(),
		})
	}

	return s.repo.Get(ctx, listingID)
}

func statusMessage(status, title string) string {
	if status == domain.ListingSold {
		return fmt.Sprintf("「%s」交易完成，歡迎留下評價！", title)
	}
	return fmt.Sprintf("賣家已為你保留「%s」", title)
}
