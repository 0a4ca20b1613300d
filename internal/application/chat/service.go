package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-market-api/internal/application/notify"
	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/pkg/id"
)

type Service interface {
	Start(ctx context.Context, buyerID string, req domain.StartConversationRequest) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	Messages(ctx context.Context, conversationID, userID string, limit int) ([]domain.Message, error)
	Send(ctx context.Context, conversationID, senderID string, req domain.SendMessageRequest) (*domain.Message, error)
}

type conversationStore interface {
	Put(ctx context.Context, c *domain.Conversation) error
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
	GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByConversation(ctx context.Context, conversationID string, limit int32) ([]domain.Message, error)
}

type listingStore interface {
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	conversationRepo conversationStore
	messageRepo      messageStore
	listingRepo      listingStore
	userRepo         userStore
	notifier         notify.Notifier
}

type ServiceDeps struct {
	ConversationRepo conversationStore
	MessageRepo      messageStore
	ListingRepo      listingStore
	UserRepo         userStore
	Notifier         notify.Notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		conversationRepo: deps.ConversationRepo,
		messageRepo:      deps.MessageRepo,
		listingRepo:      deps.ListingRepo,
		userRepo:         deps.UserRepo,
		notifier:         deps.Notifier,
	}
}

// Start opens the buyer's conversation on a listing, or returns the existing
// one. A listing has at most one conversation per buyer.
func (s *service) Start(ctx context.Context, buyerID string, req domain.StartConversationRequest) (*domain.Conversation, error) {
	l, err := s.listingRepo.Get(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if l.SellerID == buyerID {
		return nil, fmt.Errorf("cannot open a conversation on your own listing: %w", domain.ErrBadRequest)
	}
	if existing, err := s.conversationRepo.GetByListingAndBuyer(ctx, req.ListingID, buyerID); err == nil {
		return existing, nil
	}
	now := time.Now().UTC()
	c := &domain.Conversation{
		ConversationID: id.New(),
		ListingID:      l.ListingID,
		ListingTitle:   l.Title,
		BuyerID:        buyerID,
		SellerID:       l.SellerID,
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.conversationRepo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.conversationRepo.ListByUser(ctx, userID)
}

func (s *service) Messages(ctx context.Context, conversationID, userID string, limit int) ([]domain.Message, error) {
	c, err := s.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if c.Other(userID) == "" {
		return nil, fmt.Errorf("not a participant: %w", domain.ErrForbidden)
	}
	if limit < 1 {
		limit = 50
	}
	return s.messageRepo.ListByConversation(ctx, conversationID, int32(limit))
}

// Send persists the message, bumps the conversation's last-activity time and
// hands the event to the notifier. Delivery of the notification is best
// effort and never affects the send result.
func (s *service) Send(ctx context.Context, conversationID, senderID string, req domain.SendMessageRequest) (*domain.Message, error) {
	c, err := s.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	recipientID := c.Other(senderID)
	if recipientID == "" {
		return nil, fmt.Errorf("not a participant: %w", domain.ErrForbidden)
	}

	now := time.Now().UTC()
	m := &domain.Message{
		ConversationID: conversationID,
		MessageID:      id.New(),
		SenderID:       senderID,
		Content:        req.Content,
		SentAt:         now,
	}
	if err := s.messageRepo.Put(ctx, m); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Touch(ctx, conversationID, now); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Event{
		Kind:         notify.EventChatMessage,
		Conversation: c,
		RecipientID:  recipientID,
		SenderID:     senderID,
		SenderName:   s.senderName(ctx, senderID),
		Content:      req.Content,
		SentAt:       now,
	})

	return m, nil
}

// senderName is display-only context for notification logs; a lookup failure
// degrades to an empty name instead of failing the send.
func (s *service) senderName(ctx context.Context, senderID string) string {
	u, err := s.userRepo.Get(ctx, senderID)
	if err != nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
