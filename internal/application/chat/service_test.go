package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-market-api/internal/application/notify"
	"github.com/go-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockConversationStore struct{ mock.Mock }

func (m *mockConversationStore) Put(ctx context.Context, c *domain.Conversation) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockConversationStore) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if c, _ := args.Get(0).(*domain.Conversation); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockConversationStore) GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, listingID, buyerID)
	if c, _ := args.Get(0).(*domain.Conversation); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockConversationStore) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}
func (m *mockConversationStore) Touch(ctx context.Context, conversationID string, at time.Time) error {
	return m.Called(ctx, conversationID, at).Error(0)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageStore) ListByConversation(ctx context.Context, conversationID string, limit int32) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	return args.Get(0).([]domain.Message), args.Error(1)
}

type mockListingStore struct{ mock.Mock }

func (m *mockListingStore) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if l, _ := args.Get(0).(*domain.Listing); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	r.events = append(r.events, ev)
}

// --- helpers ---

func newSvc(cs *mockConversationStore, ms *mockMessageStore, ls *mockListingStore, us *mockUserStore, n notify.Notifier) Service {
	if n == nil {
		n = notify.Noop{}
	}
	return NewService(ServiceDeps{
		ConversationRepo: cs,
		MessageRepo:      ms,
		ListingRepo:      ls,
		UserRepo:         us,
		Notifier:         n,
	})
}

func conv() *domain.Conversation {
	return &domain.Conversation{
		ConversationID: "c1",
		ListingID:      "l1",
		ListingTitle:   "露營椅",
		BuyerID:        "buyer-1",
		SellerID:       "seller-1",
	}
}

// --- Start tests ---

func TestStart_OwnListing(t *testing.T) {
	ls := &mockListingStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1", SellerID: "seller-1"}, nil)

	svc := newSvc(&mockConversationStore{}, nil, ls, nil, nil)
	_, err := svc.Start(context.Background(), "seller-1", domain.StartConversationRequest{ListingID: "l1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestStart_ExistingConversationReturned(t *testing.T) {
	ls, cs := &mockListingStore{}, &mockConversationStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1", SellerID: "seller-1"}, nil)
	existing := conv()
	cs.On("GetByListingAndBuyer", mock.Anything, "l1", "buyer-1").Return(existing, nil)

	svc := newSvc(cs, nil, ls, nil, nil)
	c, err := svc.Start(context.Background(), "buyer-1", domain.StartConversationRequest{ListingID: "l1"})

	require.NoError(t, err)
	assert.Equal(t, existing, c)
	cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestStart_CreatesWithDenormalizedTitle(t *testing.T) {
	ls, cs := &mockListingStore{}, &mockConversationStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1", SellerID: "seller-1", Title: "露營椅"}, nil)
	cs.On("GetByListingAndBuyer", mock.Anything, "l1", "buyer-1").Return(nil, domain.ErrNotFound)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Conversation")).Return(nil)

	svc := newSvc(cs, nil, ls, nil, nil)
	c, err := svc.Start(context.Background(), "buyer-1", domain.StartConversationRequest{ListingID: "l1"})

	require.NoError(t, err)
	assert.Equal(t, "露營椅", c.ListingTitle)
	assert.Equal(t, "seller-1", c.SellerID)
	assert.NotEmpty(t, c.ConversationID)
	cs.AssertExpectations(t)
}

// --- Messages tests ---

func TestMessages_NonParticipant(t *testing.T) {
	cs := &mockConversationStore{}
	cs.On("Get", mock.Anything, "c1").Return(conv(), nil)

	svc := newSvc(cs, &mockMessageStore{}, nil, nil, nil)
	_, err := svc.Messages(context.Background(), "c1", "stranger", 20)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- Send tests ---

func TestSend_NonParticipant(t *testing.T) {
	cs := &mockConversationStore{}
	cs.On("Get", mock.Anything, "c1").Return(conv(), nil)

	svc := newSvc(cs, &mockMessageStore{}, nil, nil, nil)
	_, err := svc.Send(context.Background(), "c1", "stranger", domain.SendMessageRequest{Content: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestSend_NotifiesOtherParticipant(t *testing.T) {
	cs, ms, us := &mockConversationStore{}, &mockMessageStore{}, &mockUserStore{}
	cs.On("Get", mock.Anything, "c1").Return(conv(), nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	cs.On("Touch", mock.Anything, "c1", mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "buyer-1").Return(&domain.User{UserID: "buyer-1", Username: "alice", Nickname: "小艾"}, nil)

	rec := &recordingNotifier{}
	svc := newSvc(cs, ms, nil, us, rec)
	m, err := svc.Send(context.Background(), "c1", "buyer-1", domain.SendMessageRequest{Content: "這個還在嗎？"})

	require.NoError(t, err)
	assert.Equal(t, "這個還在嗎？", m.Content)
	require.Len(t, rec.events, 1)
	assert.Equal(t, notify.EventChatMessage, rec.events[0].Kind)
	assert.Equal(t, "seller-1", rec.events[0].RecipientID)
	assert.Equal(t, "小艾", rec.events[0].SenderName)
	cs.AssertExpectations(t)
	ms.AssertExpectations(t)
}

func TestSend_SellerToBuyer(t *testing.T) {
	cs, ms, us := &mockConversationStore{}, &mockMessageStore{}, &mockUserStore{}
	cs.On("Get", mock.Anything, "c1").Return(conv(), nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	cs.On("Touch", mock.Anything, "c1", mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "seller-1").Return(&domain.User{UserID: "seller-1", Username: "bob"}, nil)

	rec := &recordingNotifier{}
	svc := newSvc(cs, ms, nil, us, rec)
	_, err := svc.Send(context.Background(), "c1", "seller-1", domain.SendMessageRequest{Content: "還在喔"})

	require.NoError(t, err)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "buyer-1", rec.events[0].RecipientID)
	// No nickname set, falls back to the username.
	assert.Equal(t, "bob", rec.events[0].SenderName)
}

func TestSend_MessagePutFails_NoNotification(t *testing.T) {
	cs, ms := &mockConversationStore{}, &mockMessageStore{}
	cs.On("Get", mock.Anything, "c1").Return(conv(), nil)
	ms.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	rec := &recordingNotifier{}
	svc := newSvc(cs, ms, nil, nil, rec)
	_, err := svc.Send(context.Background(), "c1", "buyer-1", domain.SendMessageRequest{Content: "hi"})

	require.Error(t, err)
	assert.Empty(t, rec.events)
}
