package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/infrastructure/push"
)

// EventKind tells the dispatcher how urgent an event is.
type EventKind int

const (
	// EventChatMessage is a regular chat message; it goes through the merge
	// window.
	EventChatMessage EventKind = iota + 1
	// EventTransaction covers listing state changes a user is waiting on
	// (reserved, sold); pushed immediately.
	EventTransaction
)

// Event is one thing that happened that the recipient may want to know about.
type Event struct {
	Kind         EventKind
	Conversation *domain.Conversation
	RecipientID  string
	SenderID     string
	SenderName   string
	Content      string
	SentAt       time.Time
}

// Notifier is the seam the chat and listing services fire events through.
// Delivery is best effort, so there is no error return: failures are logged
// and never propagate into the request that produced the event.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Noop drops every event. Used when no push provider is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Dispatcher routes events: high-priority ones are pushed at once, medium
// ones are queued into the merge window for the sweeper to flush.
type Dispatcher struct {
	users   userStore
	sender  push.Sender
	engine  *Engine
	baseURL string
	merging bool
	logger  *slog.Logger
}

type DispatcherDeps struct {
	UserRepo userStore
	Sender   push.Sender
	Engine   *Engine
	// BaseURL is the public web frontend; conversation deep links are built
	// against it.
	BaseURL string
	// Merging disabled drops medium-priority events instead of queueing them.
	Merging bool
	Logger  *slog.Logger
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		users:   deps.UserRepo,
		sender:  deps.Sender,
		engine:  deps.Engine,
		baseURL: deps.BaseURL,
		merging: deps.Merging,
		logger:  logger,
	}
}

const (
	previewRunes = 20
	linkLabel    = "查看訊息"
)

func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	u, err := d.users.Get(ctx, ev.RecipientID)
	if err != nil {
		d.logger.Warn("notify: recipient lookup failed", "recipient_id", ev.RecipientID, "error", err)
		return
	}
	if u.LineUserID == nil || *u.LineUserID == "" {
		return
	}
	if u.NotificationPreference == domain.NotifyDisabled {
		return
	}

	switch classify(ev.Kind) {
	case domain.PriorityHigh:
		link := d.conversationURL(ev.Conversation.ConversationID)
		if err := d.sender.SendTextWithLink(ctx, *u.LineUserID, ev.Content, link, linkLabel, domain.PriorityHigh); err != nil {
			d.logger.Warn("notify: immediate push failed",
				"recipient_id", ev.RecipientID, "conversation_id", ev.Conversation.ConversationID, "error", err)
		}
	case domain.PriorityMedium:
		if !d.merging {
			// Without the merge window there is nowhere to queue; dropping is
			// the documented behavior rather than falling back to instant
			// pushes that would flood recipients.
			d.logger.Debug("notify: merging disabled, dropping event", "recipient_id", ev.RecipientID)
			return
		}
		entry := domain.PendingNotification{
			RecipientID:      ev.RecipientID,
			ConversationID:   ev.Conversation.ConversationID,
			SenderName:       ev.SenderName,
			MessageCount:     1,
			FirstMessageTime: ev.SentAt,
			LastMessageTime:  ev.SentAt,
			Priority:         domain.PriorityMedium,
			MessagePreview:   preview(ev.Content),
		}
		if err := d.engine.Add(ctx, entry); err != nil {
			d.logger.Warn("notify: queue failed", "recipient_id", ev.RecipientID, "error", err)
		}
	}
}

func classify(kind EventKind) domain.Priority {
	if kind == EventTransaction {
		return domain.PriorityHigh
	}
	return domain.PriorityMedium
}

func (d *Dispatcher) conversationURL(conversationID string) string {
	return d.baseURL + "/conversations/" + conversationID
}

// preview keeps the first 20 runes of the content, appending an ellipsis when
// truncated. Rune-based so CJK text isn't cut mid-character.
func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewRunes {
		return content
	}
	return string(r[:previewRunes]) + "…"
}
