package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-market-api/internal/domain"
)

// PendingStore holds each recipient's batch of pending notifications keyed by
// recipient ID. Implementations: an in-process map for single-instance
// deployments and Redis for multi-instance ones.
type PendingStore interface {
	Get(ctx context.Context, recipientID string) ([]domain.PendingNotification, error)
	Put(ctx context.Context, recipientID string, list []domain.PendingNotification, ttl time.Duration) error
	Clear(ctx context.Context, recipientID string) error
}

// Engine owns the merge window bookkeeping: adding events to a recipient's
// batch, reading it back, and replacing or clearing it after a flush.
//
// Add is a read-modify-write without a lock around the store round trip. Two
// concurrent adds for the same recipient can race and the last write wins,
// losing one increment. The impact is an undercounted batch notification, not
// lost chat data, so the engine accepts the race instead of paying for
// distributed locking.
type Engine struct {
	store  PendingStore
	window time.Duration
}

func NewEngine(store PendingStore, window time.Duration) *Engine {
	return &Engine{store: store, window: window}
}

func (e *Engine) Window() time.Duration { return e.window }

// ttl keeps batches alive one minute past the merge window so the sweeper,
// which runs on its own schedule, can still read a batch that just became due.
// Each Put slides the TTL forward.
func (e *Engine) ttl() time.Duration {
	return e.window + time.Minute
}

// Add merges an event into the recipient's batch. At most one entry exists
// per conversation: a repeat conversation increments MessageCount and moves
// LastMessageTime; FirstMessageTime and MessagePreview keep their original
// values so the flush deadline and the preview reflect the first unseen
// message.
func (e *Engine) Add(ctx context.Context, entry domain.PendingNotification) error {
	list, err := e.store.Get(ctx, entry.RecipientID)
	if err != nil {
		return fmt.Errorf("load pending batch: %w", err)
	}
	merged := false
	for i := range list {
		if list[i].ConversationID == entry.ConversationID {
			list[i].MessageCount += entry.MessageCount
			list[i].LastMessageTime = entry.LastMessageTime
			if list[i].MessagePreview == "" {
				list[i].MessagePreview = entry.MessagePreview
			}
			if entry.Priority > list[i].Priority {
				list[i].Priority = entry.Priority
			}
			merged = true
			break
		}
	}
	if !merged {
		list = append(list, entry)
	}
	return e.store.Put(ctx, entry.RecipientID, list, e.ttl())
}

func (e *Engine) Pending(ctx context.Context, recipientID string) ([]domain.PendingNotification, error) {
	return e.store.Get(ctx, recipientID)
}

// Replace swaps the recipient's batch for the given remainder, or clears it
// when the remainder is empty. Used after a partial flush.
func (e *Engine) Replace(ctx context.Context, recipientID string, list []domain.PendingNotification) error {
	if len(list) == 0 {
		return e.store.Clear(ctx, recipientID)
	}
	return e.store.Put(ctx, recipientID, list, e.ttl())
}

func (e *Engine) Clear(ctx context.Context, recipientID string) error {
	return e.store.Clear(ctx, recipientID)
}

// Merge renders a batch into the single notification text. The count is the
// total number of messages across all conversations, not the number of
// conversations. An empty batch renders to the empty string.
func Merge(entries []domain.PendingNotification) string {
	if len(entries) == 0 {
		return ""
	}
	total := 0
	for _, e := range entries {
		total += e.MessageCount
	}
	return fmt.Sprintf("你有 %d 則新訊息！", total)
}
