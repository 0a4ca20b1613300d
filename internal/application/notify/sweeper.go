package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/infrastructure/push"
)

const (
	sweepInterval = time.Minute
	sendTimeout   = 10 * time.Second
)

type lineBoundLister interface {
	ListLineBound(ctx context.Context) ([]domain.User, error)
}

// Sweeper periodically flushes pending batches whose merge window has
// elapsed. Candidates come from the user table: only users with a bound LINE
// identity can have anything deliverable. One failing recipient never blocks
// the others.
type Sweeper struct {
	engine  *Engine
	users   lineBoundLister
	sender  push.Sender
	baseURL string
	merging bool
	logger  *slog.Logger
}

type SweeperDeps struct {
	Engine   *Engine
	UserRepo lineBoundLister
	Sender   push.Sender
	BaseURL  string
	Merging  bool
	Logger   *slog.Logger
}

func NewSweeper(deps SweeperDeps) *Sweeper {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		engine:  deps.Engine,
		users:   deps.UserRepo,
		sender:  deps.Sender,
		baseURL: deps.BaseURL,
		merging: deps.Merging,
		logger:  logger,
	}
}

// Run sweeps every minute until ctx is cancelled. Intended to run as a
// background goroutine next to the HTTP server.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx, time.Now().UTC())
		}
	}
}

// sweep takes now as a parameter so tests can pin the clock.
func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	if !s.merging {
		return
	}
	users, err := s.users.ListLineBound(ctx)
	if err != nil {
		s.logger.Warn("sweep: listing recipients failed", "error", err)
		return
	}
	for i := range users {
		if err := s.flush(ctx, &users[i], now); err != nil {
			s.logger.Warn("sweep: flush failed", "recipient_id", users[i].UserID, "error", err)
		}
	}
}

// flush sends one merged notification covering every entry whose window has
// elapsed, then re-stores the entries that are still inside their window.
func (s *Sweeper) flush(ctx context.Context, u *domain.User, now time.Time) error {
	entries, err := s.engine.Pending(ctx, u.UserID)
	if err != nil {
		return err
	}

	var expired, remaining []domain.PendingNotification
	for _, e := range entries {
		if now.Sub(e.FirstMessageTime) >= s.engine.Window() {
			expired = append(expired, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	if u.NotificationPreference == domain.NotifyDisabled {
		// Preference changed after the batch was queued. Drop the due
		// entries and keep the rest.
		return s.engine.Replace(ctx, u.UserID, remaining)
	}

	// One merged push can only deep-link to one conversation; the oldest due
	// entry wins. A multi-conversation inbox link would need frontend support.
	link := s.baseURL + "/conversations/" + expired[0].ConversationID

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := s.sender.SendTextWithLink(sendCtx, *u.LineUserID, Merge(expired), link, linkLabel, domain.PriorityMedium); err != nil {
		// Leave the batch in place. There is no retry queue; if the send
		// keeps failing the TTL eventually evicts the batch.
		return err
	}

	s.logger.Info("sweep: flushed batch",
		"recipient_id", u.UserID, "conversations", len(expired), "sender", expired[0].SenderName)
	return s.engine.Replace(ctx, u.UserID, remaining)
}
