package push

import (
	"context"

	"github.com/go-market-api/internal/domain"
)

// Sender delivers push messages to an opaque recipient identifier. Both
// operations are fire-and-forget from the caller's perspective: the returned
// error is logged, never acted on.
type Sender interface {
	SendText(ctx context.Context, to, text string, priority domain.Priority) error
	SendTextWithLink(ctx context.Context, to, text, linkURL, linkLabel string, priority domain.Priority) error
}
