package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGetRoundTrip(t *testing.T) {
	m := NewMemory()
	list := []domain.PendingNotification{{RecipientID: "u1", ConversationID: "c1", MessageCount: 2}}

	require.NoError(t, m.Put(context.Background(), "u1", list, time.Minute))

	got, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestMemory_GetMissing_ReturnsEmpty(t *testing.T) {
	m := NewMemory()
	got, err := m.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_ExpiredEntryInvisible(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "u1",
		[]domain.PendingNotification{{ConversationID: "c1"}}, time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	got, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_Clear_Idempotent(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "u1",
		[]domain.PendingNotification{{ConversationID: "c1"}}, time.Minute))

	require.NoError(t, m.Clear(context.Background(), "u1"))
	require.NoError(t, m.Clear(context.Background(), "u1"))

	got, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_CloseStopsJanitorStoreStaysUsable(t *testing.T) {
	m := NewMemory()
	m.Close()

	require.NoError(t, m.Put(context.Background(), "u1",
		[]domain.PendingNotification{{ConversationID: "c1", MessageCount: 1}}, time.Minute))

	got, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Expiry is still enforced on read even without the janitor.
	require.NoError(t, m.Put(context.Background(), "u2",
		[]domain.PendingNotification{{ConversationID: "c2"}}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	expired, err := m.Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "u1",
		[]domain.PendingNotification{{ConversationID: "c1", MessageCount: 1}}, time.Minute))

	got, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	got[0].MessageCount = 99

	again, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].MessageCount)
}
