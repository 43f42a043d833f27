package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-chat/internal/domain/chat"
	"lingua-chat/internal/filestore"
	"lingua-chat/internal/repository"
	lingua_errors "lingua-chat/pkg/errors"
)

var errDown = errors.New("connection refused")

// failingBackend simulates an unreachable database: every call returns the
// configured error.
type failingBackend struct {
	err   error
	calls int
}

func (b *failingBackend) GetOrCreateChat(context.Context, int64, int64) (int64, error) {
	b.calls++
	return 0, b.err
}

func (b *failingBackend) ListChats(context.Context, int64) ([]chat.Summary, error) {
	b.calls++
	return nil, b.err
}

func (b *failingBackend) ListMessages(context.Context, int64, int, int64) ([]chat.Message, error) {
	b.calls++
	return nil, b.err
}

func (b *failingBackend) AppendMessage(context.Context, int64, int64, string) error {
	b.calls++
	return b.err
}

func (b *failingBackend) EditMessage(context.Context, int64, int64, string) error {
	b.calls++
	return b.err
}

func (b *failingBackend) DeleteMessage(context.Context, int64, int64) error {
	b.calls++
	return b.err
}

func (b *failingBackend) MarkRead(context.Context, int64, int64) error {
	b.calls++
	return b.err
}

func newFallback(t *testing.T) repository.ChatBackend {
	t.Helper()
	store := filestore.NewStore(filepath.Join(t.TempDir(), "chat_fallback.json"))
	return repository.NewFallbackChatRepository(store, nil)
}

func TestValidationGuards(t *testing.T) {
	// Both backends down: a guard rejection must short-circuit before either
	// backend is touched.
	primary := &failingBackend{err: errDown}
	svc := NewChatService(primary, &failingBackend{err: errDown}, nil)
	ctx := context.Background()

	assert.Zero(t, svc.GetOrCreateConversation(ctx, 0, 2))
	assert.Zero(t, svc.GetOrCreateConversation(ctx, 1, 0))
	assert.Empty(t, svc.ListConversations(ctx, 0))
	assert.Empty(t, svc.ListMessages(ctx, 0, 0, 0))
	assert.False(t, svc.SendMessage(ctx, 0, 1, "hi"))
	assert.False(t, svc.SendMessage(ctx, 1, 0, "hi"))
	assert.False(t, svc.SendMessage(ctx, 1, 2, ""))
	assert.False(t, svc.EditMessage(ctx, 0, 1, "new"))
	assert.False(t, svc.DeleteMessage(ctx, 1, 0))
	assert.False(t, svc.MarkRead(ctx, 0, 1))

	assert.Zero(t, primary.calls)
}

func TestListResultsNeverNil(t *testing.T) {
	svc := NewChatService(&failingBackend{err: errDown}, &failingBackend{err: errDown}, nil)
	ctx := context.Background()

	summaries := svc.ListConversations(ctx, 1)
	require.NotNil(t, summaries)
	assert.Empty(t, summaries)

	messages := svc.ListMessages(ctx, 1, 0, 0)
	require.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestFallbackContinuity(t *testing.T) {
	// The relational backend is down for the whole session; every operation
	// must still succeed through the document store alone.
	svc := NewChatService(&failingBackend{err: errDown}, newFallback(t), nil)
	ctx := context.Background()

	chatID := svc.GetOrCreateConversation(ctx, 1, 2)
	require.NotZero(t, chatID)
	assert.Equal(t, chatID, svc.GetOrCreateConversation(ctx, 2, 1))

	require.True(t, svc.SendMessage(ctx, chatID, 1, "hello"))
	require.True(t, svc.SendMessage(ctx, chatID, 2, "hi back"))

	messages := svc.ListMessages(ctx, chatID, 0, 0)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Body)

	require.True(t, svc.EditMessage(ctx, messages[0].ID, 1, "hello there"))
	require.True(t, svc.DeleteMessage(ctx, messages[1].ID, 2))
	require.True(t, svc.MarkRead(ctx, chatID, 2))

	messages = svc.ListMessages(ctx, chatID, 0, 0)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello there", messages[0].Body)
	assert.True(t, messages[0].Edited)
	assert.Empty(t, messages[1].Body)
	assert.True(t, messages[1].Deleted)

	summaries := svc.ListConversations(ctx, 2)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].UnreadCount)
}

func TestAuthorizationFailureDoesNotFallBack(t *testing.T) {
	// ErrUnauthorized is a definitive answer from the relational backend, not
	// an outage; the document store must not get a second try.
	fallback := &failingBackend{err: errDown}
	svc := NewChatService(&failingBackend{err: lingua_errors.ErrUnauthorized}, fallback, nil)

	assert.False(t, svc.EditMessage(context.Background(), 7, 2, "hijacked"))
	assert.Zero(t, fallback.calls)
}

func TestNotFoundDoesNotFallBack(t *testing.T) {
	fallback := &failingBackend{err: errDown}
	svc := NewChatService(&failingBackend{err: lingua_errors.ErrNotFound}, fallback, nil)

	assert.False(t, svc.DeleteMessage(context.Background(), 404, 1))
	assert.Zero(t, fallback.calls)
}

func TestBothBackendsFailing(t *testing.T) {
	svc := NewChatService(&failingBackend{err: errDown}, &failingBackend{err: errDown}, nil)
	ctx := context.Background()

	assert.Zero(t, svc.GetOrCreateConversation(ctx, 1, 2))
	assert.False(t, svc.SendMessage(ctx, 1, 1, "hello"))
	assert.False(t, svc.EditMessage(ctx, 1, 1, "new"))
	assert.False(t, svc.DeleteMessage(ctx, 1, 1))
	assert.False(t, svc.MarkRead(ctx, 1, 1))
	assert.Empty(t, svc.ListConversations(ctx, 1))
	assert.Empty(t, svc.ListMessages(ctx, 1, 0, 0))
}
