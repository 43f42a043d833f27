package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-chat/internal/domain/user"
	"lingua-chat/internal/filestore"
	lingua_errors "lingua-chat/pkg/errors"
)

type stubDirectory struct {
	users map[int64]user.User
}

func (d *stubDirectory) FindUserByID(_ context.Context, id int64) (user.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return user.User{}, lingua_errors.ErrNotFound
}

func newFallbackRepo(t *testing.T) ChatBackend {
	t.Helper()
	store := filestore.NewStore(filepath.Join(t.TempDir(), "chat_fallback.json"))
	dir := &stubDirectory{users: map[int64]user.User{
		2: {ID: 2, Username: "marco", FirstName: "Marco", LastName: "Rossi"},
	}}
	return NewFallbackChatRepository(store, dir)
}

func TestFallbackGetOrCreateChatUnorderedPair(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	id1, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	require.NotZero(t, id1)

	id2, err := repo.GetOrCreateChat(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := repo.GetOrCreateChat(ctx, 1, 3)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestFallbackAppendAndListMessages(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	chatID, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, repo.AppendMessage(ctx, chatID, 1, "hello"))
	require.NoError(t, repo.AppendMessage(ctx, chatID, 2, "hi back"))

	messages, err := repo.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Body)
	assert.Equal(t, int64(1), messages[0].SenderID)
	assert.Equal(t, chatID, messages[0].ChatID)
	assert.Equal(t, "hi back", messages[1].Body)
	assert.Greater(t, messages[1].ID, messages[0].ID)
	assert.False(t, messages[0].SentAt.IsZero())
}

func TestFallbackAppendToMissingChat(t *testing.T) {
	repo := newFallbackRepo(t)

	err := repo.AppendMessage(context.Background(), 99, 1, "void")
	assert.ErrorIs(t, err, lingua_errors.ErrNotFound)
}

func TestFallbackListMessagesCursorAndLimit(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	chatID, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.AppendMessage(ctx, chatID, 1, "msg"))
	}

	messages, err := repo.ListMessages(ctx, chatID, 0, 5)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	for i, m := range messages {
		assert.Equal(t, int64(6+i), m.ID)
	}

	// A limit keeps the most recent messages.
	messages, err = repo.ListMessages(ctx, chatID, 3, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, int64(8), messages[0].ID)
	assert.Equal(t, int64(10), messages[2].ID)
}

func TestFallbackListMessagesUnknownChat(t *testing.T) {
	repo := newFallbackRepo(t)

	messages, err := repo.ListMessages(context.Background(), 42, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestFallbackEditMessageSenderOnly(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	chatID, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(ctx, chatID, 1, "original"))

	messages, err := repo.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	msgID := messages[0].ID

	err = repo.EditMessage(ctx, msgID, 2, "hijacked")
	assert.ErrorIs(t, err, lingua_errors.ErrUnauthorized)

	err = repo.EditMessage(ctx, 999, 1, "nothing there")
	assert.ErrorIs(t, err, lingua_errors.ErrNotFound)

	require.NoError(t, repo.EditMessage(ctx, msgID, 1, "corrected"))
	messages, err = repo.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "corrected", messages[0].Body)
	assert.True(t, messages[0].Edited)
	assert.NotNil(t, messages[0].EditedAt)
}

func TestFallbackDeleteLeavesTombstone(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	chatID, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(ctx, chatID, 1, "regret"))
	require.NoError(t, repo.AppendMessage(ctx, chatID, 2, "reply"))

	messages, err := repo.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	target := messages[0]

	err = repo.DeleteMessage(ctx, target.ID, 2)
	assert.ErrorIs(t, err, lingua_errors.ErrUnauthorized)

	require.NoError(t, repo.DeleteMessage(ctx, target.ID, 1))

	messages, err = repo.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, target.ID, messages[0].ID)
	assert.Empty(t, messages[0].Body)
	assert.True(t, messages[0].Deleted)
	assert.NotNil(t, messages[0].DeletedAt)
}

func TestFallbackMarkReadAndUnreadCounts(t *testing.T) {
	repo := newFallbackRepo(t)
	ctx := context.Background()

	chatID, err := repo.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(ctx, chatID, 2, "hi"))
	require.NoError(t, repo.AppendMessage(ctx, chatID, 2, "there"))
	require.NoError(t, repo.AppendMessage(ctx, chatID, 1, "hey"))

	summaries, err := repo.ListChats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
	assert.Equal(t, "marco", summaries[0].OtherUsername)
	assert.Equal(t, "hey", summaries[0].LastMessage)
	require.NotNil(t, summaries[0].LastAt)

	require.NoError(t, repo.MarkRead(ctx, chatID, 1))
	require.NoError(t, repo.MarkRead(ctx, chatID, 1))

	summaries, err = repo.ListChats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, summaries[0].UnreadCount)

	// The other side's view is untouched: user 1's message stays unread.
	summaries, err = repo.ListChats(ctx, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
}

func TestFallbackSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_fallback.json")
	ctx := context.Background()

	first := NewFallbackChatRepository(filestore.NewStore(path), nil)
	chatID, err := first.GetOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, first.AppendMessage(ctx, chatID, 1, "persisted"))

	second := NewFallbackChatRepository(filestore.NewStore(path), nil)
	messages, err := second.ListMessages(ctx, chatID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "persisted", messages[0].Body)

	again, err := second.GetOrCreateChat(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, chatID, again)
}
