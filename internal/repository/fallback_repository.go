package repository

import (
	"context"
	"sync"
	"time"

	"lingua-chat/internal/domain/chat"
	"lingua-chat/internal/filestore"
	lingua_errors "lingua-chat/pkg/errors"
)

// FallbackChatRepository serves chat traffic out of the JSON document store
// while the database is unreachable. Every operation is a full
// load-mutate-save cycle over the single document; the mutex keeps those
// cycles from interleaving within this process. Nothing written here is ever
// merged back into the database once it recovers.
type FallbackChatRepository struct {
	mu    sync.Mutex
	store *filestore.Store
	users UserDirectory
}

func NewFallbackChatRepository(store *filestore.Store, users UserDirectory) ChatBackend {
	return &FallbackChatRepository{store: store, users: users}
}

func (r *FallbackChatRepository) GetOrCreateChat(ctx context.Context, userA, userB int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.store.Load()
	if c := doc.FindChatByPair(userA, userB); c != nil {
		return c.ID, nil
	}

	id := doc.AllocateChatID()
	doc.Chats = append(doc.Chats, filestore.StoredChat{
		ID:       id,
		User1ID:  userA,
		User2ID:  userB,
		Messages: []filestore.StoredMessage{},
	})
	if !r.store.Save(doc) {
		return 0, lingua_errors.ErrUnavailable
	}
	return id, nil
}

func (r *FallbackChatRepository) ListChats(ctx context.Context, userID int64) ([]chat.Summary, error) {
	r.mu.Lock()
	doc := r.store.Load()
	r.mu.Unlock()

	summaries := make([]chat.Summary, 0)
	for _, c := range doc.Chats {
		if c.User1ID != userID && c.User2ID != userID {
			continue
		}
		otherID := c.User1ID
		if otherID == userID {
			otherID = c.User2ID
		}

		s := chat.Summary{ChatID: c.ID, OtherUserID: otherID}
		if n := len(c.Messages); n > 0 {
			last := c.Messages[n-1]
			s.LastMessage = last.Message
			s.LastAt = parseStoredTime(last.SentAt)
		}
		for _, m := range c.Messages {
			if m.SenderID != userID && !containsID(m.ReadBy, userID) {
				s.UnreadCount++
			}
		}

		if r.users != nil {
			if u, err := r.users.FindUserByID(ctx, otherID); err == nil {
				s.OtherUsername = u.Username
				s.FirstName = u.FirstName
				s.LastName = u.LastName
			}
		}

		summaries = append(summaries, s)
	}

	sortSummaries(summaries)
	return summaries, nil
}

func (r *FallbackChatRepository) ListMessages(ctx context.Context, chatID int64, limit int, afterID int64) ([]chat.Message, error) {
	r.mu.Lock()
	doc := r.store.Load()
	r.mu.Unlock()

	c := doc.FindChat(chatID)
	if c == nil {
		return []chat.Message{}, nil
	}

	filtered := make([]filestore.StoredMessage, 0, len(c.Messages))
	for _, m := range c.Messages {
		if afterID > 0 && m.ID <= afterID {
			continue
		}
		filtered = append(filtered, m)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	messages := make([]chat.Message, 0, len(filtered))
	for _, m := range filtered {
		messages = append(messages, fromStored(chatID, m))
	}
	return messages, nil
}

func (r *FallbackChatRepository) AppendMessage(ctx context.Context, chatID, senderID int64, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.store.Load()
	c := doc.FindChat(chatID)
	if c == nil {
		return lingua_errors.ErrNotFound
	}

	c.Messages = append(c.Messages, filestore.StoredMessage{
		ID:       doc.AllocateMessageID(),
		SenderID: senderID,
		Message:  body,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
		// The sender has implicitly read their own message.
		ReadBy: []int64{senderID},
	})
	if !r.store.Save(doc) {
		return lingua_errors.ErrUnavailable
	}
	return nil
}

func (r *FallbackChatRepository) EditMessage(ctx context.Context, messageID, userID int64, newBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.store.Load()
	_, m := doc.FindMessage(messageID)
	if m == nil {
		return lingua_errors.ErrNotFound
	}
	if m.SenderID != userID {
		return lingua_errors.ErrUnauthorized
	}

	now := time.Now().UTC().Format(time.RFC3339)
	m.Message = newBody
	m.Edited = true
	m.EditedAt = &now
	if !r.store.Save(doc) {
		return lingua_errors.ErrUnavailable
	}
	return nil
}

func (r *FallbackChatRepository) DeleteMessage(ctx context.Context, messageID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.store.Load()
	_, m := doc.FindMessage(messageID)
	if m == nil {
		return lingua_errors.ErrNotFound
	}
	if m.SenderID != userID {
		return lingua_errors.ErrUnauthorized
	}

	now := time.Now().UTC().Format(time.RFC3339)
	m.Message = ""
	m.Deleted = true
	m.DeletedAt = &now
	if !r.store.Save(doc) {
		return lingua_errors.ErrUnavailable
	}
	return nil
}

func (r *FallbackChatRepository) MarkRead(ctx context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.store.Load()
	c := doc.FindChat(chatID)
	if c == nil {
		return lingua_errors.ErrNotFound
	}

	changed := false
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.SenderID == userID || containsID(m.ReadBy, userID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, userID)
		changed = true
	}
	if !changed {
		return nil
	}
	if !r.store.Save(doc) {
		return lingua_errors.ErrUnavailable
	}
	return nil
}

func fromStored(chatID int64, m filestore.StoredMessage) chat.Message {
	out := chat.Message{
		ID:       m.ID,
		ChatID:   chatID,
		SenderID: m.SenderID,
		Body:     m.Message,
		Edited:   m.Edited,
		Deleted:  m.Deleted,
	}
	if t := parseStoredTime(m.SentAt); t != nil {
		out.SentAt = *t
	}
	out.EditedAt = parseStoredTimePtr(m.EditedAt)
	out.DeletedAt = parseStoredTimePtr(m.DeletedAt)
	if out.Deleted {
		out.Body = ""
	}
	return out
}

func parseStoredTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

func parseStoredTimePtr(value *string) *time.Time {
	if value == nil {
		return nil
	}
	return parseStoredTime(*value)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
